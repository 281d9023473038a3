// Package config loads a YAML configuration document, expanding ${NAME} and
// ${NAME:-DEFAULT} environment references before parsing. The result is an
// untyped nested mapping with dotted-path accessors. It also resolves the
// inspection server settings from CLI flags, the document's server section,
// environment variables and defaults.
package config
