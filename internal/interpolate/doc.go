// Package interpolate replaces ${NAME} and ${NAME:-DEFAULT} placeholders in raw
// configuration text with values taken from the environment. Expansion is a
// single pass: defaults are inserted verbatim and never expanded again.
package interpolate
