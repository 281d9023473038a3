// Package application wires the inspection server: the snapshot store, API
// handlers, router and HTTP server, so the main package only parses flags and
// orchestrates startup and shutdown.
package application
