// Package application wires a resolved settings result into the read-only
// inspection service: handler, router and HTTP server. It keeps the main
// package focused on CLI parsing and orchestration.
package application
