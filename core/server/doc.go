// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber app; this package only defines the
// settings it reads: listen port, API key, request body limit and the
// graceful shutdown timeout.
package server
