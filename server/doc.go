// Package server provides the HTTP server both binaries run on: a Gin engine
// mounted on a ServeMux behind an h2c handler, with a standard middleware
// stack (recovery, request IDs, body-size limits, request logging) and
// shared JSON response helpers.
package server
