// Package staticd provides the main API for running a reactor-pattern
// static file server: one goroutine multiplexes epoll readiness across
// every connection and parses requests while a fixed worker pool
// resolves files and stages responses, and file bodies are served
// straight from read-only memory maps via vectored writes.
package staticd
