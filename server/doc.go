// Package server exposes the InspireHEP tools over the Model Context
// Protocol.
//
// Server speaks JSON-RPC 2.0 and implements initialize, ping, tools/list
// and tools/call. Two transports are provided: ServeStdio reads
// newline-delimited messages from a reader, and HTTPHandler accepts POST
// /mcp alongside health probes and Prometheus metrics.
package server
