// Package observe provides the telemetry primitives shared by the API client
// and the tool server.
//
// An Observer owns the OpenTelemetry tracer and meter providers and a
// structured JSON logger. Two instrumentation layers sit on top of it:
//
//   - RequestRecorder instruments outbound InspireHEP requests and response
//     cache lookups (spans "inspire.request.<flavor>", metrics
//     inspire.request.* and inspire.cache.*).
//   - Middleware wraps tool calls (spans "tool.call.<name>", metrics
//     tool.call.*) and logs each call with sensitive fields redacted.
//
// Exporters are selected by name; see the exporters subpackage. Loggers
// write to stderr by default so the stdio transport keeps stdout for
// protocol traffic.
package observe
