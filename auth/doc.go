// Package auth authenticates callers of the HTTP MCP transport and decides
// which tools they may call.
//
// Two credential schemes are supported: static API keys sent in X-API-Key
// (stored as SHA-256 hashes) and JWT bearer tokens verified with an HMAC
// secret or a JWKS endpoint. A CompositeAuthenticator tries them in order.
//
// Middleware wraps an http.Handler, rejects unauthenticated requests with
// 401 and stores the caller's Identity in the request context. A
// ToolPolicy maps roles to the tools they may call; the server consults it
// before dispatching tools/call.
//
// The stdio transport has no caller identity and bypasses this package.
package auth
