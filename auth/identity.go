package auth

import (
	"slices"
	"time"
)

// AuthMethod indicates how a caller was authenticated.
type AuthMethod string

const (
	AuthMethodNone      AuthMethod = "none"
	AuthMethodJWT       AuthMethod = "jwt"
	AuthMethodAPIKey    AuthMethod = "api_key"
	AuthMethodAnonymous AuthMethod = "anonymous"
)

// Identity is an authenticated caller of the MCP endpoint.
type Identity struct {
	// Principal identifies the caller: the API key owner or the token subject.
	Principal string

	// Roles select which tools the caller may use.
	Roles []string

	// Method indicates how authentication was performed.
	Method AuthMethod

	// Claims holds raw token claims, or key metadata for API keys.
	Claims map[string]any

	// ExpiresAt is when the credential expires. Zero means never.
	ExpiresAt time.Time

	// IssuedAt is when the credential was issued, if known.
	IssuedAt time.Time
}

// HasRole reports whether the identity carries role.
func (id *Identity) HasRole(role string) bool {
	return slices.Contains(id.Roles, role)
}

// IsExpired reports whether the credential has expired as of now.
func (id *Identity) IsExpired(now time.Time) bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return now.After(id.ExpiresAt)
}

// IsAnonymous returns true if this is an anonymous identity.
func (id *Identity) IsAnonymous() bool {
	return id.Method == AuthMethodAnonymous || id.Principal == ""
}

// AnonymousIdentity returns the identity used when authentication is off.
func AnonymousIdentity() *Identity {
	return &Identity{
		Principal: "anonymous",
		Method:    AuthMethodAnonymous,
		Claims:    make(map[string]any),
	}
}
