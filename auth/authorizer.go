package auth

import (
	"context"
	"fmt"
)

// Actions checked by the MCP server.
const (
	ActionCall = "call"
	ActionList = "list"
)

// Authorizer decides whether an identity may act on a tool.
type Authorizer interface {
	// Authorize returns nil if the request is permitted, or an error
	// (typically *AuthzError) if it is denied.
	Authorize(ctx context.Context, req *AuthzRequest) error

	// Name returns a unique identifier for this authorizer.
	Name() string
}

// AuthzRequest describes one authorization decision.
type AuthzRequest struct {
	// Subject is the identity making the request.
	Subject *Identity

	// Tool is the tool name the action targets.
	Tool string

	// Action is ActionCall or ActionList.
	Action string
}

// AuthzError represents an authorization failure. It matches ErrForbidden.
type AuthzError struct {
	Subject string
	Tool    string
	Action  string
	Reason  string
}

// Error returns the error message.
func (e *AuthzError) Error() string {
	return fmt.Sprintf("auth: access denied: subject=%q tool=%q action=%q: %s",
		e.Subject, e.Tool, e.Action, e.Reason)
}

// Is reports whether this error matches the target.
func (e *AuthzError) Is(target error) bool {
	return target == ErrForbidden
}

func deny(req *AuthzRequest, reason string) *AuthzError {
	subject := ""
	if req.Subject != nil {
		subject = req.Subject.Principal
	}
	return &AuthzError{
		Subject: subject,
		Tool:    req.Tool,
		Action:  req.Action,
		Reason:  reason,
	}
}

// AllowAllAuthorizer permits all requests.
type AllowAllAuthorizer struct{}

// Authorize always returns nil.
func (AllowAllAuthorizer) Authorize(_ context.Context, _ *AuthzRequest) error {
	return nil
}

// Name returns "allow_all".
func (AllowAllAuthorizer) Name() string {
	return "allow_all"
}

// DenyAllAuthorizer denies all requests.
type DenyAllAuthorizer struct{}

// Authorize always returns an *AuthzError.
func (DenyAllAuthorizer) Authorize(_ context.Context, req *AuthzRequest) error {
	return deny(req, "all requests denied")
}

// Name returns "deny_all".
func (DenyAllAuthorizer) Name() string {
	return "deny_all"
}

// AuthorizerFunc adapts an ordinary function to the Authorizer interface.
type AuthorizerFunc func(ctx context.Context, req *AuthzRequest) error

// Authorize calls f.
func (f AuthorizerFunc) Authorize(ctx context.Context, req *AuthzRequest) error {
	return f(ctx, req)
}

// Name returns "func".
func (f AuthorizerFunc) Name() string {
	return "func"
}
