package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func stubAuthenticator(name string, supports bool, result *AuthResult, err error) *AuthenticatorFunc {
	return NewAuthenticatorFunc(name,
		func(context.Context, *AuthRequest) bool { return supports },
		func(context.Context, *AuthRequest) (*AuthResult, error) { return result, err },
	)
}

func TestCompositeAuthenticator(t *testing.T) {
	alice := &Identity{Principal: "alice", Method: AuthMethodAPIKey}
	ok := AuthSuccess(alice)
	bad := AuthFailure(ErrInvalidCredentials, "jwt")

	tests := []struct {
		name     string
		auths    []Authenticator
		wantOK   bool
		wantErr  error
		internal bool
	}{
		{
			name:    "empty chain",
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "none supports",
			auths:   []Authenticator{stubAuthenticator("a", false, ok, nil)},
			wantErr: ErrMissingCredentials,
		},
		{
			name:   "second succeeds",
			auths:  []Authenticator{stubAuthenticator("a", true, bad, nil), stubAuthenticator("b", true, ok, nil)},
			wantOK: true,
		},
		{
			name:    "all fail returns last failure",
			auths:   []Authenticator{stubAuthenticator("a", true, AuthFailure(ErrTokenExpired, "a"), nil), stubAuthenticator("b", true, bad, nil)},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "internal error stops chain",
			auths:    []Authenticator{stubAuthenticator("a", true, nil, errors.New("boom")), stubAuthenticator("b", true, ok, nil)},
			internal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompositeAuthenticator(tt.auths...)
			result, err := c.Authenticate(context.Background(), &AuthRequest{Headers: http.Header{}})
			if tt.internal {
				if err == nil {
					t.Fatal("error = nil, want internal error")
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if result.Authenticated != tt.wantOK {
				t.Fatalf("Authenticated = %v, want %v", result.Authenticated, tt.wantOK)
			}
			if tt.wantErr != nil && !errors.Is(result.Error, tt.wantErr) {
				t.Errorf("Error = %v, want %v", result.Error, tt.wantErr)
			}
		})
	}
}

func TestCompositeAuthenticator_Supports(t *testing.T) {
	c := NewCompositeAuthenticator(
		stubAuthenticator("a", false, nil, nil),
		stubAuthenticator("b", true, nil, nil),
	)
	if !c.Supports(context.Background(), &AuthRequest{}) {
		t.Error("Supports() = false, want true")
	}
	if c.Name() != "composite" {
		t.Errorf("Name() = %q", c.Name())
	}
}
