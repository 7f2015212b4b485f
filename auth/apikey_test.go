package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestAPIKeyAuthenticator_Supports(t *testing.T) {
	a := NewAPIKeyAuthenticator(APIKeyConfig{}, NewMemoryAPIKeyStore())

	tests := []struct {
		name    string
		headers http.Header
		want    bool
	}{
		{"no header", http.Header{}, false},
		{"api key header", http.Header{"X-Api-Key": {"k"}}, true},
		{"bearer only", http.Header{"Authorization": {"Bearer t"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Supports(context.Background(), &AuthRequest{Headers: tt.headers}); got != tt.want {
				t.Errorf("Supports() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAPIKeyAuthenticator_Authenticate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryAPIKeyStore()
	store.AddKey("alice", "alice-key", "reader")
	store.Add(&APIKeyInfo{
		ID:        "old",
		KeyHash:   HashAPIKey("old-key"),
		Principal: "bob",
		ExpiresAt: now.Add(-time.Minute),
	})
	a := NewAPIKeyAuthenticator(APIKeyConfig{Now: func() time.Time { return now }}, store)

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"valid", "alice-key", nil},
		{"valid with whitespace", "  alice-key ", nil},
		{"unknown", "nope", ErrInvalidCredentials},
		{"expired", "old-key", ErrTokenExpired},
		{"missing", "", ErrMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &AuthRequest{Headers: http.Header{}}
			if tt.key != "" {
				req.Headers.Set(DefaultAPIKeyHeader, tt.key)
			}
			result, err := a.Authenticate(context.Background(), req)
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if tt.wantErr != nil {
				if result.Authenticated {
					t.Fatal("Authenticated = true")
				}
				if !errors.Is(result.Error, tt.wantErr) {
					t.Errorf("Error = %v, want %v", result.Error, tt.wantErr)
				}
				return
			}
			if !result.Authenticated {
				t.Fatalf("Authenticated = false, error = %v", result.Error)
			}
			id := result.Identity
			if id.Principal != "alice" || !id.HasRole("reader") || id.Method != AuthMethodAPIKey {
				t.Errorf("Identity = %+v", id)
			}
			if id.Claims["key_id"] != "alice" {
				t.Errorf("key_id = %v", id.Claims["key_id"])
			}
		})
	}
}

type failingStore struct{}

func (failingStore) Lookup(context.Context, string) (*APIKeyInfo, error) {
	return nil, errors.New("store down")
}

func TestAPIKeyAuthenticator_StoreError(t *testing.T) {
	a := NewAPIKeyAuthenticator(APIKeyConfig{}, failingStore{})
	req := &AuthRequest{Headers: http.Header{"X-Api-Key": {"k"}}}
	if _, err := a.Authenticate(context.Background(), req); err == nil {
		t.Fatal("Authenticate() error = nil, want store error")
	}
}

func TestMemoryAPIKeyStore(t *testing.T) {
	s := NewMemoryAPIKeyStore()
	s.AddKey("alice", "k1")
	if s.Len() != 1 {
		t.Fatalf("Len() = %d", s.Len())
	}
	info, _ := s.Lookup(context.Background(), HashAPIKey("k1"))
	if info == nil || info.Principal != "alice" {
		t.Fatalf("Lookup() = %+v", info)
	}
	s.Remove(HashAPIKey("k1"))
	if info, _ := s.Lookup(context.Background(), HashAPIKey("k1")); info != nil {
		t.Errorf("Lookup() after Remove = %+v", info)
	}
}

func TestHashAPIKey(t *testing.T) {
	h := HashAPIKey("test")
	if len(h) != 64 {
		t.Errorf("len(HashAPIKey) = %d, want 64", len(h))
	}
	if h != HashAPIKey("test") {
		t.Error("HashAPIKey is not deterministic")
	}
	if h == HashAPIKey("other") {
		t.Error("different keys hash equal")
	}
	if !ConstantTimeCompare(h, HashAPIKey("test")) || ConstantTimeCompare(h, "x") {
		t.Error("ConstantTimeCompare mismatch")
	}
}
