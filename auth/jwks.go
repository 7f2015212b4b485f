package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/singleflight"
)

// JWKSConfig configures the JWKS key provider.
type JWKSConfig struct {
	// URL is the JWKS endpoint URL.
	URL string

	// CacheTTL is how long fetched keys are trusted before a refresh.
	// Default: 1 hour
	CacheTTL time.Duration

	// MinRefreshInterval bounds how often an unknown key ID may trigger a
	// refresh of a still-fresh key set.
	// Default: 30 seconds
	MinRefreshInterval time.Duration

	// HTTPClient is the HTTP client to use for requests.
	// Default: a client with a 10s timeout
	HTTPClient *http.Client

	// Clock is the time source for cache expiry.
	// Default: wall clock
	Clock clock.Clock
}

// JWKSKeyProvider retrieves RSA verification keys from a JWKS endpoint.
//
// Keys are cached for CacheTTL. Concurrent refreshes collapse into one
// fetch. When a refresh fails, the previously fetched keys keep serving.
type JWKSKeyProvider struct {
	config JWKSConfig
	flight singleflight.Group

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// NewJWKSKeyProvider creates a new JWKS key provider. It performs no I/O.
func NewJWKSKeyProvider(config JWKSConfig) *JWKSKeyProvider {
	if config.CacheTTL == 0 {
		config.CacheTTL = time.Hour
	}
	if config.MinRefreshInterval == 0 {
		config.MinRefreshInterval = 30 * time.Second
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if config.Clock == nil {
		config.Clock = clock.New()
	}
	return &JWKSKeyProvider{
		config: config,
		keys:   make(map[string]*rsa.PublicKey),
	}
}

// GetKey returns the key for keyID. An empty keyID selects an arbitrary
// cached key, which is only meaningful for single-key sets.
func (p *JWKSKeyProvider) GetKey(ctx context.Context, keyID string) (any, error) {
	p.mu.RLock()
	age := p.config.Clock.Since(p.fetchedAt)
	key := p.lookupLocked(keyID)
	fetched := !p.fetchedAt.IsZero()
	p.mu.RUnlock()

	fresh := fetched && age < p.config.CacheTTL
	if key != nil && fresh {
		return key, nil
	}
	if key == nil && fresh && age < p.config.MinRefreshInterval {
		return nil, ErrKeyNotFound
	}

	ch := p.flight.DoChan("refresh", func() (any, error) {
		return nil, p.refresh(context.WithoutCancel(ctx))
	})
	var err error
	select {
	case res := <-ch:
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}

	p.mu.RLock()
	key = p.lookupLocked(keyID)
	p.mu.RUnlock()
	if key != nil {
		return key, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, ErrKeyNotFound
}

// lookupLocked finds a key by ID. Caller must hold at least RLock.
func (p *JWKSKeyProvider) lookupLocked(keyID string) *rsa.PublicKey {
	if keyID == "" {
		for _, key := range p.keys {
			return key
		}
		return nil
	}
	return p.keys[keyID]
}

func (p *JWKSKeyProvider) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.URL, nil)
	if err != nil {
		return fmt.Errorf("auth: jwks request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.config.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth: fetch jwks: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth: fetch jwks: unexpected status %d", resp.StatusCode)
	}

	var set jwksResponse
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("auth: decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Kty != "RSA" || (jwk.Use != "" && jwk.Use != "sig") {
			continue
		}
		pub, err := parseRSAPublicKey(jwk)
		if err != nil {
			continue
		}
		keys[jwk.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("auth: jwks contains no usable RSA signing keys")
	}

	p.mu.Lock()
	p.keys = keys
	p.fetchedAt = p.config.Clock.Now()
	p.mu.Unlock()
	return nil
}

type jwksResponse struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func parseRSAPublicKey(jwk jwkKey) (*rsa.PublicKey, error) {
	if jwk.N == "" || jwk.E == "" {
		return nil, errors.New("auth: jwk missing n or e")
	}
	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("auth: decode n: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("auth: decode e: %w", err)
	}
	e := new(big.Int).SetBytes(eBytes)
	if !e.IsInt64() || e.Int64() < 3 {
		return nil, errors.New("auth: jwk exponent out of range")
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(e.Int64()),
	}, nil
}

var _ KeyProvider = (*JWKSKeyProvider)(nil)
