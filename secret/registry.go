package secret

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ProviderConfig is passed to a ProviderFactory.
type ProviderConfig struct {
	// Lookup reads environment variables.
	Lookup LookupFunc

	// FileRoot confines the file provider. Empty allows any path.
	FileRoot string
}

// ProviderFactory creates a Provider from configuration.
type ProviderFactory func(cfg ProviderConfig) (Provider, error)

// Registry manages provider factories.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ProviderFactory
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]ProviderFactory)}
}

// Register adds a provider factory.
func (r *Registry) Register(name string, factory ProviderFactory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return errors.New("secret: invalid provider registration")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("secret: provider %q already registered", name)
	}
	r.providers[name] = factory
	return nil
}

// Create instantiates a provider by name.
func (r *Registry) Create(name string, cfg ProviderConfig) (Provider, error) {
	name = strings.TrimSpace(name)

	r.mu.RLock()
	factory, ok := r.providers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotRegistered, name)
	}
	return factory(cfg)
}

// CreateAll instantiates every registered provider.
func (r *Registry) CreateAll(cfg ProviderConfig) ([]Provider, error) {
	names := r.List()
	out := make([]Provider, 0, len(names))
	for _, name := range names {
		p, err := r.Create(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("secret: create provider %q: %w", name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// List returns registered provider names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in "env" and "file" providers.
var DefaultRegistry = func() *Registry {
	r := NewRegistry()
	_ = r.Register("env", func(cfg ProviderConfig) (Provider, error) {
		return NewEnvProvider(cfg.Lookup), nil
	})
	_ = r.Register("file", func(cfg ProviderConfig) (Provider, error) {
		return NewFileProvider(cfg.FileRoot), nil
	})
	return r
}()
