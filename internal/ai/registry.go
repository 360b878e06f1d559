package ai

import (
	"sync"
)

// ProviderFactory creates provider instances
type ProviderFactory interface {
	// Create creates a new provider instance with the given config
	Create(config *ProviderConfig) (Provider, error)

	// Type returns the provider type this factory creates
	Type() string

	// DefaultConfig returns a default configuration
	DefaultConfig() *ProviderConfig
}

// Registry holds providers by name in registration order
type Registry struct {
	mu              sync.RWMutex
	order           []string
	providers       map[string]Provider
	defaultProvider string
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider. The first registered provider becomes the default.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; exists {
		return NewProviderError(ErrTypeRegistration, "provider already registered", name)
	}

	r.providers[name] = p
	r.order = append(r.order, name)
	if r.defaultProvider == "" {
		r.defaultProvider = name
	}
	return nil
}

// RegisterFactory builds a provider from factory and registers it
func (r *Registry) RegisterFactory(factory ProviderFactory, config *ProviderConfig) error {
	if config == nil {
		config = factory.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return err
	}

	p, err := factory.Create(config)
	if err != nil {
		return NewProviderErrorWithCause(ErrTypeRegistration, "failed to create provider", factory.Type(), err)
	}
	return r.Register(p)
}

// Get retrieves a provider by name
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.providers[name]
	if !exists {
		return nil, NewProviderError(ErrTypeNotFound, "provider not registered", name)
	}
	return p, nil
}

// List returns provider names in registration order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// IsRegistered checks if a provider is registered
func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.providers[name]
	return exists
}

// Default returns the default provider
func (r *Registry) Default() (Provider, error) {
	r.mu.RLock()
	name := r.defaultProvider
	r.mu.RUnlock()

	if name == "" {
		return nil, NewProviderError(ErrTypeConfiguration, "no default provider set", "")
	}
	return r.Get(name)
}

// SetDefault sets the default provider
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return NewProviderError(ErrTypeNotFound, "provider not registered", name)
	}
	r.defaultProvider = name
	return nil
}
