package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/davidbz/quill/internal/domain"
)

// Registry keeps the generation backends by name and by advertised model.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]domain.Provider
	names   []string          // sorted
	byModel map[string]string // model -> provider name, first registration wins
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]domain.Provider),
		byModel: make(map[string]string),
	}
}

// Register adds a provider. Names must be unique.
func (r *Registry) Register(ctx context.Context, provider domain.Provider) error {
	if provider == nil {
		return errors.New("provider cannot be nil")
	}

	name := provider.Name()
	if name == "" {
		return errors.New("provider name cannot be empty")
	}

	models := provider.SupportedModels(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}

	r.byName[name] = provider
	pos, _ := slices.BinarySearch(r.names, name)
	r.names = slices.Insert(r.names, pos, name)

	for _, model := range models {
		if _, taken := r.byModel[model]; !taken {
			r.byModel[model] = name
		}
	}

	return nil
}

// Get retrieves a provider by name.
func (r *Registry) Get(_ context.Context, providerName string) (domain.Provider, error) {
	if providerName == "" {
		return nil, errors.New("provider name cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.byName[providerName]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", providerName)
	}

	return provider, nil
}

// List returns the registered provider names in lexical order.
func (r *Registry) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.names), nil
}

// GetByModel finds the provider advertising model, then asks each provider in
// name order whether it accepts an unlisted model (fine-tunes, new releases).
func (r *Registry) GetByModel(ctx context.Context, model string) (domain.Provider, error) {
	if model == "" {
		return nil, errors.New("model cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if name, ok := r.byModel[model]; ok {
		return r.byName[name], nil
	}

	for _, name := range r.names {
		if provider := r.byName[name]; provider.IsModelSupported(ctx, model) {
			return provider, nil
		}
	}

	return nil, fmt.Errorf("no provider found for model: %s", model)
}
