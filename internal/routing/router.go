package routing

import (
	"context"
	"fmt"

	"github.com/davidbz/quill/internal/domain"
)

// SimpleRouter picks a provider by model, falling back to a default provider.
type SimpleRouter struct {
	registry        domain.ProviderRegistry
	defaultProvider string
}

// NewRouter creates a new router.
func NewRouter(registry domain.ProviderRegistry, defaultProvider string) *SimpleRouter {
	return &SimpleRouter{
		registry:        registry,
		defaultProvider: defaultProvider,
	}
}

// Route selects a provider for the model. An empty model selects the default
// provider, or the first registered one when the default is unavailable.
func (r *SimpleRouter) Route(ctx context.Context, model string) (string, error) {
	if model != "" {
		provider, err := r.registry.GetByModel(ctx, model)
		if err != nil {
			return "", fmt.Errorf("%w: model %s: %w", domain.ErrNoProvider, model, err)
		}
		return provider.Name(), nil
	}

	providerNames, err := r.registry.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list providers: %w", err)
	}

	if len(providerNames) == 0 {
		return "", domain.ErrNoProvider
	}

	for _, name := range providerNames {
		if name == r.defaultProvider {
			return name, nil
		}
	}

	return providerNames[0], nil
}
