package domain

import (
	"context"
	"time"
)

// Provider represents any text generation backend.
type Provider interface {
	// Generate continues the given context and returns the produced text.
	Generate(ctx context.Context, opts *GenerateOptions) (*Generation, error)

	// Name returns the provider identifier.
	Name() string

	// IsModelSupported checks if the provider supports the given model.
	IsModelSupported(ctx context.Context, model string) bool

	// SupportedModels returns the models this provider advertises.
	SupportedModels(ctx context.Context) []string
}

// ProviderRegistry manages available providers.
type ProviderRegistry interface {
	// Register adds a provider to the registry.
	Register(ctx context.Context, provider Provider) error

	// Get retrieves a provider by name.
	Get(ctx context.Context, providerName string) (Provider, error)

	// List returns all available provider names.
	List(ctx context.Context) ([]string, error)

	// GetByModel retrieves the provider owning the given model.
	GetByModel(ctx context.Context, model string) (Provider, error)
}

// Router determines which provider serves a request.
type Router interface {
	// Route returns the provider name for the model; empty model means default.
	Route(ctx context.Context, model string) (string, error)
}

// ResponseCache stores finished completions keyed by request fingerprint.
type ResponseCache interface {
	// Get returns ErrCacheMiss when nothing is stored under key.
	Get(ctx context.Context, key string) (*CompletionResponse, error)

	// Set stores resp under key for ttl.
	Set(ctx context.Context, key string, resp *CompletionResponse, ttl time.Duration) error
}
