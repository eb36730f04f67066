// Package echo provides a testing provider that continues a context by repeating it.
// It implements the domain.Provider interface without making external API calls,
// providing deterministic responses for testing and development purposes.
package echo

import (
	"context"
	"errors"
	"strings"

	"github.com/davidbz/quill/internal/domain"
	"github.com/davidbz/quill/internal/observability"
)

const (
	providerName = "echo"
	modelName    = "echo"
)

// Provider implements the domain.Provider interface for echo testing.
type Provider struct {
	name            string
	supportedModels map[string]bool
}

// NewProvider creates a new echo provider.
// No configuration is required as this provider operates entirely in-memory.
func NewProvider() *Provider {
	return &Provider{
		name: providerName,
		supportedModels: map[string]bool{
			modelName: true,
		},
	}
}

// Generate returns the context followed by its own words, cycled until
// MaxLength words have been appended.
func (p *Provider) Generate(ctx context.Context, opts *domain.GenerateOptions) (*domain.Generation, error) {
	if opts == nil {
		return nil, errors.New("options cannot be nil")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("echoing context")

	words := strings.Fields(opts.Context)
	continuation := cycleWords(words, opts.MaxLength)

	text := opts.Context
	if len(continuation) > 0 {
		text = strings.TrimRight(opts.Context, " ") + " " + strings.Join(continuation, " ")
	}

	logger.Debug("echo completed",
		observability.Int("prompt_tokens", len(words)),
		observability.Int("completion_tokens", len(continuation)),
	)

	return &domain.Generation{
		Text:     text,
		Model:    modelName,
		Provider: p.name,
		Usage: domain.Usage{
			PromptTokens:     len(words),
			CompletionTokens: len(continuation),
			TotalTokens:      len(words) + len(continuation),
		},
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// IsModelSupported checks if the provider supports the given model.
func (p *Provider) IsModelSupported(_ context.Context, model string) bool {
	return p.supportedModels[model]
}

// SupportedModels returns a list of all models this provider supports.
func (p *Provider) SupportedModels(_ context.Context) []string {
	models := make([]string, 0, len(p.supportedModels))
	for model := range p.supportedModels {
		models = append(models, model)
	}
	return models
}

func cycleWords(words []string, n int) []string {
	if len(words) == 0 || n <= 0 {
		return nil
	}

	out := make([]string, n)
	for i := range out {
		out[i] = words[i%len(words)]
	}
	return out
}
