// Package gemini adapts Google's Gemini API (google.golang.org/genai) to the
// domain.Provider interface.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"

	"github.com/davidbz/quill/internal/domain"
	"github.com/davidbz/quill/internal/observability"
)

const continuationInstruction = "Continue the user's text. Reply with the continuation only."

// SupportedModels returns the list of models supported by the Gemini provider.
func SupportedModels() []string {
	return []string{
		"gemini-2.0-flash",
		"gemini-1.5-flash",
		"gemini-1.5-pro",
	}
}

// Provider implements the domain.Provider interface for Gemini.
type Provider struct {
	client       *genai.Client
	name         string
	defaultModel string
}

// NewProvider creates a new Gemini provider.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("Gemini API key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	defaultModel := config.Model
	if defaultModel == "" {
		defaultModel = SupportedModels()[0]
	}

	return &Provider{
		client:       client,
		name:         "gemini",
		defaultModel: defaultModel,
	}, nil
}

// Generate asks Gemini for a continuation and returns context + continuation.
func (p *Provider) Generate(ctx context.Context, opts *domain.GenerateOptions) (*domain.Generation, error) {
	if opts == nil {
		return nil, errors.New("options cannot be nil")
	}

	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling Gemini API", observability.String("gemini_model", model))

	result, err := p.client.Models.GenerateContent(ctx,
		model,
		genai.Text(opts.Context),
		p.toSDKConfig(opts),
	)
	if err != nil {
		logger.Error("Gemini API call failed", observability.Error(err))
		return nil, fmt.Errorf("Gemini API call failed: %w", err)
	}

	continuation := result.Text()

	gen := &domain.Generation{
		Text:     opts.Context + separator(opts.Context, continuation) + continuation,
		Model:    model,
		Provider: p.name,
	}

	if usage := result.UsageMetadata; usage != nil {
		gen.Usage = domain.Usage{
			PromptTokens:     int(usage.PromptTokenCount),
			CompletionTokens: int(usage.CandidatesTokenCount),
			TotalTokens:      int(usage.TotalTokenCount),
		}
	}

	return gen, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// IsModelSupported accepts any Gemini family model.
func (p *Provider) IsModelSupported(_ context.Context, model string) bool {
	return strings.HasPrefix(model, "gemini-")
}

// SupportedModels returns a list of all models this provider advertises.
func (p *Provider) SupportedModels(_ context.Context) []string {
	return SupportedModels()
}

func (p *Provider) toSDKConfig(opts *domain.GenerateOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(continuationInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(float32(opts.Temperature)),
		TopP:              genai.Ptr(float32(opts.TopP)),
	}

	if opts.MaxLength > 0 {
		cfg.MaxOutputTokens = int32(min(opts.MaxLength, math.MaxInt32))
	}

	if opts.StopSequence != "" {
		cfg.StopSequences = []string{opts.StopSequence}
	}

	return cfg
}

func separator(prompt, continuation string) string {
	if prompt == "" || continuation == "" ||
		strings.HasSuffix(prompt, " ") || strings.HasPrefix(continuation, " ") {
		return ""
	}
	return " "
}
