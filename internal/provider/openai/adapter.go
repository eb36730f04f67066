// Package openai provides an adapter for the OpenAI API using the official SDK.
// It implements the domain.Provider interface by asking a chat model to
// continue the supplied context.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/quill/internal/domain"
	"github.com/davidbz/quill/internal/observability"
)

const continuationPrompt = "Continue the user's text. Reply with the continuation only, without repeating the text."

// Provider implements the domain.Provider interface for OpenAI.
type Provider struct {
	client       openai.Client
	name         string
	defaultModel string
}

// NewProvider creates a new OpenAI provider.
func NewProvider(config Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.Organization != "" {
		opts = append(opts, option.WithOrganization(config.Organization))
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	if config.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(config.MaxRetries))
	}

	defaultModel := config.Model
	if defaultModel == "" {
		defaultModel = SupportedModels()[0]
	}

	return &Provider{
		client:       openai.NewClient(opts...),
		name:         "openai",
		defaultModel: defaultModel,
	}, nil
}

// Generate asks the model for a continuation and returns context + continuation.
func (p *Provider) Generate(ctx context.Context, opts *domain.GenerateOptions) (*domain.Generation, error) {
	if opts == nil {
		return nil, errors.New("options cannot be nil")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI API")

	params := p.toSDKParams(opts)

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("OpenAI API call failed", observability.Error(err))
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	logger.Debug("OpenAI API call succeeded",
		observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)),
	)

	return p.toGeneration(opts.Context, resp), nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// IsModelSupported accepts the advertised models and fine-tunes of them.
func (p *Provider) IsModelSupported(_ context.Context, model string) bool {
	return isChatModel(model)
}

// SupportedModels returns a list of all models this provider supports.
func (p *Provider) SupportedModels(_ context.Context) []string {
	return SupportedModels()
}

// toSDKParams converts generation options to SDK ChatCompletionNewParams.
func (p *Provider) toSDKParams(opts *domain.GenerateOptions) openai.ChatCompletionNewParams {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(continuationPrompt),
			openai.UserMessage(opts.Context),
		},
		Temperature: openai.Float(opts.Temperature),
		TopP:        openai.Float(opts.TopP),
	}

	if opts.MaxLength > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxLength))
	}

	if opts.StopSequence != "" {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: []string{opts.StopSequence}}
	}

	return params
}

// toGeneration converts SDK response to a domain generation.
func (p *Provider) toGeneration(prompt string, resp *openai.ChatCompletion) *domain.Generation {
	continuation := ""
	if len(resp.Choices) > 0 {
		continuation = resp.Choices[0].Message.Content
	}

	return &domain.Generation{
		Text:     joinContinuation(prompt, continuation),
		Model:    string(resp.Model),
		Provider: p.name,
		Usage: domain.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
}

// joinContinuation glues the continuation to the prompt with a single space
// unless one side already carries whitespace.
func joinContinuation(prompt, continuation string) string {
	if prompt == "" || continuation == "" {
		return prompt + continuation
	}
	if strings.HasSuffix(prompt, " ") || strings.HasSuffix(prompt, "\n") ||
		strings.HasPrefix(continuation, " ") || strings.HasPrefix(continuation, "\n") {
		return prompt + continuation
	}
	return prompt + " " + continuation
}
