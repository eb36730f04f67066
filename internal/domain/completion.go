package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/davidbz/quill/internal/observability"
)

// Settings carries the server-side generation defaults.
type Settings struct {
	DefaultResponseLength int
	MaxResponseLength     int
	StopSequence          string
	CacheTTL              time.Duration
}

// CompletionService turns /api/completion requests into provider calls.
type CompletionService struct {
	registry ProviderRegistry
	router   Router
	cache    ResponseCache
	settings Settings
}

// NewCompletionService creates a new completion service (DI constructor).
// cache may be nil, in which case caching is disabled.
func NewCompletionService(
	registry ProviderRegistry,
	router Router,
	cache ResponseCache,
	settings Settings,
) *CompletionService {
	if settings.DefaultResponseLength <= 0 {
		settings.DefaultResponseLength = DefaultResponseLength
	}
	if settings.MaxResponseLength <= 0 {
		settings.MaxResponseLength = MaxResponseLength
	}

	return &CompletionService{
		registry: registry,
		router:   router,
		cache:    cache,
		settings: settings,
	}
}

// Complete generates text for req and reports how long generation took.
func (s *CompletionService) Complete(
	ctx context.Context,
	req *CompletionRequest,
) (*CompletionResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if req.ResponseLength > s.settings.MaxResponseLength {
		return nil, fmt.Errorf("%w: response_length %d exceeds %d",
			ErrInvalidRequest, req.ResponseLength, s.settings.MaxResponseLength)
	}

	providerName, err := s.router.Route(ctx, req.Model)
	if err != nil {
		return nil, fmt.Errorf("provider routing failed: %w", err)
	}

	provider, err := s.registry.Get(ctx, providerName)
	if err != nil {
		return nil, fmt.Errorf("provider not found: %w", err)
	}

	ctx = observability.WithProvider(ctx, providerName)
	logger := observability.FromContext(ctx)

	opts := s.buildOptions(req)
	start := time.Now()

	cacheKey := ""
	if s.cache != nil {
		cacheKey = CacheKey(providerName, opts, req.ShouldRemoveInput())

		cached, cacheErr := s.cache.Get(ctx, cacheKey)
		switch {
		case cacheErr == nil && cached != nil:
			logger.Info("cache HIT - returning cached response",
				observability.String("cache_key", cacheKey))
			return &CompletionResponse{
				GeneratedText: cached.GeneratedText,
				Duration:      time.Since(start).Milliseconds(),
			}, nil
		case cacheErr != nil && !errors.Is(cacheErr, ErrCacheMiss):
			logger.Warn("cache get failed, continuing without cache",
				observability.Error(cacheErr))
		default:
			logger.Debug("cache MISS - calling provider")
		}
	}

	generation, err := provider.Generate(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	text := generation.Text
	if req.ShouldRemoveInput() {
		text = RemoveInput(text, req.Context)
	}
	text = TruncateAtStop(text, req.Context, opts.StopSequence)

	response := &CompletionResponse{
		GeneratedText: text,
		Duration:      time.Since(start).Milliseconds(),
	}

	logger.Info("generation completed",
		observability.Int64("duration_ms", response.Duration),
		observability.Int("completion_tokens", generation.Usage.CompletionTokens),
	)

	if s.cache != nil {
		if setErr := s.cache.Set(ctx, cacheKey, response, s.settings.CacheTTL); setErr != nil {
			logger.Warn("failed to store in cache", observability.Error(setErr))
		}
	}

	return response, nil
}

func (s *CompletionService) buildOptions(req *CompletionRequest) *GenerateOptions {
	maxLength := req.ResponseLength
	if maxLength <= 0 {
		maxLength = s.settings.DefaultResponseLength
	}

	return &GenerateOptions{
		Model:        req.Model,
		Context:      req.Context,
		MaxLength:    maxLength,
		Temperature:  req.Temp,
		TopP:         req.TopP,
		StopSequence: s.settings.StopSequence,
	}
}

// RemoveInput deletes every occurrence of prompt from text.
func RemoveInput(text, prompt string) string {
	if prompt == "" {
		return text
	}
	return strings.TrimLeftFunc(strings.ReplaceAll(text, prompt, ""), unicode.IsSpace)
}

// TruncateAtStop cuts text at the first stop sequence. When text still starts
// with the prompt the search begins after it.
func TruncateAtStop(text, prompt, stop string) string {
	if stop == "" {
		return text
	}

	offset := 0
	if prompt != "" && strings.HasPrefix(text, prompt) {
		offset = len(prompt)
	}

	if idx := strings.Index(text[offset:], stop); idx >= 0 {
		return text[:offset+idx]
	}
	return text
}

// CacheKey fingerprints everything that influences a generation.
func CacheKey(providerName string, opts *GenerateOptions, removeInput bool) string {
	fingerprint := struct {
		Provider    string  `json:"provider"`
		Model       string  `json:"model"`
		Context     string  `json:"context"`
		MaxLength   int     `json:"max_length"`
		Temperature float64 `json:"temperature"`
		TopP        float64 `json:"top_p"`
		Stop        string  `json:"stop"`
		RemoveInput bool    `json:"remove_input"`
	}{
		Provider:    providerName,
		Model:       opts.Model,
		Context:     opts.Context,
		MaxLength:   opts.MaxLength,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		Stop:        opts.StopSequence,
		RemoveInput: removeInput,
	}

	// Marshalling a struct of plain fields can't fail.
	data, _ := json.Marshal(fingerprint)
	hash := sha256.Sum256(data)
	return "completion:" + hex.EncodeToString(hash[:])
}
