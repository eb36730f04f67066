package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/quill/internal/domain"
	"github.com/davidbz/quill/internal/mocks"
)

func boolPtr(b bool) *bool { return &b }

func TestCompletionService_Complete(t *testing.T) {
	t.Run("should generate text through the routed provider", func(t *testing.T) {
		registry := mocks.NewMockProviderRegistry(t)
		router := mocks.NewMockRouter(t)
		provider := mocks.NewMockProvider(t)

		router.On("Route", mock.Anything, "").Return("markov", nil)
		registry.On("Get", mock.Anything, "markov").Return(provider, nil)
		provider.On("Generate", mock.Anything, &domain.GenerateOptions{
			Context:     "Hello",
			MaxLength:   200,
			Temperature: 0.8,
			TopP:        0.9,
		}).Return(&domain.Generation{Text: "Hello there"}, nil)

		service := domain.NewCompletionService(registry, router, nil, domain.Settings{})

		resp, err := service.Complete(context.Background(), &domain.CompletionRequest{
			Context:        "Hello",
			TopP:           0.9,
			Temp:           0.8,
			ResponseLength: 200,
		})

		require.NoError(t, err)
		require.Equal(t, "Hello there", resp.GeneratedText)
		require.GreaterOrEqual(t, resp.Duration, int64(0))
	})

	t.Run("should use default response length when unset", func(t *testing.T) {
		registry := mocks.NewMockProviderRegistry(t)
		router := mocks.NewMockRouter(t)
		provider := mocks.NewMockProvider(t)

		router.On("Route", mock.Anything, "").Return("echo", nil)
		registry.On("Get", mock.Anything, "echo").Return(provider, nil)
		provider.On("Generate", mock.Anything, mock.MatchedBy(func(opts *domain.GenerateOptions) bool {
			return opts.MaxLength == 64
		})).Return(&domain.Generation{Text: "ok"}, nil)

		service := domain.NewCompletionService(registry, router, nil, domain.Settings{DefaultResponseLength: 64})

		_, err := service.Complete(context.Background(), &domain.CompletionRequest{Context: "x"})
		require.NoError(t, err)
	})

	t.Run("should strip the prompt when remove_input is set", func(t *testing.T) {
		registry := mocks.NewMockProviderRegistry(t)
		router := mocks.NewMockRouter(t)
		provider := mocks.NewMockProvider(t)

		router.On("Route", mock.Anything, "").Return("echo", nil)
		registry.On("Get", mock.Anything, "echo").Return(provider, nil)
		provider.On("Generate", mock.Anything, mock.Anything).
			Return(&domain.Generation{Text: "Once upon a time there was a fox"}, nil)

		service := domain.NewCompletionService(registry, router, nil, domain.Settings{})

		resp, err := service.Complete(context.Background(), &domain.CompletionRequest{
			Context:     "Once upon a time",
			RemoveInput: boolPtr(true),
		})

		require.NoError(t, err)
		require.Equal(t, "there was a fox", resp.GeneratedText)
	})

	t.Run("should cut output at the stop sequence", func(t *testing.T) {
		registry := mocks.NewMockProviderRegistry(t)
		router := mocks.NewMockRouter(t)
		provider := mocks.NewMockProvider(t)

		router.On("Route", mock.Anything, "").Return("echo", nil)
		registry.On("Get", mock.Anything, "echo").Return(provider, nil)
		provider.On("Generate", mock.Anything, mock.MatchedBy(func(opts *domain.GenerateOptions) bool {
			return opts.StopSequence == "."
		})).Return(&domain.Generation{Text: "Dr. Smith said hi. Then left."}, nil)

		service := domain.NewCompletionService(registry, router, nil, domain.Settings{StopSequence: "."})

		resp, err := service.Complete(context.Background(), &domain.CompletionRequest{Context: "Dr. Smith"})

		require.NoError(t, err)
		require.Equal(t, "Dr. Smith said hi", resp.GeneratedText)
	})

	t.Run("should remove the prompt before cutting at the stop sequence", func(t *testing.T) {
		tests := []struct {
			name   string
			prompt string
			stop   string
			output string
			want   string
		}{
			{name: "removal joins a stop sequence", prompt: "P", stop: "ab", output: "aPb", want: ""},
			{name: "stop inside the prompt", prompt: "Hi.", stop: ".", output: "Hi. I am here. Bye", want: "I am here"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				registry := mocks.NewMockProviderRegistry(t)
				router := mocks.NewMockRouter(t)
				provider := mocks.NewMockProvider(t)

				router.On("Route", mock.Anything, "").Return("echo", nil)
				registry.On("Get", mock.Anything, "echo").Return(provider, nil)
				provider.On("Generate", mock.Anything, mock.Anything).
					Return(&domain.Generation{Text: tt.output}, nil)

				service := domain.NewCompletionService(registry, router, nil, domain.Settings{StopSequence: tt.stop})

				resp, err := service.Complete(context.Background(), &domain.CompletionRequest{
					Context:     tt.prompt,
					RemoveInput: boolPtr(true),
				})

				require.NoError(t, err)
				require.Equal(t, tt.want, resp.GeneratedText)
			})
		}
	})

	t.Run("should reject response lengths above the limit", func(t *testing.T) {
		service := domain.NewCompletionService(
			mocks.NewMockProviderRegistry(t), mocks.NewMockRouter(t), nil, domain.Settings{MaxResponseLength: 1000})

		resp, err := service.Complete(context.Background(), &domain.CompletionRequest{
			Context:        "x",
			ResponseLength: 1001,
		})

		require.ErrorIs(t, err, domain.ErrInvalidRequest)
		require.Nil(t, resp)
	})

	t.Run("should default the limit to 65535", func(t *testing.T) {
		service := domain.NewCompletionService(
			mocks.NewMockProviderRegistry(t), mocks.NewMockRouter(t), nil, domain.Settings{})

		_, err := service.Complete(context.Background(), &domain.CompletionRequest{ResponseLength: 65536})

		require.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("should return error when request is nil", func(t *testing.T) {
		service := domain.NewCompletionService(
			mocks.NewMockProviderRegistry(t), mocks.NewMockRouter(t), nil, domain.Settings{})

		resp, err := service.Complete(context.Background(), nil)

		require.Error(t, err)
		require.Nil(t, resp)
		require.Contains(t, err.Error(), "request cannot be nil")
	})

	t.Run("should wrap routing failures", func(t *testing.T) {
		router := mocks.NewMockRouter(t)
		router.On("Route", mock.Anything, "gpt-9").Return("", domain.ErrNoProvider)

		service := domain.NewCompletionService(mocks.NewMockProviderRegistry(t), router, nil, domain.Settings{})

		resp, err := service.Complete(context.Background(), &domain.CompletionRequest{Model: "gpt-9"})

		require.ErrorIs(t, err, domain.ErrNoProvider)
		require.Nil(t, resp)
	})

	t.Run("should wrap provider failures", func(t *testing.T) {
		registry := mocks.NewMockProviderRegistry(t)
		router := mocks.NewMockRouter(t)
		provider := mocks.NewMockProvider(t)
		boom := errors.New("boom")

		router.On("Route", mock.Anything, "").Return("echo", nil)
		registry.On("Get", mock.Anything, "echo").Return(provider, nil)
		provider.On("Generate", mock.Anything, mock.Anything).Return(nil, boom)

		service := domain.NewCompletionService(registry, router, nil, domain.Settings{})

		resp, err := service.Complete(context.Background(), &domain.CompletionRequest{Context: "x"})

		require.ErrorIs(t, err, boom)
		require.Contains(t, err.Error(), "generation failed")
		require.Nil(t, resp)
	})
}

func TestCompletionService_Cache(t *testing.T) {
	t.Run("should return cached text without calling the provider", func(t *testing.T) {
		registry := mocks.NewMockProviderRegistry(t)
		router := mocks.NewMockRouter(t)
		provider := mocks.NewMockProvider(t)
		cache := mocks.NewMockResponseCache(t)

		router.On("Route", mock.Anything, "").Return("echo", nil)
		registry.On("Get", mock.Anything, "echo").Return(provider, nil)
		cache.On("Get", mock.Anything, mock.AnythingOfType("string")).
			Return(&domain.CompletionResponse{GeneratedText: "cached", Duration: 999}, nil)

		service := domain.NewCompletionService(registry, router, cache, domain.Settings{})

		resp, err := service.Complete(context.Background(), &domain.CompletionRequest{Context: "x"})

		require.NoError(t, err)
		require.Equal(t, "cached", resp.GeneratedText)
		require.Less(t, resp.Duration, int64(999))
	})

	t.Run("should store fresh generations with configured ttl", func(t *testing.T) {
		registry := mocks.NewMockProviderRegistry(t)
		router := mocks.NewMockRouter(t)
		provider := mocks.NewMockProvider(t)
		cache := mocks.NewMockResponseCache(t)

		router.On("Route", mock.Anything, "").Return("echo", nil)
		registry.On("Get", mock.Anything, "echo").Return(provider, nil)
		provider.On("Generate", mock.Anything, mock.Anything).Return(&domain.Generation{Text: "fresh"}, nil)
		cache.On("Get", mock.Anything, mock.Anything).Return(nil, domain.ErrCacheMiss)
		cache.On("Set", mock.Anything, mock.Anything, mock.MatchedBy(func(resp *domain.CompletionResponse) bool {
			return resp.GeneratedText == "fresh"
		}), time.Minute).Return(nil)

		service := domain.NewCompletionService(registry, router, cache, domain.Settings{CacheTTL: time.Minute})

		resp, err := service.Complete(context.Background(), &domain.CompletionRequest{Context: "x"})

		require.NoError(t, err)
		require.Equal(t, "fresh", resp.GeneratedText)
	})

	t.Run("should ignore cache failures", func(t *testing.T) {
		registry := mocks.NewMockProviderRegistry(t)
		router := mocks.NewMockRouter(t)
		provider := mocks.NewMockProvider(t)
		cache := mocks.NewMockResponseCache(t)

		router.On("Route", mock.Anything, "").Return("echo", nil)
		registry.On("Get", mock.Anything, "echo").Return(provider, nil)
		provider.On("Generate", mock.Anything, mock.Anything).Return(&domain.Generation{Text: "fresh"}, nil)
		cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
		cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))

		service := domain.NewCompletionService(registry, router, cache, domain.Settings{})

		resp, err := service.Complete(context.Background(), &domain.CompletionRequest{Context: "x"})

		require.NoError(t, err)
		require.Equal(t, "fresh", resp.GeneratedText)
	})
}

func TestRemoveInput(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		prompt string
		want   string
	}{
		{name: "prefix removed", text: "Hello world, friend", prompt: "Hello world", want: ", friend"},
		{name: "leading space trimmed", text: "Hello  there", prompt: "Hello", want: "there"},
		{name: "every occurrence removed", text: "ab cd ab", prompt: "ab", want: "cd "},
		{name: "empty prompt keeps text", text: "same", prompt: "", want: "same"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, domain.RemoveInput(tt.text, tt.prompt))
		})
	}
}

func TestTruncateAtStop(t *testing.T) {
	require.Equal(t, "abc def", domain.TruncateAtStop("abc def\nghi", "abc", "\n"))
	require.Equal(t, "a.b c", domain.TruncateAtStop("a.b c. d", "a.b", "."))
	require.Equal(t, "no stop", domain.TruncateAtStop("no stop", "", ""))
	require.Equal(t, "x", domain.TruncateAtStop("x|y", "other", "|"))
}

func TestCacheKey(t *testing.T) {
	base := &domain.GenerateOptions{Context: "hi", MaxLength: 200, Temperature: 0.5, TopP: 0.9}
	other := *base
	other.TopP = 0.8

	key := domain.CacheKey("markov", base, false)

	require.Equal(t, key, domain.CacheKey("markov", base, false))
	require.NotEqual(t, key, domain.CacheKey("markov", &other, false))
	require.NotEqual(t, key, domain.CacheKey("markov", base, true))
	require.NotEqual(t, key, domain.CacheKey("echo", base, false))
	require.Regexp(t, `^completion:[0-9a-f]{64}$`, key)
}
