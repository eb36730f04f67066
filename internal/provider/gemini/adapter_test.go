package gemini_test

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/quill/internal/domain"
	"github.com/davidbz/quill/internal/provider/gemini"
)

func TestNewProvider_MissingAPIKey(t *testing.T) {
	provider, err := gemini.NewProvider(context.Background(), gemini.Config{})

	require.Error(t, err)
	require.Nil(t, provider)
	require.Contains(t, err.Error(), "Gemini API key is required")
}

func TestProvider_Models(t *testing.T) {
	provider, err := gemini.NewProvider(context.Background(), gemini.Config{APIKey: "test-key"})
	require.NoError(t, err)

	ctx := context.Background()
	require.Equal(t, "gemini", provider.Name())
	require.True(t, provider.IsModelSupported(ctx, "gemini-1.5-pro"))
	require.True(t, provider.IsModelSupported(ctx, "gemini-2.5-flash"))
	require.False(t, provider.IsModelSupported(ctx, "gpt-4"))
	require.Equal(t, gemini.SupportedModels(), provider.SupportedModels(ctx))
}

func TestProvider_Generate_NilOptions(t *testing.T) {
	provider, err := gemini.NewProvider(context.Background(), gemini.Config{APIKey: "test-key"})
	require.NoError(t, err)

	gen, err := provider.Generate(context.Background(), nil)

	require.Error(t, err)
	require.Nil(t, gen)
}

func TestProvider_Generate_AgainstFakeAPI(t *testing.T) {
	var path string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "and the night was quiet."}]}}],
			"usageMetadata": {"promptTokenCount": 4, "candidatesTokenCount": 6, "totalTokenCount": 10}
		}`))
	}))
	defer server.Close()

	provider, err := gemini.NewProvider(context.Background(), gemini.Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	gen, err := provider.Generate(context.Background(), &domain.GenerateOptions{
		Context:     "The lamp was lit",
		MaxLength:   50,
		Temperature: 0.5,
		TopP:        0.9,
	})

	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "gemini-2.0-flash:generateContent"), path)
	require.Equal(t, "The lamp was lit and the night was quiet.", gen.Text)
	require.Equal(t, 10, gen.Usage.TotalTokens)
}

func TestProvider_Generate_ClampsOutputTokens(t *testing.T) {
	var captured struct {
		GenerationConfig struct {
			MaxOutputTokens int64    `json:"maxOutputTokens"`
			StopSequences   []string `json:"stopSequences"`
		} `json:"generationConfig"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "ok"}]}}]}`))
	}))
	defer server.Close()

	provider, err := gemini.NewProvider(context.Background(), gemini.Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), &domain.GenerateOptions{
		Context:      "x",
		MaxLength:    4294967301,
		StopSequence: ".",
	})

	require.NoError(t, err)
	require.Equal(t, int64(math.MaxInt32), captured.GenerationConfig.MaxOutputTokens)
	require.Equal(t, []string{"."}, captured.GenerationConfig.StopSequences)
}
