package echo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/quill/internal/domain"
	"github.com/davidbz/quill/internal/provider/echo"
)

func TestNewProvider(t *testing.T) {
	provider := echo.NewProvider()

	require.NotNil(t, provider)
	require.Equal(t, "echo", provider.Name())
	require.Equal(t, []string{"echo"}, provider.SupportedModels(context.Background()))
}

func TestGenerate_Success(t *testing.T) {
	provider := echo.NewProvider()

	gen, err := provider.Generate(context.Background(), &domain.GenerateOptions{
		Context:   "Hello world",
		MaxLength: 3,
	})

	require.NoError(t, err)
	require.Equal(t, "Hello world Hello world Hello", gen.Text)
	require.Equal(t, "echo", gen.Provider)
	require.Equal(t, 2, gen.Usage.PromptTokens)
	require.Equal(t, 3, gen.Usage.CompletionTokens)
	require.Equal(t, 5, gen.Usage.TotalTokens)
}

func TestGenerate_EmptyContext(t *testing.T) {
	provider := echo.NewProvider()

	gen, err := provider.Generate(context.Background(), &domain.GenerateOptions{MaxLength: 200})

	require.NoError(t, err)
	require.Empty(t, gen.Text)
	require.Zero(t, gen.Usage.TotalTokens)
}

func TestGenerate_ZeroLength(t *testing.T) {
	provider := echo.NewProvider()

	gen, err := provider.Generate(context.Background(), &domain.GenerateOptions{Context: "only prompt"})

	require.NoError(t, err)
	require.Equal(t, "only prompt", gen.Text)
}

func TestGenerate_NilOptions(t *testing.T) {
	provider := echo.NewProvider()

	gen, err := provider.Generate(context.Background(), nil)

	require.Error(t, err)
	require.Nil(t, gen)
	require.Contains(t, err.Error(), "options cannot be nil")
}

func TestIsModelSupported(t *testing.T) {
	provider := echo.NewProvider()
	ctx := context.Background()

	require.True(t, provider.IsModelSupported(ctx, "echo"))
	require.False(t, provider.IsModelSupported(ctx, "gpt-4"))
}
