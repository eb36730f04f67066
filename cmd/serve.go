package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/davidbz/quill/internal/cache/redis"
	"github.com/davidbz/quill/internal/config"
	"github.com/davidbz/quill/internal/domain"
	"github.com/davidbz/quill/internal/http"
	"github.com/davidbz/quill/internal/http/middleware"
	"github.com/davidbz/quill/internal/observability"
	"github.com/davidbz/quill/internal/provider/echo"
	"github.com/davidbz/quill/internal/provider/gemini"
	"github.com/davidbz/quill/internal/provider/markov"
	"github.com/davidbz/quill/internal/provider/openai"
	"github.com/davidbz/quill/internal/provider/registry"
	"github.com/davidbz/quill/internal/routing"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the completion HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := buildContainer(cfg)
			if err != nil {
				return err
			}
			return container.Invoke(func(server *http.Server, serverCfg *config.ServerConfig, cacheClient *goredis.Client) error {
				return runServer(cmd.Context(), server, serverCfg, cacheClient)
			})
		},
	}
}

// providers collects the generation backends; optional ones are only
// present when configured.
type providers struct {
	dig.In

	Echo   *echo.Provider
	Markov *markov.Provider
	OpenAI *openai.Provider `optional:"true"`
	Gemini *gemini.Provider `optional:"true"`
}

type constructor struct {
	name string
	fn   any
}

func buildContainer(cfg *config.Config) (*dig.Container, error) {
	container := dig.New()

	constructors := []constructor{
		// Configuration
		{"config", func() *config.Config { return cfg }},
		{"config dependencies", config.ParseDependenciesConfig},

		// Providers
		{"provider registry", func() domain.ProviderRegistry { return registry.NewRegistry() }},
		{"echo provider", echo.NewProvider},
		{"markov provider", func() *markov.Provider { return markov.NewProvider() }},

		// Routing and cache
		{"router", func(reg domain.ProviderRegistry, gen *config.GenerationConfig) domain.Router {
			return routing.NewRouter(reg, gen.Provider)
		}},
		{"redis client", newCacheClient},
		{"response cache", newResponseCache},
		{"completion settings", newSettings},

		// Domain services
		{"completion service", domain.NewCompletionService},

		// HTTP layer
		{"middleware chain", middleware.BuildMiddlewareChain},
		{"HTTP handler", http.NewHandler},
		{"HTTP server", http.NewServer},
	}

	if cfg.OpenAI.APIKey != "" {
		constructors = append(constructors, constructor{"OpenAI provider", func(c *openai.Config) (*openai.Provider, error) {
			return openai.NewProvider(*c)
		}})
	}

	if cfg.Gemini.APIKey != "" {
		constructors = append(constructors, constructor{"Gemini provider", func(c *gemini.Config) (*gemini.Provider, error) {
			return gemini.NewProvider(context.Background(), *c)
		}})
	}

	for _, c := range constructors {
		if err := container.Provide(c.fn); err != nil {
			return nil, fmt.Errorf("failed to provide %s: %w", c.name, err)
		}
	}

	// Register providers with registry (invoked for side effects)
	if err := container.Invoke(registerProviders); err != nil {
		return nil, fmt.Errorf("failed to register providers: %w", err)
	}

	return container, nil
}

func registerProviders(reg domain.ProviderRegistry, p providers) error {
	ctx := context.Background()

	all := []domain.Provider{p.Markov, p.Echo}
	if p.OpenAI != nil {
		all = append(all, p.OpenAI)
	}
	if p.Gemini != nil {
		all = append(all, p.Gemini)
	}

	for _, provider := range all {
		if err := reg.Register(ctx, provider); err != nil {
			return fmt.Errorf("failed to register %s provider: %w", provider.Name(), err)
		}
		observability.FromContext(ctx).Info("provider registered",
			observability.String("provider", provider.Name()),
			observability.Strings("models", provider.SupportedModels(ctx)),
		)
	}

	return nil
}

// newCacheClient returns nil when no Redis address is configured.
func newCacheClient(cfg *redis.Config) *goredis.Client {
	if !cfg.Enabled() {
		return nil
	}
	return redis.NewClient(*cfg)
}

func newResponseCache(client *goredis.Client) domain.ResponseCache {
	if client == nil {
		return nil
	}
	return redis.NewResponseCache(client)
}

func newSettings(gen *config.GenerationConfig, cache *redis.Config) domain.Settings {
	return domain.Settings{
		DefaultResponseLength: gen.TokenMaxLength,
		MaxResponseLength:     gen.MaxResponseLength,
		StopSequence:          gen.StopSequence,
		CacheTTL:              cache.TTL,
	}
}

func runServer(
	ctx context.Context,
	server *http.Server,
	cfg *config.ServerConfig,
	cacheClient *goredis.Client,
) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := observability.FromContext(ctx)

	if cacheClient != nil {
		defer cacheClient.Close()
		if err := cacheClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, responses will not be cached", observability.Error(err))
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return <-errCh
}
