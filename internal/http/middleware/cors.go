package middleware

import (
	"context"
	"net/http"

	"github.com/rs/cors"

	"github.com/davidbz/quill/internal/config"
	"github.com/davidbz/quill/internal/observability"
)

// CORS creates a middleware that applies the configured cross-origin policy.
// The page and the OpenAPI document may be served from another origin, so the
// trace headers are exposed to scripts.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil {
		// Return no-op middleware if config is nil.
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	opts := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	if cfg.Debug {
		opts.Logger = corsLogger{}
	}

	c := cors.New(opts)

	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}

// corsLogger routes rs/cors decisions to the debug log.
type corsLogger struct{}

func (corsLogger) Printf(format string, args ...any) {
	observability.FromContext(context.Background()).Sugar().Debugf("cors: "+format, args...)
}
