// Package middleware holds the http.Handler wrappers applied to every route.
package middleware

import (
	"net/http"

	"github.com/davidbz/quill/internal/config"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares; the first one listed sees the request first.
//
//	handler := Chain(CORS(corsConfig), Trace())(mux)
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// BuildMiddlewareChain composes the server chain: CORS -> Trace -> Recover.
// Recover sits inside Trace so a recovered panic is logged with the request IDs.
func BuildMiddlewareChain(corsConfig *config.CORSConfig) Middleware {
	return Chain(
		CORS(corsConfig),
		Trace(),
		Recover(),
	)
}
