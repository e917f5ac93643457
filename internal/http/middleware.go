package http

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mvoss/ttstats/internal/league"
)

// Middleware defines the standard signature for an HTTP middleware.
type Middleware func(http.Handler) http.Handler

// Chain combines multiple middlewares into a single handler.
// The middlewares are applied in the order they are passed.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// contextKey is a custom type to avoid key collisions in context.
type contextKey string

const (
	dryRunKey contextKey = "dryRun"
	actorKey  contextKey = "actor"
)

// paramsMiddleware handles common query parameters like 'verbose' and 'dry_run'.
func paramsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Info("incoming request", "method", r.Method, "url", r.URL.String())
		// Handle 'verbose' for request-scoped verbose logging.
		if r.URL.Query().Get("verbose") == "true" {
			originalLevel := log.GetLevel()
			log.SetLevel(log.DebugLevel)
			defer log.SetLevel(originalLevel)
		}

		// Handle 'dry_run' and add it to the request context.
		isDryRun := r.URL.Query().Get("dry_run") == "true"
		ctx := context.WithValue(r.Context(), dryRunKey, isDryRun)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actorMiddleware resolves the caller identity from request headers and
// stores it in the context. Identity is carried explicitly through the
// request, never through ambient globals. An upstream gateway is expected
// to authenticate and set these headers; absent headers mean an anonymous
// caller, who sees no matches.
func actorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := league.Actor{
			PlayerID: r.Header.Get("X-Player-ID"),
			Staff:    r.Header.Get("X-Staff") == "true",
		}
		actor.Authenticated = actor.PlayerID != "" || actor.Staff

		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func isDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(dryRunKey).(bool)
	return ok && dryRun
}

// actorFromContext retrieves the caller identity. The zero Actor is an
// anonymous caller.
func actorFromContext(r *http.Request) league.Actor {
	actor, _ := r.Context().Value(actorKey).(league.Actor)
	return actor
}
