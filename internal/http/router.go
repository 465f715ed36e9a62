// Package httpapi assembles the HTTP surface: shared middleware, health and
// metrics endpoints, and the versioned API mounted from each module handler.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"bloodlink/internal/platform/metrics"
	"bloodlink/pkg/platform/httputil"
	authmw "bloodlink/pkg/platform/middleware/auth"
	"bloodlink/pkg/platform/middleware/metadata"
	"bloodlink/pkg/platform/middleware/requesttime"
)

// PublicModule mounts routes reachable without a token.
type PublicModule interface {
	RegisterPublic(r chi.Router)
}

// Module mounts routes behind authentication.
type Module interface {
	Register(r chi.Router)
}

// HealthCheck checks one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator authmw.JWTValidator
	// PublicLimit throttles the unauthenticated routes (login, register).
	PublicLimit func(http.Handler) http.Handler
	Checks      map[string]HealthCheck
}

// NewRouter builds the root handler. Authenticated modules share one
// RequireAuth group; role checks live in each module.
func NewRouter(deps Deps, public []PublicModule, modules []Module) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(metadata.ClientMetadata)
	r.Use(chimw.Recoverer)
	r.Use(requesttime.Middleware)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Get("/healthz", healthHandler(deps.Checks))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if deps.PublicLimit != nil {
				r.Use(deps.PublicLimit)
			}
			for _, m := range public {
				m.RegisterPublic(r)
			}
		})
		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAuth(deps.Validator, deps.Logger))
			for _, m := range modules {
				m.Register(r)
			}
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{
			"error":             "not_found",
			"error_description": "route not found",
		})
	})
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		var failing []string
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failing = append(failing, name)
			}
		}
		if len(failing) > 0 {
			sort.Strings(failing)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":  "degraded",
				"failing": failing,
			})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
