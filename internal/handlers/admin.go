package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/venusseo127/dentalApp/internal/services"
)

// AdminRouter registers /admin routes.
func AdminRouter(r chi.Router, stats *services.StatsService, actor func(http.Handler) http.Handler) {
	r.With(actor, requireAdmin).Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		user, _ := actorFromContext(r.Context())
		dashboard, err := stats.Dashboard(r.Context(), user)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dashboard)
	})
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Healthz reports liveness. With a database it also checks connectivity.
func Healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
