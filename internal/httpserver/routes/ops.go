package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/snooze/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snooze/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/snooze/internal/httpserver/mw"
	"github.com/MrSnakeDoc/snooze/internal/metrics"
)

func init() { Register("ops", registerOps) }

func registerOps(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))

	restricted := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	restricted.Get("/readyz", handlers.Readyz(d))
	restricted.Get("/infra", handlers.Infra(d))
	restricted.Handle("/metrics", metrics.Handler())
}
