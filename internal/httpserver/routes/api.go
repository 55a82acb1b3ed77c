package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/linkfold/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkfold/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkfold/internal/httpserver/mw"
)

const (
	defaultAPITimeout   = 30 * time.Second
	defaultBatchTimeout = 10 * time.Minute
)

func init() { Register(registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	apiTimeout := orDefault(d.APITimeout, defaultAPITimeout)
	batchTimeout := orDefault(d.BatchTimeout, defaultBatchTimeout)

	r.Route("/api", func(api chi.Router) {
		api.Use(mw.CORS(d.CORSOrigins))

		api.Group(func(g chi.Router) {
			g.Use(middleware.Timeout(apiTimeout))
			g.Post("/links", handlers.CreateLink(d))
			g.Get("/links", handlers.ListLinks(d))
			g.Get("/links/{id}", handlers.GetLink(d))
			g.Get("/stats/platforms", handlers.PlatformStats(d))
			g.Get("/inspect", handlers.Inspect(d))
		})

		api.With(middleware.Timeout(batchTimeout)).Post("/batch", handlers.Batch(d))
	})
}

func orDefault(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}
