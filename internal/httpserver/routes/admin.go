package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkfold/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkfold/internal/httpserver/mw"
)

// admin restricts a route to the configured client CIDRs.
func admin(r chi.Router, d deps.Deps) chi.Router {
	return r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
}
