package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
	"github.com/MrSnakeDoc/linkfold/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
	"github.com/MrSnakeDoc/linkfold/internal/utils"
)

// Redirect sends the visitor to the canonical URL of a record and counts the click.
// Unknown ids land on the landing page.
func Redirect(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !utils.IsLinkID(id) {
			d.Logger.Debug("malformed link id, redirecting to landing page",
				logger.String("id", id))
			http.Redirect(w, r, d.LandingURL, http.StatusFound)
			return
		}

		rec, err := d.Links.Visit(r.Context(), id)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				d.Logger.Error("failed to look up link",
					logger.String("id", id),
					logger.Error(err))
			}
			http.Redirect(w, r, d.LandingURL, http.StatusFound)
			return
		}

		d.Logger.Info("redirect",
			logger.String("id", id),
			logger.String("platform", string(rec.Platform)),
			logger.String("target", rec.CanonicalURL))

		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, rec.CanonicalURL, http.StatusFound)
	}
}
