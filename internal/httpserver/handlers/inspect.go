package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkfold/internal/engine"
	"github.com/MrSnakeDoc/linkfold/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
)

// Inspect performs one manual-redirect GET and reports the raw answer.
func Inspect(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")
		if target == "" {
			writeError(w, http.StatusBadRequest, "url is required", d.Logger)
			return
		}

		in, err := d.Resolver.Inspect(r.Context(), target)
		if err != nil {
			if engine.IsInvalidInput(err) {
				writeError(w, http.StatusBadRequest, "url must start with http:// or https://", d.Logger)
				return
			}
			d.Logger.Warn("inspect failed",
				logger.String("url", target),
				logger.Error(err))
			writeError(w, http.StatusBadGateway, err.Error(), d.Logger)
			return
		}
		writeData(w, http.StatusOK, in, d.Logger)
	}
}
