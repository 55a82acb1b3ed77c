package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkfold/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
)

// PlatformStats returns the per-platform counters.
func PlatformStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := d.Links.PlatformStats(r.Context())
		if err != nil {
			d.Logger.Error("failed to read platform stats", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to read stats", d.Logger)
			return
		}
		writeData(w, http.StatusOK, counts, d.Logger)
	}
}
