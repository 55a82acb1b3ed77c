package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkfold/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
)

// Reload triggers a manual reload of the header profile.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ReloadTrigger == nil {
			w.WriteHeader(http.StatusNotFound)
			writeText(w, "no profile file configured\n", d.Logger)
			return
		}

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual profile reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusAccepted)
			writeText(w, "reload triggered\n", d.Logger)
		default:
			d.Logger.Warn("profile reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusTooManyRequests)
			writeText(w, "reload already in progress, please wait\n", d.Logger)
		}
	}
}

func writeText(w http.ResponseWriter, s string, log logger.Logger) {
	if _, err := w.Write([]byte(s)); err != nil {
		log.Debug("failed to write response", logger.Error(err))
	}
}
