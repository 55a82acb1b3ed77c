package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/linkfold/internal/logger"
)

// envelope is the body shape of every /api response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any, log logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("failed to write response", logger.Error(err))
	}
}

func writeData(w http.ResponseWriter, status int, data any, log logger.Logger) {
	writeJSON(w, status, envelope{Success: true, Data: data}, log)
}

func writeError(w http.ResponseWriter, status int, msg string, log logger.Logger) {
	writeJSON(w, status, envelope{Success: false, Error: msg}, log)
}
