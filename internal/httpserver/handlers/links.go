package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkfold/internal/domain"
	"github.com/MrSnakeDoc/linkfold/internal/engine"
	"github.com/MrSnakeDoc/linkfold/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkfold/internal/links"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
)

const maxCreateBody = 64 << 10

type createLinkRequest struct {
	LongURL string `json:"longUrl"`
}

// CreateLink resolves the submitted URL and stores its record.
// 201 for a new record, 200 when the canonical URL was already known.
func CreateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLinkRequest
		body := http.MaxBytesReader(w, r.Body, maxCreateBody)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body", d.Logger)
			return
		}

		longURL := strings.TrimSpace(req.LongURL)
		if longURL == "" {
			writeError(w, http.StatusBadRequest, "longUrl is required", d.Logger)
			return
		}

		rec, created, err := d.Links.Create(r.Context(), longURL)
		if err != nil {
			if engine.IsInvalidInput(err) {
				writeError(w, http.StatusBadRequest, "longUrl must start with http:// or https://", d.Logger)
				return
			}
			d.Logger.Error("failed to create link",
				logger.String("input", longURL),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to store link", d.Logger)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeData(w, status, rec, d.Logger)
	}
}

// ListLinks returns the most recent records, newest first.
func ListLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := links.DefaultListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "limit must be an integer", d.Logger)
				return
			}
			limit = n
		}

		recs, err := d.Links.Recent(r.Context(), limit)
		if err != nil {
			d.Logger.Error("failed to list links", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list links", d.Logger)
			return
		}
		if recs == nil {
			recs = []*domain.LinkRecord{}
		}
		writeData(w, http.StatusOK, recs, d.Logger)
	}
}

// GetLink returns one record by id.
func GetLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		rec, err := d.Links.Get(r.Context(), id)
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "link not found", d.Logger)
			return
		}
		if err != nil {
			d.Logger.Error("failed to get link",
				logger.String("id", id),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to get link", d.Logger)
			return
		}
		writeData(w, http.StatusOK, rec, d.Logger)
	}
}
