package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/linkfold/internal/batch"
	"github.com/MrSnakeDoc/linkfold/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkfold/internal/logger"
	"github.com/MrSnakeDoc/linkfold/internal/utils"
)

const defaultMaxUpload = 10 << 20

// Batch resolves every URL cell of an uploaded CSV or XLSX file.
func Batch(d deps.Deps) http.HandlerFunc {
	maxUpload := d.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "file too large", d.Logger)
				return
			}
			writeError(w, http.StatusBadRequest, "expected multipart form with a file field", d.Logger)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file is required", d.Logger)
			return
		}
		defer utils.Close(file)

		table, err := batch.Read(header.Filename, file)
		if err != nil {
			if errors.Is(err, batch.ErrUnsupportedFormat) || errors.Is(err, batch.ErrEmptyTable) {
				writeError(w, http.StatusBadRequest, err.Error(), d.Logger)
				return
			}
			d.Logger.Warn("failed to parse upload",
				logger.String("file", header.Filename),
				logger.Error(err))
			writeError(w, http.StatusBadRequest, "could not parse file", d.Logger)
			return
		}

		res, err := d.Batch.Process(r.Context(), table)
		if err != nil {
			var tooMany *batch.ErrTooManyRows
			switch {
			case errors.As(err, &tooMany):
				writeError(w, http.StatusBadRequest, err.Error(), d.Logger)
			case errors.Is(err, context.DeadlineExceeded):
				writeError(w, http.StatusGatewayTimeout, "batch took too long", d.Logger)
			case errors.Is(err, context.Canceled):
				d.Logger.Info("batch canceled by client", logger.String("file", header.Filename))
			default:
				d.Logger.Error("batch failed", logger.Error(err))
				writeError(w, http.StatusInternalServerError, "batch failed", d.Logger)
			}
			return
		}

		writeData(w, http.StatusOK, res, d.Logger)
	}
}
