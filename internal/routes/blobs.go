// Package routes hosts service-level HTTP routes: blob access for
// filesystem-backed presigned URLs and health probes.
package routes

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/KartikLabhshetwar/FolioSign/internal/storage"
	"github.com/KartikLabhshetwar/FolioSign/pkg/handlers"
	"github.com/KartikLabhshetwar/FolioSign/pkg/routes"
)

// BlobHandler serves presigned blob URLs for the filesystem backend. Every
// request must carry a valid HMAC token scoped to its method and key.
type BlobHandler struct {
	fs        *storage.Filesystem
	maxUpload int64
	logger    *slog.Logger
}

// NewBlobHandler creates the blob route handler.
func NewBlobHandler(fs *storage.Filesystem, maxUpload int64, logger *slog.Logger) *BlobHandler {
	return &BlobHandler{fs: fs, maxUpload: maxUpload, logger: logger}
}

// Routes returns the blob route group.
func (h *BlobHandler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/blobs",
		Routes: []routes.Route{
			{Pattern: "GET /{key...}", Handler: h.get},
			{Pattern: "PUT /{key...}", Handler: h.put},
		},
	}
}

func (h *BlobHandler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.PathValue("key")
	query := r.URL.Query()

	if !h.fs.VerifyToken(r.Method, key, query.Get("expires"), query.Get("token")) {
		handlers.RespondError(w, http.StatusForbidden, storage.ErrInvalidKey)
		return "", false
	}

	return key, true
}

func (h *BlobHandler) get(w http.ResponseWriter, r *http.Request) {
	key, ok := h.authorize(w, r)
	if !ok {
		return
	}

	data, err := h.fs.Retrieve(r.Context(), key)
	if err != nil {
		status := http.StatusInternalServerError
		if err == storage.ErrBlobNotFound {
			status = http.StatusNotFound
		}
		handlers.RespondError(w, status, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *BlobHandler) put(w http.ResponseWriter, r *http.Request) {
	key, ok := h.authorize(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		handlers.RespondError(w, http.StatusRequestEntityTooLarge, storage.ErrBlobTooLarge)
		return
	}

	if err := h.fs.Store(r.Context(), key, data); err != nil {
		handlers.RespondError(w, http.StatusInternalServerError, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
