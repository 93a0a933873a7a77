package documents

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/KartikLabhshetwar/FolioSign/pkg/handlers"
	"github.com/KartikLabhshetwar/FolioSign/pkg/middleware"
	"github.com/KartikLabhshetwar/FolioSign/pkg/pagination"
	"github.com/KartikLabhshetwar/FolioSign/pkg/routes"
)

// Handler exposes document operations over HTTP.
type Handler struct {
	system    System
	pages     pagination.Config
	maxUpload int64
	logger    *slog.Logger
}

// NewHandler creates the documents HTTP handler.
func NewHandler(system System, pages pagination.Config, maxUpload int64, logger *slog.Logger) *Handler {
	return &Handler{
		system:    system,
		pages:     pages,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Routes returns the document route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Pattern: "GET /", Handler: h.list},
			{Pattern: "GET /{id}", Handler: h.get},
			{Pattern: "POST /", Handler: h.upload},
			{Pattern: "POST /presign", Handler: h.presign},
			{Pattern: "POST /register", Handler: h.register},
			{Pattern: "POST /{id}/sign", Handler: h.sign},
			{Pattern: "DELETE /{id}", Handler: h.delete},
			{Pattern: "POST /cleanup", Handler: h.cleanup},
		},
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pages)
	filter := FilterFromQuery(r.URL.Query())

	// Authenticated callers only ever see their own documents.
	if ownerID, ok := middleware.UserID(r.Context()); ok {
		filter.OwnerID = &ownerID
	}

	result, err := h.system.List(r.Context(), page, filter)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

type documentDetail struct {
	Document
	DownloadURL string `json:"download_url"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.fail(w, ErrInvalidID)
		return
	}

	doc, err := h.system.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	url, err := h.system.DownloadURL(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, documentDetail{Document: doc, DownloadURL: url})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.fail(w, ErrTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.fail(w, err)
		return
	}

	req := UploadRequest{
		Name:    header.Filename,
		Content: content,
	}
	if name := r.FormValue("name"); name != "" {
		req.Name = name
	}
	if ownerID, ok := middleware.UserID(r.Context()); ok {
		req.OwnerID = &ownerID
	}

	doc, err := h.system.Upload(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

func (h *Handler) presign(w http.ResponseWriter, r *http.Request) {
	var req PresignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, http.StatusBadRequest, err)
		return
	}

	if ownerID, ok := middleware.UserID(r.Context()); ok {
		req.OwnerID = &ownerID
	}

	upload, err := h.system.Presign(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, upload)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, http.StatusBadRequest, err)
		return
	}

	if ownerID, ok := middleware.UserID(r.Context()); ok {
		req.OwnerID = &ownerID
	}

	doc, err := h.system.Register(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

func (h *Handler) sign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.fail(w, ErrInvalidID)
		return
	}

	var req SignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, http.StatusBadRequest, err)
		return
	}

	if visitorID, ok := middleware.VisitorID(r.Context()); ok {
		req.VisitorID = &visitorID
	}

	doc, err := h.system.Sign(r.Context(), id, req)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, signResponse{Success: true, Document: doc})
}

type signResponse struct {
	Success  bool     `json:"success"`
	Document Document `json:"document"`
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.fail(w, ErrInvalidID)
		return
	}

	if err := h.system.Delete(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type cleanupRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func (h *Handler) cleanup(w http.ResponseWriter, r *http.Request) {
	var req cleanupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, http.StatusBadRequest, err)
		return
	}

	results, err := h.system.Cleanup(r.Context(), req.IDs)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, results)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := MapHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("document operation failed", "error", err)
	}
	handlers.RespondError(w, status, err)
}
