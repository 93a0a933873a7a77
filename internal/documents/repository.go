package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/KartikLabhshetwar/FolioSign/internal/signing"
	"github.com/KartikLabhshetwar/FolioSign/internal/storage"
	"github.com/KartikLabhshetwar/FolioSign/pkg/pagination"
	"github.com/KartikLabhshetwar/FolioSign/pkg/query"
	"github.com/KartikLabhshetwar/FolioSign/pkg/repository"
)

// UploadRequest carries a direct document upload.
type UploadRequest struct {
	Name    string
	OwnerID *string
	Content []byte
}

// RegisterRequest records metadata for a blob already uploaded through a
// presigned URL.
type RegisterRequest struct {
	Name       string  `json:"name"`
	StorageKey string  `json:"storage_key"`
	OwnerID    *string `json:"owner_id,omitempty"`
}

// PresignRequest asks for an upload destination for a new document.
type PresignRequest struct {
	Filename string  `json:"filename"`
	OwnerID  *string `json:"owner_id,omitempty"`
}

// SignRequest places a captured signature onto a document page. Placement
// coordinates are page-relative and zoom-normalized; clients resolve raw
// viewport clicks with signing.ResolveClick before submitting.
type SignRequest struct {
	Mode      signing.Mode      `json:"mode"`
	Payload   string            `json:"payload"`
	Color     string            `json:"color,omitempty"`
	Placement signing.Placement `json:"placement"`
	VisitorID *string           `json:"-"`
}

// CleanupResult reports the outcome of removing one queued guest document.
type CleanupResult struct {
	ID      uuid.UUID `json:"id"`
	Deleted bool      `json:"deleted"`
	Reason  string    `json:"reason,omitempty"`
}

// System is the document domain contract.
type System interface {
	List(ctx context.Context, page pagination.PageRequest, filter Filter) (pagination.PageResult[Document], error)
	Get(ctx context.Context, id uuid.UUID) (Document, error)
	DownloadURL(ctx context.Context, id uuid.UUID) (string, error)
	Presign(ctx context.Context, req PresignRequest) (storage.PresignedUpload, error)
	Upload(ctx context.Context, req UploadRequest) (Document, error)
	Register(ctx context.Context, req RegisterRequest) (Document, error)
	Sign(ctx context.Context, id uuid.UUID, req SignRequest) (Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Cleanup(ctx context.Context, ids []uuid.UUID) ([]CleanupResult, error)
}

var projection = query.NewProjectionMap("public", "documents", "d").
	Project("id", "id").
	Project("name", "name").
	Project("storage_key", "storage_key").
	Project("owner_id", "owner_id").
	Project("visitor_id", "visitor_id").
	Project("created_at", "created_at").
	Project("updated_at", "updated_at")

var defaultSort = query.SortField{Field: "created_at", Descending: true}

type repo struct {
	db            *sql.DB
	blobs         storage.System
	signer        *signing.Service
	engine        *signing.Engine
	pages         pagination.Config
	presignExpiry time.Duration
	maxUpload     int64
	logger        *slog.Logger
}

// Options configures the document system.
type Options struct {
	DB            *sql.DB
	Blobs         storage.System
	Signer        *signing.Service
	Engine        *signing.Engine
	Pagination    pagination.Config
	PresignExpiry time.Duration
	MaxUploadSize int64
	Logger        *slog.Logger
}

// New creates the document system.
func New(opts Options) System {
	return &repo{
		db:            opts.DB,
		blobs:         opts.Blobs,
		signer:        opts.Signer,
		engine:        opts.Engine,
		pages:         opts.Pagination,
		presignExpiry: opts.PresignExpiry,
		maxUpload:     opts.MaxUploadSize,
		logger:        opts.Logger,
	}
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.Name,
		&d.StorageKey,
		&d.OwnerID,
		&d.VisitorID,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return d, err
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filter Filter) (pagination.PageResult[Document], error) {
	page.Normalize(r.pages)

	builder := query.NewBuilder(projection, defaultSort).
		WhereSearch(filter.Search, "name").
		OrderByFields(page.Sort)

	if filter.OwnerID != nil {
		builder.WhereEquals("owner_id", *filter.OwnerID)
	}
	if filter.VisitorID != nil {
		builder.WhereEquals("visitor_id", *filter.VisitorID)
	}

	countSQL, countArgs := builder.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return pagination.PageResult[Document]{}, repository.MapError(err)
	}

	pageSQL, pageArgs := builder.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, scanDocument, pageArgs...)
	if err != nil {
		return pagination.PageResult[Document]{}, err
	}

	return pagination.NewPageResult(docs, total, page.Page, page.PageSize), nil
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (Document, error) {
	singleSQL, args := query.NewBuilder(projection, defaultSort).BuildSingle("id", id)

	doc, err := repository.QueryOne(ctx, r.db, singleSQL, scanDocument, args...)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}

	return doc, nil
}

func (r *repo) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	doc, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}

	return r.blobs.PresignGet(ctx, doc.StorageKey, r.presignExpiry)
}

func (r *repo) Presign(ctx context.Context, req PresignRequest) (storage.PresignedUpload, error) {
	if req.Filename == "" {
		return storage.PresignedUpload{}, ErrNameRequired
	}

	key := BuildStorageKey(req.OwnerID, req.Filename, time.Now())
	return r.blobs.PresignPut(ctx, key, r.presignExpiry)
}

func (r *repo) Upload(ctx context.Context, req UploadRequest) (Document, error) {
	if req.Name == "" {
		return Document{}, ErrNameRequired
	}
	if r.maxUpload > 0 && int64(len(req.Content)) > r.maxUpload {
		return Document{}, ErrTooLarge
	}
	if _, err := r.engine.PageCount(req.Content); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}

	key := BuildStorageKey(req.OwnerID, req.Name, time.Now())

	if err := r.blobs.Store(ctx, key, req.Content); err != nil {
		return Document{}, fmt.Errorf("store document: %w", err)
	}

	doc, err := r.insert(ctx, req.Name, key, req.OwnerID)
	if err != nil {
		// Remove the orphaned blob so storage does not accumulate
		// rows the database never accepted.
		if cleanupErr := r.blobs.Delete(ctx, key); cleanupErr != nil {
			r.logger.Warn("orphaned blob cleanup failed", "key", key, "error", cleanupErr)
		}
		return Document{}, err
	}

	return doc, nil
}

func (r *repo) Register(ctx context.Context, req RegisterRequest) (Document, error) {
	if req.Name == "" {
		return Document{}, ErrNameRequired
	}

	content, err := r.blobs.Retrieve(ctx, req.StorageKey)
	if err != nil {
		return Document{}, fmt.Errorf("uploaded blob: %w", err)
	}

	if _, err := r.engine.PageCount(content); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}

	return r.insert(ctx, req.Name, req.StorageKey, req.OwnerID)
}

func (r *repo) insert(ctx context.Context, name, key string, ownerID *string) (Document, error) {
	doc := Document{
		ID:         uuid.New(),
		Name:       name,
		StorageKey: key,
		OwnerID:    ownerID,
	}

	const insertSQL = `
		INSERT INTO public.documents (id, name, storage_key, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, insertSQL, doc.ID, doc.Name, doc.StorageKey, doc.OwnerID).
		Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		err = repository.MapError(err)
		if errors.Is(err, repository.ErrConflict) {
			return Document{}, ErrDuplicateKey
		}
		return Document{}, err
	}

	r.logger.Info("document created", "id", doc.ID, "key", doc.StorageKey)
	return doc, nil
}

func (r *repo) Sign(ctx context.Context, id uuid.UUID, req SignRequest) (Document, error) {
	doc, err := r.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}

	// An omitted page means the first page; explicit out-of-range pages
	// are rejected during compositing.
	if req.Placement.Page == 0 {
		req.Placement.Page = 1
	}

	sig, err := r.signer.Capture(req.Mode, req.Payload, req.Color)
	if err != nil {
		return Document{}, err
	}

	if err := r.signer.Apply(ctx, doc.StorageKey, sig, req.Placement); err != nil {
		return Document{}, err
	}

	const updateSQL = `
		UPDATE public.documents
		SET visitor_id = COALESCE($2, visitor_id), updated_at = now()
		WHERE id = $1
		RETURNING visitor_id, updated_at`

	err = r.db.QueryRowContext(ctx, updateSQL, doc.ID, req.VisitorID).
		Scan(&doc.VisitorID, &doc.UpdatedAt)
	if err != nil {
		return Document{}, repository.MapError(err)
	}

	return doc, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	const deleteSQL = `DELETE FROM public.documents WHERE id = $1`
	if err := repository.ExecExpectOne(ctx, r.db, deleteSQL, id); err != nil {
		if errors.Is(err, repository.ErrNoEffect) {
			return ErrNotFound
		}
		return err
	}

	// Blob removal is best-effort: the metadata row is gone, so a stale
	// blob only wastes space until the next cleanup pass.
	if err := r.blobs.Delete(ctx, doc.StorageKey); err != nil {
		r.logger.Warn("blob removal failed", "key", doc.StorageKey, "error", err)
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

// Cleanup removes the given documents if and only if they are guest
// uploads. Owned documents and unknown ids are reported but never deleted;
// every requested id gets a result.
func (r *repo) Cleanup(ctx context.Context, ids []uuid.UUID) ([]CleanupResult, error) {
	results := make([]CleanupResult, 0, len(ids))

	for _, id := range ids {
		doc, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				results = append(results, CleanupResult{ID: id, Reason: "not found"})
				continue
			}
			return nil, err
		}

		if !doc.IsGuest() {
			results = append(results, CleanupResult{ID: id, Reason: "document has an owner"})
			continue
		}

		if err := r.Delete(ctx, id); err != nil {
			results = append(results, CleanupResult{ID: id, Reason: err.Error()})
			continue
		}

		results = append(results, CleanupResult{ID: id, Deleted: true})
	}

	return results, nil
}
