package documents

import (
	"errors"
	"net/http"

	"github.com/KartikLabhshetwar/FolioSign/internal/signing"
	"github.com/KartikLabhshetwar/FolioSign/internal/storage"
	"github.com/KartikLabhshetwar/FolioSign/pkg/repository"
)

// Sentinel errors for document operations.
var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("storage key already registered")
	ErrInvalidID    = errors.New("invalid document id")
	ErrNameRequired = errors.New("document name is required")
	ErrNotPDF       = errors.New("document is not a PDF")
	ErrTooLarge     = errors.New("document exceeds maximum upload size")
)

// MapHTTPStatus translates document errors into HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, storage.ErrBlobNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateKey),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrNotPDF),
		errors.Is(err, storage.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooLarge),
		errors.Is(err, storage.ErrBlobTooLarge):
		return http.StatusRequestEntityTooLarge
	case isSigningError(err):
		return signing.MapHTTPStatus(err)
	default:
		return http.StatusInternalServerError
	}
}

func isSigningError(err error) bool {
	var pageErr *signing.PageRangeError
	return errors.As(err, &pageErr) ||
		errors.Is(err, signing.ErrInvalidBase64) ||
		errors.Is(err, signing.ErrUnsupportedFormat) ||
		errors.Is(err, signing.ErrImageDecode) ||
		errors.Is(err, signing.ErrDocumentParse) ||
		errors.Is(err, signing.ErrEmptySignature) ||
		errors.Is(err, signing.ErrInvalidColor) ||
		errors.Is(err, signing.ErrSerialize)
}
