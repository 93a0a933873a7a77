package documents

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/KartikLabhshetwar/FolioSign/internal/signing"
	"github.com/KartikLabhshetwar/FolioSign/internal/storage"
	"github.com/KartikLabhshetwar/FolioSign/pkg/repository"
)

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"repository not found", repository.ErrNotFound, http.StatusNotFound},
		{"missing blob", storage.ErrBlobNotFound, http.StatusNotFound},
		{"duplicate key", ErrDuplicateKey, http.StatusConflict},
		{"invalid id", ErrInvalidID, http.StatusBadRequest},
		{"name required", ErrNameRequired, http.StatusBadRequest},
		{"not a pdf", ErrNotPDF, http.StatusBadRequest},
		{"too large", ErrTooLarge, http.StatusRequestEntityTooLarge},
		{"invalid base64", signing.ErrInvalidBase64, http.StatusBadRequest},
		{"empty signature", signing.ErrEmptySignature, http.StatusBadRequest},
		{"invalid color", signing.ErrInvalidColor, http.StatusBadRequest},
		{"page out of range", &signing.PageRangeError{Requested: 9, PageCount: 3}, http.StatusBadRequest},
		{"document parse", signing.ErrDocumentParse, http.StatusUnprocessableEntity},
		{"wrapped sentinel", fmt.Errorf("context: %w", ErrNotFound), http.StatusNotFound},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
