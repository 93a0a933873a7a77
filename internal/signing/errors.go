package signing

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for signature capture and compositing.
var (
	// ErrInvalidBase64 indicates the signature payload is not valid base64.
	ErrInvalidBase64 = errors.New("Invalid base64 format")

	// ErrUnsupportedFormat indicates a data URI with an image subtype the
	// compositor cannot embed.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrImageDecode indicates the payload decoded as base64 but is not a
	// valid image of its declared format.
	ErrImageDecode = errors.New("image data is not decodable")

	// ErrDocumentParse indicates the target PDF could not be parsed.
	ErrDocumentParse = errors.New("document is not a valid PDF")

	// ErrSerialize indicates the composited PDF failed verification.
	ErrSerialize = errors.New("failed to serialize signed document")

	// ErrEmptySignature indicates typed capture was given no visible text.
	ErrEmptySignature = errors.New("signature text is empty")

	// ErrInvalidColor indicates a typed-signature ink color that is not a
	// #rrggbb value.
	ErrInvalidColor = errors.New("invalid signature color")
)

// PageRangeError reports a placement targeting a page outside the document.
type PageRangeError struct {
	Requested int
	PageCount int
}

func (e *PageRangeError) Error() string {
	return fmt.Sprintf("Page %d does not exist. Document has %d pages.", e.Requested, e.PageCount)
}

// MapHTTPStatus translates signing errors into HTTP status codes.
func MapHTTPStatus(err error) int {
	var pageErr *PageRangeError
	switch {
	case errors.As(err, &pageErr),
		errors.Is(err, ErrInvalidBase64),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrImageDecode),
		errors.Is(err, ErrEmptySignature),
		errors.Is(err, ErrInvalidColor):
		return http.StatusBadRequest
	case errors.Is(err, ErrDocumentParse):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
