package documents

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is the metadata record for a stored PDF. OwnerID is nil for
// guest uploads; VisitorID tracks the anonymous session that last signed.
type Document struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	StorageKey string    `json:"storage_key"`
	OwnerID    *string   `json:"owner_id,omitempty"`
	VisitorID  *string   `json:"visitor_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsGuest reports whether the document has no authenticated owner.
func (d *Document) IsGuest() bool {
	return d.OwnerID == nil
}

// GuestPrefix is the storage key prefix for unauthenticated uploads.
const GuestPrefix = "guest"

var filenameSanitizer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	"..", "_",
	" ", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// SanitizeFilename strips path separators and shell-hostile characters
// from a client-supplied file name.
func SanitizeFilename(name string) string {
	return filenameSanitizer.Replace(path.Base(name))
}

// BuildStorageKey derives the blob key for an upload:
// {ownerID|guest}/{baseName}_{unixTimestamp}{ext}. The timestamp keeps
// repeated uploads of the same file name from colliding.
func BuildStorageKey(ownerID *string, filename string, now time.Time) string {
	prefix := GuestPrefix
	if ownerID != nil && *ownerID != "" {
		prefix = *ownerID
	}

	clean := SanitizeFilename(filename)
	ext := path.Ext(clean)
	base := strings.TrimSuffix(clean, ext)
	if base == "" || base == "." {
		base = "document"
	}
	if ext == "" || ext == "." {
		ext = ".pdf"
	}

	return fmt.Sprintf("%s/%s_%d%s", prefix, base, now.Unix(), ext)
}
