// Package storage provides document blob storage backends with presigned
// URL generation for direct client access.
package storage

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by storage backends.
var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrInvalidKey   = errors.New("invalid storage key")
	ErrBlobTooLarge = errors.New("blob exceeds maximum size")
)

// PresignedUpload describes where and how a client should upload a blob.
type PresignedUpload struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// System is the blob storage contract. Keys are slash-separated relative
// paths; backends reject traversal and absolute keys with ErrInvalidKey.
type System interface {
	// Store writes the blob under key, replacing any existing content.
	Store(ctx context.Context, key string, data []byte) error

	// Retrieve reads the blob stored under key.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes the blob under key. Deleting a missing blob is not
	// an error.
	Delete(ctx context.Context, key string) error

	// PresignGet returns a time-limited URL for downloading the blob.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)

	// PresignPut returns a time-limited upload destination for key.
	PresignPut(ctx context.Context, key string, expiry time.Duration) (PresignedUpload, error)
}

// ValidateKey rejects keys that escape the storage root or are empty.
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if key[0] == '/' || key[0] == '\\' {
		return ErrInvalidKey
	}
	for i := 0; i+1 < len(key); i++ {
		if key[i] == '.' && key[i+1] == '.' {
			return ErrInvalidKey
		}
	}
	return nil
}
