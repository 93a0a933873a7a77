package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Filesystem stores blobs under a base directory with atomic writes.
// Presigned URLs carry an HMAC token validated by VerifyToken, served by
// the service's own blob routes.
type Filesystem struct {
	basePath string
	baseURL  string
	secret   []byte
	logger   *slog.Logger
}

// NewFilesystem creates a filesystem backend rooted at basePath. Presigned
// URLs are built against publicBaseURL and signed with secret.
func NewFilesystem(basePath, publicBaseURL, secret string, logger *slog.Logger) (*Filesystem, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &Filesystem{
		basePath: basePath,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
		secret:   []byte(secret),
		logger:   logger,
	}, nil
}

func (f *Filesystem) fullPath(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}

	full := filepath.Join(f.basePath, filepath.FromSlash(key))

	rel, err := filepath.Rel(f.basePath, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", ErrInvalidKey
	}

	return full, nil
}

// Store writes the blob atomically: content lands in a temp file first and
// is renamed into place so readers never observe partial writes.
func (f *Filesystem) Store(ctx context.Context, key string, data []byte) error {
	full, err := f.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write blob: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("finalize blob: %w", err)
	}

	return nil
}

// Retrieve reads the blob stored under key.
func (f *Filesystem) Retrieve(ctx context.Context, key string) ([]byte, error) {
	full, err := f.fullPath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}

	return data, nil
}

// Delete removes the blob under key. A missing blob is not an error.
func (f *Filesystem) Delete(ctx context.Context, key string) error {
	full, err := f.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}

	return nil
}

// PresignGet returns an expiring download URL served by the blob routes.
func (f *Filesystem) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}

	expires := time.Now().Add(expiry).Unix()
	token := f.sign("GET", key, expires)

	return fmt.Sprintf(
		"%s/blobs/%s?expires=%d&token=%s",
		f.baseURL, encodeKey(key), expires, token,
	), nil
}

// PresignPut returns an expiring upload destination served by the blob routes.
func (f *Filesystem) PresignPut(ctx context.Context, key string, expiry time.Duration) (PresignedUpload, error) {
	if err := ValidateKey(key); err != nil {
		return PresignedUpload{}, err
	}

	expiresAt := time.Now().Add(expiry)
	expires := expiresAt.Unix()
	token := f.sign("PUT", key, expires)

	return PresignedUpload{
		URL: fmt.Sprintf(
			"%s/blobs/%s?expires=%d&token=%s",
			f.baseURL, encodeKey(key), expires, token,
		),
		Key:       key,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyToken validates a presigned URL token for the given method and key.
func (f *Filesystem) VerifyToken(method, key, expiresParam, token string) bool {
	expires, err := strconv.ParseInt(expiresParam, 10, 64)
	if err != nil {
		return false
	}

	if time.Now().Unix() > expires {
		return false
	}

	expected := f.sign(method, key, expires)
	return hmac.Equal([]byte(expected), []byte(token))
}

func (f *Filesystem) sign(method, key string, expires int64) string {
	mac := hmac.New(sha256.New, f.secret)
	fmt.Fprintf(mac, "%s\n%s\n%d", method, key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// encodeKey escapes each key segment while preserving slashes.
func encodeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
