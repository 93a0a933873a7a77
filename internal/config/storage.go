package config

import (
	"fmt"
	"os"
	"time"

	"github.com/docker/go-units"
)

// Storage backend selectors.
const (
	StorageBackendFilesystem = "filesystem"
	StorageBackendS3         = "s3"
)

// Environment variable names for storage configuration.
const (
	EnvStorageBackend       = "STORAGE_BACKEND"
	EnvStorageBasePath      = "STORAGE_BASE_PATH"
	EnvStoragePublicBaseURL = "STORAGE_PUBLIC_BASE_URL"
	EnvStorageURLSecret     = "STORAGE_URL_SECRET"
	EnvStorageMaxUploadSize = "STORAGE_MAX_UPLOAD_SIZE"

	EnvS3Region    = "S3_REGION"
	EnvS3Bucket    = "S3_BUCKET"
	EnvS3Endpoint  = "S3_ENDPOINT"
	EnvS3AccessKey = "S3_ACCESS_KEY_ID"
	EnvS3SecretKey = "S3_SECRET_ACCESS_KEY"
)

// S3Config holds S3-compatible object storage settings. Endpoint is optional
// and supports S3-compatible services like MinIO or R2.
type S3Config struct {
	Region          string `toml:"region"`
	Bucket          string `toml:"bucket"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	ForcePathStyle  bool   `toml:"force_path_style"`
}

// StorageConfig holds document blob storage settings.
type StorageConfig struct {
	Backend       string   `toml:"backend"`
	BasePath      string   `toml:"base_path"`
	PublicBaseURL string   `toml:"public_base_url"`
	URLSecret     string   `toml:"url_secret"`
	MaxUploadSize string   `toml:"max_upload_size"`
	PresignExpiry string   `toml:"presign_expiry"`
	S3            S3Config `toml:"s3"`

	maxUploadBytes int64
}

// PresignExpiryDuration parses and returns the presigned URL lifetime.
func (c *StorageConfig) PresignExpiryDuration() time.Duration {
	d, _ := time.ParseDuration(c.PresignExpiry)
	return d
}

// MaxUploadBytes returns the parsed upload size limit in bytes.
func (c *StorageConfig) MaxUploadBytes() int64 {
	return c.maxUploadBytes
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *StorageConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies non-zero values from overlay onto the receiver.
func (c *StorageConfig) Merge(overlay *StorageConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.PublicBaseURL != "" {
		c.PublicBaseURL = overlay.PublicBaseURL
	}
	if overlay.URLSecret != "" {
		c.URLSecret = overlay.URLSecret
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.PresignExpiry != "" {
		c.PresignExpiry = overlay.PresignExpiry
	}
	if overlay.S3.Region != "" {
		c.S3.Region = overlay.S3.Region
	}
	if overlay.S3.Bucket != "" {
		c.S3.Bucket = overlay.S3.Bucket
	}
	if overlay.S3.Endpoint != "" {
		c.S3.Endpoint = overlay.S3.Endpoint
	}
	if overlay.S3.AccessKeyID != "" {
		c.S3.AccessKeyID = overlay.S3.AccessKeyID
	}
	if overlay.S3.SecretAccessKey != "" {
		c.S3.SecretAccessKey = overlay.S3.SecretAccessKey
	}
	if overlay.S3.ForcePathStyle {
		c.S3.ForcePathStyle = true
	}
}

func (c *StorageConfig) loadDefaults() {
	if c.Backend == "" {
		c.Backend = StorageBackendFilesystem
	}
	if c.BasePath == "" {
		c.BasePath = "data/blobs"
	}
	if c.PublicBaseURL == "" {
		c.PublicBaseURL = "http://localhost:8080"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "25MB"
	}
	if c.PresignExpiry == "" {
		c.PresignExpiry = "1h"
	}
}

func (c *StorageConfig) loadEnv() {
	if v := os.Getenv(EnvStorageBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvStorageBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvStoragePublicBaseURL); v != "" {
		c.PublicBaseURL = v
	}
	if v := os.Getenv(EnvStorageURLSecret); v != "" {
		c.URLSecret = v
	}
	if v := os.Getenv(EnvStorageMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvS3Region); v != "" {
		c.S3.Region = v
	}
	if v := os.Getenv(EnvS3Bucket); v != "" {
		c.S3.Bucket = v
	}
	if v := os.Getenv(EnvS3Endpoint); v != "" {
		c.S3.Endpoint = v
	}
	if v := os.Getenv(EnvS3AccessKey); v != "" {
		c.S3.AccessKeyID = v
	}
	if v := os.Getenv(EnvS3SecretKey); v != "" {
		c.S3.SecretAccessKey = v
	}
}

func (c *StorageConfig) validate() error {
	switch c.Backend {
	case StorageBackendFilesystem, StorageBackendS3:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Backend)
	}

	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size %q: %w", c.MaxUploadSize, err)
	}
	if size < 1 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadBytes = size

	if c.Backend == StorageBackendS3 && c.S3.Bucket == "" {
		return fmt.Errorf("s3 backend requires a bucket")
	}

	if d, err := time.ParseDuration(c.PresignExpiry); err != nil || d <= 0 {
		return fmt.Errorf("invalid presign_expiry %q", c.PresignExpiry)
	}

	return nil
}
