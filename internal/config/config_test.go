package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Backend != StorageBackendFilesystem {
		t.Errorf("storage backend = %s", cfg.Storage.Backend)
	}
	if cfg.Storage.MaxUploadBytes() != 25_000_000 {
		t.Errorf("max upload bytes = %d", cfg.Storage.MaxUploadBytes())
	}
	if cfg.Storage.PresignExpiryDuration() != time.Hour {
		t.Errorf("presign expiry = %v", cfg.Storage.PresignExpiryDuration())
	}
	if cfg.Signing.CanvasWidth != 400 || cfg.Signing.CanvasHeight != 120 {
		t.Errorf("canvas = %dx%d", cfg.Signing.CanvasWidth, cfg.Signing.CanvasHeight)
	}
	if cfg.Cleanup.Schedule != "@hourly" {
		t.Errorf("cleanup schedule = %s", cfg.Cleanup.Schedule)
	}
	if cfg.Pagination.DefaultPageSize != 20 {
		t.Errorf("default page size = %d", cfg.Pagination.DefaultPageSize)
	}
}

func TestLoadBaseFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, BaseConfigFile, `
[server]
port = 9000

[storage]
max_upload_size = "5MB"

[signing]
canvas_width = 600
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Storage.MaxUploadBytes() != 5_000_000 {
		t.Errorf("max upload = %d", cfg.Storage.MaxUploadBytes())
	}
	if cfg.Signing.CanvasWidth != 600 {
		t.Errorf("canvas width = %d, want 600", cfg.Signing.CanvasWidth)
	}
	if cfg.Signing.CanvasHeight != 120 {
		t.Errorf("canvas height = %d, want default 120", cfg.Signing.CanvasHeight)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, BaseConfigFile, `
[server]
port = 9000
host = "127.0.0.1"
`)
	writeConfig(t, dir, "config.production.toml", `
[server]
port = 443
`)

	t.Setenv(EnvServiceEnv, "production")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 443 {
		t.Errorf("overlay port = %d, want 443", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("host = %s, want base value preserved", cfg.Server.Host)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv(EnvServerPort, "7070")
	t.Setenv(EnvStorageBackend, "filesystem")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "bad storage backend",
			content: `
[storage]
backend = "ftp"
`,
		},
		{
			name: "bad upload size",
			content: `
[storage]
max_upload_size = "lots"
`,
		},
		{
			name: "bad cleanup schedule",
			content: `
[cleanup]
schedule = "whenever"
`,
		},
		{
			name: "bad page sizes",
			content: `
[pagination]
default_page_size = 500
max_page_size = 100
`,
		},
		{
			name: "s3 without bucket",
			content: `
[storage]
backend = "s3"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, BaseConfigFile, tt.content)

			if _, err := Load(dir); err == nil {
				t.Error("Load() succeeded, want validation error")
			}
		})
	}
}
