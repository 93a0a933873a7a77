package documents

import (
	"strings"
	"testing"
	"time"
)

func TestBuildStorageKey(t *testing.T) {
	now := time.Unix(1700000000, 0)
	owner := "user-42"

	tests := []struct {
		name     string
		ownerID  *string
		filename string
		want     string
	}{
		{
			name:     "guest upload",
			ownerID:  nil,
			filename: "contract.pdf",
			want:     "guest/contract_1700000000.pdf",
		},
		{
			name:     "owned upload",
			ownerID:  &owner,
			filename: "lease.pdf",
			want:     "user-42/lease_1700000000.pdf",
		},
		{
			name:     "missing extension defaults to pdf",
			ownerID:  nil,
			filename: "scan",
			want:     "guest/scan_1700000000.pdf",
		},
		{
			name:     "path components stripped",
			ownerID:  nil,
			filename: "../../etc/passwd.pdf",
			want:     "guest/passwd_1700000000.pdf",
		},
		{
			name:     "spaces and shell characters sanitized",
			ownerID:  nil,
			filename: "my file: v2?.pdf",
			want:     "guest/my_file__v2__1700000000.pdf",
		},
		{
			name:     "empty name falls back",
			ownerID:  nil,
			filename: "",
			want:     "guest/document_1700000000.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildStorageKey(tt.ownerID, tt.filename, now)
			if got != tt.want {
				t.Errorf("BuildStorageKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildStorageKeyUnique(t *testing.T) {
	a := BuildStorageKey(nil, "contract.pdf", time.Unix(1700000000, 0))
	b := BuildStorageKey(nil, "contract.pdf", time.Unix(1700000001, 0))
	if a == b {
		t.Error("keys for different timestamps collide")
	}
}

func TestSanitizeFilename(t *testing.T) {
	got := SanitizeFilename(`a/b\c:d*e?f"g<h>i|j.pdf`)
	if strings.ContainsAny(got, `/\:*?"<>|`) {
		t.Errorf("sanitized name still contains hostile characters: %q", got)
	}
}

func TestDocumentIsGuest(t *testing.T) {
	owner := "user-1"

	guest := Document{}
	if !guest.IsGuest() {
		t.Error("document without owner should be guest")
	}

	owned := Document{OwnerID: &owner}
	if owned.IsGuest() {
		t.Error("owned document reported as guest")
	}
}
