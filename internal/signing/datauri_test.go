package signing

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestParseDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("fake image bytes"))

	tests := []struct {
		name       string
		uri        string
		wantFormat ImageFormat
		wantErr    error
	}{
		{
			name:       "png data uri",
			uri:        "data:image/png;base64," + payload,
			wantFormat: FormatPNG,
		},
		{
			name:       "jpeg data uri",
			uri:        "data:image/jpeg;base64," + payload,
			wantFormat: FormatJPEG,
		},
		{
			name:       "jpg normalizes to jpeg",
			uri:        "data:image/jpg;base64," + payload,
			wantFormat: FormatJPEG,
		},
		{
			name:       "bare payload assumes png",
			uri:        payload,
			wantFormat: FormatPNG,
		},
		{
			name:       "payload with whitespace",
			uri:        "data:image/png;base64," + payload[:8] + "\n  " + payload[8:],
			wantFormat: FormatPNG,
		},
		{
			name:    "svg rejected before decoding",
			uri:     "data:image/svg+xml;base64," + payload,
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:    "gif rejected",
			uri:     "data:image/gif;base64," + payload,
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:    "non-image media type rejected",
			uri:     "data:application/pdf;base64," + payload,
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:    "illegal characters rejected",
			uri:     "data:image/png;base64,not*valid*base64!",
			wantErr: ErrInvalidBase64,
		},
		{
			name:    "misplaced padding rejected",
			uri:     "data:image/png;base64,AB=CD==EF",
			wantErr: ErrInvalidBase64,
		},
		{
			name:    "empty payload rejected",
			uri:     "data:image/png;base64,",
			wantErr: ErrInvalidBase64,
		},
		{
			name:    "data uri without comma rejected",
			uri:     "data:image/png;base64",
			wantErr: ErrInvalidBase64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := ParseDataURI(tt.uri)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseDataURI() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseDataURI() unexpected error: %v", err)
			}
			if sig.Format != tt.wantFormat {
				t.Errorf("format = %s, want %s", sig.Format, tt.wantFormat)
			}
			if !bytes.Equal(sig.Data, []byte("fake image bytes")) {
				t.Errorf("decoded payload mismatch")
			}
		})
	}
}

func TestInvalidBase64Message(t *testing.T) {
	_, err := ParseDataURI("data:image/png;base64,@@@@")
	if err == nil || err.Error() != "Invalid base64 format" {
		t.Fatalf("error = %v, want %q", err, "Invalid base64 format")
	}
}

func TestEncodeDataURIRoundTrip(t *testing.T) {
	original := SignatureImage{Data: []byte{0x89, 0x50, 0x4e, 0x47}, Format: FormatPNG}

	uri := EncodeDataURI(original)
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix: %s", uri)
	}

	decoded, err := ParseDataURI(uri)
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if decoded.Format != original.Format {
		t.Errorf("format = %s, want %s", decoded.Format, original.Format)
	}
	if !bytes.Equal(decoded.Data, original.Data) {
		t.Errorf("data mismatch after round trip")
	}
}
