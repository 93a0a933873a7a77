package signing

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// ImageFormat identifies the embeddable signature image encodings.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
)

// SignatureImage is a decoded signature bitmap tagged with its format.
type SignatureImage struct {
	Data   []byte
	Format ImageFormat
}

var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)

// ParseDataURI decodes a base64 data URI (or bare base64 payload, assumed
// PNG) into a tagged signature image. The "jpg" subtype normalizes to JPEG;
// any other subtype besides png and jpeg is rejected before decoding. The
// payload is charset-checked before base64 decoding so malformed input
// fails loudly rather than producing garbage pixels.
func ParseDataURI(uri string) (SignatureImage, error) {
	format := FormatPNG
	payload := uri

	if strings.HasPrefix(uri, "data:") {
		idx := strings.Index(uri, ",")
		if idx < 0 {
			return SignatureImage{}, ErrInvalidBase64
		}

		header := uri[len("data:"):idx]
		payload = uri[idx+1:]

		mediaType, _, _ := strings.Cut(header, ";")
		subtype, ok := strings.CutPrefix(mediaType, "image/")
		if !ok {
			return SignatureImage{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mediaType)
		}

		switch strings.ToLower(subtype) {
		case "png":
			format = FormatPNG
		case "jpeg", "jpg":
			format = FormatJPEG
		default:
			return SignatureImage{}, fmt.Errorf("%w: image/%s", ErrUnsupportedFormat, subtype)
		}
	}

	payload = stripWhitespace(payload)

	if payload == "" || !base64Pattern.MatchString(payload) {
		return SignatureImage{}, ErrInvalidBase64
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return SignatureImage{}, ErrInvalidBase64
	}

	return SignatureImage{Data: data, Format: format}, nil
}

// EncodeDataURI renders a signature image as a base64 data URI for transport.
func EncodeDataURI(img SignatureImage) string {
	return fmt.Sprintf(
		"data:image/%s;base64,%s",
		img.Format,
		base64.StdEncoding.EncodeToString(img.Data),
	)
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}
