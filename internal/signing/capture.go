package signing

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/KartikLabhshetwar/FolioSign/internal/config"
)

// Capturer normalizes drawn, typed, and uploaded signatures into PNG
// bitmaps suitable for stamping.
type Capturer struct {
	face         font.Face
	canvasWidth  int
	canvasHeight int
}

// NewCapturer loads the typed-signature font from disk and builds a
// capturer with the configured canvas dimensions.
func NewCapturer(cfg config.SigningConfig) (*Capturer, error) {
	data, err := os.ReadFile(cfg.FontPath)
	if err != nil {
		return nil, fmt.Errorf("read signature font: %w", err)
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse signature font: %w", err)
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    cfg.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build font face: %w", err)
	}

	return NewCapturerWithFace(face, cfg.CanvasWidth, cfg.CanvasHeight), nil
}

// NewCapturerWithFace builds a capturer around an existing font face.
func NewCapturerWithFace(face font.Face, canvasWidth, canvasHeight int) *Capturer {
	return &Capturer{
		face:         face,
		canvasWidth:  canvasWidth,
		canvasHeight: canvasHeight,
	}
}

// CaptureDrawn normalizes a drawn signature submitted as a data URI: the
// payload is decoded, validated against its declared format, trimmed of
// transparent margins, and re-encoded as PNG.
func (c *Capturer) CaptureDrawn(dataURI string) (SignatureImage, error) {
	sig, err := ParseDataURI(dataURI)
	if err != nil {
		return SignatureImage{}, err
	}

	img, err := decodeImage(sig)
	if err != nil {
		return SignatureImage{}, err
	}

	return encodePNG(trimTransparent(img))
}

// CaptureTyped renders the given name onto the signature canvas in the
// given ink color and trims the result to the inked region. The text is
// anchored at the left edge on a vertically centered baseline. Blank input
// yields ErrEmptySignature; an empty color defaults to black.
func (c *Capturer) CaptureTyped(name, colorHex string) (SignatureImage, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SignatureImage{}, ErrEmptySignature
	}

	ink, err := parseHexColor(colorHex)
	if err != nil {
		return SignatureImage{}, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, c.canvasWidth, c.canvasHeight))

	metrics := c.face.Metrics()
	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(ink),
		Face: c.face,
		Dot: fixed.Point26_6{
			X: 0,
			Y: (fixed.I(c.canvasHeight) + metrics.Ascent - metrics.Descent) / 2,
		},
	}

	drawer.DrawString(name)

	return encodePNG(trimTransparent(canvas))
}

// parseHexColor decodes a #rrggbb ink color. Empty input means black.
func parseHexColor(s string) (color.Color, error) {
	if s == "" {
		return color.Black, nil
	}

	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}

// CaptureUploaded validates an uploaded signature image against its
// declared format and passes it through unmodified. Uploads keep their
// original encoding so JPEG photographs stay compact.
func (c *Capturer) CaptureUploaded(sig SignatureImage) (SignatureImage, error) {
	if _, err := decodeImage(sig); err != nil {
		return SignatureImage{}, err
	}
	return sig, nil
}

// EncodeForTransport renders a captured signature as a data URI.
func (c *Capturer) EncodeForTransport(sig SignatureImage) string {
	return EncodeDataURI(sig)
}

func decodeImage(sig SignatureImage) (image.Image, error) {
	var (
		img image.Image
		err error
	)

	switch sig.Format {
	case FormatPNG:
		img, err = png.Decode(bytes.NewReader(sig.Data))
	case FormatJPEG:
		img, err = jpeg.Decode(bytes.NewReader(sig.Data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, sig.Format)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	return img, nil
}

func encodePNG(img image.Image) (SignatureImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return SignatureImage{}, fmt.Errorf("encode signature: %w", err)
	}
	return SignatureImage{Data: buf.Bytes(), Format: FormatPNG}, nil
}

// trimTransparent crops the image to the bounding box of non-transparent
// pixels. Fully transparent images are returned unchanged so downstream
// stamping still has valid dimensions.
func trimTransparent(img image.Image) image.Image {
	bounds := img.Bounds()

	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X, bounds.Min.Y

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}

	if minX > maxX || minY > maxY {
		return img
	}

	cropped := image.Rect(minX, minY, maxX+1, maxY+1)
	out := image.NewRGBA(image.Rect(0, 0, cropped.Dx(), cropped.Dy()))
	for y := cropped.Min.Y; y < cropped.Max.Y; y++ {
		for x := cropped.Min.X; x < cropped.Max.X; x++ {
			out.Set(x-cropped.Min.X, y-cropped.Min.Y, img.At(x, y))
		}
	}

	return out
}
