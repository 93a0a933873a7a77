package signing

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/font/basicfont"
)

func testCapturer() *Capturer {
	return NewCapturerWithFace(basicfont.Face7x13, 400, 120)
}

// signaturePNG builds a small bitmap with an opaque stroke surrounded by
// transparent margin.
func signaturePNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 10; x < 30; x++ {
		img.Set(x, 10, color.RGBA{0, 0, 0, 255})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestCaptureTyped(t *testing.T) {
	c := testCapturer()

	sig, err := c.CaptureTyped("Jane Doe", "")
	if err != nil {
		t.Fatalf("CaptureTyped() error: %v", err)
	}
	if sig.Format != FormatPNG {
		t.Errorf("format = %s, want png", sig.Format)
	}

	img, err := png.Decode(bytes.NewReader(sig.Data))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		t.Fatal("rendered signature is empty")
	}
	if bounds.Dx() >= 400 || bounds.Dy() >= 120 {
		t.Errorf("signature not trimmed: %v", bounds)
	}
}

func TestCaptureTypedEmpty(t *testing.T) {
	c := testCapturer()

	for _, input := range []string{"", "   ", "\t\n"} {
		if _, err := c.CaptureTyped(input, ""); !errors.Is(err, ErrEmptySignature) {
			t.Errorf("CaptureTyped(%q) error = %v, want ErrEmptySignature", input, err)
		}
	}
}

func TestCaptureTypedColor(t *testing.T) {
	c := testCapturer()

	sig, err := c.CaptureTyped("Jane Doe", "#1a2b3c")
	if err != nil {
		t.Fatalf("CaptureTyped() error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(sig.Data))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}

	// Every inked pixel carries the requested color.
	found := false
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y && !found; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			if r>>8 != 0x1a || g>>8 != 0x2b || b>>8 != 0x3c {
				t.Fatalf("ink at (%d,%d) = %x %x %x", x, y, r>>8, g>>8, b>>8)
			}
			found = true
			break
		}
	}
	if !found {
		t.Fatal("no inked pixels rendered")
	}
}

func TestCaptureTypedRejectsBadColor(t *testing.T) {
	c := testCapturer()

	for _, input := range []string{"red", "#12345", "#zzzzzz"} {
		if _, err := c.CaptureTyped("Jane Doe", input); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("CaptureTyped(color %q) error = %v, want ErrInvalidColor", input, err)
		}
	}
}

func TestCaptureDrawn(t *testing.T) {
	c := testCapturer()
	uri := EncodeDataURI(SignatureImage{Data: signaturePNG(t), Format: FormatPNG})

	sig, err := c.CaptureDrawn(uri)
	if err != nil {
		t.Fatalf("CaptureDrawn() error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(sig.Data))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}

	// The 20px stroke should survive; the transparent margin should not.
	if got := img.Bounds().Dx(); got != 20 {
		t.Errorf("trimmed width = %d, want 20", got)
	}
	if got := img.Bounds().Dy(); got != 1 {
		t.Errorf("trimmed height = %d, want 1", got)
	}
}

func TestCaptureDrawnRejectsGarbage(t *testing.T) {
	c := testCapturer()

	if _, err := c.CaptureDrawn("data:image/png;base64,!!!"); !errors.Is(err, ErrInvalidBase64) {
		t.Errorf("garbage payload error = %v, want ErrInvalidBase64", err)
	}

	// Valid base64 that is not a PNG.
	uri := EncodeDataURI(SignatureImage{Data: []byte("not a png"), Format: FormatPNG})
	if _, err := c.CaptureDrawn(uri); !errors.Is(err, ErrImageDecode) {
		t.Errorf("non-image payload error = %v, want ErrImageDecode", err)
	}
}

func TestCaptureUploadedFormatMismatch(t *testing.T) {
	c := testCapturer()

	// PNG bytes declared as JPEG must fail decoding.
	sig := SignatureImage{Data: signaturePNG(t), Format: FormatJPEG}
	if _, err := c.CaptureUploaded(sig); !errors.Is(err, ErrImageDecode) {
		t.Errorf("mismatched format error = %v, want ErrImageDecode", err)
	}

	// Correctly declared PNG passes through unchanged.
	sig.Format = FormatPNG
	out, err := c.CaptureUploaded(sig)
	if err != nil {
		t.Fatalf("CaptureUploaded() error: %v", err)
	}
	if !bytes.Equal(out.Data, sig.Data) {
		t.Error("upload was modified")
	}
}

func TestTrimTransparentAllClear(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))

	out := trimTransparent(img)
	if out.Bounds() != img.Bounds() {
		t.Errorf("fully transparent image changed bounds: %v", out.Bounds())
	}
}
