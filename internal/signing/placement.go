package signing

// Placement positions a signature stamp on a document page. X and Y are the
// stamp's center point in PDF points measured from the page's top-left
// corner, matching how clients report click positions. Page is 1-based.
type Placement struct {
	Page   int     `json:"page"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Default stamp dimensions in points, used when a client omits sizing.
const (
	DefaultStampWidth  = 200
	DefaultStampHeight = 80
)

// Normalize fills in default dimensions for zero-valued width or height.
// Page is left untouched: compositing validates it against the document,
// and request decoding supplies the first-page default.
func (p *Placement) Normalize() {
	if p.Width <= 0 {
		p.Width = DefaultStampWidth
	}
	if p.Height <= 0 {
		p.Height = DefaultStampHeight
	}
}

// Origin converts the center-anchored, top-left-measured placement into the
// stamp's bottom-left corner in PDF coordinate space, where the Y axis
// grows upward from the bottom of the page.
func (p Placement) Origin(pageHeight float64) (x, y float64) {
	x = p.X - p.Width/2
	y = pageHeight - p.Y - p.Height/2
	return x, y
}
