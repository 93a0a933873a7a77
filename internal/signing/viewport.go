package signing

// PageBox is the rendered bounding box of one page inside the client
// viewport, in screen pixels at the current zoom.
type PageBox struct {
	Page   int     `json:"page"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Click is a resolved click position: page-relative, top-left-measured,
// normalized to 1.0 zoom. This is the coordinate pair Placement consumes.
type Click struct {
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

func (b PageBox) contains(x, y float64) bool {
	return x >= b.Left && x < b.Left+b.Width &&
		y >= b.Top && y < b.Top+b.Height
}

// ResolveClick maps a screen-space click onto the page that contains it:
// the containing box's top-left offset is subtracted and both components
// are divided by the zoom factor. Returns false when no page box contains
// the click. Non-positive zoom is treated as 1.0.
func ResolveClick(boxes []PageBox, x, y, zoom float64) (Click, bool) {
	if zoom <= 0 {
		zoom = 1
	}

	for _, box := range boxes {
		if !box.contains(x, y) {
			continue
		}
		return Click{
			Page: box.Page,
			X:    (x - box.Left) / zoom,
			Y:    (y - box.Top) / zoom,
		}, true
	}

	return Click{}, false
}
