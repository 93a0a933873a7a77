package signing

import "testing"

func TestResolveClick(t *testing.T) {
	// Two pages stacked vertically at 2x zoom with a 20px gap, the way a
	// scrollable document viewer lays them out.
	boxes := []PageBox{
		{Page: 1, Left: 50, Top: 0, Width: 1224, Height: 1584},
		{Page: 2, Left: 50, Top: 1604, Width: 1224, Height: 1584},
	}

	tests := []struct {
		name     string
		x, y     float64
		zoom     float64
		want     Click
		resolved bool
	}{
		{
			name:     "center of first page",
			x:        662,
			y:        792,
			zoom:     2,
			want:     Click{Page: 1, X: 306, Y: 396},
			resolved: true,
		},
		{
			name:     "top-left corner of second page",
			x:        50,
			y:        1604,
			zoom:     2,
			want:     Click{Page: 2, X: 0, Y: 0},
			resolved: true,
		},
		{
			name:     "click in the gap between pages",
			x:        662,
			y:        1594,
			zoom:     2,
			resolved: false,
		},
		{
			name:     "click left of every page",
			x:        10,
			y:        100,
			zoom:     2,
			resolved: false,
		},
		{
			name:     "non-positive zoom treated as identity",
			x:        150,
			y:        100,
			zoom:     0,
			want:     Click{Page: 1, X: 100, Y: 100},
			resolved: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveClick(boxes, tt.x, tt.y, tt.zoom)
			if ok != tt.resolved {
				t.Fatalf("resolved = %v, want %v", ok, tt.resolved)
			}
			if ok && got != tt.want {
				t.Errorf("ResolveClick() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveClickUnzoomedSinglePage(t *testing.T) {
	boxes := []PageBox{{Page: 1, Left: 0, Top: 0, Width: 612, Height: 792}}

	got, ok := ResolveClick(boxes, 306, 396, 1)
	if !ok {
		t.Fatal("click inside the page did not resolve")
	}
	if got.Page != 1 || got.X != 306 || got.Y != 396 {
		t.Errorf("ResolveClick() = %+v", got)
	}
}
