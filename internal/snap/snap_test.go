package snap

import (
	"testing"

	"canvasboard/internal/geometry"
)

func candidateAt(id string, x, y, w, h float64) Candidate {
	return Candidate{ID: id, Bounds: geometry.Rect{X: x, Y: y, Width: w, Height: h}}
}

func TestAdjustThreshold(t *testing.T) {
	const threshold = 5.0
	candidates := []Candidate{candidateAt("a", 100, 0, 50, 50)}

	tests := []struct {
		name    string
		movingX float64
		wantX   float64
		snapped bool
	}{
		{"one inside threshold snaps", 100 + threshold - 1, 100, true},
		{"one outside threshold does not", 100 + threshold + 1, 100 + threshold + 1, false},
		{"exactly at threshold snaps", 100 + threshold, 100, true},
		{"already aligned stays put", 100, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moving := geometry.Rect{X: tt.movingX, Y: 500, Width: 50, Height: 50}
			res := Adjust(moving, candidates, nil, threshold)
			if res.X != tt.wantX {
				t.Errorf("X = %v, want %v", res.X, tt.wantX)
			}
			if tt.snapped && len(res.Guides) == 0 {
				t.Error("expected a guide")
			}
			if !tt.snapped && len(res.Guides) != 0 {
				t.Errorf("unexpected guides: %+v", res.Guides)
			}
			// Y is far from everything and must never be touched.
			if res.Y != moving.Y {
				t.Errorf("Y = %v, want %v", res.Y, moving.Y)
			}
		})
	}
}

func TestAdjustAxesIndependent(t *testing.T) {
	candidates := []Candidate{
		candidateAt("left", 100, 1000, 50, 50),
		candidateAt("above", 1000, 200, 50, 50),
	}
	moving := geometry.Rect{X: 103, Y: 198, Width: 50, Height: 50}
	res := Adjust(moving, candidates, nil, 5)

	if res.X != 100 {
		t.Errorf("X = %v, want 100", res.X)
	}
	if res.Y != 200 {
		t.Errorf("Y = %v, want 200", res.Y)
	}
	if len(res.Guides) != 2 {
		t.Fatalf("guides = %d, want 2", len(res.Guides))
	}

	var axes [2]bool
	for _, g := range res.Guides {
		axes[g.Axis] = true
	}
	if !axes[AxisX] || !axes[AxisY] {
		t.Errorf("want one guide per axis, got %+v", res.Guides)
	}
}

func TestAdjustKindsDoNotMix(t *testing.T) {
	// The candidate's center X is 50; the moving left edge passes within
	// 2px of it but edges never align with centers.
	candidates := []Candidate{candidateAt("a", 0, 0, 100, 100)}
	moving := geometry.Rect{X: 48, Y: 500, Width: 200, Height: 50}

	res := Adjust(moving, candidates, nil, 5)
	if res.X != moving.X {
		t.Errorf("X = %v, want unchanged %v", res.X, moving.X)
	}
}

func TestAdjustCenterToCenter(t *testing.T) {
	candidates := []Candidate{candidateAt("a", 0, 0, 100, 100)}
	// Moving center X is 53, candidate center is 50; the edges are all
	// further away than the threshold.
	moving := geometry.Rect{X: 13, Y: 500, Width: 80, Height: 50}

	res := Adjust(moving, candidates, nil, 5)
	if res.X != 10 {
		t.Errorf("X = %v, want 10 (centers aligned)", res.X)
	}
	if len(res.Guides) != 1 || res.Guides[0].Kind != KindCenter {
		t.Errorf("want one center guide, got %+v", res.Guides)
	}
}

func TestAdjustRightEdgeToLeftEdge(t *testing.T) {
	// Abutting layers: the moving right edge snaps to the candidate's left
	// edge.
	candidates := []Candidate{candidateAt("a", 200, 0, 50, 50)}
	moving := geometry.Rect{X: 147, Y: 10, Width: 50, Height: 50}

	res := Adjust(moving, candidates, nil, 5)
	if res.X != 150 {
		t.Errorf("X = %v, want 150", res.X)
	}
}

func TestAdjustParentFrame(t *testing.T) {
	parent := geometry.Rect{X: 0, Y: 0, Width: 400, Height: 300}
	moving := geometry.Rect{X: 3, Y: 150, Width: 50, Height: 50}

	res := Adjust(moving, nil, &parent, 5)
	if res.X != 0 {
		t.Errorf("X = %v, want 0 (snapped to frame edge)", res.X)
	}
}

func TestGuideSpansBothBoxes(t *testing.T) {
	candidates := []Candidate{candidateAt("a", 100, 0, 50, 50)}
	moving := geometry.Rect{X: 102, Y: 300, Width: 50, Height: 50}

	res := Adjust(moving, candidates, nil, 5)
	if len(res.Guides) != 1 {
		t.Fatalf("guides = %d, want 1", len(res.Guides))
	}
	g := res.Guides[0]
	if g.From.Y != 0 {
		t.Errorf("guide top = %v, want 0", g.From.Y)
	}
	if g.To.Y != 350 {
		t.Errorf("guide bottom = %v, want 350", g.To.Y)
	}
	if g.SourceID != "a" {
		t.Errorf("source = %q, want %q", g.SourceID, "a")
	}
}
