package gesture

import (
	"testing"

	"canvasboard/internal/geometry"
)

func pt(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }

func TestBeginOverEmptyCanvasPans(t *testing.T) {
	s, actions := Reduce(State{}, Event{Phase: PhaseBegin, TouchCount: 1, Point: pt(100, 100)})
	if s.Mode != CameraPan {
		t.Fatalf("mode = %v, want camera pan", s.Mode)
	}
	if len(actions) != 0 {
		t.Errorf("actions = %v, want none for a camera gesture", actions)
	}
}

func TestBeginOverLayerSelects(t *testing.T) {
	s, actions := Reduce(State{}, Event{Phase: PhaseBegin, TouchCount: 1, Point: pt(50, 50), LayerID: "rect"})
	if s.Mode != LayerSelect {
		t.Fatalf("mode = %v, want layer select", s.Mode)
	}
	if s.TargetLayerID != "rect" {
		t.Errorf("target = %q", s.TargetLayerID)
	}
	if len(actions) != 1 || actions[0].Kind != SynthPointerDown {
		t.Fatalf("actions = %v, want one synthesized pointer down", actions)
	}
}

func TestDragThreshold(t *testing.T) {
	s, _ := Reduce(State{}, Event{Phase: PhaseBegin, TouchCount: 1, Point: pt(0, 0), LayerID: "rect"})

	// 3+4=7 cumulative, still under the 8px threshold: selection only.
	s, actions := Reduce(s, Event{Phase: PhaseMove, TouchCount: 1, Point: pt(3, 4)})
	if s.Mode != LayerSelect {
		t.Fatalf("mode = %v, want still layer select", s.Mode)
	}
	if len(actions) != 0 {
		t.Errorf("actions = %v, want none under threshold", actions)
	}

	// Another 2px crosses it.
	s, actions = Reduce(s, Event{Phase: PhaseMove, TouchCount: 1, Point: pt(5, 4)})
	if s.Mode != LayerDrag {
		t.Fatalf("mode = %v, want layer drag", s.Mode)
	}
	if len(actions) != 1 || actions[0].Kind != SynthPointerMove {
		t.Fatalf("actions = %v, want one move", actions)
	}

	// Subsequent moves keep streaming.
	_, actions = Reduce(s, Event{Phase: PhaseMove, TouchCount: 1, Point: pt(20, 20)})
	if len(actions) != 1 || actions[0].Kind != SynthPointerMove {
		t.Fatalf("actions = %v", actions)
	}
}

func TestSecondTouchOverridesLayerDrag(t *testing.T) {
	s, _ := Reduce(State{}, Event{Phase: PhaseBegin, TouchCount: 1, Point: pt(0, 0), LayerID: "rect"})
	s, _ = Reduce(s, Event{Phase: PhaseMove, TouchCount: 1, Point: pt(20, 0)})
	if s.Mode != LayerDrag {
		t.Fatalf("setup failed, mode = %v", s.Mode)
	}

	s, actions := Reduce(s, Event{Phase: PhaseBegin, TouchCount: 2, Point: pt(100, 100)})
	if s.Mode != CameraPinch {
		t.Fatalf("mode = %v, want camera pinch", s.Mode)
	}
	// The in-progress drag is finalized, never abandoned.
	if len(actions) != 1 || actions[0].Kind != SynthPointerUp {
		t.Fatalf("actions = %v, want a synthesized pointer up", actions)
	}
	if actions[0].Point != pt(20, 0) {
		t.Errorf("up at %v, want last drag point", actions[0].Point)
	}
}

func TestSecondTouchDuringSelectAlsoSynthesizesUp(t *testing.T) {
	s, _ := Reduce(State{}, Event{Phase: PhaseBegin, TouchCount: 1, Point: pt(0, 0), LayerID: "rect"})
	_, actions := Reduce(s, Event{Phase: PhaseBegin, TouchCount: 2, Point: pt(50, 50)})
	if len(actions) != 1 || actions[0].Kind != SynthPointerUp {
		t.Fatalf("actions = %v, want pointer up before pinch", actions)
	}
}

func TestPinchReleasingOneFingerContinuesAsPan(t *testing.T) {
	s := State{Mode: CameraPinch, TouchCount: 2, LastPoint: pt(100, 100)}

	s, actions := Reduce(s, Event{Phase: PhaseEnd, TouchCount: 1, Point: pt(110, 100)})
	if s.Mode != CameraPan {
		t.Fatalf("mode = %v, want camera pan", s.Mode)
	}
	if len(actions) != 0 {
		t.Errorf("actions = %v, want none", actions)
	}
}

func TestAllFingersLiftedGoesIdle(t *testing.T) {
	tests := []struct {
		name   string
		mode   Mode
		wantUp bool
	}{
		{"from pan", CameraPan, false},
		{"from pinch", CameraPinch, false},
		{"from select", LayerSelect, true},
		{"from drag", LayerDrag, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{Mode: tt.mode, TouchCount: 1}
			next, actions := Reduce(s, Event{Phase: PhaseEnd, TouchCount: 0, Point: pt(5, 5)})
			if next.Mode != Idle {
				t.Fatalf("mode = %v, want idle", next.Mode)
			}
			gotUp := len(actions) == 1 && actions[0].Kind == SynthPointerUp
			if gotUp != tt.wantUp {
				t.Errorf("up action = %v, want %v", gotUp, tt.wantUp)
			}
		})
	}
}

func TestCancelTreatedAsEnd(t *testing.T) {
	s, _ := Reduce(State{}, Event{Phase: PhaseBegin, TouchCount: 1, Point: pt(0, 0), LayerID: "rect"})
	next, actions := Reduce(s, Event{Phase: PhaseCancel, TouchCount: 0, Point: pt(0, 0)})
	if next.Mode != Idle {
		t.Fatalf("mode = %v, want idle", next.Mode)
	}
	if len(actions) != 1 || actions[0].Kind != SynthPointerUp {
		t.Errorf("actions = %v, want pointer up", actions)
	}
}

func TestCameraModesNeverSynthesize(t *testing.T) {
	s, _ := Reduce(State{}, Event{Phase: PhaseBegin, TouchCount: 1, Point: pt(0, 0)})
	for _, p := range []geometry.Point{pt(30, 0), pt(60, 10), pt(90, 40)} {
		var actions []Action
		s, actions = Reduce(s, Event{Phase: PhaseMove, TouchCount: 1, Point: p})
		if len(actions) != 0 {
			t.Fatalf("pan move synthesized %v", actions)
		}
	}
	if !s.Mode.IsCamera() {
		t.Errorf("mode = %v, want a camera mode", s.Mode)
	}
}
