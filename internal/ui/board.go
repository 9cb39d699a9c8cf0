// Package ui renders the shared document and feeds pointer and touch
// input into the canvas engine.
package ui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"

	"canvasboard/internal/engine"
	"canvasboard/internal/geometry"
	"canvasboard/internal/gesture"
)

// BoardWidget is the interactive canvas surface. Mouse and pen input goes
// straight to the engine; touch input is classified by the gesture arbiter
// first, so pans and pinches never mutate layers.
type BoardWidget struct {
	widget.BaseWidget

	engine    *engine.Engine
	coalescer *engine.Coalescer

	mu         sync.Mutex
	panX, panY float32
	buttonHeld bool

	touch      gesture.State
	touchCount int

	statusBar *widget.Label
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Focusable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)
var _ mobile.Touchable = (*BoardWidget)(nil)

// NewBoardWidget creates the canvas surface over an engine.
func NewBoardWidget(e *engine.Engine) *BoardWidget {
	b := &BoardWidget{
		engine:    e,
		coalescer: engine.NewCoalescer(e),
		statusBar: widget.NewLabel("Ready"),
	}
	b.ExtendBaseWidget(b)
	return b
}

// Engine returns the widget's canvas engine.
func (b *BoardWidget) Engine() *engine.Engine { return b.engine }

// StatusBar returns the label the widget reports connection state into.
func (b *BoardWidget) StatusBar() *widget.Label { return b.statusBar }

// SetStatus updates the status bar from any goroutine.
func (b *BoardWidget) SetStatus(text string) {
	fyne.Do(func() { b.statusBar.SetText(text) })
}

// RefreshFromRemote repaints after a remote op was merged. Safe to call
// from network goroutines.
func (b *BoardWidget) RefreshFromRemote() {
	fyne.Do(b.Refresh)
}

// toContent converts a screen position to canvas coordinates.
func (b *BoardWidget) toContent(pos fyne.Position) geometry.Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	return geometry.Point{
		X: float64(pos.X - b.panX),
		Y: float64(pos.Y - b.panY),
	}
}

// toScreen converts canvas coordinates to a screen position.
func (b *BoardWidget) toScreen(p geometry.Point) fyne.Position {
	return fyne.NewPos(float32(p.X)+b.panX, float32(p.Y)+b.panY)
}

func (b *BoardWidget) pointerEvent(pos fyne.Position, kind engine.PointerKind, buttons int) engine.PointerEvent {
	p := b.toContent(pos)
	return engine.PointerEvent{
		X:       p.X,
		Y:       p.Y,
		Kind:    kind,
		Buttons: buttons,
	}
}

// MouseDown feeds a mouse press into the engine.
func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	buttons := 0
	if e.Button == desktop.MouseButtonPrimary {
		buttons = engine.ButtonPrimary
	} else if e.Button == desktop.MouseButtonSecondary {
		buttons = engine.ButtonSecondary
	}
	ev := b.pointerEvent(e.Position, engine.PointerMouse, buttons)
	ev.Shift = e.Modifier&fyne.KeyModifierShift != 0
	ev.Alt = e.Modifier&fyne.KeyModifierAlt != 0

	b.mu.Lock()
	b.buttonHeld = buttons&engine.ButtonPrimary != 0
	b.mu.Unlock()

	b.engine.PointerDown(ev)
	b.Refresh()
}

// MouseUp feeds a mouse release into the engine.
func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	ev := b.pointerEvent(e.Position, engine.PointerMouse, 0)
	ev.Shift = e.Modifier&fyne.KeyModifierShift != 0

	b.mu.Lock()
	b.buttonHeld = false
	b.mu.Unlock()

	b.coalescer.Flush()
	b.engine.PointerUp(ev)
	b.Refresh()
}

// Dragged routes drags to the engine when an interaction is in progress,
// otherwise pans the camera.
func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.mu.Lock()
	held := b.buttonHeld
	b.mu.Unlock()

	if held || b.engine.State().Mode != engine.ModeNone {
		ev := b.pointerEvent(e.Position, engine.PointerMouse, engine.ButtonPrimary)
		b.coalescer.Offer(ev)
		b.coalescer.Flush()
		b.Refresh()
		return
	}

	b.mu.Lock()
	b.panX += e.Dragged.DX
	b.panY += e.Dragged.DY
	b.mu.Unlock()
	b.Refresh()
}

// DragEnd finishes a drag; the engine already saw the pointer-up.
func (b *BoardWidget) DragEnd() {}

// Scrolled pans the camera with the wheel or trackpad.
func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	b.mu.Lock()
	b.panX += e.Scrolled.DX
	b.panY += e.Scrolled.DY
	b.mu.Unlock()
	b.Refresh()
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseOut()                      {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}

// TouchDown classifies the touch before the engine sees anything.
func (b *BoardWidget) TouchDown(e *mobile.TouchEvent) {
	b.mu.Lock()
	b.touchCount++
	count := b.touchCount
	b.mu.Unlock()

	p := b.toContent(e.Position)
	layerID := ""
	if id, ok := b.layerAt(p); ok {
		layerID = id
	}
	b.applyTouch(gesture.Event{
		Phase:      gesture.PhaseBegin,
		TouchCount: count,
		Point:      p,
		LayerID:    layerID,
	})
}

// TouchUp releases one touch.
func (b *BoardWidget) TouchUp(e *mobile.TouchEvent) {
	b.mu.Lock()
	if b.touchCount > 0 {
		b.touchCount--
	}
	count := b.touchCount
	b.mu.Unlock()

	b.applyTouch(gesture.Event{
		Phase:      gesture.PhaseEnd,
		TouchCount: count,
		Point:      b.toContent(e.Position),
	})
}

// TouchCancel aborts the gesture; in-progress layer edits are finalized.
func (b *BoardWidget) TouchCancel(e *mobile.TouchEvent) {
	b.mu.Lock()
	b.touchCount = 0
	b.mu.Unlock()

	b.applyTouch(gesture.Event{
		Phase:      gesture.PhaseCancel,
		TouchCount: 0,
		Point:      b.toContent(e.Position),
	})
}

func (b *BoardWidget) applyTouch(ev gesture.Event) {
	b.mu.Lock()
	prev := b.touch
	b.mu.Unlock()

	next, actions := gesture.Reduce(prev, ev)

	// Camera pans consume the raw movement directly.
	if next.Mode == gesture.CameraPan && prev.Mode == gesture.CameraPan && ev.Phase == gesture.PhaseMove {
		b.mu.Lock()
		b.panX += float32(ev.Point.X - prev.LastPoint.X)
		b.panY += float32(ev.Point.Y - prev.LastPoint.Y)
		b.mu.Unlock()
	}

	b.mu.Lock()
	b.touch = next
	b.mu.Unlock()

	for _, a := range actions {
		pe := engine.PointerEvent{
			X:       a.Point.X,
			Y:       a.Point.Y,
			Kind:    engine.PointerTouch,
			Buttons: engine.ButtonPrimary,
		}
		switch a.Kind {
		case gesture.SynthPointerDown:
			b.engine.PointerDown(pe)
		case gesture.SynthPointerMove:
			b.coalescer.Offer(pe)
			b.coalescer.Flush()
		case gesture.SynthPointerUp:
			b.engine.PointerUp(pe)
		}
	}
	b.Refresh()
}

func (b *BoardWidget) layerAt(p geometry.Point) (string, bool) {
	layers := b.engine.Document().Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		if layers[i].Bounds().Contains(p) {
			return layers[i].ID, true
		}
	}
	return "", false
}

// FocusGained is part of fyne.Focusable.
func (b *BoardWidget) FocusGained() {}

// FocusLost is part of fyne.Focusable.
func (b *BoardWidget) FocusLost() {}

// TypedRune is part of fyne.Focusable.
func (b *BoardWidget) TypedRune(rune) {}

// TypedKey handles keyboard shortcuts: Delete removes the selection,
// Escape disarms the active tool.
func (b *BoardWidget) TypedKey(e *fyne.KeyEvent) {
	switch e.Name {
	case fyne.KeyDelete, fyne.KeyBackspace:
		b.DeleteSelection()
	case fyne.KeyEscape:
		b.engine.CancelTool()
		b.Refresh()
	}
}

// DeleteSelection removes the selected layers.
func (b *BoardWidget) DeleteSelection() {
	b.engine.DeleteSelection()
	b.Refresh()
}

// CreateRenderer builds the widget renderer.
func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardRenderer{board: b}
	r.background = canvas.NewRectangle(color.NRGBA{R: 245, G: 246, B: 248, A: 255})
	return r
}
