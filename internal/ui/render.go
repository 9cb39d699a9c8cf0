package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"canvasboard/internal/engine"
	"canvasboard/internal/geometry"
	"canvasboard/internal/state"
)

const curveSegments = 24

var (
	strokeColor    = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
	selectionColor = color.NRGBA{R: 66, G: 133, B: 244, A: 255}
	marqueeFill    = color.NRGBA{R: 66, G: 133, B: 244, A: 40}
	guideColor     = color.NRGBA{R: 255, G: 64, B: 129, A: 255}
	frameTitleGray = color.NRGBA{R: 120, G: 120, B: 120, A: 255}
)

type boardRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
	size       fyne.Size
}

func (r *boardRenderer) Destroy() {}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.size = size
	r.background.Resize(size)
}

func (r *boardRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

func (r *boardRenderer) Refresh() {
	canvas.Refresh(r.board)
}

// Objects rebuilds the scene from the document every frame: layers in
// z-order, then snap guides, selection handles, and interaction previews
// on top.
func (r *boardRenderer) Objects() []fyne.CanvasObject {
	b := r.board
	objects := []fyne.CanvasObject{r.background}

	for _, l := range b.engine.Document().Layers() {
		objects = append(objects, r.layerObjects(l)...)
	}

	objects = append(objects, r.guideObjects()...)
	objects = append(objects, r.selectionObjects()...)
	objects = append(objects, r.previewObjects()...)
	return objects
}

func (r *boardRenderer) layerObjects(l state.Layer) []fyne.CanvasObject {
	b := r.board
	bounds := l.Bounds()
	fill := toNRGBA(l.Fill)

	width := float32(l.LineWidth())

	switch l.Type {
	case state.TypeRectangle, state.TypeNote, state.TypeTodo,
		state.TypeImage, state.TypeVideo, state.TypeFile, state.TypeTable:
		rect := canvas.NewRectangle(fill)
		rect.StrokeColor = strokeColor
		rect.StrokeWidth = width
		rect.Move(b.toScreen(geometry.Point{X: bounds.X, Y: bounds.Y}))
		rect.Resize(fyne.NewSize(float32(bounds.Width), float32(bounds.Height)))
		objects := []fyne.CanvasObject{rect}
		if l.Value != "" {
			objects = append(objects, r.textAt(l.Value, bounds.X+6, bounds.Y+4, strokeColor))
		}
		return objects

	case state.TypeEllipse:
		circle := canvas.NewCircle(fill)
		circle.StrokeColor = strokeColor
		circle.StrokeWidth = width
		circle.Move(b.toScreen(geometry.Point{X: bounds.X, Y: bounds.Y}))
		circle.Resize(fyne.NewSize(float32(bounds.Width), float32(bounds.Height)))
		return []fyne.CanvasObject{circle}

	case state.TypeText:
		return []fyne.CanvasObject{r.textAt(l.Value, bounds.X, bounds.Y, strokeColor)}

	case state.TypeFrame:
		rect := canvas.NewRectangle(color.Transparent)
		rect.StrokeColor = strokeColor
		rect.StrokeWidth = width
		rect.Move(b.toScreen(geometry.Point{X: bounds.X, Y: bounds.Y}))
		rect.Resize(fyne.NewSize(float32(bounds.Width), float32(bounds.Height)))
		title := l.Title
		if title == "" {
			title = "Frame"
		}
		return []fyne.CanvasObject{rect, r.textAt(title, bounds.X, bounds.Y-20, frameTitleGray)}

	case state.TypePath:
		return r.pathObjects(l)

	case state.TypeArrow, state.TypeLine:
		return r.connectorObjects(l)
	}
	return nil
}

func (r *boardRenderer) pathObjects(l state.Layer) []fyne.CanvasObject {
	if len(l.Points) < 2 {
		return nil
	}
	width := float32(l.LineWidth())
	objects := make([]fyne.CanvasObject, 0, len(l.Points)-1)
	for i := 1; i < len(l.Points); i++ {
		a := l.Points[i-1]
		pt := l.Points[i]
		objects = append(objects, r.lineBetween(
			geometry.Point{X: l.X + a.X, Y: l.Y + a.Y},
			geometry.Point{X: l.X + pt.X, Y: l.Y + pt.Y},
			strokeColor, width,
		))
	}
	return objects
}

func (r *boardRenderer) connectorObjects(l state.Layer) []fyne.CanvasObject {
	var objects []fyne.CanvasObject
	start := l.Start()
	end := l.End()
	width := float32(l.LineWidth())

	if l.Curved {
		prev := start
		for i := 1; i <= curveSegments; i++ {
			t := float64(i) / curveSegments
			p := cubicAt(start,
				geometry.Point{X: l.Control1X, Y: l.Control1Y},
				geometry.Point{X: l.Control2X, Y: l.Control2Y},
				end, t)
			objects = append(objects, r.lineBetween(prev, p, strokeColor, width))
			prev = p
		}
	} else {
		objects = append(objects, r.lineBetween(start, end, strokeColor, width))
	}

	if l.Type == state.TypeArrow {
		from := start
		if l.Curved {
			from = geometry.Point{X: l.Control2X, Y: l.Control2Y}
		}
		left, right, ok := arrowHead(from, end, 10)
		if ok {
			objects = append(objects,
				r.lineBetween(end, left, strokeColor, width),
				r.lineBetween(end, right, strokeColor, width))
		}
	}
	return objects
}

func (r *boardRenderer) guideObjects() []fyne.CanvasObject {
	var objects []fyne.CanvasObject
	for _, g := range r.board.engine.Guides() {
		objects = append(objects, r.lineBetween(g.From, g.To, guideColor, 1))
	}
	return objects
}

func (r *boardRenderer) selectionObjects() []fyne.CanvasObject {
	b := r.board
	sel := b.engine.Selection().Selection()
	if len(sel) == 0 {
		return nil
	}

	var bounds geometry.Rect
	found := false
	for _, id := range sel {
		l, ok := b.engine.Document().Get(id)
		if !ok {
			continue
		}
		if !found {
			bounds = l.Bounds()
			found = true
		} else {
			bounds = bounds.Union(l.Bounds())
		}
	}
	if !found {
		return nil
	}

	outline := canvas.NewRectangle(color.Transparent)
	outline.StrokeColor = selectionColor
	outline.StrokeWidth = 1
	outline.Move(b.toScreen(geometry.Point{X: bounds.X, Y: bounds.Y}))
	outline.Resize(fyne.NewSize(float32(bounds.Width), float32(bounds.Height)))
	objects := []fyne.CanvasObject{outline}

	handlePoints := []geometry.Point{
		{X: bounds.X, Y: bounds.Y},
		{X: bounds.Right(), Y: bounds.Y},
		{X: bounds.X, Y: bounds.Bottom()},
		{X: bounds.Right(), Y: bounds.Bottom()},
		{X: bounds.CenterX(), Y: bounds.Y},
		{X: bounds.CenterX(), Y: bounds.Bottom()},
		{X: bounds.X, Y: bounds.CenterY()},
		{X: bounds.Right(), Y: bounds.CenterY()},
	}
	size := float32(engine.HandleSize)
	for _, p := range handlePoints {
		h := canvas.NewRectangle(color.White)
		h.StrokeColor = selectionColor
		h.StrokeWidth = 1
		pos := b.toScreen(p)
		h.Move(fyne.NewPos(pos.X-size/2, pos.Y-size/2))
		h.Resize(fyne.NewSize(size, size))
		objects = append(objects, h)
	}
	return objects
}

func (r *boardRenderer) previewObjects() []fyne.CanvasObject {
	b := r.board
	st := b.engine.State()

	switch st.Mode {
	case engine.ModeSelectionNet:
		m := st.Marquee()
		rect := canvas.NewRectangle(marqueeFill)
		rect.StrokeColor = selectionColor
		rect.StrokeWidth = 1
		rect.Move(b.toScreen(geometry.Point{X: m.X, Y: m.Y}))
		rect.Resize(fyne.NewSize(float32(m.Width), float32(m.Height)))
		return []fyne.CanvasObject{rect}

	case engine.ModeDrawing:
		if st.PendingType == state.TypeArrow || st.PendingType == state.TypeLine {
			return []fyne.CanvasObject{r.lineBetween(st.Origin, st.Current, selectionColor, 2)}
		}
		box := geometry.FromPoints(st.Origin, st.Current)
		rect := canvas.NewRectangle(color.Transparent)
		rect.StrokeColor = selectionColor
		rect.StrokeWidth = 1
		rect.Move(b.toScreen(geometry.Point{X: box.X, Y: box.Y}))
		rect.Resize(fyne.NewSize(float32(box.Width), float32(box.Height)))
		return []fyne.CanvasObject{rect}

	case engine.ModePencil:
		if len(st.Stroke) < 2 {
			return nil
		}
		objects := make([]fyne.CanvasObject, 0, len(st.Stroke)-1)
		for i := 1; i < len(st.Stroke); i++ {
			a := st.Stroke[i-1]
			p := st.Stroke[i]
			objects = append(objects, r.lineBetween(
				geometry.Point{X: a.X, Y: a.Y},
				geometry.Point{X: p.X, Y: p.Y},
				strokeColor, 2,
			))
		}
		return objects
	}
	return nil
}

func (r *boardRenderer) lineBetween(from, to geometry.Point, c color.Color, width float32) *canvas.Line {
	line := canvas.NewLine(c)
	line.StrokeWidth = width
	line.Position1 = r.board.toScreen(from)
	line.Position2 = r.board.toScreen(to)
	return line
}

func (r *boardRenderer) textAt(value string, x, y float64, c color.Color) *canvas.Text {
	t := canvas.NewText(value, c)
	t.TextSize = 13
	t.Move(r.board.toScreen(geometry.Point{X: x, Y: y}))
	return t
}

func toNRGBA(c state.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

func cubicAt(p0, c1, c2, p1 geometry.Point, t float64) geometry.Point {
	u := 1 - t
	return geometry.Point{
		X: u*u*u*p0.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*p1.X,
		Y: u*u*u*p0.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*p1.Y,
	}
}

func arrowHead(from, tip geometry.Point, size float64) (left, right geometry.Point, ok bool) {
	dx := tip.X - from.X
	dy := tip.Y - from.Y
	length := geometry.Dist(from, tip)
	if length == 0 {
		return geometry.Point{}, geometry.Point{}, false
	}
	ux, uy := dx/length, dy/length
	// Rotate the reversed direction by roughly 30 degrees either way.
	const cos, sin = 0.866, 0.5
	left = geometry.Point{
		X: tip.X - size*(ux*cos-uy*sin),
		Y: tip.Y - size*(ux*sin+uy*cos),
	}
	right = geometry.Point{
		X: tip.X - size*(ux*cos+uy*sin),
		Y: tip.Y - size*(-ux*sin+uy*cos),
	}
	return left, right, true
}
