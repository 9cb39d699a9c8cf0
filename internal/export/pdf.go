// Package export renders a board document to a PDF file.
package export

import (
	"math"

	"github.com/jung-kurt/gofpdf"

	"canvasboard/internal/state"
)

const pageMargin = 24.0

// PDF writes every layer of the document to a single landscape A4 page,
// scaled so the whole board fits.
func PDF(path string, doc *state.Document) error {
	p := gofpdf.New("L", "pt", "A4", "")
	p.AddPage()
	p.SetFont("Helvetica", "", 10)
	p.SetDrawColor(40, 40, 40)
	p.SetLineWidth(0.8)

	layers := doc.Layers()
	pageW, pageH := p.GetPageSize()
	tr := fitTransform(layers, pageW, pageH)

	for _, l := range layers {
		drawLayer(p, l, tr)
	}
	return p.OutputFileAndClose(path)
}

// transform maps canvas coordinates onto the page.
type transform struct {
	scale   float64
	offsetX float64
	offsetY float64
	originX float64
	originY float64
}

func (t transform) x(v float64) float64 { return (v-t.originX)*t.scale + t.offsetX }
func (t transform) y(v float64) float64 { return (v-t.originY)*t.scale + t.offsetY }
func (t transform) d(v float64) float64 { return v * t.scale }

func fitTransform(layers []state.Layer, pageW, pageH float64) transform {
	if len(layers) == 0 {
		return transform{scale: 1, offsetX: pageMargin, offsetY: pageMargin}
	}
	content := layers[0].Bounds()
	for _, l := range layers[1:] {
		content = content.Union(l.Bounds())
	}
	usableW := pageW - 2*pageMargin
	usableH := pageH - 2*pageMargin
	scale := 1.0
	if content.Width > 0 {
		scale = math.Min(scale, usableW/content.Width)
	}
	if content.Height > 0 {
		scale = math.Min(scale, usableH/content.Height)
	}
	return transform{
		scale:   scale,
		offsetX: pageMargin,
		offsetY: pageMargin,
		originX: content.X,
		originY: content.Y,
	}
}

func drawLayer(p *gofpdf.Fpdf, l state.Layer, tr transform) {
	b := l.Bounds()
	p.SetFillColor(int(l.Fill.R), int(l.Fill.G), int(l.Fill.B))
	p.SetLineWidth(tr.d(l.LineWidth()) * 0.4)

	switch l.Type {
	case state.TypeRectangle, state.TypeNote, state.TypeTodo:
		p.Rect(tr.x(b.X), tr.y(b.Y), tr.d(b.Width), tr.d(b.Height), "FD")
		if l.Value != "" {
			p.Text(tr.x(b.X)+4, tr.y(b.Y)+12, l.Value)
		}
	case state.TypeEllipse:
		p.Ellipse(tr.x(b.CenterX()), tr.y(b.CenterY()), tr.d(b.Width/2), tr.d(b.Height/2), 0, "FD")
	case state.TypeText:
		p.Text(tr.x(b.X), tr.y(b.Y)+12, l.Value)
	case state.TypeFrame:
		p.Rect(tr.x(b.X), tr.y(b.Y), tr.d(b.Width), tr.d(b.Height), "D")
		if l.Title != "" {
			p.Text(tr.x(b.X)+2, tr.y(b.Y)-3, l.Title)
		}
	case state.TypePath:
		drawPath(p, l, tr)
	case state.TypeArrow, state.TypeLine:
		drawConnector(p, l, tr)
	case state.TypeImage, state.TypeVideo, state.TypeFile, state.TypeTable:
		// Media placeholders: an outlined box labeled with the kind.
		p.Rect(tr.x(b.X), tr.y(b.Y), tr.d(b.Width), tr.d(b.Height), "D")
		p.Text(tr.x(b.X)+4, tr.y(b.Y)+12, string(l.Type))
	}
}

func drawPath(p *gofpdf.Fpdf, l state.Layer, tr transform) {
	if len(l.Points) < 2 {
		return
	}
	for i := 1; i < len(l.Points); i++ {
		a := l.Points[i-1]
		b := l.Points[i]
		p.Line(
			tr.x(l.X+a.X), tr.y(l.Y+a.Y),
			tr.x(l.X+b.X), tr.y(l.Y+b.Y),
		)
	}
}

func drawConnector(p *gofpdf.Fpdf, l state.Layer, tr transform) {
	if l.Curved {
		p.CurveBezierCubic(
			tr.x(l.StartX), tr.y(l.StartY),
			tr.x(l.Control1X), tr.y(l.Control1Y),
			tr.x(l.Control2X), tr.y(l.Control2Y),
			tr.x(l.EndX), tr.y(l.EndY),
			"D",
		)
	} else {
		p.Line(tr.x(l.StartX), tr.y(l.StartY), tr.x(l.EndX), tr.y(l.EndY))
	}
	if l.Type == state.TypeArrow {
		drawArrowHead(p, l, tr)
	}
}

// drawArrowHead renders a small V at the end point, oriented along the
// final segment.
func drawArrowHead(p *gofpdf.Fpdf, l state.Layer, tr transform) {
	fromX, fromY := l.StartX, l.StartY
	if l.Curved {
		fromX, fromY = l.Control2X, l.Control2Y
	}
	dx := l.EndX - fromX
	dy := l.EndY - fromY
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	size := 8.0
	leftX := l.EndX - size*(ux*math.Cos(0.5)-uy*math.Sin(0.5))
	leftY := l.EndY - size*(ux*math.Sin(0.5)+uy*math.Cos(0.5))
	rightX := l.EndX - size*(ux*math.Cos(-0.5)-uy*math.Sin(-0.5))
	rightY := l.EndY - size*(ux*math.Sin(-0.5)+uy*math.Cos(-0.5))
	p.Line(tr.x(l.EndX), tr.y(l.EndY), tr.x(leftX), tr.y(leftY))
	p.Line(tr.x(l.EndX), tr.y(l.EndY), tr.x(rightX), tr.y(rightY))
}
