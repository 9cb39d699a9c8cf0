package ui

import (
	"image/color"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"canvasboard/internal/export"
	"canvasboard/internal/state"
)

// colorSwatch is a tappable fill color square.
type colorSwatch struct {
	widget.BaseWidget
	Color    state.Color
	OnTapped func(state.Color)
}

func newColorSwatch(c state.Color, tapped func(state.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(toNRGBA(s.Color))
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// NewToolbar assembles the tool strip: selection, freehand, shape and
// connector insertion, frames, fill colors, and file actions.
func NewToolbar(board *BoardWidget, win fyne.Window) fyne.CanvasObject {
	e := board.Engine()

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.MailComposeIcon(), func() {
			e.CancelTool()
			board.Refresh()
		}), // Select
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			e.ArmPencil()
		}), // Pencil
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.CheckButtonIcon(), func() {
			e.ArmInsert(state.TypeRectangle)
		}), // Rectangle
		widget.NewToolbarAction(theme.RadioButtonIcon(), func() {
			e.ArmInsert(state.TypeEllipse)
		}), // Ellipse
		widget.NewToolbarAction(theme.DocumentIcon(), func() {
			e.ArmInsert(state.TypeNote)
		}), // Note
		widget.NewToolbarAction(theme.ContentPasteIcon(), func() {
			e.ArmInsert(state.TypeText)
		}), // Text
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.NavigateNextIcon(), func() {
			e.ArmInsert(state.TypeArrow)
		}), // Arrow
		widget.NewToolbarAction(theme.ContentRemoveIcon(), func() {
			e.ArmInsert(state.TypeLine)
		}), // Line
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewFullScreenIcon(), func() {
			e.ArmFrameInsert("16:9")
		}), // Frame
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			board.DeleteSelection()
		}),
	)

	onColorTapped := func(c state.Color) {
		e.SetInsertFill(c)
	}
	colorBox := container.NewHBox(
		newColorSwatch(state.Color{R: 252, G: 225, B: 156}, onColorTapped), // Yellow
		newColorSwatch(state.Color{R: 255, G: 175, B: 175}, onColorTapped), // Red
		newColorSwatch(state.Color{R: 170, G: 220, B: 170}, onColorTapped), // Green
		newColorSwatch(state.Color{R: 165, G: 200, B: 250}, onColorTapped), // Blue
		newColorSwatch(state.Color{R: 235, G: 235, B: 235}, onColorTapped), // Gray
	)

	widthSelect := widget.NewSelect([]string{"Thin", "Medium", "Thick"}, func(choice string) {
		switch choice {
		case "Thin":
			e.SetInsertStrokeWidth(1)
		case "Medium":
			e.SetInsertStrokeWidth(2)
		case "Thick":
			e.SetInsertStrokeWidth(4)
		}
	})
	widthSelect.SetSelected("Medium")

	fileActions := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			saveBoard(board, win)
		}),
		widget.NewToolbarAction(theme.FolderOpenIcon(), func() {
			loadBoard(board, win)
		}),
		widget.NewToolbarAction(theme.DownloadIcon(), func() {
			exportBoardPDF(board, win)
		}),
	)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Fill:"),
		colorBox,
		widthSelect,
		widget.NewSeparator(),
		fileActions,
		layout.NewSpacer(),
	)
}

func saveBoard(board *BoardWidget, win fyne.Window) {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		if err := board.Engine().Document().Save(writer); err != nil {
			log.Printf("[UI] save failed: %v", err)
			board.SetStatus("Error saving board")
			return
		}
		board.SetStatus("Board saved")
	}, win)
}

func loadBoard(board *BoardWidget, win fyne.Window) {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		if err := board.Engine().Document().Load(reader); err != nil {
			log.Printf("[UI] load failed: %v", err)
			board.SetStatus("Error loading board")
			return
		}
		board.Refresh()
		board.SetStatus("Board loaded")
	}, win)
}

func exportBoardPDF(board *BoardWidget, win fyne.Window) {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := export.PDF(path, board.Engine().Document()); err != nil {
			log.Printf("[UI] pdf export failed: %v", err)
			board.SetStatus("Error exporting PDF")
			return
		}
		board.SetStatus("Exported " + path)
	}, win)
}
