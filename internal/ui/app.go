package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// RunApp opens the main window and blocks until it is closed. shareLink is
// shown in the footer when hosting so other participants can join.
func RunApp(shareLink string, board *BoardWidget) {
	a := app.New()
	win := a.NewWindow("Canvas Board")
	win.Resize(fyne.NewSize(1280, 800))

	toolbar := NewToolbar(board, win)

	footer := container.NewHBox(board.StatusBar())
	if shareLink != "" {
		link := widget.NewEntry()
		link.SetText(shareLink)
		footer.Add(widget.NewLabel("Share:"))
		footer.Add(link)
	}

	content := container.NewBorder(toolbar, footer, nil, nil, board)
	win.SetContent(content)
	win.Canvas().Focus(board)
	win.ShowAndRun()
}
