package main

import (
	"fmt"
	"net/url"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/typoduck/internal/licenses"
	"github.com/oukeidos/typoduck/internal/version"
)

const projectURL = "https://github.com/oukeidos/typoduck"

func buildAboutTab(w fyne.Window) fyne.CanvasObject {
	duck := canvas.NewImageFromResource(appIcon())
	duck.ScaleMode = canvas.ImageScalePixels
	duck.FillMode = canvas.ImageFillContain
	duck.SetMinSize(fyne.NewSize(64, 64))

	title := widget.NewLabelWithStyle(version.Short(), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	blurb := widget.NewLabel("Select some text, press your shortcut, and the duck fixes the typos with Gemini.")
	blurb.Wrapping = fyne.TextWrapWord

	link, _ := url.Parse(projectURL)
	header := container.NewBorder(nil, nil, duck, nil,
		container.NewVBox(title, blurb, widget.NewHyperlink("Project page", link)))

	build := widget.NewForm(
		widget.NewFormItem("Commit", widget.NewLabel(version.Commit)),
		widget.NewFormItem("Built", widget.NewLabel(version.BuildDate)),
	)

	mods := licenses.Modules()
	notices := widget.NewButton("View notices", func() {
		showNotices(w)
	})
	if len(mods) == 0 {
		notices.Disable()
	}

	return container.NewPadded(container.NewVScroll(container.NewVBox(
		header,
		widget.NewSeparator(),
		build,
		widget.NewSeparator(),
		widget.NewLabel(fmt.Sprintf("typoduck is built on %d third-party modules.", len(mods))),
		notices,
	)))
}

// showNotices renders the bundled notices, which are markdown.
func showNotices(w fyne.Window) {
	text := widget.NewRichTextFromMarkdown(licenses.NoticesText())
	text.Wrapping = fyne.TextWrapWord
	scroll := container.NewVScroll(text)
	scroll.SetMinSize(fyne.NewSize(520, 400))
	dialog.ShowCustom("Third-party notices", "Close", scroll, w)
}
