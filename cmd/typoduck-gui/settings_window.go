package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/typoduck/internal/apperrors"
	"github.com/oukeidos/typoduck/internal/auth"
	"github.com/oukeidos/typoduck/internal/fixer"
	"github.com/oukeidos/typoduck/internal/logger"
	"github.com/oukeidos/typoduck/internal/settings"
	"github.com/oukeidos/typoduck/internal/version"
)

const listModelsTimeout = 20 * time.Second

// newBackend is swapped in tests.
var newBackend = fixer.NewGeminiBackend

type settingsView struct {
	app *typoduckApp
	win fyne.Window

	keyEntry    *widget.Entry
	keyStatus   *widget.Label
	modelSelect *widget.Select
	loadBtn     *widget.Button

	prepromptEntry *widget.Entry
	shortcutEntry  *widget.Entry
	turboCheck     *widget.Check
	duckCheck      *widget.Check
	notifyCheck    *widget.Check

	saveBtn   *widget.Button
	loadLabel *widget.Label
}

func keyStatusText(hasStored, hasSession bool) string {
	switch {
	case hasStored:
		return "A key is saved in the keychain."
	case hasSession:
		return "Using a key for this session only."
	default:
		return "No key yet. Paste your Gemini API key and press Save."
	}
}

func (a *typoduckApp) buildSettingsWindow() {
	w := a.fyneApp.NewWindow(version.Name + " Settings")
	w.SetIcon(appIcon())
	w.Resize(fyne.NewSize(520, 560))
	w.CenterOnScreen()
	// Closing only hides; the app lives in the tray.
	w.SetCloseIntercept(w.Hide)

	v := &settingsView{app: a, win: w}
	a.settings = v

	v.keyEntry = widget.NewPasswordEntry()
	v.keyEntry.SetPlaceHolder("Enter new key")
	v.keyStatus = widget.NewLabel("")
	v.keyStatus.Wrapping = fyne.TextWrapWord

	v.modelSelect = widget.NewSelect(modelOptions(nil, settings.Defaults().Model), nil)
	v.loadBtn = widget.NewButtonWithIcon("Load models", theme.ViewRefreshIcon(), v.loadModels)

	v.prepromptEntry = widget.NewMultiLineEntry()
	v.prepromptEntry.SetMinRowsVisible(3)
	v.prepromptEntry.Wrapping = fyne.TextWrapWord
	v.shortcutEntry = widget.NewEntry()
	v.shortcutEntry.SetPlaceHolder(settings.DefaultShortcut)

	v.turboCheck = widget.NewCheck("Turbo mode (copy the selection and paste the fix)", nil)
	v.duckCheck = widget.NewCheck("Show the duck while fixing", nil)
	v.notifyCheck = widget.NewCheck("Show a notification when done", nil)

	v.saveBtn = widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), v.save)
	v.saveBtn.Importance = widget.HighImportance
	v.saveBtn.Disable()
	v.loadLabel = widget.NewLabel("Loading settings...")

	resetBtn := widget.NewButtonWithIcon("Delete saved key", theme.DeleteIcon(), v.resetKey)

	settingsTab := container.NewPadded(container.NewVScroll(container.NewVBox(
		widget.NewLabelWithStyle("Gemini", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("API Key", container.NewVBox(v.keyEntry, v.keyStatus)),
			widget.NewFormItem("Model", container.NewBorder(nil, nil, nil, v.loadBtn, v.modelSelect)),
			widget.NewFormItem("Pre-prompt", v.prepromptEntry),
		),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Behaviour", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(widget.NewFormItem("Shortcut", v.shortcutEntry)),
		v.turboCheck,
		v.duckCheck,
		v.notifyCheck,
		widget.NewSeparator(),
		container.NewHBox(v.saveBtn, v.loadLabel),
		resetBtn,
	)))

	w.SetContent(container.NewAppTabs(
		container.NewTabItem("Settings", settingsTab),
		container.NewTabItem("About", buildAboutTab(w)),
	))
	v.refresh()
}

// refresh copies the stored settings into the form.
func (v *settingsView) refresh() {
	s := v.app.store.Snapshot()
	f := formFromSettings(s)

	v.modelSelect.Options = modelOptions(v.modelSelect.Options, f.Model)
	v.modelSelect.SetSelected(f.Model)
	v.prepromptEntry.SetText(f.Preprompt)
	v.shortcutEntry.SetText(f.Shortcut)
	v.turboCheck.SetChecked(f.TurboMode)
	v.duckCheck.SetChecked(f.ShowDuck)
	v.notifyCheck.SetChecked(f.ShowNotification)
	v.refreshKeyStatus()

	if v.app.store.IsReady() {
		v.saveBtn.Enable()
		v.loadLabel.Hide()
	}
}

func (v *settingsView) refreshKeyStatus() {
	v.app.keyMu.Lock()
	session := v.app.sessionKey != ""
	v.app.keyMu.Unlock()
	v.keyStatus.SetText(keyStatusText(auth.GetStatus(), session))
}

func (v *settingsView) form() settingsForm {
	return settingsForm{
		Preprompt:        v.prepromptEntry.Text,
		Model:            v.modelSelect.Selected,
		Shortcut:         v.shortcutEntry.Text,
		TurboMode:        v.turboCheck.Checked,
		ShowDuck:         v.duckCheck.Checked,
		ShowNotification: v.notifyCheck.Checked,
	}
}

func (v *settingsView) save() {
	s, err := v.form().toSettings()
	if err != nil {
		dialog.ShowError(err, v.win)
		return
	}

	entered := v.keyEntry.Text
	saved, keyErr := saveKeyToKeychain(entered, auth.SaveKey)
	if saved || keyErr != nil {
		// Keep the key for this session even if the keychain refused it.
		v.app.setSessionKey(entered)
	}

	if err := v.app.store.Apply(s); err != nil {
		if errors.Is(err, settings.ErrNotReady) {
			err = errors.New("settings are still loading; try again in a moment")
		}
		dialog.ShowError(err, v.win)
		return
	}
	if err := v.app.applyShortcut(s.Shortcut); err != nil {
		dialog.ShowError(err, v.win)
		return
	}

	v.keyEntry.SetText("")
	v.refresh()
	if keyErr != nil {
		dialog.ShowError(fmt.Errorf("settings saved, but %w", keyErr), v.win)
		return
	}
	logger.Info("Settings saved from window", "shortcut", s.Shortcut, "model", s.Model)
	dialog.ShowInformation("Saved", "Settings have been saved.", v.win)
}

func (v *settingsView) resetKey() {
	dialog.ShowConfirm("Delete key", "Remove the saved Gemini API key from the keychain?", func(ok bool) {
		if !ok {
			return
		}
		err := resetKeyInKeychain(auth.DeleteKey)
		v.app.setSessionKey("")
		v.refreshKeyStatus()
		if err != nil {
			dialog.ShowError(err, v.win)
			return
		}
		dialog.ShowInformation("Key deleted", "The saved key was removed from the keychain.", v.win)
	}, v.win)
}

// loadModels checks the key by listing the models it can use.
func (v *settingsView) loadModels() {
	key := strings.TrimSpace(v.keyEntry.Text)
	if key == "" {
		key, _ = v.app.apiKey()
	}
	if key == "" {
		dialog.ShowError(errors.New("enter a Gemini API key first"), v.win)
		return
	}
	current := v.modelSelect.Selected
	v.loadBtn.Disable()

	v.app.guard.Go("models.load", func() {
		ctx, cancel := context.WithTimeout(v.app.ctx, listModelsTimeout)
		defer cancel()

		var ids []string
		backend, err := newBackend(ctx, key, current)
		if err == nil {
			ids, err = backend.ListModels(ctx)
			_ = backend.Close()
		}

		v.app.guard.Do("models.loaded", func() {
			v.loadBtn.Enable()
			if err != nil {
				logger.Warn("Model listing failed", "error", err)
				dialog.ShowError(errors.New(apperrors.PublicMessage(err)), v.win)
				return
			}
			v.modelSelect.Options = modelOptions(ids, current)
			v.modelSelect.Refresh()
			v.keyStatus.SetText(fmt.Sprintf("Key works: %d models available.", len(ids)))
		})
	})
}
