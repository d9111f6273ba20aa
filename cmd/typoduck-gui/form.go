package main

import (
	"sort"
	"strings"

	"github.com/oukeidos/typoduck/internal/metadata"
	"github.com/oukeidos/typoduck/internal/settings"
	"github.com/oukeidos/typoduck/internal/shortcut"
)

// settingsForm is what the settings window collects before Save.
type settingsForm struct {
	Preprompt        string
	Model            string
	Shortcut         string
	TurboMode        bool
	ShowDuck         bool
	ShowNotification bool
}

func formFromSettings(s settings.Settings) settingsForm {
	return settingsForm{
		Preprompt:        s.Preprompt,
		Model:            s.Model,
		Shortcut:         s.Shortcut,
		TurboMode:        s.TurboMode,
		ShowDuck:         s.ShowDuck,
		ShowNotification: s.ShowNotification,
	}
}

// toSettings validates the form. A blank pre-prompt falls back to the
// default and the shortcut is stored in its canonical spelling.
func (f settingsForm) toSettings() (settings.Settings, error) {
	spec, err := shortcut.Parse(f.Shortcut)
	if err != nil {
		return settings.Settings{}, err
	}
	preprompt := strings.TrimSpace(f.Preprompt)
	if preprompt == "" {
		preprompt = settings.DefaultPreprompt
	}
	return settings.Settings{
		Preprompt:        preprompt,
		Model:            metadata.NormalizeModel(f.Model),
		Shortcut:         spec.String(),
		TurboMode:        f.TurboMode,
		ShowDuck:         f.ShowDuck,
		ShowNotification: f.ShowNotification,
	}, nil
}

// modelOptions merges the models the key can use with the known list and
// the current selection, so the select never loses the saved model.
func modelOptions(listed []string, current string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(listed) == 0 {
		listed = metadata.GeminiModelIDs()
	}
	for _, id := range listed {
		add(id)
	}
	add(current)
	sort.Strings(out)
	return out
}
