package settings

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oukeidos/typoduck/internal/metadata"
)

// Document keys.
const (
	KeyPreprompt        = "preprompt"
	KeyModel            = "model"
	KeyTurboMode        = "turbo_mode"
	KeyShowDuck         = "show_duck"
	KeyShowNotification = "show_notification"
	KeyShortcut         = "shortcut"
)

// Defaults for a fresh install.
const (
	DefaultPreprompt = "Fix typos:"
	DefaultShortcut  = "ctrl+q"
)

// Settings is the typed view of the document.
type Settings struct {
	Preprompt        string `yaml:"preprompt"`
	Model            string `yaml:"model"`
	TurboMode        bool   `yaml:"turbo_mode"`
	ShowDuck         bool   `yaml:"show_duck"`
	ShowNotification bool   `yaml:"show_notification"`
	Shortcut         string `yaml:"shortcut"`
}

// Defaults returns the settings of a fresh install.
func Defaults() Settings {
	return Settings{
		Preprompt:        DefaultPreprompt,
		Model:            metadata.DefaultModel,
		TurboMode:        false,
		ShowDuck:         true,
		ShowNotification: true,
		Shortcut:         DefaultShortcut,
	}
}

// Snapshot reads every known key, filling gaps with defaults. Before the
// store is ready this is just Defaults().
func (s *Store) Snapshot() Settings {
	d := Defaults()
	return Settings{
		Preprompt:        s.StringWithFallback(KeyPreprompt, d.Preprompt),
		Model:            metadata.NormalizeModel(s.StringWithFallback(KeyModel, d.Model)),
		TurboMode:        s.BoolWithFallback(KeyTurboMode, d.TurboMode),
		ShowDuck:         s.BoolWithFallback(KeyShowDuck, d.ShowDuck),
		ShowNotification: s.BoolWithFallback(KeyShowNotification, d.ShowNotification),
		Shortcut:         s.StringWithFallback(KeyShortcut, d.Shortcut),
	}
}

// Apply writes every field of v into the store and saves.
func (s *Store) Apply(v Settings) error {
	values := map[string]any{
		KeyPreprompt:        v.Preprompt,
		KeyModel:            metadata.NormalizeModel(v.Model),
		KeyTurboMode:        v.TurboMode,
		KeyShowDuck:         v.ShowDuck,
		KeyShowNotification: v.ShowNotification,
		KeyShortcut:         v.Shortcut,
	}
	for k, val := range values {
		if err := s.Set(k, val); err != nil {
			return err
		}
	}
	return s.Save()
}

// YAML renders the settings for `typoduck config show`.
func (v Settings) YAML() ([]byte, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode settings as yaml: %w", err)
	}
	return out, nil
}

var boolKeys = map[string]bool{
	KeyTurboMode:        true,
	KeyShowDuck:         true,
	KeyShowNotification: true,
}

var stringKeys = map[string]bool{
	KeyPreprompt: true,
	KeyModel:     true,
	KeyShortcut:  true,
}

// KnownKeys lists the keys `config set` accepts.
func KnownKeys() []string {
	keys := make([]string, 0, len(boolKeys)+len(stringKeys))
	for k := range boolKeys {
		keys = append(keys, k)
	}
	for k := range stringKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseValue converts a command-line string into the value stored for key.
func ParseValue(key, raw string) (any, error) {
	switch {
	case boolKeys[key]:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%s expects true or false, got %q", key, raw)
		}
		return b, nil
	case key == KeyModel:
		return metadata.NormalizeModel(raw), nil
	case stringKeys[key]:
		return raw, nil
	default:
		return nil, fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(KnownKeys(), ", "))
	}
}
