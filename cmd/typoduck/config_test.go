package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/oukeidos/typoduck/internal/settings"
)

func TestConfig_ShowDefaults(t *testing.T) {
	withConfigDir(t)

	out, err := executeCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	var got settings.Settings
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	if got != settings.Defaults() {
		t.Fatalf("config show = %+v, want defaults", got)
	}
}

func TestConfig_SetPersists(t *testing.T) {
	dir := withConfigDir(t)

	cases := []struct {
		key   string
		value string
		want  string
	}{
		{key: "turbo_mode", value: "true", want: "turbo_mode: true"},
		{key: "model", value: "models/gemini-2.5-pro", want: "model: gemini-2.5-pro"},
		{key: "shortcut", value: "Shift+Ctrl+K", want: "shortcut: ctrl+shift+k"},
		{key: "preprompt", value: "  ", want: "Fix typos:"},
	}
	for _, tc := range cases {
		if _, err := executeCommand(t, "config", "set", tc.key, tc.value); err != nil {
			t.Fatalf("config set %s: %v", tc.key, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, settings.FileName)); err != nil {
		t.Fatalf("settings file not written: %v", err)
	}
	out, err := executeCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, tc := range cases {
		if !strings.Contains(out, tc.want) {
			t.Errorf("missing %q in:\n%s", tc.want, out)
		}
	}
}

func TestConfig_SetRejects(t *testing.T) {
	withConfigDir(t)

	cases := []struct {
		name string
		args []string
	}{
		{name: "unknown_key", args: []string{"config", "set", "api_key", "x"}},
		{name: "bad_bool", args: []string{"config", "set", "show_duck", "maybe"}},
		{name: "bad_shortcut", args: []string{"config", "set", "shortcut", "ctrl+v"}},
		{name: "missing_value", args: []string{"config", "set", "model"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := executeCommand(t, tc.args...); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestConfig_Path(t *testing.T) {
	dir := withConfigDir(t)

	out, err := executeCommand(t, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), dir) {
		t.Fatalf("path %q not under %q", out, dir)
	}
}
