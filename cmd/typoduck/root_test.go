package main

import (
	"strings"
	"testing"

	"github.com/oukeidos/typoduck/internal/gemini"
)

func TestRoot_RejectsUnknownInput(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown_command", args: []string{"paint"}, want: `unknown command "paint"`},
		{name: "unknown_flag", args: []string{"--service", "gemini"}, want: "unknown flag: --service"},
		{name: "flag_without_command", args: []string{"--allow-env"}, want: "a command is required"},
		{name: "bad_log_level", args: []string{"--log-level", "loud", "about"}, want: "loud"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := executeCommand(t, tc.args...)
			if err == nil {
				t.Fatalf("expected error, got nil (output: %s)", out)
			}
			if !strings.Contains(out+err.Error(), tc.want) {
				t.Fatalf("expected %q, got err=%v output=%s", tc.want, err, out)
			}
		})
	}
}

func TestAbout(t *testing.T) {
	out, err := executeCommand(t, "about")
	if err != nil {
		t.Fatalf("about failed: %v", err)
	}
	if !strings.Contains(out, projectURL) {
		t.Fatalf("about missing link: %s", out)
	}
}

func TestLicenses(t *testing.T) {
	out, err := executeCommand(t, "licenses")
	if err != nil {
		t.Fatalf("licenses failed: %v", err)
	}
	if !strings.Contains(out, "fyne.io/fyne/v2\n") || !strings.Contains(out, "--full") {
		t.Fatalf("module list missing fyne:\n%s", out)
	}

	full, err := executeCommand(t, "licenses", "--full")
	if err != nil {
		t.Fatalf("licenses --full failed: %v", err)
	}
	if !strings.Contains(full, "BSD-3-Clause") {
		t.Fatalf("notices text not printed:\n%s", full)
	}
}

func TestModels(t *testing.T) {
	withKeyStubs(t, false, "", "keychain-key", "")
	withMockBackend(t, &gemini.MockClient{Models: []string{"gemini-2.5-flash", "gemini-exp-1"}})

	out, err := executeCommand(t, "models")
	if err != nil {
		t.Fatalf("models failed: %v", err)
	}
	if !strings.Contains(out, "gemini-2.5-flash") || !strings.Contains(out, "per 1M tokens") {
		t.Fatalf("known model not priced:\n%s", out)
	}
	if !strings.Contains(out, "  gemini-exp-1\n") {
		t.Fatalf("unknown model missing:\n%s", out)
	}
}
