package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oukeidos/typoduck/internal/apperrors"
	"github.com/oukeidos/typoduck/internal/desktop"
	"github.com/oukeidos/typoduck/internal/gemini"
)

type backendCall struct {
	key   string
	model string
}

func withMockBackend(t *testing.T, mock *gemini.MockClient) *[]backendCall {
	t.Helper()
	prev := newBackend
	t.Cleanup(func() { newBackend = prev })

	calls := &[]backendCall{}
	newBackend = func(_ context.Context, key, model string) (gemini.Backend, error) {
		*calls = append(*calls, backendCall{key: key, model: model})
		return mock, nil
	}
	return calls
}

func executeWithInput(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestFix_FromArgs(t *testing.T) {
	withConfigDir(t)
	withKeyStubs(t, false, "", "keychain-key", "")
	mock := &gemini.MockClient{Result: &gemini.Result{Text: "Hello world", Structured: true}}
	calls := withMockBackend(t, mock)

	out, _, err := executeWithInput(t, "", "fix", "--model", "models/gemini-2.5-pro", "Helo", "wrold")
	if err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	if strings.TrimSpace(out) != "Hello world" {
		t.Fatalf("stdout = %q", out)
	}
	if len(*calls) != 1 || (*calls)[0].key != "keychain-key" {
		t.Fatalf("backend calls = %+v", *calls)
	}
	if !strings.Contains(mock.LastPrompt(), "```\nHelo wrold\n```") {
		t.Fatalf("prompt does not carry the joined args:\n%s", mock.LastPrompt())
	}
	if !mock.Closed {
		t.Fatalf("backend not closed")
	}
}

func TestFix_FromStdin(t *testing.T) {
	withConfigDir(t)
	withKeyStubs(t, false, "", "keychain-key", "")
	mock := &gemini.MockClient{Result: &gemini.Result{Text: `line one\nline two`, Model: "gemini-2.5-flash"}}
	withMockBackend(t, mock)

	out, errOut, err := executeWithInput(t, "lien one\nline too\n\n", "fix", "--preprompt", "Fix it:", "--stats")
	if err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	if out != "line one\nline two\n" {
		t.Fatalf("stdout = %q", out)
	}
	prompt := mock.LastPrompt()
	if !strings.HasPrefix(prompt, "Fix it:") {
		t.Fatalf("preprompt override ignored:\n%s", prompt)
	}
	if !strings.Contains(prompt, "```\nlien one\nline too\n```") {
		t.Fatalf("trailing newlines not trimmed:\n%s", prompt)
	}
	if !strings.Contains(errOut, "--- Execution Stats ---") {
		t.Fatalf("stats not printed to stderr: %q", errOut)
	}
}

func TestFix_Clipboard(t *testing.T) {
	withConfigDir(t)
	withKeyStubs(t, false, "", "keychain-key", "")
	withMockBackend(t, &gemini.MockClient{Result: &gemini.Result{Text: "fixed"}})

	clip := &desktop.MemoryClipboard{}
	_ = clip.WriteText("fxied")
	prev := systemClipboard
	t.Cleanup(func() { systemClipboard = prev })
	systemClipboard = func() desktop.Clipboard { return clip }

	if _, _, err := executeWithInput(t, "", "fix", "--clipboard"); err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	if got, _ := clip.ReadText(); got != "fixed" {
		t.Fatalf("clipboard = %q, want fixed", got)
	}

	if _, _, err := executeWithInput(t, "", "fix", "--clipboard", "extra"); err == nil {
		t.Fatalf("--clipboard with arguments accepted")
	}
}

func TestFix_Errors(t *testing.T) {
	cases := []struct {
		name     string
		stdin    string
		args     []string
		keychain string
		backend  error
		want     string
		calls    int
	}{
		{name: "blank_input", stdin: "  \n", args: []string{"fix"}, keychain: "k", want: "clipboard is empty"},
		{name: "no_key", args: []string{"fix", "text"}, want: "non-interactive"},
		{name: "rate_limited", args: []string{"fix", "text"}, keychain: "k", backend: apperrors.RateLimit(errors.New("429 quota exceeded")), want: "rate limit", calls: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			withConfigDir(t)
			withKeyStubs(t, false, "", tc.keychain, "")
			calls := withMockBackend(t, &gemini.MockClient{Error: tc.backend})

			out, _, err := executeWithInput(t, tc.stdin, tc.args...)
			if err == nil || !strings.Contains(strings.ToLower(err.Error()), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
			if strings.Contains(err.Error(), "429 quota") {
				t.Fatalf("raw backend error leaked: %v", err)
			}
			if out != "" {
				t.Fatalf("stdout written on failure: %q", out)
			}
			if len(*calls) != tc.calls {
				t.Fatalf("backend calls = %d, want %d", len(*calls), tc.calls)
			}
		})
	}
}
