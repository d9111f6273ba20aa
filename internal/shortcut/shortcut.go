// Package shortcut parses the configured global shortcut. It has no
// platform dependencies so the CLI can validate shortcuts on a headless box;
// registration lives in internal/globalkey.
package shortcut

import (
	"fmt"
	"strings"
)

// Spec is a parsed shortcut such as ctrl+shift+f.
type Spec struct {
	Ctrl  bool
	Shift bool
	// Key is the lower-case letter a-z.
	Key  byte
	text string
}

// String returns the normalized form, e.g. "ctrl+shift+f".
func (s Spec) String() string { return s.text }

// Parse reads "mod+mod+letter". At least one modifier is required so a bare
// letter can never be swallowed system-wide. Ctrl+C and Ctrl+V are refused
// because turbo mode sends them itself.
func Parse(s string) (Spec, error) {
	parts := strings.Split(strings.ToLower(strings.ReplaceAll(s, " ", "")), "+")
	if len(parts) < 2 {
		return Spec{}, fmt.Errorf("shortcut %q needs a modifier and a key", s)
	}

	var spec Spec
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "ctrl", "control":
			spec.Ctrl = true
		case "shift":
			spec.Shift = true
		default:
			return Spec{}, fmt.Errorf("shortcut %q: unsupported modifier %q (use ctrl or shift)", s, p)
		}
	}

	last := parts[len(parts)-1]
	if len(last) != 1 || last[0] < 'a' || last[0] > 'z' {
		return Spec{}, fmt.Errorf("shortcut %q: key must be a single letter a-z", s)
	}
	spec.Key = last[0]
	if spec.Ctrl && !spec.Shift && (last == "c" || last == "v") {
		return Spec{}, fmt.Errorf("shortcut %q would collide with copy/paste", s)
	}

	var names []string
	if spec.Ctrl {
		names = append(names, "ctrl")
	}
	if spec.Shift {
		names = append(names, "shift")
	}
	spec.text = strings.Join(append(names, last), "+")
	return spec, nil
}
