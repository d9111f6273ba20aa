// Package licenses exposes the third-party notices shipped with both
// binaries.
package licenses

import (
	_ "embed"
	"strings"
)

//go:embed embedded/THIRD_PARTY_NOTICES.md
var noticesText string

// NoticesText returns the bundled notices document.
func NoticesText() string {
	return noticesText
}

// Modules lists the module paths named in the notices, in document order.
func Modules() []string {
	var out []string
	for _, line := range strings.Split(noticesText, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- `") {
			continue
		}
		rest := strings.TrimPrefix(line, "- `")
		if end := strings.Index(rest, "`"); end > 0 {
			out = append(out, rest[:end])
		}
	}
	return out
}
