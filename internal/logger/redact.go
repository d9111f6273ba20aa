package logger

import (
	"log/slog"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// Attribute names are matched case-insensitively, by substring. Anything the
// user selected or typed, or got back from the model, counts as private, so
// "text", "prompt" and "clipboard" are listed next to the credential words.
var sensitiveNameParts = []string{
	"authorization",
	"bearer",
	"clipboard",
	"key",
	"password",
	"prompt",
	"secret",
	"selection",
	"text",
	"token",
}

// Values are checked too, so a key pasted into an error message is caught.
var sensitiveValues = []*regexp.Regexp{
	regexp.MustCompile(`\bAIza[0-9A-Za-z\-_]{10,}\b`),
	regexp.MustCompile(`(?i)\bsk-[A-Za-z0-9_-]{10,}\b`),
	regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9\-._~+/]+=*`),
	regexp.MustCompile(`(?i)\b(api[_-]?key|access[_-]?token|secret)\b\s*[:=]\s*\S+`),
}

// RedactAttr is a slog ReplaceAttr hook.
func RedactAttr(_ []string, a slog.Attr) slog.Attr {
	if sensitiveName(a.Key) || sensitiveValue(a.Value) {
		return slog.String(a.Key, redacted)
	}
	return a
}

func sensitiveName(key string) bool {
	key = strings.ToLower(key)
	for _, part := range sensitiveNameParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

func sensitiveValue(v slog.Value) bool {
	v = v.Resolve()
	if v.Kind() == slog.KindGroup {
		return false
	}
	s := v.String()
	if s == "" {
		return false
	}
	for _, re := range sensitiveValues {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
