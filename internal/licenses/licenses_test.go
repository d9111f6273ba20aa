package licenses

import (
	"os"
	"strings"
	"testing"
)

func TestNoticesCoverDirectRequirements(t *testing.T) {
	if strings.TrimSpace(NoticesText()) == "" {
		t.Fatalf("notices are empty")
	}
	data, err := os.ReadFile("../../go.mod")
	if err != nil {
		t.Fatalf("read go.mod: %v", err)
	}
	listed := map[string]bool{}
	for _, m := range Modules() {
		listed[m] = true
	}

	inRequire := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "require (":
			inRequire = true
			continue
		case line == ")":
			inRequire = false
			continue
		}
		if !inRequire || strings.Contains(line, "// indirect") || line == "" {
			continue
		}
		mod := strings.Fields(line)[0]
		if !listed[mod] {
			t.Errorf("go.mod requires %s but the notices do not list it", mod)
		}
	}
}
