package desktop

import "testing"

func TestMemoryClipboard(t *testing.T) {
	var c MemoryClipboard
	if got, _ := c.ReadText(); got != "" {
		t.Fatalf("fresh clipboard = %q", got)
	}
	if err := c.WriteText("teh cat"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if got, _ := c.ReadText(); got != "teh cat" {
		t.Fatalf("ReadText = %q", got)
	}
}
