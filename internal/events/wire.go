package events

import (
	"fmt"
	"strings"
)

const (
	maxNameLen    = 128
	maxPayloadLen = 4096
)

// Message is one named event. On the wire it is a single JSON text frame.
type Message struct {
	Name    string `json:"name"`
	Payload string `json:"payload"`
	// Origin identifies the hub peer a message arrived from. Empty for
	// messages emitted in-process.
	Origin string `json:"origin,omitempty"`
}

// Validate rejects messages a peer should never send.
func (m Message) Validate() error {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return fmt.Errorf("event name is empty")
	}
	if len(m.Name) > maxNameLen {
		return fmt.Errorf("event name too long (%d bytes)", len(m.Name))
	}
	if len(m.Payload) > maxPayloadLen {
		return fmt.Errorf("event %s payload too long (%d bytes)", m.Name, len(m.Payload))
	}
	return nil
}
