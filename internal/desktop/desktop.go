// Package desktop wraps the OS integrations the fix pipeline touches: the
// clipboard, synthetic key chords and desktop notifications.
package desktop

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gen2brain/beeep"
	"github.com/micmonay/keybd_event"

	"github.com/oukeidos/typoduck/internal/logger"
)

// Clipboard reads and writes plain text.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// Keyboard sends the copy and paste chords to the focused window.
type Keyboard interface {
	ReleaseModifiers() error
	Copy() error
	Paste() error
}

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(title, message string) error
}

// SystemClipboard uses the platform clipboard.
type SystemClipboard struct{}

func (SystemClipboard) ReadText() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}

func (SystemClipboard) WriteText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// uinput needs a moment before the virtual device accepts events.
const linuxWarmup = 2 * time.Second

// SystemKeyboard synthesizes key events. The underlying device is created
// on first use.
type SystemKeyboard struct {
	once sync.Once
	kb   keybd_event.KeyBonding
	err  error
}

func (k *SystemKeyboard) bonding() (*keybd_event.KeyBonding, error) {
	k.once.Do(func() {
		k.kb, k.err = keybd_event.NewKeyBonding()
		if k.err == nil && runtime.GOOS == "linux" {
			time.Sleep(linuxWarmup)
		}
	})
	if k.err != nil {
		return nil, fmt.Errorf("keyboard simulation unavailable: %w", k.err)
	}
	return &k.kb, nil
}

// ReleaseModifiers lifts Shift and Alt, which the user may still be holding
// from the shortcut, so the chord that follows is a plain Ctrl chord.
func (k *SystemKeyboard) ReleaseModifiers() error {
	kb, err := k.bonding()
	if err != nil {
		return err
	}
	kb.Clear()
	kb.HasSHIFT(true)
	kb.HasALT(true)
	defer func() {
		kb.HasSHIFT(false)
		kb.HasALT(false)
	}()
	return kb.Release()
}

func (k *SystemKeyboard) chord(vk int) error {
	kb, err := k.bonding()
	if err != nil {
		return err
	}
	kb.Clear()
	kb.HasCTRL(true)
	defer kb.HasCTRL(false)
	kb.SetKeys(vk)
	return kb.Launching()
}

// Copy sends Ctrl+C.
func (k *SystemKeyboard) Copy() error { return k.chord(keybd_event.VK_C) }

// Paste sends Ctrl+V.
func (k *SystemKeyboard) Paste() error { return k.chord(keybd_event.VK_V) }

// BeeepNotifier sends notifications through beeep.
type BeeepNotifier struct {
	// Icon is an optional path to an image file.
	Icon string
}

func (n BeeepNotifier) Notify(title, message string) error {
	if err := beeep.Notify(title, message, n.Icon); err != nil {
		logger.Debug("Notification failed", "title", title, "error", err)
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

var (
	_ Clipboard = SystemClipboard{}
	_ Clipboard = (*MemoryClipboard)(nil)
	_ Keyboard  = (*SystemKeyboard)(nil)
	_ Notifier  = BeeepNotifier{}
)

// MemoryClipboard keeps text in process. The CLI uses it when asked not to
// touch the system clipboard.
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
}

func (m *MemoryClipboard) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *MemoryClipboard) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}
