package main

import (
	"fmt"
	"strings"
)

// saveKeyToKeychain stores a key typed into the settings form. An empty entry
// leaves the stored key alone.
func saveKeyToKeychain(entry string, saveFn func(key string) error) (bool, error) {
	key := strings.TrimSpace(entry)
	if key == "" {
		return false, nil
	}
	if err := saveFn(key); err != nil {
		return false, fmt.Errorf("failed to save Gemini key: %w", err)
	}
	return true, nil
}

func resetKeyInKeychain(deleteFn func() error) error {
	if err := deleteFn(); err != nil {
		return fmt.Errorf("failed to delete Gemini key: %w", err)
	}
	return nil
}
