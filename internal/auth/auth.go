// Package auth stores the Gemini API key in the OS keychain, with an
// opt-in environment variable fallback.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const (
	serviceName = "typoduck"
	account     = "gemini-api-key"
	// EnvVar is consulted only when the caller allows it.
	EnvVar = "GEMINI_API_KEY"
)

// Where a key was found.
const (
	SourceKeychain = "Keychain"
	SourceEnv      = "Environment Variable"
)

// GetKey returns the API key and where it came from. The keychain wins over
// the environment; if allowEnv is false the environment is ignored.
func GetKey(allowEnv bool) (string, string) {
	key, err := keyring.Get(serviceName, account)
	if err == nil && strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), SourceKeychain
	}
	if allowEnv {
		if key, ok := GetEnvKey(); ok {
			return key, SourceEnv
		}
	}
	return "", ""
}

// SaveKey stores the key in the OS keychain.
func SaveKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key is empty")
	}
	return keyring.Set(serviceName, account, key)
}

// DeleteKey removes the key from the OS keychain. Deleting a missing key is
// not an error.
func DeleteKey() error {
	err := keyring.Delete(serviceName, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// GetStatus reports whether the keychain holds a key.
func GetStatus() bool {
	key, err := keyring.Get(serviceName, account)
	return err == nil && strings.TrimSpace(key) != ""
}

// PromptForAPIKey reads a key from the terminal without echo.
func PromptForAPIKey(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// GetEnvKey reads GEMINI_API_KEY.
func GetEnvKey() (string, bool) {
	key := strings.TrimSpace(os.Getenv(EnvVar))
	if key == "" {
		return "", false
	}
	return key, true
}
