package auth

import (
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeychainRoundTrip(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvVar, "")

	if GetStatus() {
		t.Fatalf("fresh keychain reports a key")
	}
	if err := SaveKey("  AIza-test-key \n"); err != nil {
		t.Fatalf("SaveKey: %v", err)
	}
	key, source := GetKey(false)
	if key != "AIza-test-key" || source != SourceKeychain {
		t.Fatalf("GetKey = (%q, %q)", key, source)
	}
	if err := DeleteKey(); err != nil {
		t.Fatalf("DeleteKey: %v", err)
	}
	if err := DeleteKey(); err != nil {
		t.Fatalf("second DeleteKey: %v", err)
	}
	if GetStatus() {
		t.Fatalf("key still present after delete")
	}
}

func TestGetKey_EnvFallback(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvVar, " env-key ")

	if key, source := GetKey(false); key != "" || source != "" {
		t.Fatalf("env used without permission: (%q, %q)", key, source)
	}
	key, source := GetKey(true)
	if key != "env-key" || source != SourceEnv {
		t.Fatalf("GetKey(true) = (%q, %q)", key, source)
	}

	if err := SaveKey("chain-key"); err != nil {
		t.Fatalf("SaveKey: %v", err)
	}
	if key, source := GetKey(true); key != "chain-key" || source != SourceKeychain {
		t.Fatalf("keychain should win: (%q, %q)", key, source)
	}
}

func TestSaveKey_Empty(t *testing.T) {
	keyring.MockInit()
	if err := SaveKey("   "); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
