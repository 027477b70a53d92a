package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/daylog/internal/constants"
)

func TestSetAndGet(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(constants.KeyringOpenAIKey, "sk-test"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := Get(constants.KeyringOpenAIKey)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != "sk-test" {
		t.Errorf("Get() = %q, want %q", got, "sk-test")
	}
	if Lookup(constants.KeyringOpenAIKey) != "sk-test" {
		t.Error("Lookup() should return the stored secret")
	}
}

func TestSetEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(constants.KeyringSessionSecret, ""); err == nil {
		t.Error("Set() with empty value should return an error")
	}
}

func TestUnknownSecret(t *testing.T) {
	gokeyring.MockInit()

	if err := Set("not-a-secret", "x"); !errors.Is(err, ErrUnknownSecret) {
		t.Errorf("Set() error = %v, want %v", err, ErrUnknownSecret)
	}
	if _, err := Get("not-a-secret"); !errors.Is(err, ErrUnknownSecret) {
		t.Errorf("Get() error = %v, want %v", err, ErrUnknownSecret)
	}
}

func TestGetNotFound(t *testing.T) {
	gokeyring.MockInit()

	_ = Delete(constants.KeyringDatabaseURL)

	if _, err := Get(constants.KeyringDatabaseURL); err != ErrNotFound {
		t.Errorf("Get() error = %v, want %v", err, ErrNotFound)
	}
	if Lookup(constants.KeyringDatabaseURL) != "" {
		t.Error("Lookup() should return empty string for missing secret")
	}
}

func TestDelete(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(constants.KeyringGeminiKey, "g"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := Delete(constants.KeyringGeminiKey); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := Delete(constants.KeyringGeminiKey); err != ErrNotFound {
		t.Errorf("second Delete() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() should be true with the mock keyring")
	}
}
