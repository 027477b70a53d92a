// Package keyring stores daylog secrets in the OS keyring.
package keyring

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/daylog/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested name
	ErrNotFound = errors.New("secret not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	// ErrUnknownSecret is returned for names outside constants.KeyringSecrets
	ErrUnknownSecret = errors.New("unknown secret name")
)

func checkName(name string) error {
	if !slices.Contains(constants.KeyringSecrets, name) {
		return fmt.Errorf("%w: %q (valid: %v)", ErrUnknownSecret, name, constants.KeyringSecrets)
	}
	return nil
}

// Get retrieves a secret from the OS keyring.
// Returns ErrNotFound if nothing is stored.
func Get(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	value, err := keyring.Get(constants.AppName, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

// Set stores a secret in the OS keyring.
func Set(name, value string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if value == "" {
		return errors.New("secret value cannot be empty")
	}
	if err := keyring.Set(constants.AppName, name, value); err != nil {
		return fmt.Errorf("failed to store secret in keyring: %w", err)
	}
	return nil
}

// Delete removes a secret from the OS keyring.
func Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := keyring.Delete(constants.AppName, name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete secret from keyring: %w", err)
	}
	return nil
}

// Lookup returns the stored secret or "" when it is absent or the keyring is
// unavailable. Used for optional configuration fallbacks.
func Lookup(name string) string {
	value, err := Get(name)
	if err != nil {
		return ""
	}
	return value
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
