package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/soulsync/internal/constants"
)

var (
	// ErrNotFound is returned when the entry is not in the keyring
	ErrNotFound = errors.New("entry not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

func get(user string) (string, error) {
	v, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func set(user, value, what string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	if err := keyring.Set(constants.AppName, user, value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", what, err)
	}
	return nil
}

func del(user, what string) error {
	if err := keyring.Delete(constants.AppName, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", what, err)
	}
	return nil
}

// GetAPIKey returns the stored language model API key.
func GetAPIKey() (string, error) {
	return get(constants.KeyringAPIKeyUser)
}

func SetAPIKey(key string) error {
	return set(constants.KeyringAPIKeyUser, strings.TrimSpace(key), "API key")
}

func DeleteAPIKey() error {
	return del(constants.KeyringAPIKeyUser, "API key")
}

// GetSessionUser returns the username saved by the last login.
func GetSessionUser() (string, error) {
	return get(constants.KeyringSessionUser)
}

func SetSessionUser(username string) error {
	return set(constants.KeyringSessionUser, username, "session user")
}

// ClearSessionUser logs out. Clearing an empty session is not an error.
func ClearSessionUser() error {
	if err := del(constants.KeyringSessionUser, "session user"); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// ResolveAPIKey prefers the environment variable, then the keyring. It
// returns "" and the source "none" when neither is set.
func ResolveAPIKey(getenv func(string) string) (key, source string) {
	if v := strings.TrimSpace(getenv(constants.APIKeyEnv)); v != "" {
		return v, "environment"
	}
	if v, err := GetAPIKey(); err == nil && v != "" {
		return v, "keyring"
	}
	return "", "none"
}

// IsAvailable is a best-effort check that the OS keyring can be used.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
