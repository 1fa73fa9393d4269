package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
)

// KeyringService groups intern-scout secrets in the OS keychain.
const KeyringService = "intern-scout"

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration or environment.
	Value string
	// File points to a file containing the secret value. When set it takes
	// precedence over Keyring and Value.
	File string
	// Keyring is the account name of the secret stored under KeyringService.
	// It takes precedence over Value.
	Keyring string
	// Logger reports a keyring that could not be read when Value is used instead.
	Logger *zap.Logger
}

// Load returns the resolved secret value from the provided source. The lookup
// order is File, Keyring, Value. The returned secret is always trimmed. An
// error is returned when no source contains a usable secret.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}

		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	value := strings.TrimSpace(src.Value)

	account := strings.TrimSpace(src.Keyring)
	if account != "" {
		secret, err := keyring.Get(KeyringService, account)
		switch {
		case errors.Is(err, keyring.ErrNotFound):
			// fall through to the inline value
		case err != nil && value == "":
			return "", fmt.Errorf("reading %s from keyring account %q: %w", name, account, err)
		case err != nil:
			if src.Logger != nil {
				src.Logger.Warn("keyring is unavailable, using the configured value",
					zap.String("secret", name),
					zap.String("account", account),
					zap.Error(err),
				)
			}
		case strings.TrimSpace(secret) != "":
			return strings.TrimSpace(secret), nil
		}
	}

	if value == "" {
		if account != "" {
			return "", fmt.Errorf("%s not found in keyring account %q", name, account)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	return value, nil
}

// Store saves value in the OS keychain under the given account.
func Store(account, value string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return errors.New("keyring account name is empty")
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("secret value is empty")
	}

	return keyring.Set(KeyringService, account, value)
}
