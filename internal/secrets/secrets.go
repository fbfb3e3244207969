package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this application's secrets in the OS keychain.
const KeyringService = "applicant-radar"

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration or flags.
	Value string
	// File points to a file containing the secret value. When set it takes
	// precedence over Value.
	File string
	// KeyringAccount is queried as a last resort when neither File nor
	// Value yield a secret. Typically "imap:user@host".
	KeyringAccount string
}

// Load returns the resolved secret from the provided source. Precedence is
// File, then Value, then the OS keyring. The returned secret is always
// trimmed. An error is returned when no source contains a usable secret.
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
		src.Value = string(data)
	}

	secret := strings.TrimSpace(src.Value)
	if secret != "" {
		return secret, nil
	}

	if account := strings.TrimSpace(src.KeyringAccount); account != "" {
		stored, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(stored) != "" {
			return strings.TrimSpace(stored), nil
		}
	}

	if file != "" {
		return "", fmt.Errorf("%s file %q is empty", name, file)
	}
	return "", fmt.Errorf("%s is not configured", name)
}

// MailAccount is the keyring account name for a mailbox credential.
func MailAccount(address, host string) string {
	return fmt.Sprintf("imap:%s@%s", address, host)
}

// Store saves a secret in the OS keyring.
func Store(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return fmt.Errorf("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("secret value is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

// Forget removes a secret from the OS keyring.
func Forget(account string) error {
	if strings.TrimSpace(account) == "" {
		return fmt.Errorf("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}
