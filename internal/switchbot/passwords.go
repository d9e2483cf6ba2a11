package switchbot

import (
	"encoding/json"
	"fmt"
	"os"
)

// PasswordStore maps device MAC addresses to their configured passwords.
// It is loaded once at startup and read at most once per inbound command.
type PasswordStore map[string]string

// LoadPasswords reads a JSON file mapping MAC addresses to passwords,
// e.g. {"11:22:33:44:55:66": "password", "aa:bb:cc:dd:ee:ff": "secret"}.
// An empty path yields an empty store.
func LoadPasswords(path string) (PasswordStore, error) {
	if path == "" {
		return PasswordStore{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading device password file: %w", err)
	}
	var store PasswordStore
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parsing device password file %s: %w", path, err)
	}
	return store, nil
}

// Lookup returns the password for the given MAC address, or the empty
// string when no password is configured.
func (s PasswordStore) Lookup(mac string) string {
	return s[mac]
}
