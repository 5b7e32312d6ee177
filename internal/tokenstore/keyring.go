package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/florianilch/tokenward/internal/token"
)

// KeyringStore provides OS-native secure credential storage for token records.
// Uses macOS Keychain, Windows Credential Manager, or Linux Secret Service.
// The record is stored as compact JSON under the service/user pair.
type KeyringStore struct {
	service string
	user    string
}

// Compile-time check to ensure KeyringStore implements Store
var _ Store = (*KeyringStore)(nil)

// NewKeyringStore creates a KeyringStore for the OS-native credential storage
// using the given service and user identifiers.
func NewKeyringStore(service, user string) (*KeyringStore, error) {
	if service == "" {
		return nil, fmt.Errorf("service cannot be empty")
	}
	if user == "" {
		return nil, fmt.Errorf("user cannot be empty")
	}

	return &KeyringStore{
		service: service,
		user:    user,
	}, nil
}

// Exists reports whether a record is present in the keyring.
func (k *KeyringStore) Exists(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	value, err := keyring.Get(k.service, k.user)
	return err == nil && value != ""
}

// Read parses the record from the system keyring.
func (k *KeyringStore) Read(ctx context.Context) (*token.StoredToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := keyring.Get(k.service, k.user)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, fmt.Errorf("empty token in keyring for service %s, user %s", k.service, k.user)
	}

	var t token.StoredToken
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, fmt.Errorf("parsing token from keyring: %w", err)
	}
	if t.AccessToken == "" {
		return nil, fmt.Errorf("token in keyring has no access token")
	}
	return &t, nil
}

// Write persists the record to the system keyring, overwriting any existing value.
func (k *KeyringStore) Write(ctx context.Context, t *token.StoredToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	return keyring.Set(k.service, k.user, string(data))
}

// Delete removes the record from the system keyring. A missing record is not
// an error.
func (k *KeyringStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := keyring.Delete(k.service, k.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
