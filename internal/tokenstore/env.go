package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/florianilch/tokenward/internal/token"
)

// EnvStore provides read-only access to a token record stored as JSON in an
// environment variable. Suitable for pre-provisioned tokens but not for
// flows that need to persist refresh results (requires writable storage).
type EnvStore struct {
	envKey string
}

// Compile-time check to ensure EnvStore implements Store
var _ Store = (*EnvStore)(nil)

// NewEnvStore creates an EnvStore for the given environment variable.
// Returns error if the variable name is empty or not set in the environment.
func NewEnvStore(envKey string) (*EnvStore, error) {
	if envKey == "" {
		return nil, fmt.Errorf("environment key cannot be empty")
	}

	if _, exists := os.LookupEnv(envKey); !exists {
		return nil, fmt.Errorf("environment variable %s not set", envKey)
	}

	return &EnvStore{
		envKey: envKey,
	}, nil
}

// Exists reports whether the environment variable holds a non-empty value.
func (e *EnvStore) Exists(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	return os.Getenv(e.envKey) != ""
}

// Read parses the record from the environment variable.
func (e *EnvStore) Read(ctx context.Context) (*token.StoredToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw := os.Getenv(e.envKey)
	if raw == "" {
		return nil, fmt.Errorf("environment variable %s is empty", e.envKey)
	}

	var t token.StoredToken
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, fmt.Errorf("parsing token from %s: %w", e.envKey, err)
	}
	if t.AccessToken == "" {
		return nil, fmt.Errorf("token in %s has no access token", e.envKey)
	}
	return &t, nil
}

// Write is not supported for environment variables (they are read-only).
func (e *EnvStore) Write(ctx context.Context, _ *token.StoredToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("environment variable storage is read-only")
}

// Delete is not supported for environment variables (they are read-only).
func (e *EnvStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("environment variable storage is read-only")
}
