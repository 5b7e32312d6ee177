package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/florianilch/tokenward/internal/token"
)

// DefaultFileName is used when no token file name is configured.
const DefaultFileName = "token.json"

// FileStore provides atomic file-based token storage with secure permissions.
// Writes use temp file + rename for crash safety. The record is stored as
// pretty-printed JSON for inspectability.
type FileStore struct {
	filePath string
}

// Compile-time check to ensure FileStore implements Store
var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore at dir/fileName, creating parent
// directories with 0700 permissions if they don't exist. An empty fileName
// defaults to DefaultFileName.
func NewFileStore(dir, fileName string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("token directory cannot be empty")
	}
	if fileName == "" {
		fileName = DefaultFileName
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	return &FileStore{
		filePath: filepath.Join(dir, fileName),
	}, nil
}

// Path returns the absolute location of the token file.
func (f *FileStore) Path() string {
	return f.filePath
}

// Exists reports whether the token file is present.
func (f *FileStore) Exists(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	_, err := os.Stat(f.filePath)
	return err == nil
}

// Read parses the stored record. Returns error if the file doesn't exist,
// contains invalid JSON, or has insecure permissions.
func (f *FileStore) Read(ctx context.Context) (*token.StoredToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Check file permissions before reading
	info, err := os.Stat(f.filePath)
	if err != nil {
		return nil, err
	}
	if info.Mode().Perm() != 0600 {
		return nil, fmt.Errorf("insecure permissions on %s: %04o (expected 0600)", f.filePath, info.Mode().Perm())
	}

	data, err := os.ReadFile(f.filePath)
	if err != nil {
		return nil, err
	}

	var t token.StoredToken
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing token file %s: %w", f.filePath, err)
	}
	if t.AccessToken == "" {
		return nil, fmt.Errorf("token file %s has no access token", f.filePath)
	}
	return &t, nil
}

// Write atomically saves the record using temp file + rename for crash safety.
// Sets file permissions to 0600 (owner read/write only).
func (f *FileStore) Write(ctx context.Context, t *token.StoredToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	// Create secure temp file in same directory for atomic rename
	dir := filepath.Dir(f.filePath)
	tempFile, err := os.CreateTemp(dir, "*.tmp")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()
	// Cleanup deferred for all exit paths
	defer func() { _ = os.Remove(tempName) }()
	defer func() { _ = tempFile.Close() }()

	if _, err := tempFile.Write(append(data, '\n')); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}

	// Atomic rename to final location
	if err := os.Rename(tempName, f.filePath); err != nil {
		return err
	}

	// Set secure file permissions (0600 = rw-------)
	if err := os.Chmod(f.filePath, 0600); err != nil {
		return err
	}

	return nil
}

// Delete removes the token file. Missing files are not an error.
func (f *FileStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(f.filePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
