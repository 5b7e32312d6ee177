// Package tokenstore provides persistent storage abstractions for stored
// token records.
//
// Supports three storage backends with different security and deployment tradeoffs:
//   - File: Local filesystem storage with atomic writes and secure permissions
//   - Env: Read-only environment variable access (requires external secret management)
//   - Keyring: OS-native credential storage (macOS Keychain, Windows Credential Manager, etc.)
//
// Token refresh and interactive authorization require writable storage (file
// or keyring); a pre-provisioned token can live in read-only env storage.
package tokenstore
