package app

import (
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/florianilch/tokenward/internal/authflow"
	"github.com/florianilch/tokenward/internal/token"
	"github.com/florianilch/tokenward/internal/tokenstore"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LogExport represents the optional log export pipeline.
type LogExport string

const (
	LogExportNone     LogExport = "none"
	LogExportStdout   LogExport = "stdout"
	LogExportOTLPGRPC LogExport = "otlp_grpc"
	LogExportOTLPHTTP LogExport = "otlp_http"
)

// TokenStorageType represents the different storage types supported for stored tokens.
type TokenStorageType string

const (
	TokenStorageTypeFile    TokenStorageType = "file"
	TokenStorageTypeEnv     TokenStorageType = "env"
	TokenStorageTypeKeyring TokenStorageType = "keyring"
)

// Default configuration values
const (
	DefaultConfigLogFormat        = LogFormatText
	DefaultConfigLogExport        = LogExportNone
	DefaultConfigTokenStorage     = TokenStorageTypeFile
	DefaultConfigExpirationBuffer = token.DefaultExpirationBuffer
	DefaultConfigFlowTimeout      = authflow.DefaultTimeout
)

// keyringService identifies this application's records in the OS keyring.
const keyringService = "tokenward-token"

// CredentialsConfig locates the provider registration data.
type CredentialsConfig struct {
	// File is the path to the credentials JSON (flat or nested shape).
	// Required for authentication; diagnostics and deletion work without it.
	File string `json:"file,omitempty"`

	// Key descends into the named property before parsing. Empty means
	// auto-detect ("installed", "web") before falling back to flat.
	Key string `json:"key,omitempty"`
}

// TokenConfig describes where the stored token lives and when it expires.
type TokenConfig struct {
	// Storage configuration - where the stored token record lives
	Storage TokenStorageType `json:"storage" validate:"required,oneof=file env keyring"`

	// Storage-specific settings (mutually exclusive based on Storage type)
	Directory   string `json:"directory,omitempty"`    // For file storage: token directory
	FileName    string `json:"file_name,omitempty"`    // For file storage: file name within Directory
	EnvKey      string `json:"env_key,omitempty"`      // For env storage: environment variable name
	KeyringUser string `json:"keyring_user,omitempty"` // For keyring storage: user identifier

	// ExpirationBuffer shrinks every expiry bound so tokens refresh early.
	ExpirationBuffer time.Duration `json:"expiration_buffer"`

	// MaxLifetime caps the effective token lifetime independently of the
	// server-declared expiry. Zero means no extra cap.
	MaxLifetime time.Duration `json:"max_lifetime,omitempty"`
}

// NewStore creates a Store from the token storage configuration.
func (t *TokenConfig) NewStore() (tokenstore.Store, error) {
	switch t.Storage {
	case TokenStorageTypeFile:
		return tokenstore.NewFileStore(t.Directory, t.FileName)
	case TokenStorageTypeEnv:
		return tokenstore.NewEnvStore(t.EnvKey)
	case TokenStorageTypeKeyring:
		return tokenstore.NewKeyringStore(keyringService, t.KeyringUser)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", t.Storage)
	}
}

// Policy derives the expiry policy from the token configuration.
func (t *TokenConfig) Policy() token.Policy {
	return token.Policy{
		ExpirationBuffer: t.ExpirationBuffer,
		MaxLifetime:      t.MaxLifetime,
	}
}

// FlowConfig tunes the interactive authorization flow.
type FlowConfig struct {
	// Timeout bounds the wait for the authorization redirect.
	Timeout time.Duration `json:"timeout"`

	Scopes    []string `json:"scopes,omitempty"`
	LoginHint string   `json:"login_hint,omitempty"`

	// Prompt overrides the automatic prompt selection. When empty and
	// offline access is wanted without a stored refresh token, the consent
	// prompt is forced.
	Prompt string `json:"prompt,omitempty"`

	// DisableOfflineAccess skips requesting a refresh token. Offline access
	// is on by default.
	DisableOfflineAccess bool `json:"disable_offline_access,omitempty"`
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel    slog.Level        `json:"log_level"`
	LogFormat   LogFormat         `json:"log_format" validate:"oneof=text json"`
	LogExport   LogExport         `json:"log_export" validate:"oneof=none stdout otlp_grpc otlp_http"`
	Credentials CredentialsConfig `json:"credentials"`
	Token       TokenConfig       `json:"token"`
	Flow        FlowConfig        `json:"flow"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.LogExport == "" {
		c.LogExport = DefaultConfigLogExport
	}
	if c.Token.Storage == "" {
		c.Token.Storage = DefaultConfigTokenStorage
	}
	if c.Token.ExpirationBuffer == 0 {
		c.Token.ExpirationBuffer = DefaultConfigExpirationBuffer
	}
	if c.Flow.Timeout == 0 {
		c.Flow.Timeout = DefaultConfigFlowTimeout
	}

	// Dynamic defaults based on storage type
	switch c.Token.Storage {
	case TokenStorageTypeFile:
		if c.Token.Directory == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("token.directory required (auto-detect failed: %w)", err)
			}
			c.Token.Directory = filepath.Join(configDir, "tokenward")
		}
		if c.Token.FileName == "" {
			c.Token.FileName = tokenstore.DefaultFileName
		}
	case TokenStorageTypeKeyring:
		if c.Token.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("token.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Token.KeyringUser = currentUser.Username
		}
	case TokenStorageTypeEnv:
		// env_key must be explicitly configured (no sensible default)
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Token.Storage {
	case TokenStorageTypeFile:
		if c.Token.Directory == "" {
			return fmt.Errorf("directory required for file storage")
		}
	case TokenStorageTypeEnv:
		if c.Token.EnvKey == "" {
			return fmt.Errorf("env_key required for env storage")
		}
	case TokenStorageTypeKeyring:
		if c.Token.KeyringUser == "" {
			return fmt.Errorf("keyring_user required for keyring storage")
		}
	}

	return nil
}
