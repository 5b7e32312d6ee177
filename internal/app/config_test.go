package app

import (
	"testing"
	"time"

	"github.com/florianilch/tokenward/internal/token"
	"github.com/florianilch/tokenward/internal/tokenstore"
)

func TestConfigApplyDefaults(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}

	if cfg.LogFormat != DefaultConfigLogFormat {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, DefaultConfigLogFormat)
	}
	if cfg.Token.Storage != TokenStorageTypeFile {
		t.Errorf("Token.Storage = %q, want file", cfg.Token.Storage)
	}
	if cfg.Token.Directory == "" {
		t.Error("Token.Directory should be auto-detected for file storage")
	}
	if cfg.Token.FileName != tokenstore.DefaultFileName {
		t.Errorf("Token.FileName = %q, want %q", cfg.Token.FileName, tokenstore.DefaultFileName)
	}
	if cfg.Token.ExpirationBuffer != token.DefaultExpirationBuffer {
		t.Errorf("Token.ExpirationBuffer = %v, want %v", cfg.Token.ExpirationBuffer, token.DefaultExpirationBuffer)
	}
	if cfg.Flow.Timeout != DefaultConfigFlowTimeout {
		t.Errorf("Flow.Timeout = %v, want %v", cfg.Flow.Timeout, DefaultConfigFlowTimeout)
	}
}

func TestConfigApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		LogFormat: LogFormatJSON,
		Token: TokenConfig{
			Storage:          TokenStorageTypeEnv,
			EnvKey:           "MY_TOKEN",
			ExpirationBuffer: time.Minute,
		},
		Flow: FlowConfig{Timeout: 42 * time.Second},
	}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults failed: %v", err)
	}

	if cfg.LogFormat != LogFormatJSON {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if cfg.Token.ExpirationBuffer != time.Minute {
		t.Errorf("Token.ExpirationBuffer = %v, want 1m", cfg.Token.ExpirationBuffer)
	}
	if cfg.Flow.Timeout != 42*time.Second {
		t.Errorf("Flow.Timeout = %v, want 42s", cfg.Flow.Timeout)
	}
	if cfg.Token.Directory != "" {
		t.Errorf("Token.Directory = %q, want empty for env storage", cfg.Token.Directory)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown storage",
			mutate:  func(c *Config) { c.Token.Storage = "carrier-pigeon" },
			wantErr: true,
		},
		{
			name: "file storage without directory",
			mutate: func(c *Config) {
				c.Token.Storage = TokenStorageTypeFile
				c.Token.Directory = ""
			},
			wantErr: true,
		},
		{
			name: "env storage without key",
			mutate: func(c *Config) {
				c.Token.Storage = TokenStorageTypeEnv
				c.Token.EnvKey = ""
			},
			wantErr: true,
		},
		{
			name: "keyring storage without user",
			mutate: func(c *Config) {
				c.Token.Storage = TokenStorageTypeKeyring
				c.Token.KeyringUser = ""
			},
			wantErr: true,
		},
		{
			name:    "unknown log export",
			mutate:  func(c *Config) { c.LogExport = "carrier-pigeon" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Default()
			if err != nil {
				t.Fatalf("Default failed: %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate should have failed")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate failed: %v", err)
			}
		})
	}
}

func TestTokenConfigNewStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MY_TOKEN", `{"access_token":"a"}`)

	tests := []struct {
		name    string
		cfg     TokenConfig
		wantErr bool
	}{
		{
			name: "file",
			cfg:  TokenConfig{Storage: TokenStorageTypeFile, Directory: dir, FileName: "token.json"},
		},
		{
			name: "env",
			cfg:  TokenConfig{Storage: TokenStorageTypeEnv, EnvKey: "MY_TOKEN"},
		},
		{
			name: "keyring",
			cfg:  TokenConfig{Storage: TokenStorageTypeKeyring, KeyringUser: "alice"},
		},
		{
			name:    "unknown",
			cfg:     TokenConfig{Storage: "carrier-pigeon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := tt.cfg.NewStore()
			if tt.wantErr {
				if err == nil {
					t.Error("NewStore should have failed")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewStore failed: %v", err)
			}
			if store == nil {
				t.Error("NewStore returned nil store")
			}
		})
	}
}
