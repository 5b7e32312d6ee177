package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/florianilch/tokenward/internal/token"
	"github.com/florianilch/tokenward/internal/tokenmanager"
	"github.com/florianilch/tokenward/internal/tokenstore"
)

// captureOpener records authorization URLs without ever completing the
// authorization, so the flow runs into its (short) timeout.
type captureOpener struct {
	urls []string
}

func (o *captureOpener) Open(u string) error {
	o.urls = append(o.urls, u)
	return nil
}

func (o *captureOpener) lastQuery(t *testing.T) url.Values {
	t.Helper()
	if len(o.urls) == 0 {
		t.Fatal("authorization URL was never opened")
	}
	u, err := url.Parse(o.urls[len(o.urls)-1])
	if err != nil {
		t.Fatalf("invalid authorization URL: %v", err)
	}
	return u.Query()
}

func writeCredentialsFile(t *testing.T, tokenURL string) string {
	t.Helper()

	// Reserve a loopback port for the redirect listener.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserving port: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	_ = l.Close()

	path := filepath.Join(t.TempDir(), "credentials.json")
	content := fmt.Sprintf(`{
		"client_id": "client-id",
		"client_secret": "client-secret",
		"auth_uri": "https://provider.example/auth",
		"token_uri": %q,
		"redirect_uris": ["http://127.0.0.1:%d/callback"]
	}`, tokenURL, port)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing credentials file: %v", err)
	}
	return path
}

func testConfig(t *testing.T, credentialsFile string) *Config {
	t.Helper()
	cfg := &Config{
		Credentials: CredentialsConfig{File: credentialsFile},
		Token: TokenConfig{
			Storage:   TokenStorageTypeFile,
			Directory: t.TempDir(),
		},
		Flow: FlowConfig{
			Timeout: 100 * time.Millisecond,
		},
	}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults failed: %v", err)
	}
	return cfg
}

// seedToken places a stored token record where the authenticator will find it.
func seedToken(t *testing.T, cfg *Config, record *token.StoredToken) {
	t.Helper()
	store, err := tokenstore.NewFileStore(cfg.Token.Directory, cfg.Token.FileName)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	if err := store.Write(context.Background(), record); err != nil {
		t.Fatalf("seeding token: %v", err)
	}
}

func TestNewRequiresCredentialsFile(t *testing.T) {
	cfg := testConfig(t, "")
	if _, err := New(cfg); err == nil {
		t.Fatal("New should fail without a credentials file")
	}
}

func TestNewRejectsBrokenCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte(`{"client_id": ""}`), 0o600); err != nil {
		t.Fatalf("writing credentials file: %v", err)
	}

	cfg := testConfig(t, path)
	if _, err := New(cfg); err == nil {
		t.Fatal("New should fail on incomplete credentials")
	}
}

func TestAuthenticateReusesStoredToken(t *testing.T) {
	cfg := testConfig(t, writeCredentialsFile(t, "https://provider.example/token"))
	now := time.Now()
	seedToken(t, cfg, &token.StoredToken{
		Token:     token.Token{AccessToken: "stored-access", TokenType: "Bearer"},
		CreatedAt: now.UnixMilli(),
		ExpiresAt: now.Add(time.Hour).UnixMilli(),
	})

	auth, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	opener := &captureOpener{}
	tok, err := auth.Authenticate(context.Background(), true, opener)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if tok.AccessToken != "stored-access" {
		t.Errorf("AccessToken = %q, want %q", tok.AccessToken, "stored-access")
	}
	if len(opener.urls) != 0 {
		t.Errorf("opened %d authorization URLs for a valid stored token", len(opener.urls))
	}
}

func TestAuthenticateNonInteractive(t *testing.T) {
	cfg := testConfig(t, writeCredentialsFile(t, "https://provider.example/token"))

	auth, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	opener := &captureOpener{}
	if _, err := auth.Authenticate(context.Background(), false, opener); !errors.Is(err, tokenmanager.ErrNoToken) {
		t.Fatalf("err = %v, want ErrNoToken", err)
	}
	if len(opener.urls) != 0 {
		t.Errorf("opened %d authorization URLs in non-interactive mode", len(opener.urls))
	}
}

func TestAuthenticateForcesConsentWithoutRefreshToken(t *testing.T) {
	cfg := testConfig(t, writeCredentialsFile(t, "https://provider.example/token"))

	auth, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// The opener never completes the grant; the flow times out and the
	// orchestration collapses to ErrNoToken. The authorization URL itself
	// is what this test is after.
	opener := &captureOpener{}
	if _, err := auth.Authenticate(context.Background(), true, opener); !errors.Is(err, tokenmanager.ErrNoToken) {
		t.Fatalf("err = %v, want ErrNoToken", err)
	}

	q := opener.lastQuery(t)
	if got := q.Get("prompt"); got != "consent" {
		t.Errorf("prompt = %q, want %q", got, "consent")
	}
	if got := q.Get("access_type"); got != "offline" {
		t.Errorf("access_type = %q, want %q", got, "offline")
	}
}

func TestAuthenticateSkipsConsentWithRefreshToken(t *testing.T) {
	// Refresh is attempted first; reject it so the interactive flow runs.
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer provider.Close()

	cfg := testConfig(t, writeCredentialsFile(t, provider.URL+"/token"))
	now := time.Now()
	seedToken(t, cfg, &token.StoredToken{
		Token:     token.Token{AccessToken: "stale", RefreshToken: "refresh", TokenType: "Bearer"},
		CreatedAt: now.Add(-2 * time.Hour).UnixMilli(),
		ExpiresAt: now.Add(-time.Hour).UnixMilli(),
	})

	auth, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	opener := &captureOpener{}
	if _, err := auth.Authenticate(context.Background(), true, opener); !errors.Is(err, tokenmanager.ErrNoToken) {
		t.Fatalf("err = %v, want ErrNoToken", err)
	}

	q := opener.lastQuery(t)
	if got := q.Get("prompt"); got != "" {
		t.Errorf("prompt = %q, want no prompt with a stored refresh token", got)
	}
	if got := q.Get("access_type"); got != "offline" {
		t.Errorf("access_type = %q, want %q", got, "offline")
	}
}

func TestAuthenticateExplicitPromptPreserved(t *testing.T) {
	cfg := testConfig(t, writeCredentialsFile(t, "https://provider.example/token"))
	cfg.Flow.Prompt = "select_account"

	auth, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	opener := &captureOpener{}
	if _, err := auth.Authenticate(context.Background(), true, opener); !errors.Is(err, tokenmanager.ErrNoToken) {
		t.Fatalf("err = %v, want ErrNoToken", err)
	}

	if got := opener.lastQuery(t).Get("prompt"); got != "select_account" {
		t.Errorf("prompt = %q, want %q", got, "select_account")
	}
}

func TestAuthenticateOfflineDisabled(t *testing.T) {
	cfg := testConfig(t, writeCredentialsFile(t, "https://provider.example/token"))
	cfg.Flow.DisableOfflineAccess = true

	auth, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	opener := &captureOpener{}
	if _, err := auth.Authenticate(context.Background(), true, opener); !errors.Is(err, tokenmanager.ErrNoToken) {
		t.Fatalf("err = %v, want ErrNoToken", err)
	}

	q := opener.lastQuery(t)
	if got := q.Get("access_type"); got != "" {
		t.Errorf("access_type = %q, want none with offline access disabled", got)
	}
	if got := q.Get("prompt"); got != "" {
		t.Errorf("prompt = %q, want none with offline access disabled", got)
	}
}
