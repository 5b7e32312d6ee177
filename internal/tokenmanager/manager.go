package tokenmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/florianilch/tokenward/internal/token"
	"github.com/florianilch/tokenward/internal/tokenstore"
)

// ErrNoToken is returned when every way of obtaining a token has been
// exhausted: nothing usable stored, refresh failed or impossible, and no
// interactive authentication available (or it failed). The specific cause
// is reported through logging only.
var ErrNoToken = errors.New("no valid token available")

// AuthenticateFunc obtains a fresh token interactively. Invoked at most once
// per GetValidToken call, and only when reuse and refresh are both ruled out.
type AuthenticateFunc func(ctx context.Context) (*token.Token, error)

// Option configures a Manager.
type Option func(*Manager)

// WithHTTPClient sets the HTTP client used for refresh exchanges.
// If not provided, a default client with a 30s timeout is used.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) {
		m.httpClient = client
	}
}

// WithClock sets the time source used for expiry decisions and issuance
// stamps. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager owns the lifecycle of one stored token: persistence through a
// Store, expiry judgement through a token.Policy, and the
// reuse / refresh / re-authorize decision procedure.
type Manager struct {
	store  tokenstore.Store
	policy token.Policy

	now        func() time.Time
	httpClient *http.Client
}

// New creates a Manager over the given store and expiry policy.
func New(store tokenstore.Store, policy token.Policy, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("missing token store")
	}

	m := &Manager{
		store:  store,
		policy: policy,
		now:    time.Now,
		// Bounds refresh exchanges even with an unbounded caller context
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// HasStored reports whether a record exists at the configured location,
// parseable or not.
func (m *Manager) HasStored(ctx context.Context) bool {
	return m.store.Exists(ctx)
}

// GetStored returns the stored record, or nil when nothing usable is stored.
// Read and parse failures degrade to nil; a malformed record is
// indistinguishable from an absent one.
func (m *Manager) GetStored(ctx context.Context) *token.StoredToken {
	t, err := m.store.Read(ctx)
	if err != nil {
		slog.DebugContext(ctx, "no stored token", "error", err)
		return nil
	}
	return t
}

// IsExpired reports whether the record is expired under the configured policy.
func (m *Manager) IsExpired(t *token.StoredToken) bool {
	return m.policy.Expired(t, m.now())
}

// IsValid reports whether a non-expired token is currently stored.
func (m *Manager) IsValid(ctx context.Context) bool {
	t := m.GetStored(ctx)
	return t != nil && !m.IsExpired(t)
}

// Save stamps the token with issuance metadata and persists it, replacing
// any prior record. The recorded expiry is the server-declared lifetime
// capped by the policy's maximum lifetime.
func (m *Manager) Save(ctx context.Context, t *token.Token) (*token.StoredToken, error) {
	stored := m.policy.Stamp(t, m.now())
	if err := m.store.Write(ctx, stored); err != nil {
		return nil, fmt.Errorf("persisting token: %w", err)
	}
	return stored, nil
}

// Delete removes the stored record if present.
func (m *Manager) Delete(ctx context.Context) error {
	return m.store.Delete(ctx)
}

// Refresh performs a refresh_token exchange against the configured token
// endpoint. Non-success responses and transport failures are routine and
// come back as errors for the caller to fall through on; nothing is
// persisted here.
func (m *Manager) Refresh(ctx context.Context, conf *oauth2.Config, refreshToken string) (*token.Token, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("no refresh token")
	}

	// oauth2 injects custom HTTP clients via context
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	fresh, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh exchange: %w", err)
	}

	return token.FromOAuth2(fresh), nil
}

// GetValidToken is the governing decision procedure. In order: reuse a
// stored, non-expired token unchanged; refresh an expired one that carries a
// refresh token; run the interactive authentication callback. Every failure
// along the way degrades to the next step, terminating in ErrNoToken once
// all fallbacks are exhausted.
func (m *Manager) GetValidToken(ctx context.Context, conf *oauth2.Config, authenticate AuthenticateFunc) (*token.Token, error) {
	stored := m.GetStored(ctx)

	if stored != nil && !m.IsExpired(stored) {
		slog.DebugContext(ctx, "reusing stored token", "expires_at", stored.ExpiryTime())
		return &stored.Token, nil
	}

	if stored != nil && stored.RefreshToken != "" {
		fresh, err := m.Refresh(ctx, conf, stored.RefreshToken)
		if err != nil {
			slog.WarnContext(ctx, "token refresh failed", "error", err)
		} else {
			// Providers commonly omit the refresh token on rotation-less
			// refresh; carry the prior one forward so it is not lost.
			if fresh.RefreshToken == "" {
				fresh.RefreshToken = stored.RefreshToken
			}
			if _, err := m.Save(ctx, fresh); err != nil {
				slog.ErrorContext(ctx, "failed to persist refreshed token", "error", err)
			}
			slog.InfoContext(ctx, "token refreshed")
			return fresh, nil
		}
	}

	if authenticate == nil {
		return nil, ErrNoToken
	}

	fresh, err := authenticate(ctx)
	if err != nil || fresh == nil {
		slog.WarnContext(ctx, "interactive authentication failed", "error", err)
		return nil, ErrNoToken
	}

	if _, err := m.Save(ctx, fresh); err != nil {
		slog.ErrorContext(ctx, "failed to persist new token", "error", err)
	}
	slog.InfoContext(ctx, "token obtained via interactive authorization")
	return fresh, nil
}
