package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/florianilch/tokenward/internal/authflow"
	"github.com/florianilch/tokenward/internal/token"
	"github.com/florianilch/tokenward/internal/tokenmanager"
)

// Authenticator is the single entry point for obtaining a valid token. It
// composes the token manager and the interactive authorization flow into the
// full reuse / refresh / re-authorize policy.
type Authenticator struct {
	cfg     *Config
	creds   *authflow.Credentials
	manager *tokenmanager.Manager
}

// New creates an Authenticator from configuration: credentials are loaded
// and validated, and the token store is constructed. These are setup
// failures and surface as errors; runtime authentication failures never do.
func New(cfg *Config) (*Authenticator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Credentials.File == "" {
		return nil, fmt.Errorf("credentials file required")
	}

	creds, err := authflow.LoadCredentials(cfg.Credentials.File, cfg.Credentials.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	store, err := cfg.Token.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}

	manager, err := tokenmanager.New(store, cfg.Token.Policy())
	if err != nil {
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}

	return &Authenticator{
		cfg:     cfg,
		creds:   creds,
		manager: manager,
	}, nil
}

// Manager exposes the underlying token manager for diagnostics and deletion.
func (a *Authenticator) Manager() *tokenmanager.Manager {
	return a.manager
}

// Authenticate returns a valid token: a stored one when still usable, a
// refreshed one when a refresh token is available, or - when interactive is
// true - one from a fresh authorization-code grant. Returns
// tokenmanager.ErrNoToken once every fallback is exhausted.
//
// A nil opener keeps the default system-browser opener.
func (a *Authenticator) Authenticate(ctx context.Context, interactive bool, opener authflow.URLOpener) (*token.Token, error) {
	conf := a.creds.OAuthConfig(a.cfg.Flow.Scopes)

	var authenticate tokenmanager.AuthenticateFunc
	if interactive {
		flow, err := a.newFlow(ctx, opener)
		if err != nil {
			return nil, err
		}
		authenticate = flow.GetToken
	}

	return a.manager.GetValidToken(ctx, conf, authenticate)
}

// newFlow assembles the interactive flow with the resolved prompt and
// offline-access settings.
func (a *Authenticator) newFlow(ctx context.Context, opener authflow.URLOpener) (*authflow.Flow, error) {
	offline := !a.cfg.Flow.DisableOfflineAccess

	prompt := a.cfg.Flow.Prompt
	if offline && prompt == "" {
		// Without a stored refresh token only an affirmative re-consent
		// reliably makes the provider issue one.
		stored := a.manager.GetStored(ctx)
		if stored == nil || stored.RefreshToken == "" {
			prompt = authflow.PromptConsent
			slog.DebugContext(ctx, "forcing consent prompt to obtain a refresh token")
		}
	}

	opts := []authflow.Option{
		authflow.WithTimeout(a.cfg.Flow.Timeout),
		authflow.WithScopes(a.cfg.Flow.Scopes...),
		authflow.WithOfflineAccess(offline),
		authflow.WithPrompt(prompt),
		authflow.WithLoginHint(a.cfg.Flow.LoginHint),
	}
	if opener != nil {
		opts = append(opts, authflow.WithOpener(opener))
	}

	return authflow.New(a.creds, opts...)
}
