package authflow

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/florianilch/tokenward/internal/token"
)

const (
	// DefaultTimeout bounds the wait for the authorization redirect.
	DefaultTimeout = 300 * time.Second

	// PromptConsent forces the provider to re-display the permission screen.
	// Some providers only issue a refresh token on affirmative re-consent.
	PromptConsent = "consent"

	// exchangeTimeout bounds the code-for-token exchange after a redirect
	// has been captured.
	exchangeTimeout = 30 * time.Second
)

// Option configures a Flow.
type Option func(*Flow)

// WithTimeout sets how long GetToken waits for the authorization redirect.
func WithTimeout(d time.Duration) Option {
	return func(f *Flow) {
		f.timeout = d
	}
}

// WithScopes sets the scopes requested in the authorization URL.
func WithScopes(scopes ...string) Option {
	return func(f *Flow) {
		f.scopes = scopes
	}
}

// WithLoginHint pre-selects the account on the provider's login screen.
func WithLoginHint(hint string) Option {
	return func(f *Flow) {
		f.loginHint = hint
	}
}

// WithPrompt sets the authorization prompt parameter (e.g. PromptConsent).
func WithPrompt(prompt string) Option {
	return func(f *Flow) {
		f.prompt = prompt
	}
}

// WithOfflineAccess requests refresh-token issuance (access_type=offline).
func WithOfflineAccess(offline bool) Option {
	return func(f *Flow) {
		f.offlineAccess = offline
	}
}

// WithOpener sets the collaborator that opens the authorization URL.
// If not provided, the system default browser is used.
func WithOpener(opener URLOpener) Option {
	return func(f *Flow) {
		f.opener = opener
	}
}

// WithTransport sets a custom base transport for the code exchange request.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) Option {
	return func(f *Flow) {
		f.baseTransport = transport
	}
}

// Flow performs one interactive authorization-code grant: a one-shot local
// redirect receiver, the provider authorization URL, and the code-for-token
// exchange.
type Flow struct {
	creds *Credentials

	timeout       time.Duration
	scopes        []string
	loginHint     string
	prompt        string
	offlineAccess bool
	opener        URLOpener
	baseTransport http.RoundTripper
}

// New creates a Flow for the given credentials.
func New(creds *Credentials, opts ...Option) (*Flow, error) {
	if creds == nil {
		return nil, fmt.Errorf("missing credentials")
	}

	f := &Flow{
		creds:         creds,
		timeout:       DefaultTimeout,
		offlineAccess: true,
		opener:        BrowserOpener{},
	}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// GetToken runs the full interactive grant. The redirect listener never
// outlives this call; it is torn down on success, failure, timeout, and
// cancellation alike. All expected failure modes come back as errors, with
// the cause visible in logs only.
func (f *Flow) GetToken(ctx context.Context) (*token.Token, error) {
	conf := f.creds.OAuthConfig(f.scopes)

	redirect, err := url.Parse(conf.RedirectURL)
	if err != nil || redirect.Host == "" {
		return nil, fmt.Errorf("unusable redirect URI %q", conf.RedirectURL)
	}

	state := uuid.NewString()

	srv := newCallbackServer(redirect, state)
	if err := srv.start(); err != nil {
		return nil, fmt.Errorf("starting callback listener: %w", err)
	}
	defer srv.shutdown()

	authURL := conf.AuthCodeURL(state, f.authCodeOptions()...)
	slog.InfoContext(ctx, "waiting for authorization", "listen", redirect.Host, "timeout", f.timeout)
	if err := f.opener.Open(authURL); err != nil {
		// Best effort; the URL remains usable manually.
		slog.WarnContext(ctx, "could not open authorization URL, open it manually", "url", authURL, "error", err)
	}

	timer := time.NewTimer(f.timeout)
	defer timer.Stop()

	var code string
	select {
	case res := <-srv.results:
		if res.err != nil {
			slog.WarnContext(ctx, "authorization callback failed", "error", res.err)
			return nil, res.err
		}
		code = res.code
	case <-timer.C:
		return nil, fmt.Errorf("authorization timed out after %s", f.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	exchangeCtx = context.WithValue(exchangeCtx, oauth2.HTTPClient, &http.Client{
		Transport: f.baseTransport,
	})

	fresh, err := conf.Exchange(exchangeCtx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}

	return token.FromOAuth2(fresh), nil
}

// authCodeOptions assembles the conditional authorization URL parameters.
func (f *Flow) authCodeOptions() []oauth2.AuthCodeOption {
	var opts []oauth2.AuthCodeOption
	if f.offlineAccess {
		opts = append(opts, oauth2.AccessTypeOffline)
	}
	if f.loginHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", f.loginHint))
	}
	if f.prompt != "" {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", f.prompt))
	}
	return opts
}
