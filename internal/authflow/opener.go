package authflow

import (
	"log/slog"

	"github.com/pkg/browser"
)

// URLOpener opens a URL in the user's preferred external application.
// Modeled as an injected collaborator so tests can drive the redirect
// without a real browser.
type URLOpener interface {
	Open(url string) error
}

// BrowserOpener opens URLs in the system default browser.
type BrowserOpener struct{}

// Compile-time check to ensure BrowserOpener implements URLOpener
var _ URLOpener = BrowserOpener{}

func (BrowserOpener) Open(url string) error {
	return browser.OpenURL(url)
}

// LogOpener never launches anything; it logs the URL for manual use.
// Used when no interactive terminal or display is available.
type LogOpener struct{}

var _ URLOpener = LogOpener{}

func (LogOpener) Open(url string) error {
	slog.Info("open this URL to authorize", "url", url)
	return nil
}
