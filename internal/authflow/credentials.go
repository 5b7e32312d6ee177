package authflow

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"golang.org/x/oauth2"
)

// knownNestingKeys are the provider keys tried, in order, when no explicit
// key is given and the credentials JSON is not a flat object. Google-style
// registration downloads nest under "installed" or "web".
var knownNestingKeys = []string{"installed", "web"}

// Credentials holds provider registration data for the authorization-code
// grant. Immutable once loaded; never persisted by this module.
type Credentials struct {
	ClientID     string   `json:"client_id" validate:"required"`
	ClientSecret string   `json:"client_secret" validate:"required"`
	AuthURI      string   `json:"auth_uri" validate:"required,url"`
	TokenURI     string   `json:"token_uri" validate:"required,url"`
	RedirectURIs []string `json:"redirect_uris" validate:"min=1,dive,required,uri"`
}

// RedirectURI returns the redirect URI in use (the first configured entry).
func (c *Credentials) RedirectURI() string {
	return c.RedirectURIs[0]
}

// OAuthConfig builds the oauth2 configuration for these credentials.
// AuthStyleInParams puts client_id/client_secret in the request body, the
// form most providers with downloadable registrations expect.
func (c *Credentials) OAuthConfig(scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI(),
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AuthURI,
			TokenURL:  c.TokenURI,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// LoadCredentials reads and parses a credentials file. See ParseCredentials
// for the accepted shapes.
func LoadCredentials(path, key string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	creds, err := ParseCredentials(data, key)
	if err != nil {
		return nil, fmt.Errorf("credentials file %s: %w", path, err)
	}
	return creds, nil
}

// ParseCredentials parses credentials JSON into a normalized Credentials
// value. The object may be flat or nested under a provider key; resolution
// order is explicit key, known provider keys ("installed", "web"), flat.
// All required fields must be present and non-empty.
func ParseCredentials(data []byte, key string) (*Credentials, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if key != "" {
		nested, ok := raw[key]
		if !ok {
			return nil, fmt.Errorf("no %q object in credentials", key)
		}
		return parseFlat(nested)
	}

	for _, k := range knownNestingKeys {
		if nested, ok := raw[k]; ok {
			return parseFlat(nested)
		}
	}

	return parseFlat(data)
}

// parseFlat decodes a flat credentials object and validates required fields.
func parseFlat(data []byte) (*Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials object: %w", err)
	}

	if err := validator.New().Struct(&creds); err != nil {
		return nil, fmt.Errorf("incomplete credentials: %w", err)
	}
	return &creds, nil
}
