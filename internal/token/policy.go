package token

import "time"

// DefaultExpirationBuffer is subtracted from every expiry bound so tokens are
// refreshed before they actually lapse mid-request.
const DefaultExpirationBuffer = 5 * time.Minute

// Policy decides when a stored token counts as expired.
type Policy struct {
	// ExpirationBuffer shrinks both expiry bounds; a token within the buffer
	// of its expiry is already treated as expired.
	ExpirationBuffer time.Duration

	// MaxLifetime caps a token's effective lifetime regardless of the
	// server-declared expires_in. Zero means no extra cap.
	MaxLifetime time.Duration
}

// Expired reports whether the stored token is expired at the given instant.
//
// A token with no recorded expiry is expired. With a MaxLifetime set and a
// known creation time, crossing created_at+MaxLifetime (minus buffer) expires
// the token independently of the server-declared expiry; either bound alone
// suffices.
func (p Policy) Expired(s *StoredToken, now time.Time) bool {
	if s.ExpiresAt == 0 {
		return true
	}

	if p.MaxLifetime > 0 && s.CreatedAt > 0 {
		custom := time.UnixMilli(s.CreatedAt).Add(p.MaxLifetime - p.ExpirationBuffer)
		if !now.Before(custom) {
			return true
		}
	}

	return !now.Before(time.UnixMilli(s.ExpiresAt).Add(-p.ExpirationBuffer))
}

// Stamp produces the persisted form of a freshly issued token.
// The recorded expiry is the server-declared lifetime capped by MaxLifetime,
// whichever ends first.
func (p Policy) Stamp(t *Token, now time.Time) *StoredToken {
	expiresAt := now.Add(time.Duration(t.ExpiresIn) * time.Second)
	if p.MaxLifetime > 0 {
		if capped := now.Add(p.MaxLifetime); capped.Before(expiresAt) {
			expiresAt = capped
		}
	}

	return &StoredToken{
		Token:     *t,
		CreatedAt: now.UnixMilli(),
		ExpiresAt: expiresAt.UnixMilli(),
	}
}
