package token

import (
	"time"

	"golang.org/x/oauth2"
)

// Token is a provider-issued credential as returned by a token endpoint.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"` // Seconds until expiration, from issuance
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope,omitempty"`
}

// StoredToken is the persisted form of a Token: the provider fields plus
// local issuance metadata. CreatedAt and ExpiresAt are epoch milliseconds.
type StoredToken struct {
	Token

	CreatedAt int64 `json:"created_at"`
	ExpiresAt int64 `json:"expires_at"`
}

// CreatedTime returns CreatedAt as a time.Time (zero time if unset).
func (s *StoredToken) CreatedTime() time.Time {
	if s.CreatedAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.CreatedAt)
}

// ExpiryTime returns ExpiresAt as a time.Time (zero time if unset).
func (s *StoredToken) ExpiryTime() time.Time {
	if s.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.ExpiresAt)
}

// FromOAuth2 converts an oauth2.Token into a Token.
// Scope is carried over from the token endpoint response when present.
func FromOAuth2(t *oauth2.Token) *Token {
	scope, _ := t.Extra("scope").(string)
	return &Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
		TokenType:    t.Type(),
		Scope:        scope,
	}
}
