// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package auth

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// AuthMode names how a subject was authenticated.
type AuthMode string

const (
	// AuthModeJWT uses HS256 bearer tokens issued by the auth collaborator.
	AuthModeJWT AuthMode = "jwt"

	// AuthModeAPIKey uses bcrypt-hashed service keys.
	AuthModeAPIKey AuthMode = "apikey"

	// AuthModeHeader trusts X-User-ID from a gateway.
	AuthModeHeader AuthMode = "header"

	// AuthModeMulti tries multiple authenticators in priority order.
	AuthModeMulti AuthMode = "multi"
)

// String returns the string representation of AuthMode.
func (m AuthMode) String() string {
	return string(m)
}

// Standard authentication errors
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates credentials have expired.
	ErrExpiredCredentials = errors.New("credentials expired")
)

// Authenticator defines the interface for authentication providers.
type Authenticator interface {
	// Authenticate extracts and validates credentials from the request.
	// It returns ErrNoCredentials when the request carries none it understands.
	Authenticate(ctx context.Context, r *http.Request) (*AuthSubject, error)

	// Name returns the authenticator's name for logging.
	Name() string

	// Priority orders authenticators in multi-mode. Lower values are tried first.
	Priority() int
}

// AuthSubject represents an authenticated user or service.
type AuthSubject struct {
	// ID is the feed user ID for end users, or "service:{name}" for API keys.
	ID string `json:"id"`

	// Roles are checked by the Casbin enforcer.
	Roles []string `json:"roles,omitempty"`

	// Issuer is the token issuer, or "local" for API keys and gateway headers.
	Issuer string `json:"issuer,omitempty"`

	AuthMethod AuthMode `json:"auth_method"`
	IssuedAt   int64    `json:"issued_at,omitempty"`
	ExpiresAt  int64    `json:"expires_at,omitempty"`
}

// HasRole checks if the subject has a specific role.
func (s *AuthSubject) HasRole(role string) bool {
	if s == nil || role == "" {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if the subject has any of the specified roles.
func (s *AuthSubject) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if s.HasRole(role) {
			return true
		}
	}
	return false
}

// IsExpired checks if the authentication has expired.
func (s *AuthSubject) IsExpired() bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return time.Now().Unix() > s.ExpiresAt
}

// IsService reports whether the subject is an API key caller rather than
// an end user. Service subjects never get personalized feeds.
func (s *AuthSubject) IsService() bool {
	return s != nil && s.AuthMethod == AuthModeAPIKey
}
