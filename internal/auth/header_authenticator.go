// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/models"
)

// UserIDHeader is set by a trusted gateway after it authenticated the user.
const UserIDHeader = "X-User-ID"

// HeaderAuthenticator trusts UserIDHeader. Enable it only behind a proxy
// that strips the header from client requests.
type HeaderAuthenticator struct{}

// NewHeaderAuthenticator creates a gateway header authenticator.
func NewHeaderAuthenticator() *HeaderAuthenticator {
	return &HeaderAuthenticator{}
}

// Authenticate reads the user ID from the gateway header.
func (a *HeaderAuthenticator) Authenticate(_ context.Context, r *http.Request) (*AuthSubject, error) {
	userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if userID == "" {
		return nil, ErrNoCredentials
	}
	if !feed.ValidID(userID) {
		return nil, ErrInvalidCredentials
	}
	return &AuthSubject{
		ID:         userID,
		Roles:      []string{models.RoleViewer},
		Issuer:     "gateway",
		AuthMethod: AuthModeHeader,
	}, nil
}

// Name returns the authenticator name.
func (a *HeaderAuthenticator) Name() string {
	return string(AuthModeHeader)
}

// Priority returns the authenticator priority. Signed credentials win
// over the gateway header.
func (a *HeaderAuthenticator) Priority() int {
	return 30
}
