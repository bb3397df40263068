// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/models"
)

// APIKeyHeader carries "name.secret" service credentials.
const APIKeyHeader = "X-API-Key"

// APIKeyAuthenticator authenticates ingest and operator services against
// bcrypt hashes from configuration. Subjects carry the service role.
type APIKeyAuthenticator struct {
	hashes map[string][]byte
}

// NewAPIKeyAuthenticator parses "name:bcrypt-hash" entries.
func NewAPIKeyAuthenticator(entries []string) (*APIKeyAuthenticator, error) {
	a := &APIKeyAuthenticator{hashes: make(map[string][]byte, len(entries))}
	for _, entry := range entries {
		name, hash, ok := strings.Cut(entry, ":")
		if !ok || name == "" || hash == "" {
			return nil, fmt.Errorf("api key entry must be name:bcrypt-hash")
		}
		if !feed.ValidID(name) {
			return nil, fmt.Errorf("api key name %q is not a valid identifier", name)
		}
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("api key %q: invalid bcrypt hash: %w", name, err)
		}
		if _, dup := a.hashes[name]; dup {
			return nil, fmt.Errorf("api key %q configured twice", name)
		}
		a.hashes[name] = []byte(hash)
	}
	return a, nil
}

// HashAPIKeySecret returns a bcrypt hash for provisioning a new key.
func HashAPIKeySecret(secret string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash api key: %w", err)
	}
	return string(hash), nil
}

// Authenticate validates the X-API-Key header.
func (a *APIKeyAuthenticator) Authenticate(_ context.Context, r *http.Request) (*AuthSubject, error) {
	raw := r.Header.Get(APIKeyHeader)
	if raw == "" {
		return nil, ErrNoCredentials
	}
	name, secret, ok := strings.Cut(raw, ".")
	if !ok || secret == "" {
		return nil, ErrInvalidCredentials
	}

	hash, known := a.hashes[name]
	if !known {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &AuthSubject{
		ID:         "service:" + name,
		Roles:      []string{models.RoleService},
		Issuer:     "local",
		AuthMethod: AuthModeAPIKey,
	}, nil
}

// Name returns the authenticator name.
func (a *APIKeyAuthenticator) Name() string {
	return string(AuthModeAPIKey)
}

// Priority returns the authenticator priority.
func (a *APIKeyAuthenticator) Priority() int {
	return 10
}
