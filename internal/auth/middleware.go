// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/models"
)

type contextKey string

// AuthSubjectContextKey holds the *AuthSubject of an authenticated request.
const AuthSubjectContextKey contextKey = "auth_subject"

// Middleware resolves request credentials into an AuthSubject.
type Middleware struct {
	authenticator Authenticator
	security      *logging.SecurityLogger
}

// NewMiddleware creates auth middleware. A nil authenticator disables
// authentication and every request is anonymous.
func NewMiddleware(authenticator Authenticator, security *logging.SecurityLogger) *Middleware {
	if security == nil {
		security = logging.NewSecurityLogger()
	}
	return &Middleware{authenticator: authenticator, security: security}
}

// Authenticate attaches the subject when credentials are present. Requests
// without credentials continue anonymously; trending feeds are public.
// Presented but rejected credentials fail with 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.authenticator == nil {
			next.ServeHTTP(w, r)
			return
		}

		subject, err := m.authenticator.Authenticate(r.Context(), r)
		switch {
		case err == nil:
			next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), subject)))
		case errors.Is(err, ErrNoCredentials):
			next.ServeHTTP(w, r)
		default:
			m.security.LogAuthFailure(m.authenticator.Name(), r.RemoteAddr, r.URL.Path, err.Error())
			m.handleAuthError(w, err)
		}
	})
}

func (m *Middleware) handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrExpiredCredentials):
		writeError(w, http.StatusUnauthorized, models.ErrCodeInvalidToken, "credentials expired")
	default:
		writeError(w, http.StatusUnauthorized, models.ErrCodeInvalidToken, "invalid credentials")
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := GetAuthSubject(r.Context())
		if subject == nil || subject.IsExpired() {
			writeError(w, http.StatusUnauthorized, models.ErrCodeAuthRequired, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects anonymous requests with 401 and service subjects
// with 403. Personalized feeds and interactions act on an end user.
func RequireUser(next http.Handler) http.Handler {
	return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetAuthSubject(r.Context()).IsService() {
			writeError(w, http.StatusForbidden, models.ErrCodeForbidden, "endpoint requires an end-user identity")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// GetAuthSubject retrieves the AuthSubject from the context.
func GetAuthSubject(ctx context.Context) *AuthSubject {
	subject, ok := ctx.Value(AuthSubjectContextKey).(*AuthSubject)
	if !ok {
		return nil
	}
	return subject
}

// ContextWithSubject stores subject in ctx and tags the request logger
// with its ID.
func ContextWithSubject(ctx context.Context, subject *AuthSubject) context.Context {
	ctx = context.WithValue(ctx, AuthSubjectContextKey, subject)
	return logging.ContextWithUserID(ctx, subject.ID)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.NewErrorResponse(code, message, nil)); err != nil {
		logging.Error().Err(err).Msg("Failed to encode auth error response")
	}
}
