// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityEvent represents a security-relevant event for audit logging.
type SecurityEvent struct {
	// Event is the type of event (e.g., "auth_failure", "access_denied").
	Event string
	// SubjectID is the authenticated user or service identifier, if known.
	SubjectID string
	// Method is the authentication method (jwt, apikey, header).
	Method string
	// IPAddress is the client's IP address.
	IPAddress string
	// Path is the request path.
	Path string
	// Success indicates if the operation was successful.
	Success bool
	// Error is the error message if the operation failed.
	Error string
	// Details contains additional sanitized details.
	Details map[string]string
}

// SecurityLogger logs authentication and authorization events with
// sensitive values masked.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a new security logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{
		logger: With().Str("component", "auth").Logger(),
	}
}

// NewSecurityLoggerWithLogger creates a security logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// LogEvent logs a security event. Failures log at warn level.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	e := l.logger.Info()
	if !event.Success {
		e = l.logger.Warn()
	}
	e = e.Str("event", event.Event)

	if event.Success {
		e = e.Str("status", "success")
	} else {
		e = e.Str("status", "failed")
	}

	if event.SubjectID != "" {
		e = e.Str("subject", event.SubjectID)
	}
	if event.Method != "" {
		e = e.Str("method", event.Method)
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.Path != "" {
		e = e.Str("path", truncateString(event.Path, 200))
	}
	if event.Error != "" && !event.Success {
		e = e.Str("error", SanitizeError(event.Error))
	}

	for k, v := range event.Details {
		e = e.Str(k, SanitizeValue(k, v))
	}

	e.Msg("")
}

// LogAuthFailure records rejected credentials.
func (l *SecurityLogger) LogAuthFailure(method, ip, path, reason string) {
	l.LogEvent(&SecurityEvent{
		Event:     "auth_failure",
		Method:    method,
		IPAddress: ip,
		Path:      path,
		Error:     reason,
	})
}

// LogAccessDenied records an authenticated subject refused by policy.
func (l *SecurityLogger) LogAccessDenied(subjectID, ip, path, action string) {
	l.LogEvent(&SecurityEvent{
		Event:     "access_denied",
		SubjectID: subjectID,
		IPAddress: ip,
		Path:      path,
		Details:   map[string]string{"action": action},
	})
}

// LogAdminAction records a successful administrative operation such as a
// manual invalidation or an item being hidden.
func (l *SecurityLogger) LogAdminAction(subjectID, action, target string) {
	l.LogEvent(&SecurityEvent{
		Event:     "admin_action",
		SubjectID: subjectID,
		Success:   true,
		Details:   map[string]string{"action": action, "target": target},
	})
}

// SanitizeToken masks a token, showing only first and last 4 characters.
// Example: "eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..." -> "eyJh...kpXV"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeError removes potentially sensitive information from error messages.
func SanitizeError(err string) string {
	sensitivePatterns := []string{
		"password",
		"secret",
		"token",
		"key",
		"bearer",
		"authorization",
	}

	lowerErr := strings.ToLower(err)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lowerErr, pattern) {
			return "authentication error"
		}
	}

	return truncateString(err, 200)
}

// SanitizeValue sanitizes a value based on its key name.
func SanitizeValue(key, value string) string {
	switch strings.ToLower(key) {
	case "token", "access_token", "password", "secret", "api_key", "apikey", "authorization", "bearer":
		return SanitizeToken(value)
	}
	return value
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
