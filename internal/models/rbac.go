// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package models

// Role constants align with the Casbin policy in internal/authz.
const (
	// RoleViewer is an end user browsing and interacting with feeds.
	RoleViewer = "viewer"

	// RoleService is an ingestion or moderation caller using an API key.
	RoleService = "service"

	// RoleAdmin can invalidate caches and manage the catalog.
	RoleAdmin = "admin"
)

// ValidRoles contains all valid role names for validation.
var ValidRoles = []string{RoleViewer, RoleService, RoleAdmin}

// IsValidRole checks if a role name is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
