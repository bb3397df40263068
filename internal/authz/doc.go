// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package authz guards routes with a Casbin RBAC policy.

The embedded model matches request paths with keyMatch2 and actions with
regexMatch. Actions derive from the HTTP method: GET/HEAD/OPTIONS read,
POST/PUT/PATCH write, DELETE delete.

Roles form a hierarchy:

	admin    manual invalidation and everything below
	service  catalog ingest (item uploaded, item hidden)
	viewer   feeds, likes, views, shares, follows, websocket

Operators may replace the embedded model or policy with files via
security.casbin_model_path and security.casbin_policy_path; a file
policy is reloaded periodically.
*/
package authz
