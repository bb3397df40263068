// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package auth resolves request credentials into an AuthSubject.

Three authenticators are available and are usually combined with a
MultiAuthenticator:

  - APIKeyAuthenticator: X-API-Key "name.secret" checked against bcrypt
    hashes from configuration; yields a service subject ("service:name")
  - JWTAuthenticator: HS256 bearer tokens whose subject claim is the feed
    user ID and whose role claim defaults to viewer
  - HeaderAuthenticator: trusted X-User-ID from an authenticating gateway

Middleware.Authenticate is optional: trending
feeds are public, so requests without credentials continue anonymously.
Routes that act on a user wrap handlers with RequireUser; administrative
routes are additionally guarded by the Casbin enforcer in package authz.

Error responses use the standard models.APIResponse envelope:

	401 AUTH_REQUIRED   no credentials on a protected route
	401 INVALID_TOKEN   credentials presented but rejected or expired
	403 FORBIDDEN       service subject on an end-user route
*/
package auth
