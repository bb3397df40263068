// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

//go:build integration

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to manage Docker containers for integration tests.
// Every file carries the integration build tag, so the package only compiles with:
//
//	go test -tags integration ./...
//
// # Redis Container
//
// RedisContainer runs a real Redis server for the shared feed cache backend:
//
//	func TestRedisBackend(t *testing.T) {
//	    redis := testinfra.StartRedis(t)
//	    // connect to redis.URL
//	}
package testinfra
