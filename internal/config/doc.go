// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

// Package config loads Reelfeed configuration with Koanf.
//
// Sources, lowest priority first:
//
//  1. Struct defaults (defaultConfig)
//  2. YAML file: CONFIG_PATH, else config.yaml / /etc/reelfeed/config.yaml
//  3. Environment variables, mapped explicitly (HTTP_PORT, CACHE_BACKEND, FEED_DEADLINE, ...)
//
// The merged result is validated before it is returned; an invalid
// configuration stops startup.
package config
