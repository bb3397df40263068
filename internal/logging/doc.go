// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

// Package logging provides centralized zerolog-based logging for Reelfeed.
//
// A single global logger is configured once from main and shared by every
// component. Adapters bridge it into the two libraries that bring their own
// logging interfaces: slog (used by the suture supervisor hook) and
// watermill.LoggerAdapter (used by the invalidation bus).
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Msg("Server starting")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Cache bypassed")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event
// is never written.
package logging
