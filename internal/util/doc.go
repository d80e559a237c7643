// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the conversa TUI.
//
// It contains:
//   - Atomic file writes (used by the config and token stores, and by
//     document downloads) so a crash never leaves a half-written file.
//   - Rune-safe string truncation for titles and previews, so multi-byte
//     UTF-8 characters are never split.
//
// The package has no dependencies on other internal packages.
package util
