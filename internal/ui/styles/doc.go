// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles centralizes colors and lipgloss styles for the TUI.
//
// Colors are defined once as AdaptiveColor pairs so every component renders
// correctly on both light and dark terminals. The Theme aggregates the
// pre-built styles the views use; construct one at startup with the mode
// from the config file and pass it down.
package styles
