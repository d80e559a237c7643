// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI components for the conversa TUI:
// the non-blocking toast stack, the session sidebar, staged-file chips, and
// the delete confirmation modal. Components render to strings and leave
// layout to the owning view.
package components
