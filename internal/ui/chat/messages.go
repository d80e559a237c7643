// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the Bubble Tea chat view.
//
// This file defines the view-level Bubble Tea messages. Controller results
// (send, vote, delete, history) arrive as the controller package's own
// message types; the types here cover login and lifecycle events that only
// the view cares about.
package chat

import (
	"github.com/conversa-io/conversa-tui/internal/api"
	"github.com/conversa-io/conversa-tui/internal/config"
)

// TokenExchangedMsg reports a login-code exchange attempt.
type TokenExchangedMsg struct {
	Token *api.TokenResponse
	Err   error
}

// LoggedOutMsg tells the view to drop to the login screen. Sent by the
// controller's logout hook when the backend rejects the token, or locally
// after an explicit /logout.
type LoggedOutMsg struct {
	// Expired is true when the logout came from a rejected token rather
	// than a user action.
	Expired bool
}

// StatusMsg sets a transient status-bar note.
type StatusMsg struct {
	Text string
}

// ConfigReloadedMsg carries a freshly loaded config after the file changed
// on disk.
type ConfigReloadedMsg struct {
	Cfg *config.Config
}
