// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/conversa-io/conversa-tui/internal/util"
)

// PlaceholderPrefix marks session ids that were generated locally and have
// not yet been acknowledged by the backend. The backend never issues ids
// with this prefix.
const PlaceholderPrefix = "local-"

// TitleMaxRunes is the display length a session title derived from the
// first user message is truncated to.
const TitleMaxRunes = 28

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session holds conversation metadata. Message bodies are kept separately
// in the message store under the same id.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPlaceholderSession creates a session with a locally generated id.
// Title and CreatedAt stay zero until the first message round-trips.
func NewPlaceholderSession() Session {
	return Session{ID: NewPlaceholderID()}
}

// IsPlaceholder reports whether the session id is a local placeholder.
func (s Session) IsPlaceholder() bool {
	return IsPlaceholderID(s.ID)
}

// DisplayTitle returns the title, or a default for a session that has no
// title yet (a new conversation before its first message).
func (s Session) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return "New conversation"
}

// =============================================================================
// ID HELPERS
// =============================================================================

// NewPlaceholderID generates a fresh placeholder session id.
func NewPlaceholderID() string {
	return PlaceholderPrefix + uuid.NewString()
}

// IsPlaceholderID reports whether an id carries the placeholder prefix.
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}

// NewMessageID generates a client-side message id.
func NewMessageID() string {
	return uuid.NewString()
}

// DeriveTitle builds a session title from the first user message: newlines
// collapsed, truncated to TitleMaxRunes without an ellipsis (matching what
// the backend stores for the conversation name).
func DeriveTitle(firstMessage string) string {
	return util.TruncateRunesNoEllipsis(util.CollapseWhitespace(firstMessage), TitleMaxRunes)
}
