// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/conversa-io/conversa-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// VOTE VALUES
// =============================================================================

// Vote values accepted by the backend. A nil rate means unvoted; voting is
// single-shot per message.
const (
	VoteDown = 0
	VoteUp   = 1
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	// Content
	Answer string `json:"answer"`

	// Attachments sent with a user message, or references loaded from
	// history. Empty for assistant messages.
	Files []Attachment `json:"files,omitempty"`

	// Rate is nil until the user votes (VoteUp or VoteDown).
	Rate *int `json:"rate,omitempty"`

	// LinkFile references a downloadable document the backend generated
	// for this assistant reply. Empty when there is none.
	LinkFile string `json:"link_file,omitempty"`
}

// NewUserMessage creates a user message with a generated id.
func NewUserMessage(answer string, files []Attachment) *Message {
	return &Message{
		ID:        NewMessageID(),
		Role:      RoleUser,
		Answer:    answer,
		Files:     files,
		CreatedAt: time.Now(),
	}
}

// NewAssistantMessage creates an assistant message with a generated id.
func NewAssistantMessage(answer, linkFile string) *Message {
	return &Message{
		ID:        NewMessageID(),
		Role:      RoleAssistant,
		Answer:    answer,
		LinkFile:  linkFile,
		CreatedAt: time.Now(),
	}
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// HasVote reports whether the message has been voted on.
func (m *Message) HasVote() bool {
	return m.Rate != nil
}

// HasFiles reports whether the message carries attachments. Editing is
// disallowed for user messages with attachments.
func (m *Message) HasFiles() bool {
	return len(m.Files) > 0
}

// Editable reports whether the edit affordance applies: user role and no
// attachments.
func (m *Message) Editable() bool {
	return m.Role == RoleUser && !m.HasFiles()
}

// Preview returns a truncated single-line preview of the message body.
func (m *Message) Preview(maxRunes int) string {
	return util.TruncateRunes(util.CollapseWhitespace(m.Answer), maxRunes)
}

// Clone returns a copy of the message. Attachment slices are copied so the
// clone can be mutated independently.
func (m *Message) Clone() *Message {
	c := *m
	if m.Files != nil {
		c.Files = make([]Attachment, len(m.Files))
		copy(c.Files, m.Files)
	}
	if m.Rate != nil {
		r := *m.Rate
		c.Rate = &r
	}
	return &c
}
