// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"strings"
	"time"
)

// =============================================================================
// AUTH
// =============================================================================

// TokenResponse is returned by the token exchange endpoint.
type TokenResponse struct {
	AccessToken string   `json:"access_token"`
	Roles       []string `json:"roles,omitempty"`
}

// =============================================================================
// SESSIONS
// =============================================================================

// SessionInfo describes one conversation in the session listing.
type SessionInfo struct {
	ID               string    `json:"id"`
	ConversationName string    `json:"conversation_name"`
	CreatedAt        time.Time `json:"created_at"`
}

// ListSessionsResponse is the payload of GET /chat/sessions.
type ListSessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

// HistoryMessage is one message as stored by the backend.
type HistoryMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Rate      *int      `json:"rate,omitempty"`

	// Files are the names of attachments uploaded with a user message.
	Files []string `json:"files,omitempty"`

	// File references a generated document attached to an assistant reply.
	File string `json:"file,omitempty"`
}

// SessionHistoryResponse is the payload of GET /chat/get_one_session.
type SessionHistoryResponse struct {
	ConversationID   string           `json:"conversation_id"`
	ConversationName string           `json:"conversation_name"`
	Messages         []HistoryMessage `json:"messages"`
}

// DeleteResponse is the payload of DELETE /chat/delete_one_session.
type DeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deleted_count"`
}

// =============================================================================
// CHAT
// =============================================================================

// ChatRequest is the body of POST /chat/message. SessionID is empty when the
// local conversation has not been acknowledged by the backend yet; the
// response's SessionID carries the real id in that case.
type ChatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
	MessageID string `json:"message_id"`
}

// ChatResponse is the payload of POST /chat/message and /chat/attachment.
type ChatResponse struct {
	Answer    AssistantReply `json:"answer"`
	File      string         `json:"file,omitempty"`
	SessionID string         `json:"session_id"`
}

// replyPartSeparator joins the parts of a multi-part answer.
const replyPartSeparator = "\n\n\n\n"

// AssistantReply normalizes the backend's answer field, which arrives either
// as a plain string or as an array of parts. Parts are joined with a blank
// block and empty parts are dropped, so callers only ever see one string.
type AssistantReply string

// UnmarshalJSON accepts both wire shapes of the answer field.
func (r *AssistantReply) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*r = AssistantReply(plain)
		return nil
	}

	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}

	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		kept = append(kept, p)
	}
	*r = AssistantReply(strings.Join(kept, replyPartSeparator))
	return nil
}

// Text returns the normalized answer text.
func (r AssistantReply) Text() string {
	return string(r)
}

// =============================================================================
// VOTES
// =============================================================================

// VoteRequest is the body of POST /chat/vote. Rate is 1 for up, 0 for down.
type VoteRequest struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	Rate     int    `json:"rate"`
}

// =============================================================================
// ERROR PAYLOAD
// =============================================================================

// apiError is the backend's error body shape.
type apiError struct {
	Detail string `json:"detail"`
}
