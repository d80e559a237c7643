// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/conversa-io/conversa-tui/internal/model"
)

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// SessionsRefreshedMsg carries the refreshed conversation list.
type SessionsRefreshedMsg struct {
	Sessions []model.Session
	Err      error
}

// HistoryLoadedMsg carries a lazily loaded transcript.
type HistoryLoadedMsg struct {
	SessionID string
	Messages  []*model.Message
	Err       error
}

// SendDoneMsg carries the settled result of a Submit, Edit or Regenerate.
type SendDoneMsg struct {
	Result SendResult
	Err    error
}

// VoteDoneMsg reports a vote attempt.
type VoteDoneMsg struct {
	SessionID string
	MessageID string
	Rate      int
	Err       error
}

// SessionDeletedMsg reports a delete attempt.
type SessionDeletedMsg struct {
	SessionID string
	Err       error
}

// DocumentSavedMsg reports a document download.
type DocumentSavedMsg struct {
	Path string
	Err  error
}

// RefreshSessionsCmd fetches the conversation list off the UI thread.
func RefreshSessionsCmd(ctx context.Context, c *Controller) tea.Cmd {
	return func() tea.Msg {
		sessions, err := c.RefreshSessions(ctx)
		return SessionsRefreshedMsg{Sessions: sessions, Err: err}
	}
}

// LoadSessionCmd loads a transcript off the UI thread.
func LoadSessionCmd(ctx context.Context, c *Controller, sessionID string) tea.Cmd {
	return func() tea.Msg {
		msgs, err := c.LoadSession(ctx, sessionID)
		return HistoryLoadedMsg{SessionID: sessionID, Messages: msgs, Err: err}
	}
}

// SubmitCmd sends a message off the UI thread.
func SubmitCmd(ctx context.Context, c *Controller, sessionID, question string, files []model.Attachment) tea.Cmd {
	return func() tea.Msg {
		res, err := c.Submit(ctx, sessionID, question, files)
		return SendDoneMsg{Result: res, Err: err}
	}
}

// EditCmd rewrites a user message and resends from it.
func EditCmd(ctx context.Context, c *Controller, sessionID, messageID, newText string) tea.Cmd {
	return func() tea.Msg {
		res, err := c.Edit(ctx, sessionID, messageID, newText)
		return SendDoneMsg{Result: res, Err: err}
	}
}

// RegenerateCmd asks the question behind an assistant reply again.
func RegenerateCmd(ctx context.Context, c *Controller, sessionID, assistantID string) tea.Cmd {
	return func() tea.Msg {
		res, err := c.Regenerate(ctx, sessionID, assistantID)
		return SendDoneMsg{Result: res, Err: err}
	}
}

// VoteCmd records a vote off the UI thread.
func VoteCmd(ctx context.Context, c *Controller, sessionID, messageID string, rate int) tea.Cmd {
	return func() tea.Msg {
		err := c.Vote(ctx, sessionID, messageID, rate)
		return VoteDoneMsg{SessionID: sessionID, MessageID: messageID, Rate: rate, Err: err}
	}
}

// DeleteSessionCmd deletes a conversation off the UI thread.
func DeleteSessionCmd(ctx context.Context, c *Controller, sessionID string) tea.Cmd {
	return func() tea.Msg {
		err := c.DeleteSession(ctx, sessionID)
		return SessionDeletedMsg{SessionID: sessionID, Err: err}
	}
}

// SaveDocumentCmd downloads a generated document off the UI thread.
func SaveDocumentCmd(ctx context.Context, c *Controller, docID, dir string) tea.Cmd {
	return func() tea.Msg {
		path, err := c.SaveDocument(ctx, docID, dir)
		return DocumentSavedMsg{Path: path, Err: err}
	}
}
