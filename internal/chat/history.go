// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"os"
	"path/filepath"

	"github.com/conversa-io/conversa-tui/internal/api"
	"github.com/conversa-io/conversa-tui/internal/model"
	"github.com/conversa-io/conversa-tui/internal/util"
)

// =============================================================================
// SESSION LISTING
// =============================================================================

// RefreshSessions fetches the conversation list and installs it in the
// registry. Placeholder entries survive the refresh. Returns the sorted
// snapshot the sidebar renders.
func (c *Controller) RefreshSessions(ctx context.Context) ([]model.Session, error) {
	infos, err := c.backend.ListSessions(ctx)
	if err != nil {
		if api.IsAuth(err) {
			c.logout()
		}
		return nil, err
	}

	sessions := make([]model.Session, len(infos))
	for i, info := range infos {
		sessions[i] = model.Session{
			ID:        info.ID,
			Title:     info.ConversationName,
			CreatedAt: info.CreatedAt,
		}
	}
	c.registry.Replace(sessions)
	return c.registry.List(), nil
}

// =============================================================================
// HISTORY LOADING
// =============================================================================

// LoadSession returns a conversation's transcript, fetching it from the
// backend the first time it is opened. Placeholder conversations have
// nothing to fetch and come back empty.
func (c *Controller) LoadSession(ctx context.Context, sessionID string) ([]*model.Message, error) {
	if msgs, loaded := c.store.Get(sessionID); loaded {
		return msgs, nil
	}
	if model.IsPlaceholderID(sessionID) {
		c.store.MarkLoaded(sessionID)
		return nil, nil
	}

	hist, err := c.backend.GetSession(ctx, sessionID)
	if err != nil {
		if api.IsAuth(err) {
			c.logout()
		}
		return nil, err
	}

	msgs := historyMessages(hist.Messages)
	c.store.Put(sessionID, msgs)
	if hist.ConversationName != "" {
		c.registry.Rename(sessionID, hist.ConversationName)
	}
	return msgs, nil
}

// historyMessages maps the wire history onto the local model. Attachment
// names become remote references: the bytes stay on the backend.
func historyMessages(wire []api.HistoryMessage) []*model.Message {
	msgs := make([]*model.Message, 0, len(wire))
	for _, w := range wire {
		m := &model.Message{
			ID:        w.ID,
			Role:      model.Role(w.Role),
			Answer:    w.Content,
			CreatedAt: w.CreatedAt,
			LinkFile:  w.File,
		}
		if w.Rate != nil {
			r := *w.Rate
			m.Rate = &r
		}
		for _, name := range w.Files {
			m.Files = append(m.Files, model.NewRemoteAttachment(name))
		}
		msgs = append(msgs, m)
	}
	return msgs
}

// =============================================================================
// DOCUMENT DOWNLOAD
// =============================================================================

// SaveDocument downloads a generated document and writes it into dir,
// creating the directory when needed. Returns the saved path.
func (c *Controller) SaveDocument(ctx context.Context, docID, dir string) (string, error) {
	name, data, err := c.backend.DownloadDocument(ctx, docID)
	if err != nil {
		if api.IsAuth(err) {
			c.logout()
		}
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
