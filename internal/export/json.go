// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/conversa-io/conversa-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports conversations to pretty-printed JSON.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// jsonDocument is the exported file layout.
type jsonDocument struct {
	Title      string           `json:"title"`
	SessionID  string           `json:"session_id,omitempty"`
	ExportedAt time.Time        `json:"exported_at"`
	Generator  string           `json:"generator"`
	Messages   []*model.Message `json:"messages"`
}

// Export converts a conversation to JSON.
func (e *JSONExporter) Export(sess model.Session, msgs []*model.Message) ([]byte, error) {
	if len(msgs) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	sessionID := sess.ID
	if sess.IsPlaceholder() {
		sessionID = ""
	}

	doc := jsonDocument{
		Title:      sess.DisplayTitle(),
		SessionID:  sessionID,
		ExportedAt: time.Now(),
		Generator:  "conversa",
		Messages:   msgs,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
