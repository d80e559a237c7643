// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/conversa-io/conversa-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown.
func (e *MarkdownExporter) Export(sess model.Session, msgs []*model.Message) ([]byte, error) {
	if len(msgs) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(sess.DisplayTitle())))
		sb.WriteString(fmt.Sprintf("messages: %d\n", len(msgs)))
		sb.WriteString(fmt.Sprintf("exported: %s\n", time.Now().Format(time.RFC3339)))
		sb.WriteString("generator: conversa\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", sess.DisplayTitle()))

	for i, msg := range msgs {
		label := roleLabel(msg.Role)
		if e.options.IncludeTimestamps && !msg.CreatedAt.IsZero() {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n", label, formatTimestamp(msg.CreatedAt)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", label))
		}

		sb.WriteString(msg.Answer)
		sb.WriteString("\n\n")

		if len(msg.Files) > 0 {
			sb.WriteString("Attachments:\n")
			for _, f := range msg.Files {
				sb.WriteString(fmt.Sprintf("- %s\n", f.Name))
			}
			sb.WriteString("\n")
		}
		if msg.LinkFile != "" {
			sb.WriteString(fmt.Sprintf("*Generated document: %s*\n\n", msg.LinkFile))
		}

		if i < len(msgs)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

func roleLabel(role model.Role) string {
	switch role {
	case model.RoleUser:
		return "You"
	case model.RoleAssistant:
		return "Assistant"
	default:
		return string(role)
	}
}

// escapeYAML quotes a frontmatter value and strips newlines, so titles
// cannot break out of the header block.
func escapeYAML(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return "\"" + s + "\""
}
