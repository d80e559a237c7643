// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the conversa TUI.
//
// This file renders attachment chips: the staged files shown above the
// input before a send, and the stored filenames attached to a historical
// message.
package components

import (
	"fmt"
	"strings"

	"github.com/conversa-io/conversa-tui/internal/model"
	"github.com/conversa-io/conversa-tui/internal/ui/styles"
)

// RenderFileChips renders a row of attachment chips. Local files show
// their size; remote refs only have a name. Returns "" when there is
// nothing to show.
func RenderFileChips(theme *styles.Theme, files []model.Attachment, maxWidth int) string {
	if len(files) == 0 {
		return ""
	}

	chips := make([]string, 0, len(files))
	for _, f := range files {
		label := TruncateToWidth(f.Name, 24)
		if f.IsLocal() && f.Size > 0 {
			label = fmt.Sprintf("%s (%s)", label, formatSize(f.Size))
		}
		chips = append(chips, theme.AttachmentChip.Render(label))
	}

	row := strings.Join(chips, " ")
	if maxWidth > 0 {
		return theme.Container.MaxWidth(maxWidth).Render(row)
	}
	return row
}

// RenderStagedBar renders the staged-files line shown above the input,
// including the remaining slot count.
func RenderStagedBar(theme *styles.Theme, files []model.Attachment, maxFiles, maxWidth int) string {
	if len(files) == 0 {
		return ""
	}
	chips := RenderFileChips(theme, files, maxWidth)
	counter := theme.SessionMeta.Render(fmt.Sprintf(" %d/%d", len(files), maxFiles))
	return chips + counter
}

// formatSize renders a byte count in a compact human form.
func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
