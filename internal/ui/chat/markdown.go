// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the Bubble Tea chat view.
package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer wraps a glamour renderer with a raw-text fallback, so a
// markdown parse failure degrades to plain text instead of an error screen.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// newMarkdownRenderer builds a renderer for the current palette and wrap
// width. Glamour's auto style probes the terminal; forced dark/light
// themes map to the matching style sheets.
func newMarkdownRenderer(isDark bool, width int) *markdownRenderer {
	if width < 20 {
		width = 20
	}

	style := "light"
	if isDark {
		style = "dark"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		renderer = nil
	}

	return &markdownRenderer{renderer: renderer, width: width}
}

// Render renders markdown to styled terminal text. Falls back to the raw
// input when glamour is unavailable or fails.
func (r *markdownRenderer) Render(markdown string) string {
	if r == nil || r.renderer == nil {
		return markdown
	}
	out, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	// Glamour pads with blank lines; the bubble supplies its own margins.
	return strings.Trim(out, "\n")
}
