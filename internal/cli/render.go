// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// renderMarkdownForTerminal renders assistant markdown for stdout, wrapped
// to the terminal width. Falls back to the raw text when rendering is not
// possible (e.g. piped output).
func renderMarkdownForTerminal(markdown string) string {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		width = w - 2
		if width > 120 {
			width = 120
		}
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
