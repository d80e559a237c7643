// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderLogin draws the login screen: the browser URL to visit, the code
// input and any exchange error.
func (m Model) renderLogin() string {
	var lines []string

	lines = append(lines,
		m.theme.LoginTitle.Render("conversa"),
		"",
		m.theme.LoginHint.Render("Open this URL in your browser and sign in:"),
		"",
		m.theme.LoginURL.Render(m.client.LoginURL()),
		"",
		m.theme.LoginHint.Render("Then paste the login code below."),
		"",
		m.loginInput.View(),
	)

	if m.loginBusy {
		lines = append(lines, "", m.theme.ThinkingText.Render("exchanging code..."))
	}
	if m.loginErr != "" {
		lines = append(lines, "", m.theme.LoginError.Render(m.loginErr))
	}

	lines = append(lines, "", m.theme.LoginHint.Render("enter to continue, ctrl+q to quit"))

	box := m.theme.LoginBox.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
