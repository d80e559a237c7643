// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the conversa TUI.
//
// This file implements the delete confirmation modal. Deleting a
// conversation is the one destructive action in the client, so it gets an
// explicit yes/no prompt instead of acting on the first keypress.
package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/conversa-io/conversa-tui/internal/ui/styles"
)

// ConfirmModal is a modal yes/no prompt. The zero value is hidden.
type ConfirmModal struct {
	visible   bool
	title     string
	targetID  string
	yesActive bool
}

// Show opens the modal for the given target. The cursor starts on "No".
func (c *ConfirmModal) Show(title, targetID string) {
	c.visible = true
	c.title = title
	c.targetID = targetID
	c.yesActive = false
}

// Hide closes the modal.
func (c *ConfirmModal) Hide() {
	c.visible = false
	c.targetID = ""
}

// Visible reports whether the modal is open.
func (c *ConfirmModal) Visible() bool {
	return c.visible
}

// TargetID returns the id the modal was opened for.
func (c *ConfirmModal) TargetID() string {
	return c.targetID
}

// Toggle flips the active button.
func (c *ConfirmModal) Toggle() {
	c.yesActive = !c.yesActive
}

// YesActive reports whether the "Yes" button is focused.
func (c *ConfirmModal) YesActive() bool {
	return c.yesActive
}

// Render renders the modal centered in the given area.
func (c *ConfirmModal) Render(theme *styles.Theme, width, height int) string {
	if !c.visible {
		return ""
	}

	title := theme.ConfirmTitle.Render(c.title)
	hint := theme.SessionMeta.Render("left/right to choose, enter to confirm, esc to cancel")

	yes := theme.ConfirmButton.Render("Yes")
	no := theme.ConfirmButtonActive.Render("No")
	if c.yesActive {
		yes = theme.ConfirmButtonActive.Render("Yes")
		no = theme.ConfirmButton.Render("No")
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, yes, no)

	box := theme.ConfirmBox.Render(lipgloss.JoinVertical(lipgloss.Center, title, "", buttons, "", hint))

	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
