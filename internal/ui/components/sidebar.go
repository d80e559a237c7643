// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the conversa TUI.
//
// This file implements the session sidebar: the list of conversations on
// the left of the chat view, newest first, with cursor navigation and a
// marker on the session currently open.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/conversa-io/conversa-tui/internal/model"
	"github.com/conversa-io/conversa-tui/internal/ui/styles"
)

// Sidebar is the conversation list component. It does not talk to the
// backend; the chat view feeds it registry snapshots and reads the
// selection back out.
type Sidebar struct {
	sessions []model.Session
	cursor   int
	activeID string
	loading  bool
	width    int
	height   int
}

// NewSidebar creates an empty sidebar in the loading state. The first
// SetSessions call clears the skeleton.
func NewSidebar() Sidebar {
	return Sidebar{loading: true, width: 28}
}

// SetSessions replaces the listed sessions with a fresh registry snapshot.
// The cursor is clamped and re-anchored to the previously selected id when
// it still exists, so a background refresh does not yank the selection.
func (s *Sidebar) SetSessions(sessions []model.Session) {
	var selectedID string
	if s.cursor >= 0 && s.cursor < len(s.sessions) {
		selectedID = s.sessions[s.cursor].ID
	}

	s.sessions = sessions
	s.loading = false

	if selectedID != "" {
		for i, sess := range sessions {
			if sess.ID == selectedID {
				s.cursor = i
				return
			}
		}
	}
	if s.cursor >= len(sessions) {
		s.cursor = len(sessions) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// SetActive marks the session currently open in the transcript.
func (s *Sidebar) SetActive(id string) {
	s.activeID = id
}

// SetSize updates the rendered dimensions.
func (s *Sidebar) SetSize(width, height int) {
	if width < 16 {
		width = 16
	}
	s.width = width
	s.height = height
}

// MoveUp moves the cursor one entry up.
func (s *Sidebar) MoveUp() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// MoveDown moves the cursor one entry down.
func (s *Sidebar) MoveDown() {
	if s.cursor < len(s.sessions)-1 {
		s.cursor++
	}
}

// Selected returns the session under the cursor, if any.
func (s *Sidebar) Selected() (model.Session, bool) {
	if s.cursor < 0 || s.cursor >= len(s.sessions) {
		return model.Session{}, false
	}
	return s.sessions[s.cursor], true
}

// Len returns the number of listed sessions.
func (s *Sidebar) Len() int {
	return len(s.sessions)
}

// Render renders the sidebar at its configured size.
func (s *Sidebar) Render(theme *styles.Theme) string {
	header := theme.SidebarHeader.Render("Conversations")

	// Interior width inside the right border and padding.
	itemWidth := s.width - 2
	if itemWidth < 12 {
		itemWidth = 12
	}

	lines := []string{header}

	switch {
	case s.loading:
		lines = append(lines, theme.SessionMeta.Render("loading..."))
	case len(s.sessions) == 0:
		lines = append(lines, theme.SessionMeta.Render("no conversations"))
	default:
		// Window the list around the cursor so it fits the height.
		visible := s.height - 2
		if visible < 1 {
			visible = 1
		}
		start := 0
		if s.cursor >= visible {
			start = s.cursor - visible + 1
		}
		end := start + visible
		if end > len(s.sessions) {
			end = len(s.sessions)
		}

		for i := start; i < end; i++ {
			sess := s.sessions[i]
			label := TruncateToWidth(sess.DisplayTitle(), itemWidth-2)
			if sess.ID == s.activeID {
				label = "* " + label
			} else {
				label = "  " + label
			}

			style := theme.SessionItem
			if i == s.cursor {
				style = theme.SessionItemSelected
			} else if sess.ID == s.activeID {
				style = theme.SessionItemActive
			}
			lines = append(lines, style.Width(itemWidth).Render(label))
		}

		if end < len(s.sessions) {
			lines = append(lines, theme.SessionMeta.Render(
				fmt.Sprintf("+%d more", len(s.sessions)-end)))
		}
	}

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return theme.Sidebar.Width(s.width).Height(s.height).Render(body)
}

// TruncateToWidth truncates a string to the given display width, appending
// an ellipsis when it was cut. Width-aware so CJK titles do not overflow
// the sidebar column.
func TruncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 1 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "…")
}
