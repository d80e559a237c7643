// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/conversa-io/conversa-tui/internal/ui/styles"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Indigo)

	labelStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	valueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	successStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Rose)

	urlStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Underline(true)
)
