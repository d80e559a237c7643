// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the conversa TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Mode selects the background assumption used by adaptive colors.
// ModeAuto asks the terminal; the other two force a palette, matching
// the dark/light preference persisted in the config file.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeDark  Mode = "dark"
	ModeLight Mode = "light"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	Mode         Mode
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	NoticeBubble    lipgloss.Style
	RoleLabel       lipgloss.Style
	Timestamp       lipgloss.Style
	VoteUp          lipgloss.Style
	VoteDown        lipgloss.Style
	AttachmentChip  lipgloss.Style
	DocumentLink    lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style
	EditBanner       lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar             lipgloss.Style
	SidebarHeader       lipgloss.Style
	SessionItem         lipgloss.Style
	SessionItemSelected lipgloss.Style
	SessionItemActive   lipgloss.Style
	SessionMeta         lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// SPINNER AND LOADING STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	// ==========================================================================
	// MODAL STYLES
	// ==========================================================================

	ConfirmBox          lipgloss.Style
	ConfirmTitle        lipgloss.Style
	ConfirmButton       lipgloss.Style
	ConfirmButtonActive lipgloss.Style

	// ==========================================================================
	// LOGIN SCREEN STYLES
	// ==========================================================================

	LoginBox   lipgloss.Style
	LoginTitle lipgloss.Style
	LoginHint  lipgloss.Style
	LoginURL   lipgloss.Style
	LoginError lipgloss.Style
}

// NewTheme creates a new theme with all styles configured. The mode comes
// from the config file; anything other than dark/light falls back to
// terminal detection.
func NewTheme(mode Mode) *Theme {
	colorProfile := termenv.ColorProfile()
	hasTrueColor := colorProfile == termenv.TrueColor

	var isDark bool
	switch mode {
	case ModeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case ModeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		mode = ModeAuto
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		Mode:         mode,
		IsDark:       isDark,
		HasTrueColor: hasTrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		Background(AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 2).
		MarginRight(4)

	t.NoticeBubble = lipgloss.NewStyle().
		Foreground(NoticeBubbleFg).
		Background(NoticeBubbleBg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(NoticeBubbleBorder).
		PaddingLeft(2)

	t.RoleLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.VoteUp = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.VoteDown = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.AttachmentChip = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(Overlay).
		Padding(0, 1)

	t.DocumentLink = lipgloss.NewStyle().
		Foreground(Teal).
		Underline(true)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.EditBanner = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		PaddingRight(1)

	t.SidebarHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.SessionItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.SessionItemSelected = lipgloss.NewStyle().
		Background(Indigo).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.SessionItemActive = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true).
		Padding(0, 1)

	t.SessionMeta = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Spinner and loading
	t.Spinner = lipgloss.NewStyle().
		Foreground(Indigo)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Confirm modal
	t.ConfirmBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Background(Surface).
		Padding(1, 2)

	t.ConfirmTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ConfirmButton = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Overlay).
		Padding(0, 2).
		MarginRight(1)

	t.ConfirmButtonActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Bold(true).
		Padding(0, 2).
		MarginRight(1)

	// Login screen
	t.LoginBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Indigo).
		Padding(1, 4).
		Align(lipgloss.Center)

	t.LoginTitle = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)

	t.LoginHint = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.LoginURL = lipgloss.NewStyle().
		Foreground(Teal).
		Underline(true)

	t.LoginError = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 70 columns, sidebar hidden
	LayoutMedium                   // 70-110 columns
	LayoutWide                     // > 110 columns
)

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 70 {
		return LayoutNarrow
	}
	if t.Width < 110 {
		return LayoutMedium
	}
	return LayoutWide
}
