// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the Bubble Tea chat view.
//
// This file contains all rendering for the chat screen: the header, the
// transcript (user and assistant bubbles, stop notices), the sidebar split,
// the input area, the status bar and the overlays (help, confirm, toasts).
// Layout: header (1 line) + sidebar|viewport + [staged bar] + input + status.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/conversa-io/conversa-tui/internal/attach"
	"github.com/conversa-io/conversa-tui/internal/model"
	"github.com/conversa-io/conversa-tui/internal/ui/components"
	"github.com/conversa-io/conversa-tui/internal/ui/styles"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the application.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.screen == screenLogin {
		return m.renderLogin()
	}
	return m.renderChat()
}

func (m Model) renderChat() string {
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	header := m.renderHeader()
	input := m.renderInput()
	status := m.renderStatusBar()

	var stagedBar string
	if len(m.staged) > 0 {
		stagedBar = components.RenderStagedBar(m.theme, m.staged, attach.MaxFiles, m.width-2)
	}

	transcript := m.viewport.View()
	body := transcript
	if m.sidebarWidth() > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.Render(m.theme), transcript)
	}

	var baseView string
	if stagedBar != "" {
		baseView = lipgloss.JoinVertical(lipgloss.Left, header, body, stagedBar, input, status)
	} else {
		baseView = lipgloss.JoinVertical(lipgloss.Left, header, body, input, status)
	}

	if m.confirm.Visible() {
		return m.confirm.Render(m.theme, m.width, m.height)
	}

	if m.toasts.HasToasts() {
		stack := components.RenderToastStack(m.toasts.Toasts(), m.width, m.height)
		return m.overlayToasts(baseView, stack)
	}

	return baseView
}

// overlayToasts splices the toast stack into the bottom-right corner of the
// base view without blocking interaction with the rest of the screen.
func (m Model) overlayToasts(baseView, toastView string) string {
	baseLines := strings.Split(baseView, "\n")
	toastLines := strings.Split(toastView, "\n")

	// Leave the status bar visible below the stack.
	startRow := m.height - len(toastLines) - 2
	if startRow < 0 {
		startRow = 0
	}

	result := make([]string, len(baseLines))
	for i, baseLine := range baseLines {
		toastIdx := i - startRow
		if toastIdx < 0 || toastIdx >= len(toastLines) || lipgloss.Width(toastLines[toastIdx]) == 0 {
			result[i] = baseLine
			continue
		}

		toastLine := toastLines[toastIdx]
		room := m.width - lipgloss.Width(toastLine) - 1
		if room < 0 {
			room = 0
		}
		if lipgloss.Width(baseLine) > room {
			baseLine = components.TruncateToWidth(baseLine, room)
		}
		if pad := room - lipgloss.Width(baseLine); pad > 0 {
			baseLine += strings.Repeat(" ", pad)
		}
		result[i] = baseLine + toastLine
	}

	return strings.Join(result, "\n")
}

// =============================================================================
// HEADER / STATUS BAR
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("conversa")
	subtitle := m.theme.HeaderSubtitle.Render(" | " + m.active.DisplayTitle())

	content := title + subtitle
	if m.sending {
		content += m.theme.Spinner.Render(" " + m.spinner.View())
	}

	return m.theme.Header.Width(m.width).Render(content)
}

func (m Model) renderStatusBar() string {
	key := m.theme.ShortcutKey.Render
	desc := m.theme.ShortcutDesc.Render

	var left string
	switch {
	case m.sending:
		left = m.theme.ThinkingText.Render(m.spinner.View() + " generating...")
	case m.sidebarFocus:
		left = key("enter") + desc(" open ") + key("n") + desc(" new ") +
			key("x") + desc(" delete ") + key("esc") + desc(" back")
	case m.inputMode:
		left = key("enter") + desc(" send ") + key("esc") + desc(" normal mode")
	default:
		left = key("i") + desc(" type ") + key("e") + desc(" edit ") +
			key("r") + desc(" retry ") + key("+/-") + desc(" vote ") +
			key("?") + desc(" help")
	}

	if m.statusMsg != "" {
		left += desc("  " + m.statusMsg)
	}

	right := desc(m.cfg.Backend.Model)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap > 0 {
		left += strings.Repeat(" ", gap) + right
	}

	return m.theme.StatusBar.Width(m.width).Render(left)
}

// =============================================================================
// INPUT AREA
// =============================================================================

func (m Model) renderInput() string {
	var banner string
	if m.editingID != "" {
		banner = m.theme.EditBanner.Render(" EDITING - enter resends, esc cancels ")
	}

	container := m.theme.InputContainer.Width(m.width - 2)
	if m.inputMode {
		container = container.BorderForeground(styles.FocusRing)
	}
	box := container.Render(m.input.View())

	if banner != "" {
		return lipgloss.JoinVertical(lipgloss.Left, banner, box)
	}
	return box
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderMessages renders the active conversation for the viewport.
func (m Model) renderMessages(msgs []*model.Message) string {
	if len(msgs) == 0 && !m.sending {
		return m.renderEmptyState()
	}

	var parts []string
	for _, msg := range msgs {
		switch msg.Role {
		case model.RoleUser:
			parts = append(parts, m.renderUserMessage(msg))
		case model.RoleAssistant:
			parts = append(parts, m.renderAssistantMessage(msg))
		}
	}

	for _, notice := range m.notices[m.active.ID] {
		parts = append(parts, m.renderNotice(notice))
	}

	if m.sending {
		parts = append(parts, m.renderThinking())
	}

	return strings.Join(parts, "\n")
}

func (m Model) bubbleWidth() int {
	w := m.viewport.Width - 8
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) renderUserMessage(msg *model.Message) string {
	maxWidth := m.bubbleWidth()

	content := msg.Answer
	if msg.HasFiles() {
		chips := components.RenderFileChips(m.theme, msg.Files, maxWidth-4)
		content = content + "\n" + chips
	}

	rendered := m.theme.UserBubble.MaxWidth(maxWidth).Render(content)

	// User messages hug the right edge.
	marginLeft := m.viewport.Width - lipgloss.Width(rendered) - 2
	if marginLeft < 0 {
		marginLeft = 0
	}
	return lipgloss.NewStyle().
		MarginLeft(marginLeft).
		MarginTop(1).
		Render(rendered)
}

func (m Model) renderAssistantMessage(msg *model.Message) string {
	maxWidth := m.bubbleWidth()

	content := m.md.Render(msg.Answer)
	rendered := m.theme.AssistantBubble.MaxWidth(maxWidth).Render(content)

	var extras []string
	if msg.HasVote() {
		if *msg.Rate == model.VoteUp {
			extras = append(extras, m.theme.VoteUp.Render("[+1]"))
		} else {
			extras = append(extras, m.theme.VoteDown.Render("[-1]"))
		}
	}
	if msg.LinkFile != "" {
		extras = append(extras, m.theme.DocumentLink.Render("[document attached - press d to save]"))
	}

	block := rendered
	if len(extras) > 0 {
		block = lipgloss.JoinVertical(lipgloss.Left, rendered, strings.Join(extras, " "))
	}

	return lipgloss.NewStyle().
		MarginLeft(2).
		MarginTop(1).
		Render(block)
}

func (m Model) renderNotice(text string) string {
	return lipgloss.NewStyle().
		MarginLeft(2).
		MarginTop(1).
		Render(m.theme.NoticeBubble.Render(text))
}

func (m Model) renderThinking() string {
	return lipgloss.NewStyle().
		MarginLeft(2).
		MarginTop(1).
		Render(m.theme.ThinkingText.Render(m.spinner.View() + " thinking..."))
}

func (m Model) renderEmptyState() string {
	lines := []string{
		"",
		m.theme.HeaderTitle.Render("  New conversation"),
		"",
		m.theme.ShortcutDesc.Render("  Press i and ask anything."),
		m.theme.ShortcutDesc.Render("  /attach FILE stages a PDF or Word document."),
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

func (m Model) renderHelpOverlay() string {
	key := m.theme.ShortcutKey.Render
	desc := m.theme.ShortcutDesc.Render

	row := func(k, d string) string {
		return "  " + key(lipgloss.NewStyle().Width(12).Render(k)) + desc(d)
	}

	sections := []string{
		m.theme.ConfirmTitle.Render("Keyboard shortcuts"),
		"",
		desc("Conversation"),
		row("i / a", "type a message"),
		row("enter", "send (while typing)"),
		row("esc", "leave typing mode / stop generation"),
		row("e", "edit your last message"),
		row("r", "regenerate the last reply"),
		row("+ / -", "vote on the last reply"),
		row("y", "copy the last reply"),
		row("d", "save the generated document"),
		"",
		desc("Conversations"),
		row("n", "new conversation"),
		row("tab", "focus the sidebar"),
		row("x", "delete (from sidebar)"),
		"",
		desc("Commands"),
		row("/attach", "stage files for the next message"),
		row("/detach", "clear staged files"),
		row("/export", "save the transcript (md or json)"),
		row("/theme", "switch dark/light/auto"),
		row("/logout", "log out"),
		"",
		desc("General"),
		row("?", "toggle this help"),
		row("q / ctrl+q", "quit"),
		"",
		m.theme.ShortcutDesc.Render("press any key to close"),
	}

	box := m.theme.ConfirmBox.Render(strings.Join(sections, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
