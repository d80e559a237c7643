// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the Bubble Tea chat view.
//
// This file contains the Update loop: key routing for the login screen,
// the sidebar, the confirm modal and the transcript, plus handlers for the
// controller's result messages.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/conversa-io/conversa-tui/internal/api"
	"github.com/conversa-io/conversa-tui/internal/attach"
	ctrl "github.com/conversa-io/conversa-tui/internal/chat"
	"github.com/conversa-io/conversa-tui/internal/config"
	"github.com/conversa-io/conversa-tui/internal/export"
	"github.com/conversa-io/conversa-tui/internal/model"
	"github.com/conversa-io/conversa-tui/internal/ui/components"
	"github.com/conversa-io/conversa-tui/internal/ui/styles"
)

// stopNoticeText is appended to the transcript when the user stops a
// generation mid-flight.
const stopNoticeText = "Generation stopped."

// bgContext returns the context used for controller commands. Cancellation
// is cooperative (the controller discards stopped responses), so commands
// run on a plain background context.
func bgContext() context.Context {
	return context.Background()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.sending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case components.ToastTickMsg:
		m.toasts.Tick()
		if m.toasts.HasToasts() {
			return m, components.ToastTickCmd()
		}
		return m, nil

	case TokenExchangedMsg:
		return m.handleTokenExchanged(msg)

	case LoggedOutMsg:
		return m.handleLoggedOut(msg)

	case StatusMsg:
		m.statusMsg = msg.Text
		return m, nil

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case ctrl.SessionsRefreshedMsg:
		return m.handleSessionsRefreshed(msg)

	case ctrl.HistoryLoadedMsg:
		return m.handleHistoryLoaded(msg)

	case ctrl.SendDoneMsg:
		return m.handleSendDone(msg)

	case ctrl.VoteDoneMsg:
		return m.handleVoteDone(msg)

	case ctrl.SessionDeletedMsg:
		return m.handleSessionDeleted(msg)

	case ctrl.DocumentSavedMsg:
		return m.handleDocumentSaved(msg)

	default:
		// Scroll events and other messages go to the viewport; the input
		// only sees them while focused.
		var cmds []tea.Cmd
		if m.inputMode {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmds = append(cmds, vpCmd)
		return m, tea.Batch(cmds...)
	}
}

// =============================================================================
// KEY ROUTING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	// Emergency exit works regardless of state.
	if keyStr == "ctrl+q" {
		return m, tea.Quit
	}

	if m.screen == screenLogin {
		return m.handleLoginKey(msg)
	}

	// Dismiss the oldest toast without leaving the current mode.
	if keyStr == "x" && !m.inputMode && !m.sidebarFocus && m.toasts.HasToasts() {
		toasts := m.toasts.Toasts()
		m.toasts.Dismiss(toasts[len(toasts)-1].ID)
		return m, nil
	}

	if m.confirm.Visible() {
		return m.handleConfirmKey(keyStr)
	}

	if m.showHelp {
		switch keyStr {
		case "?", "esc", "q", "enter":
			m.showHelp = false
		}
		return m, nil
	}

	// Stopping a generation works from any focus.
	if m.sending && (keyStr == "ctrl+c" || (keyStr == "esc" && !m.inputMode)) {
		return m.stopGeneration()
	}

	if m.sidebarFocus {
		return m.handleSidebarKey(keyStr)
	}

	if m.inputMode {
		return m.handleInputKey(msg)
	}

	return m.handleNormalKey(msg)
}

// stopGeneration flips the in-flight request to cancelled and appends the
// stop notice right away, before the request resolves.
func (m Model) stopGeneration() (tea.Model, tea.Cmd) {
	if m.controller.Stop(m.sendingID) {
		m.notices[m.sendingID] = append(m.notices[m.sendingID], stopNoticeText)
		m.sending = false
		m.statusMsg = "stopped"
		m.refreshTranscript(true)
	}
	return m, nil
}

func (m Model) handleConfirmKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "left", "right", "h", "l", "tab":
		m.confirm.Toggle()
		return m, nil
	case "esc", "n":
		m.confirm.Hide()
		return m, nil
	case "enter":
		target := m.confirm.TargetID()
		confirmed := m.confirm.YesActive()
		m.confirm.Hide()
		if confirmed && target != "" {
			return m, ctrl.DeleteSessionCmd(bgContext(), m.controller, target)
		}
		return m, nil
	case "y":
		target := m.confirm.TargetID()
		m.confirm.Hide()
		if target != "" {
			return m, ctrl.DeleteSessionCmd(bgContext(), m.controller, target)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleSidebarKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "up", "k":
		m.sidebar.MoveUp()
	case "down", "j":
		m.sidebar.MoveDown()
	case "enter":
		if sess, ok := m.sidebar.Selected(); ok {
			m.sidebarFocus = false
			return m, m.openSession(sess)
		}
	case "n":
		m.sidebarFocus = false
		m.openNewConversation()
	case "x", "delete":
		if sess, ok := m.sidebar.Selected(); ok {
			m.confirm.Show("Delete \""+sess.DisplayTitle()+"\"?", sess.ID)
		}
	case "tab", "esc":
		m.sidebarFocus = false
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Insert):
		m.inputMode = true
		m.input.Focus()
		if msg.String() == "a" {
			m.input.CursorEnd()
		}
		return m, textarea.Blink

	case key.Matches(msg, m.keyMap.Sidebar):
		if m.sidebarWidth() > 0 {
			m.sidebarFocus = true
		}
		return m, nil

	case key.Matches(msg, m.keyMap.NewChat):
		m.openNewConversation()
		return m, nil

	case key.Matches(msg, m.keyMap.Edit):
		return m.beginEdit()

	case key.Matches(msg, m.keyMap.Regenerate):
		return m.regenerateLast()

	case key.Matches(msg, m.keyMap.VoteUp):
		return m.voteLast(model.VoteUp)

	case key.Matches(msg, m.keyMap.VoteDown):
		return m.voteLast(model.VoteDown)

	case key.Matches(msg, m.keyMap.Yank):
		return m.yankLast()

	case key.Matches(msg, m.keyMap.Download):
		return m.downloadLast()

	case key.Matches(msg, m.keyMap.Delete):
		if !m.active.IsPlaceholder() {
			m.confirm.Show("Delete \""+m.active.DisplayTitle()+"\"?", m.active.ID)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	// Navigation
	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
	case key.Matches(msg, m.keyMap.Home):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keyMap.End):
		m.viewport.GotoBottom()
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputMode = false
		m.input.Blur()
		if m.editingID != "" {
			m.editingID = ""
			m.input.Reset()
			m.statusMsg = "edit cancelled"
		}
		return m, nil

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		if strings.HasPrefix(text, "/") {
			m.input.Reset()
			return m.handleCommand(text)
		}
		return m.submitInput(text)

	case "alt+enter", "ctrl+j":
		m.input.InsertString("\n")
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// ACTIONS
// =============================================================================

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	if m.sending {
		m.toasts.AddWarning("Wait for the current reply to finish.")
		return m, components.ToastTickCmd()
	}

	m.input.Reset()
	m.sending = true
	m.sendingID = m.active.ID
	m.statusMsg = ""

	var cmd tea.Cmd
	if m.editingID != "" {
		cmd = ctrl.EditCmd(bgContext(), m.controller, m.active.ID, m.editingID, text)
		m.editingID = ""
	} else {
		files := m.staged
		m.staged = nil
		cmd = ctrl.SubmitCmd(bgContext(), m.controller, m.active.ID, text, files)
	}

	m.resize(m.width, m.height) // staged bar may have disappeared
	m.refreshTranscript(true)
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) beginEdit() (tea.Model, tea.Cmd) {
	if m.sending {
		return m, nil
	}
	target := m.lastEditable()
	if target == nil {
		m.toasts.AddStatus("Nothing to edit: messages with attachments cannot be rewritten.")
		return m, components.ToastTickCmd()
	}
	m.editingID = target.ID
	m.input.SetValue(target.Answer)
	m.input.CursorEnd()
	m.inputMode = true
	m.input.Focus()
	return m, textarea.Blink
}

func (m Model) regenerateLast() (tea.Model, tea.Cmd) {
	if m.sending {
		return m, nil
	}
	target := m.lastAssistant()
	if target == nil {
		return m, nil
	}
	m.sending = true
	m.sendingID = m.active.ID
	m.refreshTranscript(true)
	return m, tea.Batch(
		ctrl.RegenerateCmd(bgContext(), m.controller, m.active.ID, target.ID),
		m.spinner.Tick,
	)
}

func (m Model) voteLast(rate int) (tea.Model, tea.Cmd) {
	target := m.lastAssistant()
	if target == nil {
		return m, nil
	}
	return m, ctrl.VoteCmd(bgContext(), m.controller, m.active.ID, target.ID, rate)
}

func (m Model) yankLast() (tea.Model, tea.Cmd) {
	target := m.lastAssistant()
	if target == nil || target.Answer == "" {
		m.statusMsg = "nothing to copy"
		return m, nil
	}
	if err := clipboard.WriteAll(target.Answer); err != nil {
		m.toasts.AddError("Copy failed: " + err.Error())
		return m, components.ToastTickCmd()
	}
	m.statusMsg = "copied"
	return m, nil
}

func (m Model) downloadLast() (tea.Model, tea.Cmd) {
	docID := m.lastDocument()
	if docID == "" {
		m.statusMsg = "no document in this conversation"
		return m, nil
	}
	m.statusMsg = "downloading..."
	return m, ctrl.SaveDocumentCmd(bgContext(), m.controller, docID, m.cfg.Downloads.Dir)
}

func (m Model) exportConversation(format string) (tea.Model, tea.Cmd) {
	msgs, _ := m.controller.Messages(m.active.ID)
	if len(msgs) == 0 {
		m.toasts.AddStatus("Nothing to export yet.")
		return m, components.ToastTickCmd()
	}

	exporter, err := export.ForFormat(format, nil)
	if err != nil {
		m.toasts.AddWarning(err.Error())
		return m, components.ToastTickCmd()
	}

	path, err := export.ToFile(m.active, msgs, exporter, &export.Options{
		OutputDir:         m.cfg.Downloads.Dir,
		IncludeMetadata:   true,
		IncludeTimestamps: m.cfg.UI.ShowTimestamps,
	})
	if err != nil {
		m.toasts.AddError("Export failed: " + err.Error())
		return m, components.ToastTickCmd()
	}
	m.toasts.AddSuccess("Exported " + path)
	return m, components.ToastTickCmd()
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (m Model) handleCommand(text string) (tea.Model, tea.Cmd) {
	cmd, args := parseCommand(text)

	switch cmd {
	case "attach":
		return m.attachFiles(args)

	case "detach":
		m.staged = nil
		m.resize(m.width, m.height)
		m.statusMsg = "staged files cleared"
		return m, nil

	case "new":
		m.openNewConversation()
		return m, nil

	case "delete":
		if m.active.IsPlaceholder() {
			m.openNewConversation()
			return m, nil
		}
		m.confirm.Show("Delete \""+m.active.DisplayTitle()+"\"?", m.active.ID)
		return m, nil

	case "download":
		return m.downloadLast()

	case "export":
		format := ""
		if len(args) > 0 {
			format = args[0]
		}
		return m.exportConversation(format)

	case "theme":
		if len(args) == 0 {
			m.toasts.AddStatus("Usage: /theme dark|light|auto")
			return m, components.ToastTickCmd()
		}
		return m.setTheme(args[0])

	case "logout":
		return m, func() tea.Msg { return LoggedOutMsg{} }

	case "help":
		m.showHelp = true
		return m, nil

	default:
		m.toasts.AddWarning("Unknown command: /" + cmd)
		return m, components.ToastTickCmd()
	}
}

// parseCommand splits "/attach a.pdf b.pdf" into ("attach", ["a.pdf","b.pdf"]).
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(strings.TrimPrefix(text, "/"))
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// setTheme switches the theme immediately and persists the choice, so it
// survives restarts the way the original preference did.
func (m Model) setTheme(name string) (tea.Model, tea.Cmd) {
	if err := config.SetValue(m.cfg, "ui.theme", name); err != nil {
		m.toasts.AddWarning(err.Error())
		return m, components.ToastTickCmd()
	}
	if err := config.Save(m.cfg); err != nil {
		m.toasts.AddWarning("Theme applied but not saved: " + err.Error())
	}

	m.theme = styles.NewTheme(styles.Mode(m.cfg.UI.Theme))
	m.resize(m.width, m.height)
	m.statusMsg = "theme: " + m.cfg.UI.Theme
	return m, nil
}

func (m Model) attachFiles(paths []string) (tea.Model, tea.Cmd) {
	if len(paths) == 0 {
		m.toasts.AddStatus("Usage: /attach FILE [FILE...]")
		return m, components.ToastTickCmd()
	}

	result := attach.Validate(paths, len(m.staged))
	m.staged = append(m.staged, result.Accepted...)
	for _, rej := range result.Rejected {
		m.toasts.AddWarning(rej.Message())
	}
	if len(result.Accepted) > 0 {
		m.statusMsg = "files staged"
	}
	m.resize(m.width, m.height)
	return m, components.ToastTickCmd()
}

// =============================================================================
// CONTROLLER RESULT HANDLERS
// =============================================================================

func (m Model) handleSessionsRefreshed(msg ctrl.SessionsRefreshedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if api.IsAuth(msg.Err) {
			return m, nil // logout hook drops us to the login screen
		}
		m.toasts.AddError("Could not load conversations: " + api.Detail(msg.Err))
		m.sidebar.SetSessions(nil)
		return m, components.ToastTickCmd()
	}
	m.sidebar.SetSessions(msg.Sessions)
	m.sidebar.SetActive(m.active.ID)
	return m, nil
}

func (m Model) handleHistoryLoaded(msg ctrl.HistoryLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if api.IsAuth(msg.Err) {
			return m, nil
		}
		if api.IsNotFound(msg.Err) {
			// The conversation is gone server-side: say so and go home.
			m.toasts.AddError("This conversation does not exist anymore.")
			m.controller.Registry().Remove(msg.SessionID)
			m.openNewConversation()
			return m, components.ToastTickCmd()
		}
		m.toasts.AddError("Could not load the conversation: " + api.Detail(msg.Err))
		return m, components.ToastTickCmd()
	}

	if msg.SessionID == m.active.ID {
		m.refreshTranscript(true)
	}
	return m, nil
}

func (m Model) handleSendDone(msg ctrl.SendDoneMsg) (tea.Model, tea.Cmd) {
	res := msg.Result
	m.sending = false

	// Pre-flight rejections before a request went out. The controller
	// returns them as a zero-value result: every settled, failed or
	// cancelled result carries the session id, a pre-flight one does not.
	if msg.Err != nil && res.SessionID == "" {
		switch {
		case errors.Is(msg.Err, ctrl.ErrBusy):
			m.toasts.AddWarning("A reply is already being generated here.")
		case errors.Is(msg.Err, ctrl.ErrEmptyMessage):
			// Nothing to report; the view already refuses empty input.
		case errors.Is(msg.Err, ctrl.ErrNotEditable), errors.Is(msg.Err, ctrl.ErrUnknownMessage):
			m.toasts.AddWarning(msg.Err.Error())
		default:
			m.toasts.AddError(msg.Err.Error())
		}
		m.refreshTranscript(true)
		return m, components.ToastTickCmd()
	}

	switch res.Outcome {
	case ctrl.OutcomeSettled:
		if m.active.ID == m.sendingID && res.SessionID != "" {
			m.active.ID = res.SessionID
		}
		m.sidebar.SetSessions(m.controller.Registry().List())
		m.sidebar.SetActive(m.active.ID)
		m.refreshTranscript(true)
		return m, nil

	case ctrl.OutcomeCancelled:
		// Response discarded; the stop notice is already in place.
		m.refreshTranscript(true)
		return m, nil

	case ctrl.OutcomeConflict:
		detail := res.Detail
		if detail == "" {
			detail = "The conversation changed on the server."
		}
		m.toasts.AddError(detail)
		if res.ResetToNew {
			m.openNewConversation()
		} else {
			m.refreshTranscript(true)
		}
		return m, components.ToastTickCmd()

	case ctrl.OutcomeAuth:
		// The logout hook fires separately; nothing to render here.
		return m, nil

	default: // OutcomeFailed with the synthetic assistant bubble appended
		m.refreshTranscript(true)
		return m, nil
	}
}

func (m Model) handleVoteDone(msg ctrl.VoteDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		switch {
		case errors.Is(msg.Err, ctrl.ErrAlreadyVoted):
			m.toasts.AddStatus("Already voted on that reply.")
		case api.IsAuth(msg.Err):
			return m, nil
		default:
			// The local vote sticks even when the backend rejects it.
			m.toasts.AddWarning("Vote not saved on the server; kept locally.")
		}
		m.refreshTranscript(false)
		return m, components.ToastTickCmd()
	}
	m.refreshTranscript(false)
	return m, nil
}

func (m Model) handleSessionDeleted(msg ctrl.SessionDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if api.IsAuth(msg.Err) {
			return m, nil
		}
		m.toasts.AddError("Could not delete the conversation: " + api.Detail(msg.Err))
		return m, components.ToastTickCmd()
	}

	delete(m.notices, msg.SessionID)
	m.sidebar.SetSessions(m.controller.Registry().List())
	if m.active.ID == msg.SessionID {
		m.openNewConversation()
	}
	m.toasts.AddSuccess("Conversation deleted.")
	return m, components.ToastTickCmd()
}

func (m Model) handleDocumentSaved(msg ctrl.DocumentSavedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if api.IsAuth(msg.Err) {
			return m, nil
		}
		m.toasts.AddError("Download failed: " + api.Detail(msg.Err))
		return m, components.ToastTickCmd()
	}
	m.statusMsg = ""
	m.toasts.AddSuccess("Saved " + msg.Path)
	return m, components.ToastTickCmd()
}

// handleConfigReloaded applies a config file edit to the running session.
// Theme changes rebuild the styles; everything else takes effect on the
// next request that reads the config.
func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	themeChanged := msg.Cfg.UI.Theme != m.cfg.UI.Theme
	m.cfg = msg.Cfg

	if themeChanged {
		m.theme = styles.NewTheme(styles.Mode(msg.Cfg.UI.Theme))
		m.resize(m.width, m.height)
		m.statusMsg = "theme: " + msg.Cfg.UI.Theme
	}
	return m, nil
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		code := strings.TrimSpace(m.loginInput.Value())
		if code == "" || m.loginBusy {
			return m, nil
		}
		m.loginBusy = true
		m.loginErr = ""
		return m, m.exchangeTokenCmd(code)
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.loginInput, cmd = m.loginInput.Update(msg)
	return m, cmd
}

// exchangeTokenCmd trades the pasted login code for a bearer token.
func (m Model) exchangeTokenCmd(code string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		token, err := client.ExchangeToken(bgContext(), code)
		return TokenExchangedMsg{Token: token, Err: err}
	}
}

func (m Model) handleTokenExchanged(msg TokenExchangedMsg) (tea.Model, tea.Cmd) {
	m.loginBusy = false
	if msg.Err != nil {
		m.loginErr = api.Detail(msg.Err)
		if m.loginErr == "" {
			m.loginErr = msg.Err.Error()
		}
		return m, nil
	}

	// Persist first, then install: a crash between the two leaves a token
	// file that the next start picks up.
	if err := m.tokens.Save(msg.Token.AccessToken); err != nil {
		m.loginErr = "could not store the token: " + err.Error()
		return m, nil
	}
	m.client.SetToken(msg.Token.AccessToken)

	m.screen = screenChat
	m.loginInput.Reset()
	m.openNewConversation()
	return m, tea.Batch(
		textarea.Blink,
		ctrl.RefreshSessionsCmd(bgContext(), m.controller),
	)
}

func (m Model) handleLoggedOut(msg LoggedOutMsg) (tea.Model, tea.Cmd) {
	if err := m.tokens.Clear(); err == nil {
		m.client.SetToken("")
	}

	m.screen = screenLogin
	m.loginBusy = false
	m.loginErr = ""
	if msg.Expired {
		m.loginErr = "Your session expired. Log in again."
	}
	m.sending = false
	m.inputMode = false
	m.sidebarFocus = false
	m.input.Reset()
	m.loginInput.Focus()
	return m, textinput.Blink
}
