// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the Bubble Tea chat view.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/conversa-io/conversa-tui/internal/api"
	"github.com/conversa-io/conversa-tui/internal/auth"
	ctrl "github.com/conversa-io/conversa-tui/internal/chat"
	"github.com/conversa-io/conversa-tui/internal/config"
	"github.com/conversa-io/conversa-tui/internal/model"
	"github.com/conversa-io/conversa-tui/internal/ui/components"
	"github.com/conversa-io/conversa-tui/internal/ui/styles"
)

// =============================================================================
// SCREENS
// =============================================================================

// screen selects which top-level view is shown.
type screen int

const (
	screenLogin screen = iota
	screenChat
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the whole application.
type Model struct {
	// Styling
	theme  *styles.Theme
	keyMap KeyMap

	// Dimensions
	width  int
	height int

	// Wiring
	controller *ctrl.Controller
	client     *api.Client
	tokens     *auth.TokenStore
	cfg        *config.Config

	// Screen routing
	screen screen

	// Login screen
	loginInput textinput.Model
	loginBusy  bool
	loginErr   string

	// Chat widgets
	sidebar  components.Sidebar
	confirm  components.ConfirmModal
	toasts   *components.ToastManager
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	md       *markdownRenderer

	// Chat state
	inputMode    bool
	sidebarFocus bool
	showHelp     bool
	active       model.Session
	sendingID    string
	sending      bool
	staged       []model.Attachment
	editingID    string
	statusMsg    string

	// Per-session stop notices, appended the moment the user stops a
	// generation. Purely presentational; never sent to the backend.
	notices map[string][]string
}

// New creates the application model. loggedIn tells the view whether a
// stored token was installed on the client at startup.
func New(theme *styles.Theme, controller *ctrl.Controller, client *api.Client, tokens *auth.TokenStore, cfg *config.Config, loggedIn bool) Model {
	ti := textinput.New()
	ti.Prompt = "code> "
	ti.Placeholder = "paste the login code"
	ti.CharLimit = 512
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "Ask anything... (/attach FILE to stage a document)"
	ta.Prompt = "| "
	ta.CharLimit = 8192
	ta.ShowLineNumbers = false
	ta.SetHeight(3)

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	scr := screenLogin
	if loggedIn {
		scr = screenChat
	}

	m := Model{
		theme:      theme,
		keyMap:     DefaultKeyMap(),
		controller: controller,
		client:     client,
		tokens:     tokens,
		cfg:        cfg,
		screen:     scr,
		loginInput: ti,
		sidebar:    components.NewSidebar(),
		toasts:     components.NewToastManager(),
		viewport:   vp,
		input:      ta,
		spinner:    sp,
		md:         newMarkdownRenderer(theme.IsDark, 76),
		notices:    make(map[string][]string),
	}

	if loggedIn {
		m.openNewConversation()
	}

	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	if m.screen == screenLogin {
		return textinput.Blink
	}
	return tea.Batch(
		textarea.Blink,
		ctrl.RefreshSessionsCmd(bgContext(), m.controller),
	)
}

// =============================================================================
// LAYOUT
// =============================================================================

// Reserved rows around the transcript viewport. Header and status bar are
// one line each; the input area is the textarea plus its top border; the
// staged-file bar appears only while files are staged.
const (
	headerHeight    = 1
	inputAreaHeight = 4
	statusBarHeight = 1
	stagedBarHeight = 1
)

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	sidebarWidth := m.sidebarWidth()

	reserved := headerHeight + inputAreaHeight + statusBarHeight
	if len(m.staged) > 0 {
		reserved += stagedBarHeight
	}

	vpHeight := height - reserved
	if vpHeight < 1 {
		vpHeight = 1
	}
	vpWidth := width - sidebarWidth
	if vpWidth < 20 {
		vpWidth = 20
	}

	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.sidebar.SetSize(sidebarWidth, vpHeight)

	inputWidth := width - 4
	if inputWidth < 20 {
		inputWidth = 20
	}
	m.input.SetWidth(inputWidth)

	wrap := vpWidth - 8
	if wrap < 30 {
		wrap = 30
	}
	m.md = newMarkdownRenderer(m.theme.IsDark, wrap)

	m.refreshTranscript(false)
}

// sidebarWidth returns the sidebar column width, 0 when the terminal is
// too narrow for a split view.
func (m *Model) sidebarWidth() int {
	switch m.theme.GetLayoutMode() {
	case styles.LayoutNarrow:
		return 0
	case styles.LayoutMedium:
		return 26
	default:
		return 32
	}
}

// =============================================================================
// TRANSCRIPT STATE
// =============================================================================

// refreshTranscript re-renders the active conversation into the viewport.
// With follow set, the viewport jumps to the bottom afterwards.
func (m *Model) refreshTranscript(follow bool) {
	msgs, _ := m.controller.Messages(m.active.ID)
	m.viewport.SetContent(m.renderMessages(msgs))
	if follow {
		m.viewport.GotoBottom()
	}
}

// openNewConversation creates a placeholder session and makes it active.
func (m *Model) openNewConversation() {
	m.active = m.controller.NewConversation()
	m.sidebar.SetSessions(m.controller.Registry().List())
	m.sidebar.SetActive(m.active.ID)
	m.staged = nil
	m.editingID = ""
	m.refreshTranscript(true)
}

// openSession switches the transcript to an existing conversation. Returns
// a command when the history still has to be fetched.
func (m *Model) openSession(sess model.Session) tea.Cmd {
	m.active = sess
	m.sidebar.SetActive(sess.ID)
	m.staged = nil
	m.editingID = ""

	if _, loaded := m.controller.Messages(sess.ID); loaded {
		m.refreshTranscript(true)
		return nil
	}
	m.viewport.SetContent(m.theme.ThinkingText.Render("loading conversation..."))
	return ctrl.LoadSessionCmd(bgContext(), m.controller, sess.ID)
}

// lastAssistant returns the most recent assistant reply in the active
// conversation.
func (m *Model) lastAssistant() *model.Message {
	msgs, _ := m.controller.Messages(m.active.ID)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleAssistant {
			return msgs[i]
		}
	}
	return nil
}

// lastEditable returns the most recent user message that can be edited
// (user role, no attachments).
func (m *Model) lastEditable() *model.Message {
	msgs, _ := m.controller.Messages(m.active.ID)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Editable() {
			return msgs[i]
		}
	}
	return nil
}

// lastDocument returns the id of the most recent generated document link.
func (m *Model) lastDocument() string {
	msgs, _ := m.controller.Messages(m.active.ID)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].LinkFile != "" {
			return msgs[i].LinkFile
		}
	}
	return ""
}
