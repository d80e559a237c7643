// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ctrl "github.com/conversa-io/conversa-tui/internal/chat"
	"github.com/conversa-io/conversa-tui/internal/ui/components"
	"github.com/conversa-io/conversa-tui/internal/ui/styles"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		cmd   string
		args  []string
	}{
		{"/attach a.pdf b.docx", "attach", []string{"a.pdf", "b.docx"}},
		{"/ATTACH Report.PDF", "attach", []string{"Report.PDF"}},
		{"/new", "new", nil},
		{"/detach   ", "detach", nil},
		{"/", "", nil},
		{"/logout extra", "logout", []string{"extra"}},
	}

	for _, tt := range tests {
		cmd, args := parseCommand(tt.input)
		assert.Equal(t, tt.cmd, cmd, "input %q", tt.input)
		assert.Equal(t, tt.args, args, "input %q", tt.input)
	}
}

func testModel(t *testing.T) Model {
	t.Helper()
	theme := styles.NewTheme(styles.ModeDark)
	theme.SetSize(100, 30)
	return Model{
		theme:      theme,
		width:      100,
		height:     30,
		controller: ctrl.NewController(nil),
		toasts:     components.NewToastManager(),
		notices:    make(map[string][]string),
	}
}

func TestSendRejectedWhileBusyShowsToast(t *testing.T) {
	// Stopping generation flips the UI back to idle while the request is
	// still in flight, so a resubmit comes back with ErrBusy and an empty
	// result. That rejection must reach the user as a toast.
	m := testModel(t)

	next, cmd := m.handleSendDone(ctrl.SendDoneMsg{Err: ctrl.ErrBusy})

	got, ok := next.(Model)
	require.True(t, ok)
	require.True(t, got.toasts.HasToasts())
	assert.Contains(t, got.toasts.Toasts()[0].Message, "already being generated")
	assert.NotNil(t, cmd)
}

func TestSendDoneEmptyMessageStaysQuiet(t *testing.T) {
	m := testModel(t)

	next, _ := m.handleSendDone(ctrl.SendDoneMsg{Err: ctrl.ErrEmptyMessage})

	got, ok := next.(Model)
	require.True(t, ok)
	assert.False(t, got.toasts.HasToasts())
}

func TestRenderNoticeContainsText(t *testing.T) {
	m := testModel(t)
	out := m.renderNotice("Generation stopped.")
	assert.Contains(t, out, "Generation stopped.")
}

func TestRenderEmptyStateMentionsAttach(t *testing.T) {
	m := testModel(t)
	out := m.renderEmptyState()
	assert.Contains(t, out, "/attach")
}

func TestOverlayToastsPreservesLineCount(t *testing.T) {
	m := testModel(t)

	base := strings.Repeat("x\n", 29) + "x" // 30 lines
	toast := "[!] something\n[x] Dismiss"

	out := m.overlayToasts(base, toast)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 30)
	assert.Contains(t, out, "something")
}

func TestOverlayToastsTallToastClampedToTop(t *testing.T) {
	m := testModel(t)
	m.height = 3

	base := "a\nb\nc"
	toast := "1\n2\n3\n4\n5"

	out := m.overlayToasts(base, toast)
	assert.Len(t, strings.Split(out, "\n"), 3)
}
