// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/conversa-io/conversa-tui/internal/model"
	"github.com/conversa-io/conversa-tui/internal/ui/styles"
)

// =============================================================================
// TOAST MANAGER TESTS
// =============================================================================

func TestToastManagerAddAndDismiss(t *testing.T) {
	m := NewToastManager()
	if m.HasToasts() {
		t.Fatal("new manager should have no toasts")
	}

	id := m.AddError("list failed")
	if !m.HasToasts() {
		t.Fatal("expected an active toast after AddError")
	}

	toasts := m.Toasts()
	if len(toasts) != 1 || toasts[0].Kind != ToastKindError {
		t.Fatalf("toasts = %+v, want one error toast", toasts)
	}

	m.Dismiss(id)
	if m.HasToasts() {
		t.Error("toast should be gone after Dismiss")
	}
}

func TestToastManagerNewestFirstAndBounded(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < 7; i++ {
		m.AddStatus("toast")
	}

	toasts := m.Toasts()
	if len(toasts) != 5 {
		t.Fatalf("len = %d, want stack bounded at 5", len(toasts))
	}
	// Newest first: the most recent add carries the highest ID.
	if toasts[0].ID < toasts[1].ID {
		t.Error("expected newest toast at the front of the stack")
	}
}

func TestToastTickExpiresOldToasts(t *testing.T) {
	m := NewToastManager()
	stale := NewStatusToast("old news")
	stale.CreatedAt = time.Now().Add(-time.Minute)
	m.Add(stale)
	m.AddError("fresh")

	remaining := m.Tick()
	if len(remaining) != 1 {
		t.Fatalf("len = %d, want 1 after expiry", len(remaining))
	}
	if remaining[0].Message != "fresh" {
		t.Errorf("surviving toast = %q, want the fresh one", remaining[0].Message)
	}
}

func TestToastDurationsByKind(t *testing.T) {
	if d := NewErrorToast("x").Duration; d != ErrorToastDuration {
		t.Errorf("error duration = %v, want %v", d, ErrorToastDuration)
	}
	if d := NewWarningToast("x").Duration; d != WarningToastDuration {
		t.Errorf("warning duration = %v, want %v", d, WarningToastDuration)
	}
	if d := NewSuccessToast("x").Duration; d != DefaultToastDuration {
		t.Errorf("success duration = %v, want %v", d, DefaultToastDuration)
	}
}

// =============================================================================
// SIDEBAR TESTS
// =============================================================================

func sampleSessions() []model.Session {
	return []model.Session{
		{ID: "s3", Title: "Latest chat", CreatedAt: time.Now()},
		{ID: "s2", Title: "Middle chat", CreatedAt: time.Now().Add(-time.Hour)},
		{ID: "s1", Title: "Oldest chat", CreatedAt: time.Now().Add(-2 * time.Hour)},
	}
}

func TestSidebarCursorNavigation(t *testing.T) {
	sb := NewSidebar()
	sb.SetSessions(sampleSessions())

	sel, ok := sb.Selected()
	if !ok || sel.ID != "s3" {
		t.Fatalf("initial selection = %v %v, want s3", sel.ID, ok)
	}

	sb.MoveDown()
	sb.MoveDown()
	sb.MoveDown() // clamped at the end
	sel, _ = sb.Selected()
	if sel.ID != "s1" {
		t.Errorf("selection after MoveDown x3 = %q, want s1", sel.ID)
	}

	sb.MoveUp()
	sel, _ = sb.Selected()
	if sel.ID != "s2" {
		t.Errorf("selection after MoveUp = %q, want s2", sel.ID)
	}
}

func TestSidebarRefreshKeepsSelection(t *testing.T) {
	sb := NewSidebar()
	sb.SetSessions(sampleSessions())
	sb.MoveDown() // on s2

	// A refresh inserts a newer session at the top.
	refreshed := append([]model.Session{
		{ID: "s4", Title: "Brand new", CreatedAt: time.Now()},
	}, sampleSessions()...)
	sb.SetSessions(refreshed)

	sel, _ := sb.Selected()
	if sel.ID != "s2" {
		t.Errorf("selection after refresh = %q, want s2 preserved", sel.ID)
	}
}

func TestSidebarSelectionOnEmptyList(t *testing.T) {
	sb := NewSidebar()
	sb.SetSessions(nil)
	if _, ok := sb.Selected(); ok {
		t.Error("Selected should report false on an empty list")
	}
}

func TestSidebarRenderStates(t *testing.T) {
	theme := styles.NewTheme(styles.ModeDark)
	sb := NewSidebar()
	sb.SetSize(28, 10)

	if out := sb.Render(theme); !strings.Contains(out, "loading") {
		t.Error("loading sidebar should render a skeleton")
	}

	sb.SetSessions(nil)
	if out := sb.Render(theme); !strings.Contains(out, "no conversations") {
		t.Error("empty sidebar should say so")
	}

	sb.SetSessions(sampleSessions())
	sb.SetActive("s2")
	out := sb.Render(theme)
	if !strings.Contains(out, "Latest chat") {
		t.Error("sidebar should list session titles")
	}
}

// =============================================================================
// WIDTH TRUNCATION TESTS
// =============================================================================

func TestTruncateToWidth(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a much longer title", 10, "a much lo…"},
		{"", 5, ""},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncateToWidth(tt.in, tt.width); got != tt.want {
			t.Errorf("TruncateToWidth(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestTruncateToWidthWideRunes(t *testing.T) {
	// Each CJK rune occupies two columns.
	got := TruncateToWidth("你好世界", 5)
	if got != "你好…" {
		t.Errorf("TruncateToWidth wide = %q, want %q", got, "你好…")
	}
}

// =============================================================================
// FILE CHIP TESTS
// =============================================================================

func TestRenderFileChips(t *testing.T) {
	theme := styles.NewTheme(styles.ModeDark)

	if out := RenderFileChips(theme, nil, 80); out != "" {
		t.Errorf("no files should render empty, got %q", out)
	}

	files := []model.Attachment{
		model.NewLocalAttachment("/tmp/report.pdf", 3*1024*1024),
		model.NewRemoteAttachment("notes.docx"),
	}
	out := RenderFileChips(theme, files, 80)
	if !strings.Contains(out, "report.pdf") || !strings.Contains(out, "notes.docx") {
		t.Errorf("chips missing filenames: %q", out)
	}
	if !strings.Contains(out, "MiB") {
		t.Errorf("local chip should include a size: %q", out)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.size); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

// =============================================================================
// CONFIRM MODAL TESTS
// =============================================================================

func TestConfirmModalLifecycle(t *testing.T) {
	var c ConfirmModal
	if c.Visible() {
		t.Fatal("zero value should be hidden")
	}

	c.Show("Delete this conversation?", "s1")
	if !c.Visible() || c.TargetID() != "s1" {
		t.Fatalf("modal not open for s1: visible=%v target=%q", c.Visible(), c.TargetID())
	}
	if c.YesActive() {
		t.Error("cursor should start on No")
	}

	c.Toggle()
	if !c.YesActive() {
		t.Error("Toggle should move to Yes")
	}

	c.Hide()
	if c.Visible() || c.TargetID() != "" {
		t.Error("Hide should clear visibility and target")
	}
}
