// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

// =============================================================================
// SESSION ID TESTS
// =============================================================================

func TestNewPlaceholderID(t *testing.T) {
	id := NewPlaceholderID()
	if !strings.HasPrefix(id, PlaceholderPrefix) {
		t.Errorf("placeholder id %q missing prefix %q", id, PlaceholderPrefix)
	}
	if len(id) <= len(PlaceholderPrefix) {
		t.Errorf("placeholder id %q has no body", id)
	}
}

func TestNewPlaceholderIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewPlaceholderID()
		if seen[id] {
			t.Fatalf("duplicate placeholder id %q", id)
		}
		seen[id] = true
	}
}

func TestIsPlaceholderID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"placeholder", "local-abc123", true},
		{"server id", "f7c2a9d4", false},
		{"empty", "", false},
		{"prefix embedded", "xlocal-abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPlaceholderID(tt.id); got != tt.want {
				t.Errorf("IsPlaceholderID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestSessionIsPlaceholder(t *testing.T) {
	s := NewPlaceholderSession()
	if !s.IsPlaceholder() {
		t.Error("new placeholder session should report IsPlaceholder")
	}
	s.ID = "server-issued"
	if s.IsPlaceholder() {
		t.Error("server id should not report IsPlaceholder")
	}
}

func TestSessionDisplayTitle(t *testing.T) {
	s := NewPlaceholderSession()
	if got := s.DisplayTitle(); got != "New conversation" {
		t.Errorf("DisplayTitle() = %q, want default", got)
	}
	s.Title = "Quarterly report"
	if got := s.DisplayTitle(); got != "Quarterly report" {
		t.Errorf("DisplayTitle() = %q, want %q", got, "Quarterly report")
	}
}

// =============================================================================
// TITLE DERIVATION TESTS
// =============================================================================

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short", "hello", "hello"},
		{"exactly max", strings.Repeat("a", TitleMaxRunes), strings.Repeat("a", TitleMaxRunes)},
		{"truncated", strings.Repeat("a", TitleMaxRunes+10), strings.Repeat("a", TitleMaxRunes)},
		{"newlines collapsed", "first line\nsecond line", "first line second line"},
		{"whitespace squeezed", "a  \t b", "a b"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.input); got != tt.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDeriveTitleUnicode(t *testing.T) {
	// Truncation counts runes, not bytes.
	input := strings.Repeat("ñ", TitleMaxRunes+5)
	got := DeriveTitle(input)
	if got != strings.Repeat("ñ", TitleMaxRunes) {
		t.Errorf("DeriveTitle truncated to %d runes, want %d", len([]rune(got)), TitleMaxRunes)
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	m := NewUserMessage("what is the deadline?", nil)
	if m.Role != RoleUser {
		t.Errorf("Role = %q, want %q", m.Role, RoleUser)
	}
	if m.ID == "" {
		t.Error("user message should get a generated id")
	}
	if m.Answer != "what is the deadline?" {
		t.Errorf("Answer = %q", m.Answer)
	}
	if m.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestNewAssistantMessageFreshID(t *testing.T) {
	a := NewAssistantMessage("first", "")
	b := NewAssistantMessage("second", "")
	if a.ID == b.ID {
		t.Error("assistant messages must get distinct ids")
	}
}

func TestMessageEditable(t *testing.T) {
	user := NewUserMessage("plain text", nil)
	if !user.Editable() {
		t.Error("user message without files should be editable")
	}

	withFiles := NewUserMessage("see attached", []Attachment{NewRemoteAttachment("report.pdf")})
	if withFiles.Editable() {
		t.Error("user message with files must not be editable")
	}

	assistant := NewAssistantMessage("here you go", "")
	if assistant.Editable() {
		t.Error("assistant message must not be editable")
	}
}

func TestMessageHasVote(t *testing.T) {
	m := NewAssistantMessage("answer", "")
	if m.HasVote() {
		t.Error("fresh message should have no vote")
	}
	up := VoteUp
	m.Rate = &up
	if !m.HasVote() {
		t.Error("message with rate should report HasVote")
	}
}

func TestMessageClone(t *testing.T) {
	up := VoteUp
	orig := &Message{
		ID:     NewMessageID(),
		Role:   RoleUser,
		Answer: "original",
		Files:  []Attachment{NewRemoteAttachment("a.doc")},
		Rate:   &up,
	}
	c := orig.Clone()

	c.Answer = "mutated"
	c.Files[0].Name = "b.doc"
	*c.Rate = VoteDown

	if orig.Answer != "original" {
		t.Error("clone mutation leaked into original answer")
	}
	if orig.Files[0].Name != "a.doc" {
		t.Error("clone mutation leaked into original files")
	}
	if *orig.Rate != VoteUp {
		t.Error("clone mutation leaked into original rate")
	}
}

func TestRoleDisplayName(t *testing.T) {
	if got := RoleUser.DisplayName(); got != "You" {
		t.Errorf("RoleUser.DisplayName() = %q", got)
	}
	if got := RoleAssistant.DisplayName(); got != "Assistant" {
		t.Errorf("RoleAssistant.DisplayName() = %q", got)
	}
}

// =============================================================================
// ATTACHMENT TESTS
// =============================================================================

func TestNewLocalAttachment(t *testing.T) {
	a := NewLocalAttachment("/home/ana/docs/Report.PDF", 2048)
	if a.Kind != AttachmentLocal {
		t.Errorf("Kind = %v, want AttachmentLocal", a.Kind)
	}
	if a.Name != "Report.PDF" {
		t.Errorf("Name = %q, want base name", a.Name)
	}
	if a.Size != 2048 {
		t.Errorf("Size = %d, want 2048", a.Size)
	}
	if !a.IsLocal() {
		t.Error("local attachment should report IsLocal")
	}
	if got := a.Ext(); got != ".pdf" {
		t.Errorf("Ext() = %q, want lowercase .pdf", got)
	}
}

func TestNewRemoteAttachment(t *testing.T) {
	a := NewRemoteAttachment("minutes.docx")
	if a.Kind != AttachmentRemote {
		t.Errorf("Kind = %v, want AttachmentRemote", a.Kind)
	}
	if a.IsLocal() {
		t.Error("remote ref should not report IsLocal")
	}
	if a.Path != "" {
		t.Errorf("remote ref should have no path, got %q", a.Path)
	}
	if got := a.Ext(); got != ".docx" {
		t.Errorf("Ext() = %q, want .docx", got)
	}
}
