// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"testing"

	"github.com/conversa-io/conversa-tui/internal/model"
)

// =============================================================================
// LOADED-VS-ABSENT TESTS
// =============================================================================

func TestGetDistinguishesLoadedFromAbsent(t *testing.T) {
	s := New()

	if _, loaded := s.Get("never-fetched"); loaded {
		t.Error("unfetched conversation should report not loaded")
	}

	s.MarkLoaded("fresh")
	msgs, loaded := s.Get("fresh")
	if !loaded {
		t.Error("marked conversation should report loaded")
	}
	if len(msgs) != 0 {
		t.Errorf("fresh conversation should be empty, got %d messages", len(msgs))
	}
}

func TestPutReplacesHistory(t *testing.T) {
	s := New()
	s.Append("s1", model.NewUserMessage("stale", nil))
	s.Put("s1", []*model.Message{
		model.NewUserMessage("q", nil),
		model.NewAssistantMessage("a", ""),
	})

	msgs, _ := s.Get("s1")
	if len(msgs) != 2 || msgs[0].Answer != "q" {
		t.Errorf("history not replaced, got %d messages", len(msgs))
	}
}

func TestGetReturnsSnapshot(t *testing.T) {
	s := New()
	s.Append("s1", model.NewUserMessage("q", nil))

	msgs, _ := s.Get("s1")
	s.Append("s1", model.NewAssistantMessage("a", ""))

	if len(msgs) != 1 {
		t.Error("earlier snapshot must not grow with later appends")
	}
}

func TestGetSnapshotIsolatedFromLaterMutations(t *testing.T) {
	s := New()
	user := model.NewUserMessage("original", nil)
	assistant := model.NewAssistantMessage("reply", "")
	s.Append("s1", user)
	s.Append("s1", assistant)

	snap, _ := s.Get("s1")
	s.ReplaceText("s1", user.ID, "edited")
	s.SetVote("s1", assistant.ID, model.VoteUp)

	if snap[0].Answer != "original" {
		t.Errorf("snapshot user text = %q after later edit", snap[0].Answer)
	}
	if snap[1].Rate != nil {
		t.Error("snapshot must not pick up votes cast after it was taken")
	}

	// Writing through the snapshot must not reach the store either.
	snap[0].Answer = "tampered"
	msgs, _ := s.Get("s1")
	if msgs[0].Answer != "edited" {
		t.Errorf("store user text = %q after snapshot tamper", msgs[0].Answer)
	}
}

// =============================================================================
// MUTATION TESTS
// =============================================================================

func TestAppendCreatesConversation(t *testing.T) {
	s := New()
	s.Append("s1", model.NewUserMessage("first", nil))

	if !s.Loaded("s1") {
		t.Error("append should create the conversation")
	}
	if s.Len("s1") != 1 {
		t.Errorf("Len = %d", s.Len("s1"))
	}
}

func TestReplaceText(t *testing.T) {
	s := New()
	user := model.NewUserMessage("original", nil)
	assistant := model.NewAssistantMessage("reply", "")
	s.Append("s1", user)
	s.Append("s1", assistant)

	s.ReplaceText("s1", user.ID, "edited")
	msgs, _ := s.Get("s1")
	if msgs[0].Answer != "edited" {
		t.Errorf("user text = %q", msgs[0].Answer)
	}

	// Assistant messages cannot be rewritten.
	s.ReplaceText("s1", assistant.ID, "tampered")
	msgs, _ = s.Get("s1")
	if msgs[1].Answer != "reply" {
		t.Errorf("assistant text = %q", msgs[1].Answer)
	}

	// Unknown ids are a silent no-op.
	s.ReplaceText("s1", "missing", "x")
}

func TestTruncateAfter(t *testing.T) {
	s := New()
	for _, text := range []string{"q1", "a1", "q2", "a2"} {
		s.Append("s1", model.NewUserMessage(text, nil))
	}

	s.TruncateAfter("s1", 1)
	msgs, _ := s.Get("s1")
	if len(msgs) != 2 || msgs[1].Answer != "a1" {
		t.Errorf("after truncate: %d messages", len(msgs))
	}

	s.TruncateAfter("s1", -1)
	msgs, loaded := s.Get("s1")
	if !loaded || len(msgs) != 0 {
		t.Error("negative index should clear but keep the conversation loaded")
	}

	s.TruncateAfter("absent", 0) // no-op
	if s.Loaded("absent") {
		t.Error("truncating an absent conversation must not create it")
	}
}

func TestRemove(t *testing.T) {
	s := New()
	user := model.NewUserMessage("optimistic", nil)
	s.Append("s1", model.NewUserMessage("kept", nil))
	s.Append("s1", user)

	if !s.Remove("s1", user.ID) {
		t.Fatal("Remove should report success")
	}
	if s.Len("s1") != 1 {
		t.Errorf("Len = %d after rollback", s.Len("s1"))
	}
	if s.Remove("s1", user.ID) {
		t.Error("second removal should report false")
	}
}

// =============================================================================
// VOTE TESTS
// =============================================================================

func TestSetVoteSingleShot(t *testing.T) {
	s := New()
	msg := model.NewAssistantMessage("reply", "")
	s.Append("s1", msg)

	if !s.SetVote("s1", msg.ID, model.VoteUp) {
		t.Fatal("first vote should apply")
	}
	if s.SetVote("s1", msg.ID, model.VoteDown) {
		t.Error("second vote must be rejected")
	}

	msgs, _ := s.Get("s1")
	if msgs[0].Rate == nil || *msgs[0].Rate != model.VoteUp {
		t.Errorf("rate = %v", msgs[0].Rate)
	}
}

func TestSetVoteUnknownMessage(t *testing.T) {
	s := New()
	if s.SetVote("s1", "missing", model.VoteUp) {
		t.Error("vote on unknown message should report false")
	}
}

// =============================================================================
// PROMOTION TESTS
// =============================================================================

func TestMove(t *testing.T) {
	s := New()
	s.Append("local-1", model.NewUserMessage("q", nil))
	s.Append("local-1", model.NewAssistantMessage("a", ""))

	s.Move("local-1", "real-1")

	if s.Loaded("local-1") {
		t.Error("source should be gone after move")
	}
	msgs, loaded := s.Get("real-1")
	if !loaded || len(msgs) != 2 {
		t.Errorf("destination has %d messages, loaded=%v", len(msgs), loaded)
	}
}

func TestMoveDestinationExists(t *testing.T) {
	s := New()
	s.Append("real-1", model.NewUserMessage("server copy", nil))
	s.Append("local-1", model.NewUserMessage("buffered", nil))

	s.Move("local-1", "real-1")

	msgs, _ := s.Get("real-1")
	if len(msgs) != 1 || msgs[0].Answer != "server copy" {
		t.Error("existing destination must win on repeated promotion")
	}
	if s.Loaded("local-1") {
		t.Error("source should still be dropped")
	}
}

func TestDrop(t *testing.T) {
	s := New()
	s.Append("s1", model.NewUserMessage("q", nil))
	s.Drop("s1")

	if s.Loaded("s1") {
		t.Error("dropped conversation should report not loaded")
	}
}
