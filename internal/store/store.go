// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store keeps per-conversation message lists in memory.
//
// Histories are fetched lazily; the store distinguishes a conversation whose
// history was loaded and happens to be empty from one that was never loaded
// at all. Nothing in here touches disk: conversation content lives on the
// backend only.
package store

import (
	"sync"

	"github.com/conversa-io/conversa-tui/internal/model"
)

// =============================================================================
// MESSAGE STORE
// =============================================================================

// Store maps session ids to ordered message lists.
// It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	messages map[string][]*model.Message
}

// New creates an empty store.
func New() *Store {
	return &Store{
		messages: make(map[string][]*model.Message),
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Put installs the full history of a conversation and marks it loaded.
// Replaces whatever was there before.
func (s *Store) Put(sessionID string, msgs []*model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*model.Message, len(msgs))
	copy(list, msgs)
	s.messages[sessionID] = list
}

// MarkLoaded records that a conversation's history is known to be empty.
// Used for fresh placeholder sessions, which have nothing to fetch.
func (s *Store) MarkLoaded(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[sessionID]; !ok {
		s.messages[sessionID] = []*model.Message{}
	}
}

// Get returns a snapshot of a conversation's messages and whether its
// history has been loaded. An empty loaded list and an absent one are
// different answers. Messages are cloned, so later edits and votes never
// bleed into a snapshot a caller is still holding.
func (s *Store) Get(sessionID string) ([]*model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.messages[sessionID]
	if !ok {
		return nil, false
	}
	out := make([]*model.Message, len(list))
	for i, m := range list {
		out[i] = m.Clone()
	}
	return out, true
}

// Loaded reports whether a conversation's history is present.
func (s *Store) Loaded(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.messages[sessionID]
	return ok
}

// Len returns the number of messages in a conversation (0 when not loaded).
func (s *Store) Len(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages[sessionID])
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Append adds a message to the end of a conversation, creating the list
// when the conversation was not loaded yet.
func (s *Store) Append(sessionID string, msg *model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[sessionID] = append(s.messages[sessionID], msg)
}

// ReplaceText swaps the body of a user message in place. Assistant messages
// and unknown ids are left untouched; the caller treats a miss as a no-op.
func (s *Store) ReplaceText(sessionID, messageID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages[sessionID] {
		if m.ID == messageID && m.Role == model.RoleUser {
			m.Answer = text
			return
		}
	}
}

// IndexOf returns the position of a message within a conversation, or -1.
func (s *Store) IndexOf(sessionID, messageID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.messages[sessionID] {
		if m.ID == messageID {
			return i
		}
	}
	return -1
}

// TruncateAfter discards every message after position index, keeping
// [0..index]. A negative index clears the conversation.
func (s *Store) TruncateAfter(sessionID string, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.messages[sessionID]
	if !ok {
		return
	}
	if index < -1 {
		index = -1
	}
	if index+1 < len(list) {
		s.messages[sessionID] = list[:index+1]
	}
}

// Remove deletes one message by id. Returns whether anything was removed.
// Used to roll back an optimistically appended user message.
func (s *Store) Remove(sessionID, messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.messages[sessionID]
	for i, m := range list {
		if m.ID == messageID {
			s.messages[sessionID] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// SetVote records a vote on a message. Votes are single-shot: a message
// that already has one keeps it, and false is returned.
func (s *Store) SetVote(sessionID, messageID string, rate int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages[sessionID] {
		if m.ID == messageID {
			if m.Rate != nil {
				return false
			}
			r := rate
			m.Rate = &r
			return true
		}
	}
	return false
}

// =============================================================================
// PROMOTION AND CLEANUP
// =============================================================================

// Move transfers a conversation's messages to a new id. When the
// destination already holds a loaded history the source is simply dropped,
// matching idempotent promotion.
func (s *Store) Move(fromID, toID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.messages[fromID]
	if !ok {
		return
	}
	delete(s.messages, fromID)
	if _, exists := s.messages[toID]; exists {
		return
	}
	s.messages[toID] = src
}

// Drop forgets a conversation entirely, returning it to the not-loaded
// state.
func (s *Store) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, sessionID)
}
