// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry maintains the in-memory conversation list.
//
// The registry holds exactly one entry per session id. Placeholder entries
// exist only client-side; a server listing can never contain one, so bulk
// replacement keeps placeholders alive while swapping the server-backed
// portion of the list.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/conversa-io/conversa-tui/internal/model"
)

// =============================================================================
// SESSION REGISTRY
// =============================================================================

// Registry tracks every known conversation, keyed by session id.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		sessions: make(map[string]model.Session),
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Replace swaps the server-backed portion of the list with a fresh listing.
// Placeholder entries survive the swap: the server does not know about them
// yet, so a listing can neither confirm nor invalidate them.
func (r *Registry) Replace(sessions []model.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make(map[string]model.Session, len(sessions))
	for id, s := range r.sessions {
		if model.IsPlaceholderID(id) {
			kept[id] = s
		}
	}
	for _, s := range sessions {
		kept[s.ID] = s
	}
	r.sessions = kept
}

// =============================================================================
// CREATION AND PROMOTION
// =============================================================================

// CreatePlaceholder inserts a new conversation with a locally generated id
// and returns it. The entry sorts to the top of the list until the backend
// assigns it a real id.
func (r *Registry) CreatePlaceholder() model.Session {
	s := model.NewPlaceholderSession()
	s.CreatedAt = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return s
}

// Promote replaces a placeholder entry with the real id the backend
// assigned. Idempotent: if the real id is already registered the placeholder
// is simply dropped and the existing entry wins; if the placeholder is gone
// the real entry is still ensured. Returns the resulting session.
func (r *Registry) Promote(placeholderID, realID, title string) model.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[realID]; ok {
		delete(r.sessions, placeholderID)
		return existing
	}

	promoted := model.Session{ID: realID, Title: title, CreatedAt: time.Now()}
	if ph, ok := r.sessions[placeholderID]; ok {
		promoted.CreatedAt = ph.CreatedAt
		if title == "" {
			promoted.Title = ph.Title
		}
		delete(r.sessions, placeholderID)
	}
	r.sessions[realID] = promoted
	return promoted
}

// Rename updates the title of an existing entry. No-op when absent.
func (r *Registry) Rename(id, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.Title = title
		r.sessions[id] = s
	}
}

// Remove deletes an entry. Called only once the backend confirms a delete,
// or to discard an abandoned placeholder.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// =============================================================================
// QUERIES
// =============================================================================

// Get returns the session with the given id.
func (r *Registry) Get(id string) (model.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Len returns the number of registered conversations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// List returns a snapshot sorted by creation time, newest first. Ties break
// on id so the order is stable across calls.
func (r *Registry) List() []model.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
