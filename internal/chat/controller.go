// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/conversa-io/conversa-tui/internal/api"
	"github.com/conversa-io/conversa-tui/internal/model"
	"github.com/conversa-io/conversa-tui/internal/registry"
	"github.com/conversa-io/conversa-tui/internal/store"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrBusy           = errors.New("a message is already in flight for this conversation")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrNotEditable    = errors.New("message cannot be edited")
	ErrUnknownMessage = errors.New("message not found")
	ErrAlreadyVoted   = errors.New("message already has a vote")
	ErrInvalidVote    = errors.New("vote must be up or down")
)

// errorReplyText is the body of the assistant bubble shown when a send
// fails for a reason other than conflict or token expiry.
const errorReplyText = "Something went wrong while generating a response. Please try again."

// =============================================================================
// BACKEND INTERFACE
// =============================================================================

// Backend is the slice of the API client the controller needs. *api.Client
// satisfies it; tests substitute a scripted fake.
type Backend interface {
	ListSessions(ctx context.Context) ([]api.SessionInfo, error)
	GetSession(ctx context.Context, conversationID string) (*api.SessionHistoryResponse, error)
	DeleteSession(ctx context.Context, conversationID string) error
	SendMessage(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
	SendAttachment(ctx context.Context, req api.ChatRequest, paths []string) (*api.ChatResponse, error)
	Vote(ctx context.Context, req api.VoteRequest) error
	DownloadDocument(ctx context.Context, docID string) (string, []byte, error)
}

// =============================================================================
// SEND STATE
// =============================================================================

// SendState tracks the lifecycle of a conversation's in-flight request.
type SendState int

const (
	// StateIdle means no request is in flight.
	StateIdle SendState = iota
	// StateSending means a request is in flight and its response will be
	// applied when it resolves.
	StateSending
	// StateCancelled means a request is still in flight but the user asked
	// to stop; the response will be discarded when it resolves.
	StateCancelled
)

// =============================================================================
// SEND RESULT
// =============================================================================

// Outcome classifies how a send ended.
type Outcome int

const (
	// OutcomeSettled means the reply was appended to the transcript.
	OutcomeSettled Outcome = iota
	// OutcomeCancelled means the user stopped generation; the resolved
	// response was discarded.
	OutcomeCancelled
	// OutcomeConflict means the backend rejected the message with a
	// conversation conflict and the optimistic user message was rolled back.
	OutcomeConflict
	// OutcomeAuth means the token was rejected and a logout was triggered.
	OutcomeAuth
	// OutcomeFailed means the send failed and an assistant-role error
	// bubble was appended instead of a reply.
	OutcomeFailed
)

// SendResult describes the settled state of a Submit, Edit or Regenerate.
type SendResult struct {
	Outcome Outcome

	// SessionID is the conversation id after any promotion.
	SessionID string

	// Promoted is true when a placeholder id was replaced by a real one.
	Promoted bool

	// User is the optimistically appended user message, when one was.
	User *model.Message

	// Assistant is the appended reply, or the error bubble on failure.
	Assistant *model.Message

	// Detail carries the server's message on conflict.
	Detail string

	// ResetToNew is true when a first-message conflict tore down the
	// placeholder conversation and the UI should show a fresh one.
	ResetToNew bool

	// Err is the underlying transport error, nil on success/cancel.
	Err error
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller coordinates the registry, the message store and the backend.
// It is safe for concurrent use.
type Controller struct {
	backend  Backend
	registry *registry.Registry
	store    *store.Store

	// onLogout is invoked exactly where a token failure is detected. Wired
	// to clearing the token store and the client's bearer token.
	onLogout func()

	mu         sync.Mutex
	sendStates map[string]SendState
}

// NewController creates a controller over fresh registry and store.
func NewController(backend Backend) *Controller {
	return &Controller{
		backend:    backend,
		registry:   registry.New(),
		store:      store.New(),
		sendStates: make(map[string]SendState),
	}
}

// SetLogoutHook installs the callback run when the backend rejects the
// token. Must be set before the controller handles traffic.
func (c *Controller) SetLogoutHook(fn func()) {
	c.onLogout = fn
}

// Registry exposes the session registry for read access by the UI.
func (c *Controller) Registry() *registry.Registry {
	return c.registry
}

// Messages returns the transcript snapshot of a conversation.
func (c *Controller) Messages(sessionID string) ([]*model.Message, bool) {
	return c.store.Get(sessionID)
}

// State returns the send state of a conversation.
func (c *Controller) State(sessionID string) SendState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendStates[sessionID]
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// NewConversation registers a placeholder session with an empty, loaded
// transcript and returns it.
func (c *Controller) NewConversation() model.Session {
	s := c.registry.CreatePlaceholder()
	c.store.MarkLoaded(s.ID)
	return s
}

// DeleteSession removes a conversation. Placeholders exist only locally and
// are dropped directly; real sessions are deleted on the backend first and
// kept when that fails, so the local list never lies about what the server
// still has. A not-found answer counts as confirmed gone.
func (c *Controller) DeleteSession(ctx context.Context, sessionID string) error {
	if !model.IsPlaceholderID(sessionID) {
		if err := c.backend.DeleteSession(ctx, sessionID); err != nil {
			if api.IsAuth(err) {
				c.logout()
				return err
			}
			if !api.IsNotFound(err) {
				return err
			}
		}
	}
	c.registry.Remove(sessionID)
	c.store.Drop(sessionID)
	return nil
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit appends the user's message optimistically and sends it. For a
// placeholder conversation the request carries no session id; the response's
// id promotes the placeholder. Attachments ride along as a multipart request.
func (c *Controller) Submit(ctx context.Context, sessionID, question string, files []model.Attachment) (SendResult, error) {
	question = strings.TrimSpace(question)
	if question == "" && len(files) == 0 {
		return SendResult{}, ErrEmptyMessage
	}
	if !c.beginSend(sessionID) {
		return SendResult{}, ErrBusy
	}

	first := c.store.Len(sessionID) == 0
	user := model.NewUserMessage(question, files)
	c.store.Append(sessionID, user)

	req := api.ChatRequest{Question: question, MessageID: user.ID}
	if !model.IsPlaceholderID(sessionID) {
		req.SessionID = sessionID
	}

	var paths []string
	for _, f := range files {
		if f.IsLocal() {
			paths = append(paths, f.Path)
		}
	}

	return c.finishSend(ctx, sessionID, req, paths, user, first, true), nil
}

// =============================================================================
// EDIT AND REGENERATE
// =============================================================================

// Edit rewrites a user message in place, discards everything after it and
// resends the conversation from that point. Messages carrying attachments
// cannot be edited.
func (c *Controller) Edit(ctx context.Context, sessionID, messageID, newText string) (SendResult, error) {
	newText = strings.TrimSpace(newText)
	if newText == "" {
		return SendResult{}, ErrEmptyMessage
	}

	msgs, loaded := c.store.Get(sessionID)
	if !loaded {
		return SendResult{}, ErrUnknownMessage
	}
	idx := -1
	var target *model.Message
	for i, m := range msgs {
		if m.ID == messageID {
			idx, target = i, m
			break
		}
	}
	if target == nil {
		return SendResult{}, ErrUnknownMessage
	}
	if !target.Editable() {
		return SendResult{}, ErrNotEditable
	}
	if !c.beginSend(sessionID) {
		return SendResult{}, ErrBusy
	}

	c.store.ReplaceText(sessionID, messageID, newText)
	c.store.TruncateAfter(sessionID, idx)

	req := api.ChatRequest{Question: newText, MessageID: messageID}
	if !model.IsPlaceholderID(sessionID) {
		req.SessionID = sessionID
	}

	return c.finishSend(ctx, sessionID, req, nil, nil, idx == 0, false), nil
}

// Regenerate discards an assistant reply (and everything after it) and asks
// the question that produced it again. The new reply gets a fresh id.
func (c *Controller) Regenerate(ctx context.Context, sessionID, assistantID string) (SendResult, error) {
	msgs, loaded := c.store.Get(sessionID)
	if !loaded {
		return SendResult{}, ErrUnknownMessage
	}
	idx := -1
	for i, m := range msgs {
		if m.ID == assistantID && m.Role == model.RoleAssistant {
			idx = i
			break
		}
	}
	if idx < 0 {
		return SendResult{}, ErrUnknownMessage
	}

	var question *model.Message
	for i := idx - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleUser {
			question = msgs[i]
			break
		}
	}
	if question == nil {
		return SendResult{}, ErrUnknownMessage
	}
	if !c.beginSend(sessionID) {
		return SendResult{}, ErrBusy
	}

	c.store.TruncateAfter(sessionID, idx-1)

	req := api.ChatRequest{Question: question.Answer, MessageID: question.ID}
	if !model.IsPlaceholderID(sessionID) {
		req.SessionID = sessionID
	}

	return c.finishSend(ctx, sessionID, req, nil, nil, false, false), nil
}

// =============================================================================
// STOP
// =============================================================================

// Stop flags an in-flight generation as cancelled. The request itself is
// left to resolve; its response is thrown away. Returns false when nothing
// was in flight.
func (c *Controller) Stop(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendStates[sessionID] != StateSending {
		return false
	}
	c.sendStates[sessionID] = StateCancelled
	return true
}

// =============================================================================
// VOTE
// =============================================================================

// Vote records a single-shot vote on a message and reports it to the
// backend. The local vote sticks even when the report fails; the caller
// surfaces the error as a toast.
func (c *Controller) Vote(ctx context.Context, sessionID, messageID string, rate int) error {
	if rate != model.VoteUp && rate != model.VoteDown {
		return ErrInvalidVote
	}
	if c.store.IndexOf(sessionID, messageID) < 0 {
		return ErrUnknownMessage
	}
	if !c.store.SetVote(sessionID, messageID, rate) {
		return ErrAlreadyVoted
	}

	err := c.backend.Vote(ctx, api.VoteRequest{ID: messageID, ThreadID: sessionID, Rate: rate})
	if err != nil && api.IsAuth(err) {
		c.logout()
	}
	return err
}

// =============================================================================
// SEND CORE
// =============================================================================

func (c *Controller) beginSend(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendStates[sessionID] != StateIdle {
		return false
	}
	c.sendStates[sessionID] = StateSending
	return true
}

// endSend settles the state machine and reports whether the user cancelled
// while the request was in flight.
func (c *Controller) endSend(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cancelled := c.sendStates[sessionID] == StateCancelled
	delete(c.sendStates, sessionID)
	return cancelled
}

func (c *Controller) finishSend(ctx context.Context, sessionID string, req api.ChatRequest, paths []string, user *model.Message, first, rollbackOnConflict bool) SendResult {
	var resp *api.ChatResponse
	var err error
	if len(paths) > 0 {
		resp, err = c.backend.SendAttachment(ctx, req, paths)
	} else {
		resp, err = c.backend.SendMessage(ctx, req)
	}

	if cancelled := c.endSend(sessionID); cancelled {
		// The user already moved on: keep their message, drop the reply.
		return SendResult{Outcome: OutcomeCancelled, SessionID: sessionID, User: user}
	}
	if err != nil {
		return c.failSend(sessionID, user, first, rollbackOnConflict, err)
	}
	return c.settleSend(sessionID, req.Question, resp, user, first)
}

func (c *Controller) settleSend(sessionID, question string, resp *api.ChatResponse, user *model.Message, first bool) SendResult {
	finalID := sessionID
	promoted := false

	if model.IsPlaceholderID(sessionID) && resp.SessionID != "" {
		c.registry.Promote(sessionID, resp.SessionID, model.DeriveTitle(question))
		c.store.Move(sessionID, resp.SessionID)
		finalID = resp.SessionID
		promoted = true
	} else if first {
		c.registry.Rename(finalID, model.DeriveTitle(question))
	}

	assistant := model.NewAssistantMessage(resp.Answer.Text(), resp.File)
	c.store.Append(finalID, assistant)

	return SendResult{
		Outcome:   OutcomeSettled,
		SessionID: finalID,
		Promoted:  promoted,
		User:      user,
		Assistant: assistant,
	}
}

func (c *Controller) failSend(sessionID string, user *model.Message, first, rollbackOnConflict bool, err error) SendResult {
	switch {
	case api.IsAuth(err):
		// Token failure: log out globally. The optimistic message stays;
		// the whole local state is torn down by the logout path anyway.
		c.logout()
		return SendResult{Outcome: OutcomeAuth, SessionID: sessionID, User: user, Err: err}

	case api.IsConflict(err):
		if rollbackOnConflict && user != nil {
			c.store.Remove(sessionID, user.ID)
		}
		reset := first && rollbackOnConflict && model.IsPlaceholderID(sessionID)
		if reset {
			c.registry.Remove(sessionID)
			c.store.Drop(sessionID)
		}
		return SendResult{
			Outcome:    OutcomeConflict,
			SessionID:  sessionID,
			Detail:     api.Detail(err),
			ResetToNew: reset,
			Err:        err,
		}

	default:
		assistant := model.NewAssistantMessage(errorReplyText, "")
		c.store.Append(sessionID, assistant)
		return SendResult{
			Outcome:   OutcomeFailed,
			SessionID: sessionID,
			User:      user,
			Assistant: assistant,
			Err:       err,
		}
	}
}

func (c *Controller) logout() {
	if c.onLogout != nil {
		c.onLogout()
	}
}
