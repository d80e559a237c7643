// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend API base URL (default: http://localhost:8000/api)
	BaseURL string

	// Timeout for listing, deleting and voting (default: 15s)
	Timeout time.Duration

	// ChatTimeout for message and attachment requests, which block on model
	// generation server-side (default: 120s)
	ChatTimeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:     "http://localhost:8000/api",
		Timeout:     15 * time.Second,
		ChatTimeout: 120 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Conversa backend API.
//
// The Client is thread-safe for concurrent use; the bearer token may be
// swapped at any time (login, logout) without tearing the client down.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	chatClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8000/api"
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	if config.ChatTimeout == 0 {
		config.ChatTimeout = 120 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		chatClient: &http.Client{Timeout: config.ChatTimeout},
	}
}

// SetToken installs the bearer token used on authenticated requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token ("" when logged out).
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// LoginURL returns the browser login entry point for the backend.
func (c *Client) LoginURL() string {
	return c.config.BaseURL + "/auth/login"
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do runs a request and classifies transport and HTTP failures. On success
// the response is returned with its body still open; the caller closes it.
func (c *Client) do(client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &ClientError{Type: ErrTypeConnection, Message: "request timed out", Cause: err}
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "backend unreachable", Cause: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	return nil, classifyStatus(resp)
}

// classifyStatus maps a non-2xx response to the error taxonomy. The body is
// read for its detail field; do closes it once this returns.
func classifyStatus(resp *http.Response) error {
	var payload apiError
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload)

	status := resp.StatusCode
	detail := payload.Detail

	switch {
	case isAuthFailure(status, detail):
		return &ClientError{Type: ErrTypeAuth, Message: "authentication required", Detail: detail, Status: status}
	case status == http.StatusConflict:
		return &ClientError{Type: ErrTypeConflict, Message: "conversation conflict", Detail: detail, Status: status}
	case status == http.StatusNotFound:
		return &ClientError{Type: ErrTypeNotFound, Message: "resource not found", Detail: detail, Status: status}
	case status == http.StatusBadRequest,
		status == http.StatusUnsupportedMediaType,
		status == http.StatusUnprocessableEntity:
		return &ClientError{Type: ErrTypeValidation, Message: "request rejected", Detail: detail, Status: status}
	default:
		return &ClientError{Type: ErrTypeUnknown, Message: "request failed: " + resp.Status, Detail: detail, Status: status}
	}
}

func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// =============================================================================
// AUTH OPERATIONS
// =============================================================================

// ExchangeToken trades a login code for a bearer token. The token is NOT
// installed on the client; the caller persists it first and then SetToken.
func (c *Client) ExchangeToken(ctx context.Context, code string) (*TokenResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/token?code="+url.QueryEscape(code), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return nil, err
	}

	var result TokenResponse
	if err := decodeJSON(resp, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "token exchange returned no token"}
	}
	return &result, nil
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// ListSessions retrieves every conversation the user owns.
func (c *Client) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/chat/sessions", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return nil, err
	}

	var result ListSessionsResponse
	if err := decodeJSON(resp, &result); err != nil {
		return nil, err
	}
	return result.Sessions, nil
}

// GetSession retrieves the full message history of one conversation.
func (c *Client) GetSession(ctx context.Context, conversationID string) (*SessionHistoryResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet,
		"/chat/get_one_session?conversation_id="+url.QueryEscape(conversationID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return nil, err
	}

	var result SessionHistoryResponse
	if err := decodeJSON(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteSession removes a conversation from the backend.
func (c *Client) DeleteSession(ctx context.Context, conversationID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete,
		"/chat/delete_one_session/"+url.PathEscape(conversationID), nil)
	if err != nil {
		return err
	}

	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return err
	}

	var result DeleteResponse
	return decodeJSON(resp, &result)
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// SendMessage posts a question and blocks until the assistant reply arrives.
// For a conversation the backend has not seen yet, SessionID in the request
// is empty and the response's SessionID is the newly assigned id.
func (c *Client) SendMessage(ctx context.Context, chatReq ChatRequest) (*ChatResponse, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/chat/message", chatReq)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(c.chatClient, req)
	if err != nil {
		return nil, err
	}

	var result ChatResponse
	if err := decodeJSON(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendAttachment posts a question together with staged files as a multipart
// request. paths are local filesystem paths already validated by the caller.
func (c *Client) SendAttachment(ctx context.Context, chatReq ChatRequest, paths []string) (*ChatResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("question", chatReq.Question); err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to encode request", Cause: err}
	}
	if err := writer.WriteField("session_id", chatReq.SessionID); err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to encode request", Cause: err}
	}
	if err := writer.WriteField("message_id", chatReq.MessageID); err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to encode request", Cause: err}
	}

	for _, path := range paths {
		if err := appendFilePart(writer, path); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to encode request", Cause: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/chat/attachment", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.do(c.chatClient, req)
	if err != nil {
		return nil, err
	}

	var result ChatResponse
	if err := decodeJSON(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func appendFilePart(writer *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &ClientError{Type: ErrTypeValidation, Message: "cannot read attachment " + filepath.Base(path), Cause: err}
	}
	defer f.Close()

	part, err := writer.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to encode request", Cause: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to encode request", Cause: err}
	}
	return nil
}

// =============================================================================
// VOTES
// =============================================================================

// Vote records a thumbs up (1) or down (0) on a message.
func (c *Client) Vote(ctx context.Context, voteReq VoteRequest) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/chat/vote", voteReq)
	if err != nil {
		return err
	}

	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// =============================================================================
// DOCUMENT DOWNLOAD
// =============================================================================

// DownloadDocument fetches a generated document by id. The returned filename
// comes from the Content-Disposition header, falling back to "<id>.docx".
func (c *Client) DownloadDocument(ctx context.Context, docID string) (filename string, data []byte, err error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/download/doc/"+url.PathEscape(docID), nil)
	if err != nil {
		return "", nil, err
	}

	resp, err := c.do(c.chatClient, req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, &ClientError{Type: ErrTypeConnection, Message: "download interrupted", Cause: err}
	}

	filename = docID + ".docx"
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			filename = filepath.Base(params["filename"])
		}
	}
	return filename, data, nil
}
