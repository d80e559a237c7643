// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL + "/api"})
	client.SetToken("test-token")
	return client
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// =============================================================================
// REPLY NORMALIZATION TESTS
// =============================================================================

func TestAssistantReplyPlainString(t *testing.T) {
	var r AssistantReply
	if err := json.Unmarshal([]byte(`"hello there"`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Text() != "hello there" {
		t.Errorf("Text() = %q", r.Text())
	}
}

func TestAssistantReplyMultiPart(t *testing.T) {
	var r AssistantReply
	if err := json.Unmarshal([]byte(`["part one","","part two","  "]`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := "part one\n\n\n\npart two"
	if r.Text() != want {
		t.Errorf("Text() = %q, want %q", r.Text(), want)
	}
}

func TestAssistantReplyInvalidShape(t *testing.T) {
	var r AssistantReply
	if err := json.Unmarshal([]byte(`{"nested":"object"}`), &r); err == nil {
		t.Error("expected error for object-shaped answer")
	}
}

// =============================================================================
// AUTH TESTS
// =============================================================================

func TestBearerHeaderSent(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(ListSessionsResponse{})
	})

	if _, err := client.ListSessions(context.Background()); err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestExchangeToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/token" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("code") != "abc 123" {
			t.Errorf("code = %q", r.URL.Query().Get("code"))
		}
		json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok", Roles: []string{"user"}})
	})

	resp, err := client.ExchangeToken(context.Background(), "abc 123")
	if err != nil {
		t.Fatalf("ExchangeToken: %v", err)
	}
	if resp.AccessToken != "tok" {
		t.Errorf("AccessToken = %q", resp.AccessToken)
	}
}

func TestExchangeTokenEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(TokenResponse{})
	})

	if _, err := client.ExchangeToken(context.Background(), "code"); err == nil {
		t.Error("expected error when exchange returns no token")
	}
}

func TestAuthFailureRecognized(t *testing.T) {
	for _, detail := range []string{"Token inválido", "Token expirado", "Not authenticated", "Claims inválidos"} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeDetail(w, http.StatusUnauthorized, detail)
		})

		_, err := client.ListSessions(context.Background())
		if !IsAuth(err) {
			t.Errorf("detail %q: expected auth error, got %v", detail, err)
		}
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("detail %q: errors.Is(ErrUnauthorized) = false", detail)
		}
	}
}

func TestAuthFailureUnrecognizedDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusForbidden, "No autorizado para ver esta sesión.")
	})

	_, err := client.GetSession(context.Background(), "s1")
	if IsAuth(err) {
		t.Error("ownership 403 must not be treated as a token failure")
	}
	if Detail(err) != "No autorizado para ver esta sesión." {
		t.Errorf("Detail = %q", Detail(err))
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestListSessions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ListSessionsResponse{Sessions: []SessionInfo{
			{ID: "s1", ConversationName: "First question"},
			{ID: "s2", ConversationName: "Second question"},
		}})
	})

	sessions, err := client.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "s1" {
		t.Errorf("sessions = %+v", sessions)
	}
}

func TestGetSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("conversation_id") != "s1" {
			t.Errorf("conversation_id = %q", r.URL.Query().Get("conversation_id"))
		}
		up := 1
		json.NewEncoder(w).Encode(SessionHistoryResponse{
			ConversationID:   "s1",
			ConversationName: "Deadlines",
			Messages: []HistoryMessage{
				{ID: "m1-q", Role: "user", Content: "when is it due?", Files: []string{"plan.pdf"}},
				{ID: "m1-a", Role: "assistant", Content: "Friday.", Rate: &up},
			},
		})
	})

	hist, err := client.GetSession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(hist.Messages) != 2 {
		t.Fatalf("messages = %d", len(hist.Messages))
	}
	if hist.Messages[0].Files[0] != "plan.pdf" {
		t.Errorf("files = %v", hist.Messages[0].Files)
	}
	if hist.Messages[1].Rate == nil || *hist.Messages[1].Rate != 1 {
		t.Errorf("rate = %v", hist.Messages[1].Rate)
	}
}

func TestDeleteSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q", r.Method)
		}
		if r.URL.Path != "/api/chat/delete_one_session/s1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(DeleteResponse{Message: "ok", DeletedCount: 1})
	})

	if err := client.DeleteSession(context.Background(), "s1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
}

func TestDeleteSessionNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Sesión no encontrada.")
	})

	err := client.DeleteSession(context.Background(), "gone")
	if !IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestSendMessageNewConversation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.SessionID != "" {
			t.Errorf("session_id = %q, want empty for unacknowledged conversation", req.SessionID)
		}
		if req.MessageID == "" {
			t.Error("message_id missing")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"answer":     "hello!",
			"session_id": "real-42",
		})
	})

	resp, err := client.SendMessage(context.Background(), ChatRequest{
		Question:  "hi",
		MessageID: "m1",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if resp.SessionID != "real-42" {
		t.Errorf("SessionID = %q", resp.SessionID)
	}
	if resp.Answer.Text() != "hello!" {
		t.Errorf("Answer = %q", resp.Answer.Text())
	}
}

func TestSendMessageMultiPartAnswer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"answer":     []string{"summary", "", "details"},
			"session_id": "s1",
		})
	})

	resp, err := client.SendMessage(context.Background(), ChatRequest{Question: "q", SessionID: "s1"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if resp.Answer.Text() != "summary\n\n\n\ndetails" {
		t.Errorf("Answer = %q", resp.Answer.Text())
	}
}

func TestSendMessageConflict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusConflict, "La sesión fue modificada en otra pestaña.")
	})

	_, err := client.SendMessage(context.Background(), ChatRequest{Question: "q", SessionID: "s1"})
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if Detail(err) != "La sesión fue modificada en otra pestaña." {
		t.Errorf("Detail = %q", Detail(err))
	}
}

func TestSendAttachment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("question"); got != "summarize this" {
			t.Errorf("question = %q", got)
		}
		if got := r.FormValue("session_id"); got != "s1" {
			t.Errorf("session_id = %q", got)
		}
		files := r.MultipartForm.File["files"]
		if len(files) != 1 || files[0].Filename != "report.pdf" {
			t.Errorf("files = %+v", files)
		}
		json.NewEncoder(w).Encode(map[string]any{"answer": "done", "session_id": "s1"})
	})

	resp, err := client.SendAttachment(context.Background(), ChatRequest{
		Question:  "summarize this",
		SessionID: "s1",
		MessageID: "m1",
	}, []string{path})
	if err != nil {
		t.Fatalf("SendAttachment: %v", err)
	}
	if resp.Answer.Text() != "done" {
		t.Errorf("Answer = %q", resp.Answer.Text())
	}
}

func TestSendAttachmentMissingFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server")
	})

	_, err := client.SendAttachment(context.Background(), ChatRequest{Question: "q"},
		[]string{"/nonexistent/path.pdf"})
	if !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

// =============================================================================
// VOTE TESTS
// =============================================================================

func TestVote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ID != "m1" || req.ThreadID != "s1" || req.Rate != 1 {
			t.Errorf("vote = %+v", req)
		}
		w.Write([]byte("{}"))
	})

	err := client.Vote(context.Background(), VoteRequest{ID: "m1", ThreadID: "s1", Rate: 1})
	if err != nil {
		t.Fatalf("Vote: %v", err)
	}
}

// =============================================================================
// DOWNLOAD TESTS
// =============================================================================

func TestDownloadDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="minutes.docx"`)
		w.Write([]byte("docx-bytes"))
	})

	name, data, err := client.DownloadDocument(context.Background(), "doc-7")
	if err != nil {
		t.Fatalf("DownloadDocument: %v", err)
	}
	if name != "minutes.docx" {
		t.Errorf("filename = %q", name)
	}
	if string(data) != "docx-bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestDownloadDocumentNoDisposition(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	})

	name, _, err := client.DownloadDocument(context.Background(), "doc-7")
	if err != nil {
		t.Fatalf("DownloadDocument: %v", err)
	}
	if name != "doc-7.docx" {
		t.Errorf("filename = %q, want fallback", name)
	}
}

// =============================================================================
// TRANSPORT FAILURE TESTS
// =============================================================================

func TestConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL + "/api"})
	srv.Close()

	_, err := client.ListSessions(context.Background())
	var clientErr *ClientError
	if !errors.As(err, &clientErr) || clientErr.Type != ErrTypeConnection {
		t.Errorf("expected connection error, got %v", err)
	}
}

func TestContextCancellationPassthrough(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := client.ListSessions(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
