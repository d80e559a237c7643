// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Conversa backend.
//
// The client owns the full transport surface: bearer authentication, JSON
// and multipart request encoding, response decoding, and the error taxonomy
// the rest of the application dispatches on (auth, conflict, validation,
// connection). Callers never see raw status codes or wire shapes; the reply
// normalization in types.go resolves the backend's plain-vs-multi-part
// answer variants before a response leaves this package.
package api
