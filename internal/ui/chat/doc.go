// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the Bubble Tea chat view: the login screen, the
// session sidebar, the transcript viewport with glamour-rendered assistant
// markdown, the input area with file staging, and the keyboard surface for
// edit, regenerate, vote, stop and delete.
//
// All conversation semantics live in the controller package
// (internal/chat); this package owns presentation and key routing only. The
// view talks to the controller exclusively through its tea.Cmd constructors
// so network work never blocks the UI thread.
package chat
