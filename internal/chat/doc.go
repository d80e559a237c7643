// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation controller.
//
// The controller sits between the UI and the backend client: it owns the
// session registry and the message store, runs the per-conversation send
// state machine (idle, sending, cancelled), promotes placeholder ids to the
// ids the backend assigns, and turns transport failures into the three
// user-visible shapes: rollback on conflict, logout on token failure, and
// an assistant-role error bubble for everything else.
//
// Stopping a generation is cooperative. The in-flight request is left to
// resolve; the conversation is flagged cancelled and whatever the backend
// eventually returns is discarded instead of appended.
package chat
