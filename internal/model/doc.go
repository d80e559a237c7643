// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the client:
// sessions, messages, attachments, and votes.
//
// A Session is conversation metadata only (id, title, creation time).
// Message bodies live in the message store (internal/store), keyed by the
// same session id; there is no object reference between the two.
//
// Session ids come in two flavors. Server-issued ids are opaque strings
// owned by the backend. Before the first message of a new conversation has
// round-tripped, the client uses a locally generated placeholder id carrying
// the reserved "local-" prefix; the placeholder is swapped for the real id
// ("promotion") once the backend acknowledges the conversation.
package model
