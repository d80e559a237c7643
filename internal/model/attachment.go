// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"path/filepath"
	"strings"
)

// =============================================================================
// ATTACHMENT TYPE
// =============================================================================

// AttachmentKind discriminates the two shapes an attachment can take.
type AttachmentKind int

const (
	// AttachmentLocal is a file staged from the local filesystem, about to
	// be uploaded with a message.
	AttachmentLocal AttachmentKind = iota
	// AttachmentRemote is a name-only reference loaded from conversation
	// history; the bytes live on the backend.
	AttachmentRemote
)

// Attachment is a tagged union over a freshly staged local file and a
// remote reference from history. Exactly one of the two shapes is valid:
// local attachments have a Path, remote references do not.
type Attachment struct {
	Kind AttachmentKind `json:"kind"`

	// Name is the display file name. Always set.
	Name string `json:"name"`

	// Path is the absolute local path. Set only for AttachmentLocal.
	Path string `json:"path,omitempty"`

	// Size in bytes. Set only for AttachmentLocal.
	Size int64 `json:"size,omitempty"`
}

// NewLocalAttachment builds a local attachment from a filesystem path.
func NewLocalAttachment(path string, size int64) Attachment {
	return Attachment{
		Kind: AttachmentLocal,
		Name: filepath.Base(path),
		Path: path,
		Size: size,
	}
}

// NewRemoteAttachment builds a reference to a file stored on the backend.
func NewRemoteAttachment(name string) Attachment {
	return Attachment{
		Kind: AttachmentRemote,
		Name: name,
	}
}

// IsLocal reports whether the attachment is a staged local file.
func (a Attachment) IsLocal() bool {
	return a.Kind == AttachmentLocal
}

// Ext returns the lowercase file extension, including the dot.
func (a Attachment) Ext() string {
	return strings.ToLower(filepath.Ext(a.Name))
}
