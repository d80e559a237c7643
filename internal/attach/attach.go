// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attach validates files before they are staged for upload.
//
// Validation happens client-side so the user hears about a bad file
// immediately instead of after a round-trip: only PDF and Word documents
// are accepted, at most MaxFiles per message, and each file must exist and
// fit under the size cap. Acceptance is partial: good files are staged even
// when others in the same batch are rejected.
package attach

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/conversa-io/conversa-tui/internal/model"
)

// =============================================================================
// LIMITS
// =============================================================================

// MaxFiles is the most attachments one message may carry.
const MaxFiles = 10

// MaxFileSize is the per-file size cap in bytes.
const MaxFileSize = 25 << 20 // 25 MiB

// allowedExtensions mirrors the backend's allowlist. Checked here so a
// disallowed file never leaves the machine.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// =============================================================================
// REJECTION
// =============================================================================

// RejectReason classifies why a file was refused.
type RejectReason int

const (
	ReasonExtension RejectReason = iota
	ReasonTooLarge
	ReasonUnreadable
	ReasonNotRegular
	ReasonLimit
)

// Rejection describes one refused file.
type Rejection struct {
	Path   string
	Name   string
	Reason RejectReason
}

// Message returns the user-facing explanation for the rejection.
func (r Rejection) Message() string {
	switch r.Reason {
	case ReasonExtension:
		return r.Name + ": only PDF and Word files (.pdf, .doc, .docx) are accepted"
	case ReasonTooLarge:
		return r.Name + ": file exceeds the 25 MB limit"
	case ReasonUnreadable:
		return r.Name + ": file cannot be read"
	case ReasonNotRegular:
		return r.Name + ": not a regular file"
	case ReasonLimit:
		return r.Name + ": at most 10 files per message"
	default:
		return r.Name + ": rejected"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Result holds the outcome of a staging attempt.
type Result struct {
	Accepted []model.Attachment
	Rejected []Rejection
}

// Validate checks candidate paths against the allowlist, the size cap and
// the per-message limit. alreadyStaged counts files staged earlier for the
// same message, so repeated picks cannot overshoot MaxFiles. Order is
// preserved; once the limit is hit every remaining candidate is rejected.
func Validate(paths []string, alreadyStaged int) Result {
	var res Result
	room := MaxFiles - alreadyStaged
	if room < 0 {
		room = 0
	}

	for _, path := range paths {
		name := filepath.Base(path)

		ext := strings.ToLower(filepath.Ext(name))
		if !allowedExtensions[ext] {
			res.Rejected = append(res.Rejected, Rejection{Path: path, Name: name, Reason: ReasonExtension})
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejection{Path: path, Name: name, Reason: ReasonUnreadable})
			continue
		}
		if !info.Mode().IsRegular() {
			res.Rejected = append(res.Rejected, Rejection{Path: path, Name: name, Reason: ReasonNotRegular})
			continue
		}
		if info.Size() > MaxFileSize {
			res.Rejected = append(res.Rejected, Rejection{Path: path, Name: name, Reason: ReasonTooLarge})
			continue
		}

		if len(res.Accepted) >= room {
			res.Rejected = append(res.Rejected, Rejection{Path: path, Name: name, Reason: ReasonLimit})
			continue
		}
		res.Accepted = append(res.Accepted, model.NewLocalAttachment(path, info.Size()))
	}
	return res
}
