// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversation transcripts to local files.
// Supported formats: Markdown and JSON.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conversa-io/conversa-tui/internal/model"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a conversation to an output format.
type Exporter interface {
	// Export renders the transcript and returns the file content.
	Export(sess model.Session, msgs []*model.Message) ([]byte, error)

	// FileExtension returns the output extension (e.g. ".md").
	FileExtension() string
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files are saved (default ".").
	OutputDir string

	// IncludeMetadata adds a header with title, dates and message count.
	IncludeMetadata bool

	// IncludeTimestamps adds per-message timestamps.
	IncludeTimestamps bool
}

// DefaultOptions returns the default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

// ForFormat returns the exporter for a format name ("md", "markdown",
// "json").
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "", "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want md or json)", format)
	}
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// ToFile renders the transcript and writes it next to a timestamped,
// sanitized filename. Returns the output path.
func ToFile(sess model.Session, msgs []*model.Message, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(msgs) == 0 {
		return "", fmt.Errorf("conversation has no messages")
	}

	content, err := exporter.Export(sess, msgs)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("conversation_%s_%s%s",
		sanitizeFilename(sess.DisplayTitle()),
		timestamp,
		exporter.FileExtension(),
	)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// sanitizeFilename keeps a short, filesystem-safe slug of the title.
func sanitizeFilename(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteRune('_')
		}
	}
	slug := strings.Trim(sb.String(), "_")
	if slug == "" {
		slug = "untitled"
	}
	if len(slug) > 40 {
		slug = slug[:40]
	}
	return slug
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
