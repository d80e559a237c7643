// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth manages the bearer token lifecycle.
//
// The token is the only piece of account state kept on disk. It lives in a
// single 0600 file under the config directory, written atomically so a
// crash mid-save never leaves a torn token behind. Logout is just deleting
// the file.
package auth

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/conversa-io/conversa-tui/internal/util"
)

// tokenFileName is the token file inside the config directory.
const tokenFileName = "token"

// =============================================================================
// TOKEN STORE
// =============================================================================

// TokenStore persists the bearer token across runs.
type TokenStore struct {
	path string
}

// NewTokenStore creates a store rooted at the given config directory.
func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{path: filepath.Join(dir, tokenFileName)}
}

// Path returns the token file location.
func (s *TokenStore) Path() string {
	return s.path
}

// Load reads the persisted token. A missing file means logged out and
// returns "" without error.
func (s *TokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token atomically with owner-only permissions.
func (s *TokenStore) Save(token string) error {
	return util.AtomicWriteFile(s.path, []byte(token+"\n"), 0o600)
}

// Clear removes the persisted token. Clearing an absent token is not an
// error: logout must always succeed.
func (s *TokenStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
