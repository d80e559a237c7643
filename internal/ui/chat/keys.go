// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the Bubble Tea chat view.
//
// This file defines keyboard bindings for the chat interface: vim-like
// transcript navigation in normal mode, message actions (edit, regenerate,
// vote, yank, download), and the sidebar keys.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Home       key.Binding
	End        key.Binding
	Insert     key.Binding
	Submit     key.Binding
	Stop       key.Binding
	NewChat    key.Binding
	Sidebar    key.Binding
	Edit       key.Binding
	Regenerate key.Binding
	VoteUp     key.Binding
	VoteDown   key.Binding
	Yank       key.Binding
	Download   key.Binding
	Delete     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("Home/g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("End/G", "go to bottom"),
		),
		Insert: key.NewBinding(
			key.WithKeys("i", "a"),
			key.WithHelp("i", "write a message"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Stop: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("Esc/C-c", "stop generation"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("n", "ctrl+n"),
			key.WithHelp("n", "new conversation"),
		),
		Sidebar: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "focus sidebar"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit last message"),
		),
		Regenerate: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "regenerate reply"),
		),
		VoteUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "vote reply up"),
		),
		VoteDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "vote reply down"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy reply"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download document"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete conversation"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "q"),
			key.WithHelp("q/C-q", "quit"),
		),
	}
}

// ShortHelp returns the key bindings for the status bar hint line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Insert, k.NewChat, k.Sidebar, k.Help, k.Quit}
}

// FullHelp returns the key bindings for the help overlay, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Insert, k.Submit, k.Stop},
		{k.Edit, k.Regenerate, k.VoteUp, k.VoteDown, k.Yank, k.Download},
		{k.NewChat, k.Sidebar, k.Delete, k.Help, k.Quit},
	}
}
