// conversa TUI - a terminal client for the Conversa chat backend.
//
// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/conversa-io/conversa-tui/internal/api"
	"github.com/conversa-io/conversa-tui/internal/auth"
	"github.com/conversa-io/conversa-tui/internal/chat"
	"github.com/conversa-io/conversa-tui/internal/cli"
	"github.com/conversa-io/conversa-tui/internal/config"
	uichat "github.com/conversa-io/conversa-tui/internal/ui/chat"
	"github.com/conversa-io/conversa-tui/internal/ui/styles"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference so the controller's logout hook, which fires on
// a request goroutine, can message the UI.
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	dir, err := config.ConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	tokens := auth.NewTokenStore(dir)

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:     cfg.Backend.BaseURL,
		Timeout:     time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
		ChatTimeout: time.Duration(cfg.Backend.ChatTimeoutSecs) * time.Second,
	})
	if token, err := tokens.Load(); err == nil && token != "" {
		client.SetToken(token)
	}

	switch cmd {
	case cli.CmdTUI:
		runTUI(cfg, client, tokens)
	case cli.CmdAsk:
		os.Exit(cli.RunAsk(client, args))
	case cli.CmdLogin:
		os.Exit(cli.RunLogin(client, tokens))
	case cli.CmdLogout:
		os.Exit(cli.RunLogout(tokens))
	case cli.CmdSessions:
		os.Exit(cli.RunSessions(client, args))
	case cli.CmdConfig:
		os.Exit(cli.RunConfig(cfg, args))
	case cli.CmdStatus:
		os.Exit(cli.RunStatus(client, tokens))
	case cli.CmdVersion:
		os.Exit(cli.RunVersion())
	case cli.CmdHelp:
		cli.Usage()
	default:
		cli.Usage()
		os.Exit(cli.ExitUsage)
	}
}

// runTUI wires the controller, theme and config watcher and runs the
// Bubble Tea program until exit.
func runTUI(cfg *config.Config, client *api.Client, tokens *auth.TokenStore) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "conversa needs a terminal; use 'conversa ask' for scripted use")
		os.Exit(1)
	}

	theme := styles.NewTheme(styles.Mode(cfg.UI.Theme))

	controller := chat.NewController(client)
	controller.SetLogoutHook(func() {
		programMu.Lock()
		p := programRef
		programMu.Unlock()
		if p != nil {
			p.Send(uichat.LoggedOutMsg{Expired: true})
		}
	})

	m := uichat.New(theme, controller, client, tokens, cfg, client.Token() != "")

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Apply config file edits to the running session.
	if path, err := config.ConfigPath(); err == nil {
		watcher, werr := config.NewWatcher(path, func(updated *config.Config) {
			programMu.Lock()
			ref := programRef
			programMu.Unlock()
			if ref != nil {
				ref.Send(uichat.ConfigReloadedMsg{Cfg: updated})
			}
		})
		if werr == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
