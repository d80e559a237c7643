// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides argument parsing and the non-TUI command handlers:
// one-shot questions, login/logout, config inspection and diagnostics.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdLogin
	CmdLogout
	CmdSessions
	CmdConfig
	CmdStatus
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool

	// Command-specific
	Query      string
	Files      []string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `conversa - terminal client for the Conversa chat backend

Usage:
  conversa                     Start the TUI (default)
  conversa ask "question"      Ask a single question and print the reply
  conversa login               Log in and store the access token
  conversa logout              Forget the stored token
  conversa sessions            List conversations
  conversa config [show|set|path]  Configuration
  conversa status              Check backend connectivity and login state
  conversa version             Print version information

Flags:
  -f, --file FILE    Attach a PDF or Word document (ask; repeatable)
  --json             Machine-readable output where supported
  -q, --quiet        Minimal output
  -v, --verbose      Verbose output
  -h, --help         Show this help

Examples:
  conversa ask "Summarize the attached contract" -f contract.pdf
  conversa config set ui.theme light
  conversa sessions --json
`

// Usage prints the top-level help text.
func Usage() {
	fmt.Print(usageText)
}

// Parse parses os.Args-style arguments into a command and its options.
func Parse(argv []string) (Command, Args) {
	args := Args{}

	if len(argv) == 0 {
		return CmdTUI, args
	}

	cmd := CmdTUI
	rest := argv

	switch argv[0] {
	case "ask":
		cmd = CmdAsk
		rest = argv[1:]
	case "login":
		cmd = CmdLogin
		rest = argv[1:]
	case "logout":
		cmd = CmdLogout
		rest = argv[1:]
	case "sessions", "ls":
		cmd = CmdSessions
		rest = argv[1:]
	case "config":
		cmd = CmdConfig
		rest = argv[1:]
	case "status", "s":
		cmd = CmdStatus
		rest = argv[1:]
	case "version", "--version", "-V":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	}

	var positional []string
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		switch {
		case arg == "--json":
			args.JSON = true
		case arg == "-q" || arg == "--quiet":
			args.Quiet = true
		case arg == "-v" || arg == "--verbose":
			args.Verbose = true
		case arg == "-h" || arg == "--help":
			return CmdHelp, args
		case arg == "-f" || arg == "--file":
			if i+1 < len(rest) {
				i++
				args.Files = append(args.Files, rest[i])
			}
		case strings.HasPrefix(arg, "--file="):
			args.Files = append(args.Files, strings.TrimPrefix(arg, "--file="))
		case strings.HasPrefix(arg, "-"):
			// Unknown flags are kept for the handler to reject.
			args.Raw = append(args.Raw, arg)
		default:
			positional = append(positional, arg)
		}
	}

	switch cmd {
	case CmdAsk:
		args.Query = strings.Join(positional, " ")
	case CmdConfig:
		if len(positional) > 0 {
			args.Subcommand = positional[0]
		}
		if len(positional) > 1 {
			args.ConfigKey = positional[1]
		}
		if len(positional) > 2 {
			args.ConfigVal = strings.Join(positional[2:], " ")
		}
	default:
		args.Raw = append(args.Raw, positional...)
	}

	return cmd, args
}

// Exit codes used by the command handlers.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Fatalf prints an error line to stderr and returns ExitError for main to
// pass to os.Exit.
func Fatalf(format string, v ...any) int {
	fmt.Fprintf(os.Stderr, errorStyle.Render("error:")+" "+format+"\n", v...)
	return ExitError
}
