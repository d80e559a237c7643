// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDefaultsToTUI(t *testing.T) {
	cmd, _ := Parse(nil)
	assert.Equal(t, CmdTUI, cmd)
}

func TestParseAsk(t *testing.T) {
	cmd, args := Parse([]string{"ask", "what", "is", "the", "deadline?"})
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "what is the deadline?", args.Query)
}

func TestParseAskWithFiles(t *testing.T) {
	cmd, args := Parse([]string{"ask", "-f", "a.pdf", "--file=b.docx", "summarize"})
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "summarize", args.Query)
	assert.Equal(t, []string{"a.pdf", "b.docx"}, args.Files)
}

func TestParseConfigSet(t *testing.T) {
	cmd, args := Parse([]string{"config", "set", "ui.theme", "light"})
	assert.Equal(t, CmdConfig, cmd)
	assert.Equal(t, "set", args.Subcommand)
	assert.Equal(t, "ui.theme", args.ConfigKey)
	assert.Equal(t, "light", args.ConfigVal)
}

func TestParseGlobalFlags(t *testing.T) {
	cmd, args := Parse([]string{"sessions", "--json", "-q"})
	assert.Equal(t, CmdSessions, cmd)
	assert.True(t, args.JSON)
	assert.True(t, args.Quiet)
}

func TestParseHelpAndVersion(t *testing.T) {
	cmd, _ := Parse([]string{"--help"})
	assert.Equal(t, CmdHelp, cmd)

	cmd, _ = Parse([]string{"version"})
	assert.Equal(t, CmdVersion, cmd)
}
