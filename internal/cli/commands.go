// Copyright (c) 2025 Conversa Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// commands.go - handlers for the non-TUI subcommands.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/conversa-io/conversa-tui/internal/api"
	"github.com/conversa-io/conversa-tui/internal/attach"
	"github.com/conversa-io/conversa-tui/internal/auth"
	"github.com/conversa-io/conversa-tui/internal/chat"
	"github.com/conversa-io/conversa-tui/internal/config"
)

// askTimeout bounds a one-shot question end to end.
const askTimeout = 5 * time.Minute

// =============================================================================
// ASK
// =============================================================================

// RunAsk sends a single question to the backend and prints the reply as
// rendered markdown. Attachments are staged with the same validation rules
// as the TUI.
func RunAsk(client *api.Client, args Args) int {
	if strings.TrimSpace(args.Query) == "" {
		fmt.Fprintln(os.Stderr, "usage: conversa ask \"question\" [-f FILE]")
		return ExitUsage
	}
	if client.Token() == "" {
		return Fatalf("not logged in; run 'conversa login' first")
	}

	result := attach.Validate(args.Files, 0)
	for _, rej := range result.Rejected {
		fmt.Fprintln(os.Stderr, errorStyle.Render("skipped:")+" "+rej.Message())
	}
	if len(args.Files) > 0 && len(result.Accepted) == 0 {
		return Fatalf("no usable attachments")
	}

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	controller := chat.NewController(client)
	sess := controller.NewConversation()

	res, err := controller.Submit(ctx, sess.ID, args.Query, result.Accepted)
	if err != nil {
		return Fatalf("%v", err)
	}
	if res.Outcome != chat.OutcomeSettled || res.Assistant == nil {
		detail := res.Detail
		if detail == "" && res.Err != nil {
			detail = res.Err.Error()
		}
		return Fatalf("the backend did not return a reply: %s", detail)
	}

	if args.JSON {
		out := map[string]any{
			"session_id": res.SessionID,
			"answer":     res.Assistant.Answer,
		}
		if res.Assistant.LinkFile != "" {
			out["link_file"] = res.Assistant.LinkFile
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return ExitOK
	}

	fmt.Println(renderMarkdownForTerminal(res.Assistant.Answer))
	if res.Assistant.LinkFile != "" && !args.Quiet {
		fmt.Println(labelStyle.Render("A document was generated; open the TUI and press d to save it."))
	}
	return ExitOK
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// RunLogin walks the browser login flow on the command line: print the URL,
// read the pasted code, exchange it and persist the token.
func RunLogin(client *api.Client, tokens *auth.TokenStore) int {
	fmt.Println(titleStyle.Render("conversa login"))
	fmt.Println()
	fmt.Println("Open this URL in your browser and sign in:")
	fmt.Println()
	fmt.Println("  " + urlStyle.Render(client.LoginURL()))
	fmt.Println()
	fmt.Print("Paste the login code: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return Fatalf("could not read the code: %v", err)
	}
	code := strings.TrimSpace(line)
	if code == "" {
		return Fatalf("no code entered")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	token, err := client.ExchangeToken(ctx, code)
	if err != nil {
		return Fatalf("login failed: %s", api.Detail(err))
	}
	if err := tokens.Save(token.AccessToken); err != nil {
		return Fatalf("could not store the token: %v", err)
	}
	client.SetToken(token.AccessToken)

	fmt.Println(successStyle.Render("Logged in.") + " Token stored at " + tokens.Path())
	return ExitOK
}

// RunLogout deletes the stored token.
func RunLogout(tokens *auth.TokenStore) int {
	if err := tokens.Clear(); err != nil {
		return Fatalf("could not remove the token: %v", err)
	}
	fmt.Println(successStyle.Render("Logged out."))
	return ExitOK
}

// =============================================================================
// SESSIONS
// =============================================================================

// RunSessions prints the conversation list.
func RunSessions(client *api.Client, args Args) int {
	if client.Token() == "" {
		return Fatalf("not logged in; run 'conversa login' first")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sessions, err := client.ListSessions(ctx)
	if err != nil {
		return Fatalf("could not list conversations: %s", api.Detail(err))
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(sessions)
		return ExitOK
	}

	if len(sessions) == 0 {
		fmt.Println(labelStyle.Render("no conversations"))
		return ExitOK
	}
	for _, s := range sessions {
		title := s.ConversationName
		if title == "" {
			title = "(untitled)"
		}
		fmt.Println(valueStyle.Render(title) + "  " + labelStyle.Render(s.ID))
	}
	return ExitOK
}

// =============================================================================
// CONFIG
// =============================================================================

// RunConfig handles config show/set/path.
func RunConfig(cfg *config.Config, args Args) int {
	switch args.Subcommand {
	case "", "show":
		return configShow(cfg, args)
	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return Fatalf("%v", err)
		}
		fmt.Println(path)
		return ExitOK
	case "set":
		return configSet(cfg, args)
	default:
		fmt.Fprintln(os.Stderr, "usage: conversa config [show|set KEY VALUE|path]")
		return ExitUsage
	}
}

func configShow(cfg *config.Config, args Args) int {
	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(cfg)
		return ExitOK
	}

	row := func(key, val string) {
		fmt.Println("  " + labelStyle.Render(fmt.Sprintf("%-22s", key)) + valueStyle.Render(val))
	}

	fmt.Println(titleStyle.Render("conversa configuration"))
	row("backend.base_url", cfg.Backend.BaseURL)
	row("backend.timeout_secs", fmt.Sprint(cfg.Backend.TimeoutSecs))
	row("backend.chat_timeout_secs", fmt.Sprint(cfg.Backend.ChatTimeoutSecs))
	row("backend.model", cfg.Backend.Model)
	row("ui.theme", cfg.UI.Theme)
	row("ui.compact_mode", fmt.Sprint(cfg.UI.CompactMode))
	row("ui.show_timestamps", fmt.Sprint(cfg.UI.ShowTimestamps))
	row("downloads.dir", cfg.Downloads.Dir)
	return ExitOK
}

func configSet(cfg *config.Config, args Args) int {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		fmt.Fprintln(os.Stderr, "usage: conversa config set KEY VALUE")
		return ExitUsage
	}

	if err := config.SetValue(cfg, args.ConfigKey, args.ConfigVal); err != nil {
		return Fatalf("%v", err)
	}
	if err := config.Save(cfg); err != nil {
		return Fatalf("could not save the config: %v", err)
	}
	fmt.Println(successStyle.Render("saved") + " " + args.ConfigKey + " = " + args.ConfigVal)
	return ExitOK
}

// =============================================================================
// STATUS / VERSION
// =============================================================================

// RunStatus reports backend reachability and login state.
func RunStatus(client *api.Client, tokens *auth.TokenStore) int {
	fmt.Println(titleStyle.Render("conversa status"))

	row := func(key, val string) {
		fmt.Println("  " + labelStyle.Render(fmt.Sprintf("%-10s", key)) + val)
	}

	row("backend", valueStyle.Render(client.BaseURL()))

	if client.Token() == "" {
		row("login", errorStyle.Render("logged out"))
		fmt.Println()
		fmt.Println(labelStyle.Render("run 'conversa login' to sign in"))
		return ExitOK
	}
	row("login", successStyle.Render("token present")+" "+labelStyle.Render("("+tokens.Path()+")"))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sessions, err := client.ListSessions(ctx)
	switch {
	case err == nil:
		row("reachable", successStyle.Render("yes")+labelStyle.Render(fmt.Sprintf(" (%d conversations)", len(sessions))))
	case api.IsAuth(err):
		row("reachable", errorStyle.Render("token rejected; run 'conversa login' again"))
	default:
		row("reachable", errorStyle.Render("no")+" "+labelStyle.Render(api.Detail(err)))
	}
	return ExitOK
}

// RunVersion prints version information.
func RunVersion() int {
	fmt.Printf("conversa %s\n", Version)
	fmt.Printf("  commit:  %s\n", GitCommit)
	fmt.Printf("  built:   %s\n", BuildDate)
	fmt.Printf("  runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return ExitOK
}
