// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/baatcheet/baatcheet-cli/internal/api"
	"github.com/baatcheet/baatcheet-cli/internal/config"
	"github.com/baatcheet/baatcheet-cli/internal/model"
	"github.com/baatcheet/baatcheet-cli/internal/repository"
	"github.com/baatcheet/baatcheet-cli/internal/session"
	"github.com/mattn/go-runewidth"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		bools    []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"list"},
			wantSub: "list",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"list", "--limit", "50"},
			wantSub: "list",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("limit") != "50" {
					t.Errorf("Flag(limit) = %q, want %q", p.Flag("limit"), "50")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"invite", "--role=viewer"},
			wantSub: "invite",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("role") != "viewer" {
					t.Errorf("Flag(role) = %q, want %q", p.Flag("role"), "viewer")
				}
			},
		},
		{
			name:    "trailing boolean flag",
			args:    []string{"list", "--pinned"},
			wantSub: "list",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("pinned") {
					t.Error("BoolFlag(pinned) should be true")
				}
			},
		},
		{
			name:    "declared boolean does not swallow positional",
			args:    []string{"delete", "--yes", "c42"},
			bools:   []string{"yes"},
			wantSub: "delete",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("yes") {
					t.Error("BoolFlag(yes) should be true")
				}
				if p.Positional(1) != "c42" {
					t.Errorf("Positional(1) = %q, want %q", p.Positional(1), "c42")
				}
			},
		},
		{
			name:    "multiple positional args",
			args:    []string{"search", "golang", "channels", "tutorial"},
			wantSub: "search",
			validate: func(t *testing.T, p *ArgParser) {
				if p.PositionalCount() != 4 {
					t.Errorf("PositionalCount() = %d, want 4", p.PositionalCount())
				}
				if got := JoinPositionalArgs(p, 1); got != "golang channels tutorial" {
					t.Errorf("JoinPositionalArgs(1) = %q", got)
				}
			},
		},
		{
			name:    "double dash ends flags",
			args:    []string{"what", "--", "--is", "this"},
			wantSub: "what",
			validate: func(t *testing.T, p *ArgParser) {
				if got := JoinPositionalArgs(p, 0); got != "what --is this" {
					t.Errorf("JoinPositionalArgs(0) = %q", got)
				}
			},
		},
		{
			name:    "short flag alias",
			args:    []string{"hello", "-c", "c1"},
			wantSub: "hello",
			validate: func(t *testing.T, p *ArgParser) {
				if got := p.FirstFlag("conversation", "c"); got != "c1" {
					t.Errorf("FirstFlag = %q, want c1", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args, tt.bools...)
			if parser.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", parser.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, parser)
			}
		})
	}
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		defaultVal int
		want       int
	}{
		{"flag present", []string{"list", "--page", "3"}, 1, 3},
		{"flag missing uses default", []string{"list"}, 1, 1},
		{"invalid int uses default", []string{"list", "--page", "abc"}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewArgParser(tt.args).FlagIntOrDefault("page", tt.defaultVal)
			if got != tt.want {
				t.Errorf("FlagIntOrDefault(page, %d) = %d, want %d", tt.defaultVal, got, tt.want)
			}
		})
	}
}

func TestArgParser_HasFlag(t *testing.T) {
	parser := NewArgParser([]string{"set", "--bio", "--occupation", "engineer"})

	if !parser.HasFlag("bio") {
		t.Error("HasFlag(bio) should be true")
	}
	if !parser.HasFlag("occupation") {
		t.Error("HasFlag(occupation) should be true")
	}
	if parser.HasFlag("interests") {
		t.Error("HasFlag(interests) should be false")
	}
}

func TestParseBoolString(t *testing.T) {
	for _, v := range []string{"true", "YES", "y", "1", "on"} {
		got, err := ParseBoolString(v)
		if err != nil || !got {
			t.Errorf("ParseBoolString(%q) = %v, %v; want true", v, got, err)
		}
	}
	for _, v := range []string{"false", "No", "n", "0", "off"} {
		got, err := ParseBoolString(v)
		if err != nil || got {
			t.Errorf("ParseBoolString(%q) = %v, %v; want false", v, got, err)
		}
	}
	if _, err := ParseBoolString("maybe"); err == nil {
		t.Error("ParseBoolString(maybe) should error")
	}
}

func TestParseIntWithValidation(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{"1", 1, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseIntWithValidation(tt.input, "count")
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseIntWithValidation(%q) = %d, %v", tt.input, got, err)
		}
	}
}

// =============================================================================
// COMMAND LINE PARSING TESTS (cli.go)
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		wantCmd  Command
		wantRaw  []string
		wantJSON bool
		wantCfg  string
	}{
		{"no args shows help", nil, CmdHelp, nil, false, ""},
		{"help flag", []string{"--help"}, CmdHelp, []string{}, false, ""},
		{"version flag", []string{"--version"}, CmdVersion, []string{}, false, ""},
		{"login with email", []string{"login", "a@b.co"}, CmdLogin, []string{"a@b.co"}, false, ""},
		{"alias", []string{"signin"}, CmdLogin, []string{}, false, ""},
		{"case insensitive", []string{"WHOAMI"}, CmdWhoami, []string{}, false, ""},
		{"global flags anywhere", []string{"conversations", "--json", "list"}, CmdConversations, []string{"list"}, true, ""},
		{"config path", []string{"--config", "/tmp/c.yaml", "usage"}, CmdUsage, []string{}, false, "/tmp/c.yaml"},
		{"config equals", []string{"modes", "--config=x.toml"}, CmdModes, []string{}, false, "x.toml"},
		{"unknown", []string{"frobnicate"}, CmdUnknown, []string{}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := Parse(tt.argv)
			if cmd != tt.wantCmd {
				t.Errorf("command = %v, want %v", cmd, tt.wantCmd)
			}
			if strings.Join(args.Raw, " ") != strings.Join(tt.wantRaw, " ") {
				t.Errorf("Raw = %q, want %q", args.Raw, tt.wantRaw)
			}
			if args.JSON != tt.wantJSON {
				t.Errorf("JSON = %v, want %v", args.JSON, tt.wantJSON)
			}
			if args.ConfigPath != tt.wantCfg {
				t.Errorf("ConfigPath = %q, want %q", args.ConfigPath, tt.wantCfg)
			}
		})
	}
}

func TestCommand_NeedsApp(t *testing.T) {
	for _, c := range []Command{CmdHelp, CmdVersion, CmdConfig, CmdUnknown} {
		if c.NeedsApp() {
			t.Errorf("%v should not need the app", c)
		}
	}
	for _, c := range []Command{CmdLogin, CmdChat, CmdAsk, CmdProjects} {
		if !c.NeedsApp() {
			t.Errorf("%v should need the app", c)
		}
	}
}

// =============================================================================
// EXIT CODE TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitGeneralError},
		{"usage", ErrMissingArgument("id", "x"), ExitUsageError},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), ExitTimeoutError},
		{"config", config.ValidateErrors{{Field: "api.base_url", Message: "required"}}, ExitConfigError},
		{"not signed in", ErrNotSignedIn, ExitAuthError},
		{"refused transition", &session.TransitionError{Op: "sign in", From: session.StateLoading}, ExitUsageError},
		{"network", &api.Error{Kind: api.KindNetwork, Err: errors.New("dial tcp")}, ExitNetworkError},
		{"session expired", &repository.ChatError{Code: repository.ChatServerError, Err: &api.Error{Kind: api.KindUnauthorized, Status: 401}}, ExitAuthError},
		{"bad credentials", &repository.AuthError{Code: repository.AuthInvalidCredentials}, ExitAuthError},
		{"auth unknown", &repository.AuthError{Code: repository.AuthUnknown}, ExitNetworkError},
		{"auth server", &repository.AuthError{Code: repository.AuthServerError}, ExitGeneralError},
		{"conversation missing", &repository.ChatError{Code: repository.ChatConversationNotFound}, ExitNotFoundError},
		{"project denied", &repository.ProjectError{Code: repository.ProjectPermissionDenied}, ExitAuthError},
		{"empty message", &repository.ChatError{Code: repository.ChatEmptyMessage}, ExitUsageError},
		{"wrapped", WrapError(&repository.ProjectError{Code: repository.ProjectNotFound}, "open"), ExitNotFoundError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestDisplayErrorJSON(t *testing.T) {
	var b strings.Builder
	DisplayErrorJSON(&b, &repository.AuthError{Code: repository.AuthEmailNotVerified, Message: "verify first"})
	out := b.String()
	for _, want := range []string{`"error_type": "auth_error"`, `"code": "EmailNotVerified"`, `"exit_code": 4`, `"success": false`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

// =============================================================================
// RENDERING TESTS
// =============================================================================

func TestWrapText_WideCharacters(t *testing.T) {
	text := strings.Repeat("नमस्ते दुनिया ", 10) + strings.Repeat("你好世界 ", 10)
	for _, line := range strings.Split(WrapText(text, 30), "\n") {
		if w := runewidth.StringWidth(line); w > 28 {
			t.Errorf("line %q is %d columns wide", line, w)
		}
	}
}

func TestWrapText_KeepsNewlines(t *testing.T) {
	if got := WrapText("a\nb", 80); got != "a\nb" {
		t.Errorf("WrapText = %q", got)
	}
}

func TestFormatConversationRow_AlignsWideTitles(t *testing.T) {
	ForceColorsEnabled(false)
	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.Local)
	rows := []model.Conversation{
		{ID: "c1", Title: "Plain title", MessageCount: 3, UpdatedAt: &at},
		{ID: "c2", Title: strings.Repeat("日本語のタイトル", 10), MessageCount: 12, IsPinned: true, UpdatedAt: &at},
	}
	var widths []int
	for _, c := range rows {
		line := formatConversationRow(c)
		widths = append(widths, runewidth.StringWidth(line))
	}
	if widths[0] != widths[1] {
		t.Errorf("row widths differ: %v", widths)
	}
}

func TestIsShareLink(t *testing.T) {
	tests := map[string]bool{
		"https://baatcheet.app/share/abc": true,
		"baatcheet://share/abc":           true,
		"share/abc":                       true,
		"c-123":                           false,
	}
	for in, want := range tests {
		if got := isShareLink(in); got != want {
			t.Errorf("isShareLink(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestUploadStatusName(t *testing.T) {
	tests := []struct {
		status model.FileUploadStatus
		want   string
	}{
		{model.UploadPending{}, "pending"},
		{model.UploadProcessing{}, "processing"},
		{model.UploadCompleted{URL: "u"}, "completed"},
		{model.UploadFailed{Reason: "x"}, "failed"},
		{nil, "unknown"},
	}
	for _, tt := range tests {
		if got := uploadStatusName(tt.status); got != tt.want {
			t.Errorf("uploadStatusName(%T) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

// =============================================================================
// SUGGESTION AND FORMATTING TESTS
// =============================================================================

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"lgoin", "login"},
		{"whomai", "whoami"},
		{"conversatons", "conversations"},
		{"projcts", "projects"},
		{"help", ""},
		{"x", ""},
		{"frobnicate", ""},
	}
	for _, tt := range tests {
		if got := SuggestCommand(tt.input); got != tt.want {
			t.Errorf("SuggestCommand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"chat", "chat", 0},
		{"नमस्ते", "नमस्कार", 3},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatBytes(512); got != "512 bytes" {
		t.Errorf("formatBytes(512) = %q", got)
	}
	if got := formatBytes(3 * 1024 * 1024); got != "3.00 MB" {
		t.Errorf("formatBytes(3MB) = %q", got)
	}
	if got := formatDuration(90 * time.Minute); got != "1h" {
		t.Errorf("formatDuration(90m) = %q", got)
	}
	if got := formatDuration(-time.Second); got != "0s" {
		t.Errorf("formatDuration(-1s) = %q", got)
	}
	if got := formatDurationShort(1500 * time.Millisecond); got != "1.5s" {
		t.Errorf("formatDurationShort(1.5s) = %q", got)
	}
}

func TestRun_UnknownCommandSuggests(t *testing.T) {
	r := NewRunner(nil, nil, Args{})
	cmd, args := Parse([]string{"whomai"})
	err := r.Run(context.Background(), cmd, args)
	if GetExitCode(err) != ExitUsageError {
		t.Fatalf("exit code = %d, want %d", GetExitCode(err), ExitUsageError)
	}
	if !strings.Contains(err.Error(), "did you mean 'whoami'") {
		t.Errorf("error = %q", err)
	}
}
