// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/baatcheet/baatcheet-cli/internal/app"
	"github.com/baatcheet/baatcheet-cli/internal/config"
	"golang.org/x/term"
)

// Version information (overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the top-level command to execute.
type Command int

const (
	CmdHelp Command = iota
	CmdVersion
	CmdLogin
	CmdSignup
	CmdVerify
	CmdResend
	CmdLogout
	CmdWhoami
	CmdPassword
	CmdChat
	CmdAsk
	CmdConversations
	CmdOpen
	CmdShare
	CmdUpload
	CmdImage
	CmdProjects
	CmdProfile
	CmdUsage
	CmdModes
	CmdFeedback
	CmdConfig
	CmdUnknown
)

var commandNames = map[string]Command{
	"help":          CmdHelp,
	"version":       CmdVersion,
	"login":         CmdLogin,
	"signin":        CmdLogin,
	"signup":        CmdSignup,
	"register":      CmdSignup,
	"verify":        CmdVerify,
	"resend":        CmdResend,
	"logout":        CmdLogout,
	"whoami":        CmdWhoami,
	"password":      CmdPassword,
	"chat":          CmdChat,
	"ask":           CmdAsk,
	"conversations": CmdConversations,
	"convs":         CmdConversations,
	"open":          CmdOpen,
	"share":         CmdShare,
	"upload":        CmdUpload,
	"image":         CmdImage,
	"projects":      CmdProjects,
	"project":       CmdProjects,
	"profile":       CmdProfile,
	"usage":         CmdUsage,
	"modes":         CmdModes,
	"feedback":      CmdFeedback,
	"config":        CmdConfig,
}

// NeedsApp reports whether the command talks to the backend or the
// credential store.
func (c Command) NeedsApp() bool {
	switch c {
	case CmdHelp, CmdVersion, CmdUnknown, CmdConfig:
		return false
	}
	return true
}

// Args holds the parsed command line.
type Args struct {
	JSON       bool
	Quiet      bool
	Verbose    bool
	ConfigPath string

	// Name is the command as typed.
	Name string
	// Raw holds the arguments after the command name.
	Raw []string
}

const usageText = `baatcheet - chat with the BaatCheet assistant from your terminal

Usage:
  baatcheet <command> [arguments] [flags]

Account:
  login [email]                   Sign in
  signup [email]                  Create an account (--first, --last)
  verify <code> [--email E]       Verify your email address
  resend [email]                  Resend the verification code
  logout                          Sign out and forget the stored token
  whoami                          Show the signed-in user
  password forgot <email>         Email a password reset code
  password reset <email> <code>   Set a new password with a reset code
  password change                 Change your password

Chat:
  chat [--mode M] [--project P] [--conversation ID]
                                  Interactive chat
  ask <message...> [--conversation ID] [--mode M]
                                  Send one message and print the reply
  conversations [list|search|rename|delete|pin|unpin|archive|unarchive]
                                  Manage conversations
  open <id|share-link>            Print a conversation transcript
  share <id>                      Publish a conversation and print its link
  upload <path> [--conversation ID] [--wait]
                                  Upload a file for analysis
  image <prompt...> [--style S] [--aspect R]
                                  Generate an image
  modes                           List AI modes
  usage                           Show quota usage

Projects:
  projects [list|show|create|delete|invite|invitations|accept|decline|leave]

Profile:
  profile [show|set|teach|facts|forget|avatar]

Other:
  feedback <message...> [--category C] [--rating N]
  config [show|get|set|path]
  version

Global flags:
  --json            Machine-readable output
  -v, --verbose     Debug logging to stderr
  -q, --quiet       Suppress informational output
  --config PATH     Use a specific config file

Environment:
  BAATCHEET_HOME            Config directory (default ~/.baatcheet)
  BAATCHEET_BASE_URL        Backend base URL
  BAATCHEET_PASSPHRASE      Credential store passphrase
  NO_COLOR                  Disable colors
`

// Parse splits argv (without the program name) into the command and its
// arguments. Global flags are accepted anywhere on the line.
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdHelp, args
	}

	args.Name = remaining[0]
	args.Raw = remaining[1:]

	switch args.Name {
	case "-h", "--help":
		return CmdHelp, args
	case "--version":
		return CmdVersion, args
	}

	cmd, ok := commandNames[strings.ToLower(args.Name)]
	if !ok {
		return CmdUnknown, args
	}
	return cmd, args
}

func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--json":
			parsed.JSON = true
		case arg == "-q" || arg == "--quiet":
			parsed.Quiet = true
		case arg == "-v" || arg == "--verbose":
			parsed.Verbose = true
		case arg == "--config":
			if i+1 < len(argv) {
				i++
				parsed.ConfigPath = argv[i]
			}
		case strings.HasPrefix(arg, "--config="):
			parsed.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, parsed
}

// =============================================================================
// RUNNER
// =============================================================================

// Runner executes commands against an App. Out receives command output;
// Err receives prompts, hints and errors.
type Runner struct {
	App    *app.App
	Config *config.Config
	Out    io.Writer
	Err    io.Writer
	JSON   bool
	Quiet  bool

	// ReadPassword reads a secret without echo. Defaults to the terminal.
	ReadPassword func(prompt string) (string, error)

	in         *bufio.Reader
	stdin      bool
	configPath string
}

// NewRunner creates a runner on the process's standard streams.
// a may be nil for commands where NeedsApp is false.
func NewRunner(a *app.App, cfg *config.Config, args Args) *Runner {
	r := &Runner{
		App:    a,
		Config: cfg,
		Out:    os.Stdout,
		Err:    os.Stderr,
		JSON:   args.JSON,
		Quiet:  args.Quiet,
		in:     bufio.NewReader(os.Stdin),
		stdin:  true,
	}
	r.configPath = args.ConfigPath
	r.ReadPassword = r.terminalPassword
	return r
}

// SetInput replaces the reader used for prompts.
func (r *Runner) SetInput(in io.Reader) {
	r.in = bufio.NewReader(in)
	r.stdin = false
}

// Run executes cmd.
func (r *Runner) Run(ctx context.Context, cmd Command, args Args) error {
	if cmd.NeedsApp() && r.App == nil {
		return errors.New("internal error: command needs an initialized app")
	}

	switch cmd {
	case CmdHelp:
		fmt.Fprint(r.Out, usageText)
		return nil
	case CmdVersion:
		return r.runVersion()
	case CmdLogin:
		return r.runLogin(ctx, args.Raw)
	case CmdSignup:
		return r.runSignup(ctx, args.Raw)
	case CmdVerify:
		return r.runVerify(ctx, args.Raw)
	case CmdResend:
		return r.runResend(ctx, args.Raw)
	case CmdLogout:
		return r.runLogout(ctx)
	case CmdWhoami:
		return r.runWhoami(ctx)
	case CmdPassword:
		return r.runPassword(ctx, args.Raw)
	case CmdChat:
		return r.runChat(ctx, args.Raw)
	case CmdAsk:
		return r.runAsk(ctx, args.Raw)
	case CmdConversations:
		return r.runConversations(ctx, args.Raw)
	case CmdOpen:
		return r.runOpen(ctx, args.Raw)
	case CmdShare:
		return r.runShare(ctx, args.Raw)
	case CmdUpload:
		return r.runUpload(ctx, args.Raw)
	case CmdImage:
		return r.runImage(ctx, args.Raw)
	case CmdProjects:
		return r.runProjects(ctx, args.Raw)
	case CmdProfile:
		return r.runProfile(ctx, args.Raw)
	case CmdUsage:
		return r.runUsage(ctx)
	case CmdModes:
		return r.runModes(ctx)
	case CmdFeedback:
		return r.runFeedback(ctx, args.Raw)
	case CmdConfig:
		return r.runConfig(args.Raw)
	default:
		reason := "unknown command; run 'baatcheet help'"
		if s := SuggestCommand(args.Name); s != "" {
			reason = fmt.Sprintf("unknown command; did you mean '%s'?", s)
		}
		return NewValidationError("command", args.Name, reason)
	}
}

func (r *Runner) runVersion() error {
	data := VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
	if r.JSON {
		return NewJSONResponse("version", data).Print(r.Out)
	}
	fmt.Fprintf(r.Out, "baatcheet %s\n", Version)
	fmt.Fprintf(r.Out, "  Commit:  %s\n", GitCommit)
	fmt.Fprintf(r.Out, "  Built:   %s\n", BuildDate)
	fmt.Fprintf(r.Out, "  Go:      %s\n", data.GoVersion)
	return nil
}

// =============================================================================
// OUTPUT AND PROMPT HELPERS
// =============================================================================

// emit prints data as a JSON envelope, or calls human in text mode.
func (r *Runner) emit(command string, data interface{}, human func()) error {
	if r.JSON {
		return NewJSONResponse(command, data).Print(r.Out)
	}
	human()
	return nil
}

// info prints a hint to Err unless quiet or in JSON mode.
func (r *Runner) info(format string, a ...interface{}) {
	if r.Quiet || r.JSON {
		return
	}
	fmt.Fprintf(r.Err, format, a...)
}

// prompt reads one line after printing label to Err.
func (r *Runner) prompt(label string) (string, error) {
	fmt.Fprint(r.Err, label)
	line, err := r.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimSpace(line), nil
}

// terminalPassword reads without echo on a terminal and falls back to a
// plain line read when stdin is piped.
func (r *Runner) terminalPassword(label string) (string, error) {
	if !IsTTY() {
		return r.prompt(label)
	}
	fmt.Fprint(r.Err, label)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(r.Err)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}

// requireSignedIn fails fast when no token is stored.
func (r *Runner) requireSignedIn() error {
	if !r.App.Auth.IsAuthenticated() {
		return ErrNotSignedIn
	}
	return nil
}
