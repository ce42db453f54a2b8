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
	"os/signal"
	"strings"
	"time"

	"github.com/baatcheet/baatcheet-cli/internal/model"
	"github.com/baatcheet/baatcheet-cli/internal/session"
	"github.com/baatcheet/baatcheet-cli/internal/util"
	"github.com/peterh/liner"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// lineReader is the REPL input source.
type lineReader interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor that loads and saves historyFile.
// An empty historyFile disables persistence.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{line: line, historyFile: historyFile}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from disk.
func (c *ChatCLI) LoadHistory() {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line, adding it to history when non-empty.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory writes history owner-only.
func (c *ChatCLI) SaveHistory() {
	if c.historyFile == "" {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// plainReader reads lines from a pipe. It is used when stdin is not a
// terminal, where liner cannot edit lines.
type plainReader struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *plainReader) ReadInput(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *plainReader) Close() {}

func (r *Runner) lineReader() lineReader {
	if r.stdin && IsTTY() {
		return NewChatCLI(r.historyFile())
	}
	return &plainReader{in: r.in, out: r.Err}
}

func (r *Runner) historyFile() string {
	if r.App != nil && r.App.Config != nil {
		return r.App.Config.Chat.HistoryFile
	}
	return ""
}

// =============================================================================
// CHAT REPL
// =============================================================================

type chatSession struct {
	r       *Runner
	thread  *session.ChatThread
	mode    string
	sent    int
	started time.Time
}

func (r *Runner) runChat(ctx context.Context, raw []string) error {
	if err := r.requireSignedIn(); err != nil {
		return err
	}
	p := NewArgParser(raw)

	s := &chatSession{r: r, thread: r.App.NewThread(), mode: r.App.Config.Chat.DefaultMode, started: time.Now()}
	if m := p.FirstFlag("mode", "m"); m != "" {
		s.setMode(m)
	}
	if proj := p.FirstFlag("project", "p"); proj != "" {
		s.thread.SetProject(proj)
	}
	if id := p.FirstFlag("conversation", "c"); id != "" {
		if err := s.open(ctx, id); err != nil {
			return err
		}
	}

	in := r.lineReader()
	defer in.Close()

	if !r.Quiet {
		s.printWelcome(ctx)
	}

	for {
		input, err := in.ReadInput(UserLabelStyle.Render("you> "))
		if err != nil {
			// liner.ErrPromptAborted (Ctrl+C), io.EOF (Ctrl+D or end of
			// piped input) and read errors all end the session.
			fmt.Fprintln(r.Err)
			s.printExitSummary()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := s.handleSlashCommand(ctx, input)
			if err != nil {
				fmt.Fprintf(r.Err, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				s.printExitSummary()
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			s.printExitSummary()
			return nil
		}

		s.send(ctx, input)
	}
}

// send delivers one message. Ctrl+C while waiting cancels the request
// but not the session.
func (s *chatSession) send(ctx context.Context, content string) {
	sendCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintln(s.r.Err, DimStyle.Render("  thinking..."))
	msg, err := s.thread.Send(sendCtx, content)
	switch {
	case errors.Is(err, session.ErrStaleReply):
		return
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(s.r.Err, WarningStyle.Render("[Cancelled]"))
		return
	}
	if msg.ID == "" && err != nil {
		// Rejected before sending (empty message)
		fmt.Fprintf(s.r.Err, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		return
	}
	s.sent++
	printMessage(s.r.Out, msg)
}

func (s *chatSession) setMode(mode string) {
	s.mode = mode
	s.thread.SetMode(mode)
}

func (s *chatSession) open(ctx context.Context, id string) error {
	conv, msgs, err := s.r.App.ChatUseCase.OpenConversation(ctx, id)
	if err != nil {
		return err
	}
	s.thread.Load(conv, msgs)
	if conv.Mode != nil && *conv.Mode != "" {
		s.setMode(*conv.Mode)
	}
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand returns false when the session should end.
func (s *chatSession) handleSlashCommand(ctx context.Context, line string) (bool, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true, nil
	}
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		s.printHelp()

	case "/quit", "/q", "/exit":
		return false, nil

	case "/new", "/n":
		s.thread.NewChat()
		fmt.Fprintln(s.r.Out, InfoStyle.Render("[New conversation]"))

	case "/mode", "/m":
		if len(args) == 0 {
			return true, s.listModes(ctx)
		}
		s.setMode(args[0])
		fmt.Fprintf(s.r.Out, "%s %s\n", InfoStyle.Render("[Mode]"), args[0])

	case "/project":
		if len(args) == 0 {
			return true, ErrMissingArgument("project id", "/project <id>")
		}
		s.thread.SetProject(args[0])
		fmt.Fprintf(s.r.Out, "%s new conversations go to project %s\n", InfoStyle.Render("[Project]"), args[0])

	case "/open", "/o":
		if len(args) == 0 {
			return true, ErrMissingArgument("conversation id", "/open <id>")
		}
		if err := s.open(ctx, args[0]); err != nil {
			return true, err
		}
		s.printHistory()

	case "/history":
		s.printHistory()

	case "/title":
		return true, s.rename(ctx, strings.Join(args, " "))

	case "/image", "/img":
		return true, s.image(ctx, strings.Join(args, " "))

	case "/upload", "/u":
		if len(args) == 0 {
			return true, ErrMissingArgument("path", "/upload <path>")
		}
		f, err := s.r.upload(ctx, args[0], s.thread.ConversationID())
		if err != nil {
			return true, err
		}
		fmt.Fprintf(s.r.Out, "%s %s uploaded (%s)\n", SuccessStyle.Render("[OK]"), f.Filename, f.ID)

	case "/usage":
		return true, s.r.runUsage(ctx)

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
	return true, nil
}

func (s *chatSession) listModes(ctx context.Context) error {
	current := s.mode
	if current == "" {
		current = "default"
	}
	fmt.Fprintf(s.r.Out, "%s %s\n", InfoStyle.Render("[Mode]"), current)
	modes, err := s.r.App.Chat.Modes(ctx)
	if err != nil {
		return err
	}
	for _, m := range modes {
		fmt.Fprintf(s.r.Out, "  %s %s\n", HighlightStyle.Render(util.PadWidth(m.ID, 14)), DimStyle.Render(m.Description))
	}
	return nil
}

func (s *chatSession) rename(ctx context.Context, title string) error {
	id := s.thread.ConversationID()
	if id == "" {
		return errors.New("send a message first; there is no conversation to rename yet")
	}
	conv, err := s.r.App.ChatUseCase.Rename(ctx, id, title)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.r.Out, "%s %s\n", InfoStyle.Render("[Title]"), conv.Title)
	return nil
}

func (s *chatSession) image(ctx context.Context, prompt string) error {
	res, err := s.r.App.ChatUseCase.GenerateImage(ctx, model.ImageRequest{Prompt: prompt}, s.thread.ConversationID())
	if err != nil {
		return err
	}
	printImage(s.r.Out, res)
	return nil
}

func (s *chatSession) printHelp() {
	fmt.Fprintln(s.r.Out)
	fmt.Fprintln(s.r.Out, SectionStyle.Render("Commands"))
	commands := []struct{ cmd, desc string }{
		{"/help", "Show this help"},
		{"/new", "Start a new conversation"},
		{"/mode [id]", "Show modes or switch mode"},
		{"/project <id>", "Start new conversations in a project"},
		{"/open <id>", "Continue an earlier conversation"},
		{"/history", "Reprint this conversation"},
		{"/title <text>", "Rename this conversation"},
		{"/image <prompt>", "Generate an image"},
		{"/upload <path>", "Upload a file"},
		{"/usage", "Show quota usage"},
		{"/quit", "Exit chat"},
	}
	for _, c := range commands {
		fmt.Fprintf(s.r.Out, "  %s %s\n", HighlightStyle.Render(util.PadWidth(c.cmd, 18)), DimStyle.Render(c.desc))
	}
	fmt.Fprintln(s.r.Out)
	fmt.Fprintln(s.r.Out, DimStyle.Render("Ctrl+C cancels a pending reply; Ctrl+D exits"))
}

func (s *chatSession) printWelcome(ctx context.Context) {
	name := "there"
	if u, ok := s.r.App.Auth.CachedUser(); ok {
		name = u.DisplayName()
	}
	fmt.Fprintln(s.r.Out, TitleStyle.Render("BaatCheet"))
	fmt.Fprintf(s.r.Out, "Hi %s. Type a message, or /help for commands.\n", name)

	pre := s.r.App.Prefetch(ctx)
	if pre.Usage != nil {
		fmt.Fprintln(s.r.Out, DimStyle.Render(fmt.Sprintf("%d messages left on the %s tier",
			pre.Usage.MessagesRemaining(), pre.Usage.Tier)))
	}
	if msgs := s.thread.Messages(); len(msgs) > 0 {
		s.printHistory()
	}
	fmt.Fprintln(s.r.Out)
}

func (s *chatSession) printHistory() {
	if title := s.thread.Title(); title != "" {
		fmt.Fprintln(s.r.Out, SectionStyle.Render(title))
	}
	for _, m := range s.thread.Messages() {
		printMessage(s.r.Out, m)
	}
}

func (s *chatSession) printExitSummary() {
	if s.r.Quiet {
		return
	}
	if id := s.thread.ConversationID(); id != "" && s.sent > 0 {
		fmt.Fprintf(s.r.Err, "%s %d messages in %s. Continue with: baatcheet chat --conversation %s\n",
			DimStyle.Render("[Bye]"), s.sent, formatDurationShort(time.Since(s.started)), id)
		return
	}
	fmt.Fprintln(s.r.Err, DimStyle.Render("[Bye]"))
}

// =============================================================================
// ONE-SHOT ASK
// =============================================================================

func (r *Runner) runAsk(ctx context.Context, raw []string) error {
	if err := r.requireSignedIn(); err != nil {
		return err
	}
	p := NewArgParser(raw)
	content := JoinPositionalArgs(p, 0)
	if content == "" && !IsTTY() {
		// Piped input: echo "question" | baatcheet ask
		data, err := io.ReadAll(r.in)
		if err != nil {
			return WrapError(err, "read stdin")
		}
		content = strings.TrimSpace(string(data))
	}
	if content == "" {
		return ErrMissingArgument("message", `baatcheet ask "what is a goroutine?"`)
	}

	thread := r.App.NewThread()
	if m := p.FirstFlag("mode", "m"); m != "" {
		thread.SetMode(m)
	}
	if proj := p.FirstFlag("project", "p"); proj != "" {
		thread.SetProject(proj)
	}
	if id := p.FirstFlag("conversation", "c"); id != "" {
		conv, msgs, err := r.App.ChatUseCase.OpenConversation(ctx, id)
		if err != nil {
			return err
		}
		thread.Load(conv, msgs)
	}

	msg, err := thread.Send(ctx, content)
	if err != nil {
		return err
	}
	data := AskData{ConversationID: thread.ConversationID(), Reply: messageData(msg)}
	return r.emit("ask", data, func() {
		fmt.Fprintln(r.Out, WrapText(msg.Content, 0))
		r.info("%s\n", DimStyle.Render("conversation "+thread.ConversationID()))
	})
}

// =============================================================================
// RENDERING
// =============================================================================

func printMessage(w io.Writer, m model.ChatMessage) {
	header := RenderRole(m.Role)
	if m.Timestamp != nil {
		header += " " + DimStyle.Render(m.Timestamp.Local().Format(time.Kitchen))
	}
	fmt.Fprintln(w, header)
	if m.Content != "" {
		fmt.Fprintln(w, WrapText(m.Content, 0))
	}
	if m.HasImage() {
		printImage(w, *m.ImageResult)
	}
	for _, a := range m.Attachments {
		fmt.Fprintf(w, "  %s %s\n", DimStyle.Render("attachment:"), a.Filename)
	}
	fmt.Fprintln(w)
}

func printImage(w io.Writer, img model.ImageResult) {
	fmt.Fprintf(w, "%s %s\n", InfoStyle.Render("[Image]"), img.URL)
	if img.RevisedPrompt != nil && *img.RevisedPrompt != "" {
		fmt.Fprintf(w, "  %s\n", DimStyle.Render(*img.RevisedPrompt))
	}
}
