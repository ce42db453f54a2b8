// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/baatcheet/baatcheet-cli/internal/model"
	"github.com/baatcheet/baatcheet-cli/internal/repository"
	"github.com/baatcheet/baatcheet-cli/internal/util"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCase = cases.Title(language.English)

// titleColumns is the display width of the title column in listings.
const titleColumns = 40

const conversationsUsage = "baatcheet conversations [list|search <q>|rename <id> <title>|delete <id>|pin <id>|unpin <id>|archive <id>|unarchive <id>]"

// =============================================================================
// CONVERSATIONS
// =============================================================================

func (r *Runner) runConversations(ctx context.Context, raw []string) error {
	if err := r.requireSignedIn(); err != nil {
		return err
	}
	p := NewArgParser(raw, "archived", "pinned", "yes", "y")

	switch sub := p.Subcommand(); sub {
	case "", "list", "ls":
		q := repository.ConversationQuery{
			Page:  p.FlagIntOrDefault("page", 1),
			Limit: p.FlagIntOrDefault("limit", 20),
		}
		if p.BoolFlag("archived") {
			archived := true
			q.Archived = &archived
		}
		if p.BoolFlag("pinned") {
			pinned := true
			q.Pinned = &pinned
		}
		convs, err := r.App.Chat.Conversations(ctx, q)
		if err != nil {
			return err
		}
		return r.printConversations("conversations", convs)

	case "search", "find":
		query := JoinPositionalArgs(p, 1)
		if query == "" {
			return ErrMissingArgument("query", "baatcheet conversations search golang")
		}
		convs, err := r.App.Chat.SearchConversations(ctx, query)
		if err != nil {
			return err
		}
		return r.printConversations("conversations search", convs)

	case "rename":
		id, title := p.Positional(1), JoinPositionalArgs(p, 2)
		if id == "" || title == "" {
			return ErrMissingArgument("id and title", `baatcheet conversations rename <id> "New title"`)
		}
		conv, err := r.App.ChatUseCase.Rename(ctx, id, title)
		if err != nil {
			return err
		}
		return r.emitConversation("conversations rename", conv, "Renamed to "+conv.Title)

	case "delete", "rm":
		id := p.Positional(1)
		if id == "" {
			return ErrMissingArgument("id", "baatcheet conversations delete <id>")
		}
		if !p.BoolFlag("yes") && !p.BoolFlag("y") {
			if ok, err := r.confirm(fmt.Sprintf("Delete conversation %s?", id)); err != nil || !ok {
				return err
			}
		}
		if err := r.App.Chat.DeleteConversation(ctx, id); err != nil {
			return err
		}
		return r.emit("conversations delete", map[string]string{"deleted": id}, func() {
			fmt.Fprintf(r.Out, "%s Deleted %s\n", SuccessStyle.Render("[OK]"), id)
		})

	case "pin", "unpin":
		id := p.Positional(1)
		if id == "" {
			return ErrMissingArgument("id", "baatcheet conversations "+sub+" <id>")
		}
		conv, err := r.App.Chat.SetPinned(ctx, id, sub == "pin")
		if err != nil {
			return err
		}
		return r.emitConversation("conversations "+sub, conv, titleCase.String(sub)+"ned "+conv.Title)

	case "archive", "unarchive":
		id := p.Positional(1)
		if id == "" {
			return ErrMissingArgument("id", "baatcheet conversations "+sub+" <id>")
		}
		conv, err := r.App.Chat.SetArchived(ctx, id, sub == "archive")
		if err != nil {
			return err
		}
		return r.emitConversation("conversations "+sub, conv, titleCase.String(sub)+"d "+conv.Title)

	default:
		return ErrUnknownSubcommand("conversations", sub, conversationsUsage)
	}
}

func (r *Runner) printConversations(command string, convs []model.Conversation) error {
	data := make([]ConversationData, 0, len(convs))
	for _, c := range convs {
		data = append(data, conversationData(c))
	}
	return r.emit(command, data, func() {
		if len(convs) == 0 {
			fmt.Fprintln(r.Out, DimStyle.Render("No conversations"))
			return
		}
		for _, c := range convs {
			fmt.Fprintln(r.Out, formatConversationRow(c))
		}
	})
}

// formatConversationRow renders one listing line. Titles are cut and padded
// by display width so rows with wide characters stay aligned.
func formatConversationRow(c model.Conversation) string {
	flag := " "
	switch {
	case c.IsPinned:
		flag = "*"
	case c.IsArchived:
		flag = "a"
	}
	title := c.Title
	if title == "" {
		title = "Untitled"
	}
	title = util.PadWidth(util.TruncateWidth(util.SingleLine(title), titleColumns), titleColumns)

	when := ""
	if c.UpdatedAt != nil {
		when = c.UpdatedAt.Local().Format("Jan 02 15:04")
	}
	return fmt.Sprintf("%s %s  %s  %s  %s",
		HighlightStyle.Render(flag),
		ValueStyle.Render(title),
		DimStyle.Render(fmt.Sprintf("%4d msgs", c.MessageCount)),
		DimStyle.Render(when),
		DimStyle.Render(c.ID))
}

func (r *Runner) emitConversation(command string, conv model.Conversation, human string) error {
	return r.emit(command, conversationData(conv), func() {
		fmt.Fprintf(r.Out, "%s %s\n", SuccessStyle.Render("[OK]"), human)
	})
}

// =============================================================================
// OPEN / SHARE
// =============================================================================

func (r *Runner) runOpen(ctx context.Context, raw []string) error {
	p := NewArgParser(raw)
	target := p.Positional(0)
	if target == "" {
		return ErrMissingArgument("conversation id or share link", "baatcheet open <id>")
	}

	if isShareLink(target) {
		shared, err := r.App.ChatUseCase.OpenSharedConversation(ctx, target)
		if err != nil {
			return err
		}
		conv := model.Conversation{ID: shared.ShareID, Title: shared.Title, MessageCount: len(shared.Messages)}
		return r.printTranscript("open", conv, shared.Messages, shared.OwnerName)
	}

	if err := r.requireSignedIn(); err != nil {
		return err
	}
	conv, msgs, err := r.App.ChatUseCase.OpenConversation(ctx, target)
	if err != nil {
		return err
	}
	return r.printTranscript("open", conv, msgs, nil)
}

// isShareLink reports whether target is a share link rather than a
// conversation id.
func isShareLink(target string) bool {
	return strings.Contains(target, "://") || strings.Contains(target, "/share/") ||
		strings.HasPrefix(target, "share/")
}

func (r *Runner) printTranscript(command string, conv model.Conversation, msgs []model.ChatMessage, owner *string) error {
	data := TranscriptData{Conversation: conversationData(conv), Messages: make([]MessageData, 0, len(msgs))}
	for _, m := range msgs {
		data.Messages = append(data.Messages, messageData(m))
	}
	return r.emit(command, data, func() {
		title := conv.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintln(r.Out, TitleStyle.Render(title))
		if owner != nil && *owner != "" {
			fmt.Fprintln(r.Out, DimStyle.Render("shared by "+*owner))
		}
		for _, m := range msgs {
			printMessage(r.Out, m)
		}
	})
}

func (r *Runner) runShare(ctx context.Context, raw []string) error {
	if err := r.requireSignedIn(); err != nil {
		return err
	}
	id := NewArgParser(raw).Positional(0)
	if id == "" {
		return ErrMissingArgument("conversation id", "baatcheet share <id>")
	}
	link, err := r.App.Chat.ShareConversation(ctx, id)
	if err != nil {
		return err
	}
	return r.emit("share", map[string]string{"share_id": link.ShareID, "url": link.URL}, func() {
		fmt.Fprintln(r.Out, link.URL)
	})
}

// =============================================================================
// UPLOAD / IMAGE
// =============================================================================

// uploadPollInterval is how often upload status is checked with --wait.
var uploadPollInterval = 2 * time.Second

func (r *Runner) runUpload(ctx context.Context, raw []string) error {
	if err := r.requireSignedIn(); err != nil {
		return err
	}
	p := NewArgParser(raw, "wait", "w")
	path := p.Positional(0)
	if path == "" {
		return ErrMissingArgument("path", "baatcheet upload report.pdf --wait")
	}

	f, err := r.upload(ctx, path, p.FirstFlag("conversation", "c"))
	if err != nil {
		return err
	}
	if p.BoolFlag("wait") || p.BoolFlag("w") {
		if f, err = r.waitForUpload(ctx, f); err != nil {
			return err
		}
	}

	data := map[string]interface{}{
		"id":        f.ID,
		"filename":  f.Filename,
		"mime_type": f.MIMEType,
		"size":      f.Size,
		"status":    uploadStatusName(f.Status),
	}
	return r.emit("upload", data, func() {
		fmt.Fprintf(r.Out, "%s %s %s (%s, %s)\n", RenderStatus(uploadStatusName(f.Status)),
			f.Filename, DimStyle.Render(f.ID), f.MIMEType, formatBytes(f.Size))
		if failed, ok := f.Status.(model.UploadFailed); ok {
			fmt.Fprintf(r.Out, "  %s\n", ErrorStyle.Render(failed.Reason))
		}
	})
}

func (r *Runner) upload(ctx context.Context, path, conversationID string) (model.UploadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.UploadedFile{}, NewCommandError("upload", "read", path, err)
	}
	return r.App.ChatUseCase.UploadFile(ctx, path, data, conversationID)
}

// waitForUpload polls until the file reaches a terminal status.
func (r *Runner) waitForUpload(ctx context.Context, f model.UploadedFile) (model.UploadedFile, error) {
	ticker := time.NewTicker(uploadPollInterval)
	defer ticker.Stop()
	for f.Status == nil || !f.Status.Terminal() {
		r.info("%s\n", DimStyle.Render("  processing "+f.Filename+"..."))
		select {
		case <-ctx.Done():
			return f, ctx.Err()
		case <-ticker.C:
		}
		next, err := r.App.Chat.FileStatus(ctx, f.ID)
		if err != nil {
			return f, err
		}
		f = next
	}
	return f, nil
}

func uploadStatusName(s model.FileUploadStatus) string {
	switch s.(type) {
	case model.UploadPending:
		return "pending"
	case model.UploadProcessing:
		return "processing"
	case model.UploadCompleted:
		return "completed"
	case model.UploadFailed:
		return "failed"
	}
	return "unknown"
}

func (r *Runner) runImage(ctx context.Context, raw []string) error {
	if err := r.requireSignedIn(); err != nil {
		return err
	}
	p := NewArgParser(raw)
	in := model.ImageRequest{
		Prompt:      JoinPositionalArgs(p, 0),
		Style:       p.Flag("style"),
		AspectRatio: p.Flag("aspect"),
	}
	res, err := r.App.ChatUseCase.GenerateImage(ctx, in, p.FirstFlag("conversation", "c"))
	if err != nil {
		return err
	}
	data := map[string]interface{}{"url": res.URL, "prompt": res.Prompt, "revised_prompt": res.RevisedPrompt}
	return r.emit("image", data, func() {
		printImage(r.Out, res)
	})
}

// confirm asks a yes/no question on Err.
func (r *Runner) confirm(question string) (bool, error) {
	answer, err := r.prompt(question + " [y/N] ")
	if err != nil {
		return false, err
	}
	ok, err := ParseBoolString(answer)
	if err != nil {
		return false, nil
	}
	return ok, nil
}
