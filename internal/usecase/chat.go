// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package usecase

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/baatcheet/baatcheet-cli/internal/model"
	"github.com/baatcheet/baatcheet-cli/internal/repository"
	"github.com/gabriel-vasile/mimetype"
)

// ChatService is the chat façade as seen by ChatUseCase.
type ChatService interface {
	SendMessage(ctx context.Context, content string, opts model.SendOptions) (model.ChatReply, error)
	Conversation(ctx context.Context, id string) (model.Conversation, []model.ChatMessage, error)
	SharedConversation(ctx context.Context, shareID string) (model.SharedConversation, error)
	RenameConversation(ctx context.Context, id, title string) (model.Conversation, error)
	GenerateImage(ctx context.Context, in model.ImageRequest, conversationID string) (model.ImageResult, error)
	UploadFile(ctx context.Context, f model.FileData, conversationID string) (model.UploadedFile, error)
}

type titleInput struct {
	Title string `validate:"required,max=200"`
}

type promptInput struct {
	Prompt string `validate:"required,max=4000"`
}

// ChatUseCase validates chat input and exposes the deep-link entry points.
type ChatUseCase struct {
	chat ChatService
}

// NewChatUseCase creates a ChatUseCase.
func NewChatUseCase(chat ChatService) *ChatUseCase {
	return &ChatUseCase{chat: chat}
}

// Send posts a message. Whitespace-only content fails with
// repository.ErrEmptyMessage without touching the network.
func (u *ChatUseCase) Send(ctx context.Context, content string, opts model.SendOptions) (model.ChatReply, error) {
	content = normalize(content)
	if content == "" {
		return model.ChatReply{}, &repository.ChatError{Code: repository.ChatEmptyMessage, Message: "Message cannot be empty"}
	}
	opts.ConversationID = strings.TrimSpace(opts.ConversationID)
	opts.ProjectID = strings.TrimSpace(opts.ProjectID)
	return u.chat.SendMessage(ctx, content, opts)
}

// OpenConversation loads a conversation by id.
func (u *ChatUseCase) OpenConversation(ctx context.Context, id string) (model.Conversation, []model.ChatMessage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Conversation{}, nil, &repository.ChatError{Code: repository.ChatInvalidConversationID, Message: "Invalid conversation id"}
	}
	return u.chat.Conversation(ctx, id)
}

// OpenSharedConversation opens a share link. It accepts a bare share id
// or a full link.
func (u *ChatUseCase) OpenSharedConversation(ctx context.Context, link string) (model.SharedConversation, error) {
	id := ShareID(link)
	if id == "" {
		return model.SharedConversation{}, &repository.ChatError{Code: repository.ChatInvalidInput, Message: "Invalid share link"}
	}
	return u.chat.SharedConversation(ctx, id)
}

// ShareID extracts the share id from a link such as
// https://baatcheet.app/share/abc or baatcheet://share/abc.
func ShareID(link string) string {
	link = strings.TrimSpace(link)
	if !strings.Contains(link, "/") {
		return link
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return u.Host
	}
	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}

// Rename sets a conversation title.
func (u *ChatUseCase) Rename(ctx context.Context, id, title string) (model.Conversation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Conversation{}, &repository.ChatError{Code: repository.ChatInvalidConversationID, Message: "Invalid conversation id"}
	}
	title = normalize(title)
	if _, msg, bad := invalid(titleInput{Title: title}); bad {
		return model.Conversation{}, &repository.ChatError{Code: repository.ChatInvalidInput, Message: msg}
	}
	return u.chat.RenameConversation(ctx, id, title)
}

// GenerateImage validates the prompt and requests an image.
func (u *ChatUseCase) GenerateImage(ctx context.Context, in model.ImageRequest, conversationID string) (model.ImageResult, error) {
	in.Prompt = normalize(in.Prompt)
	if _, msg, bad := invalid(promptInput{Prompt: in.Prompt}); bad {
		return model.ImageResult{}, &repository.ChatError{Code: repository.ChatInvalidInput, Message: msg}
	}
	return u.chat.GenerateImage(ctx, in, strings.TrimSpace(conversationID))
}

// UploadFile sniffs the content type and uploads a local file.
func (u *ChatUseCase) UploadFile(ctx context.Context, name string, data []byte, conversationID string) (model.UploadedFile, error) {
	if len(data) == 0 {
		return model.UploadedFile{}, &repository.ChatError{Code: repository.ChatInvalidInput, Message: "File is empty"}
	}
	if len(data) > MaxUploadSize {
		return model.UploadedFile{}, &repository.ChatError{
			Code:    repository.ChatInvalidInput,
			Message: fmt.Sprintf("File is larger than %d MB", MaxUploadSize>>20),
		}
	}
	f := model.FileData{Filename: filepath.Base(name), MIMEType: detectMIME(data), Data: data}
	return u.chat.UploadFile(ctx, f, strings.TrimSpace(conversationID))
}

// detectMIME returns the sniffed media type without parameters.
func detectMIME(data []byte) string {
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}
