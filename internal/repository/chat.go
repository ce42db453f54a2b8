// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repository

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/baatcheet/baatcheet-cli/internal/api"
	"github.com/baatcheet/baatcheet-cli/internal/dto"
	"github.com/baatcheet/baatcheet-cli/internal/model"
	"go.uber.org/zap"
)

// ConversationQuery filters the conversation list. Zero values are omitted.
type ConversationQuery struct {
	Page     int
	Limit    int
	Archived *bool
	Pinned   *bool
}

func (q ConversationQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Archived != nil {
		v.Set("archived", strconv.FormatBool(*q.Archived))
	}
	if q.Pinned != nil {
		v.Set("pinned", strconv.FormatBool(*q.Pinned))
	}
	return v
}

// ChatRepository covers conversations, messages, images and file uploads.
type ChatRepository struct {
	transport Transport
	logger    *zap.Logger
}

// NewChatRepository creates a chat façade.
func NewChatRepository(t Transport, logger *zap.Logger) *ChatRepository {
	return &ChatRepository{transport: t, logger: orNop(logger).Named("chat")}
}

// =============================================================================
// MESSAGES
// =============================================================================

// SendMessage posts a user message and returns the assistant reply.
// Whitespace-only content fails with ErrEmptyMessage before any request.
func (r *ChatRepository) SendMessage(ctx context.Context, content string, opts model.SendOptions) (model.ChatReply, error) {
	if strings.TrimSpace(content) == "" {
		return model.ChatReply{}, &ChatError{Code: ChatEmptyMessage, Message: "Message cannot be empty"}
	}
	req := api.Request{Endpoint: api.SendMessage(), Body: dto.SendMessageRequest{
		Message:        content,
		ConversationID: opts.ConversationID,
		ProjectID:      opts.ProjectID,
		Mode:           opts.Mode,
		AttachmentIDs:  opts.AttachmentIDs,
	}}
	return r.reply(ctx, req, "Failed to send message")
}

// RegenerateMessage asks for a new answer to the last user message.
func (r *ChatRepository) RegenerateMessage(ctx context.Context, conversationID, messageID, mode string) (model.ChatReply, error) {
	if strings.TrimSpace(conversationID) == "" {
		return model.ChatReply{}, invalidConversation()
	}
	req := api.Request{Endpoint: api.RegenerateMessage(), Body: dto.RegenerateRequest{
		ConversationID: conversationID,
		MessageID:      messageID,
		Mode:           mode,
	}}
	return r.reply(ctx, req, "Failed to regenerate response")
}

func (r *ChatRepository) reply(ctx context.Context, req api.Request, fallback string) (model.ChatReply, error) {
	payload, err := fetch[dto.ChatResponseDTO](ctx, r.transport, req, fallback)
	if err != nil {
		return model.ChatReply{}, toChatError(err)
	}
	reply, err := dto.ToChatReply(payload)
	if err != nil {
		return model.ChatReply{}, toChatError(err)
	}
	return reply, nil
}

func invalidConversation() error {
	return &ChatError{Code: ChatInvalidConversationID, Message: "Invalid conversation id"}
}

// Messages returns the messages of a conversation, oldest first.
func (r *ChatRepository) Messages(ctx context.Context, conversationID string) ([]model.ChatMessage, error) {
	items, err := fetchList[dto.MessageDTO](ctx, r.transport, api.Request{Endpoint: api.ConversationMessages(conversationID)}, "Failed to load messages")
	if err != nil {
		return nil, toChatError(err)
	}
	msgs, err := dto.ToMessages(items)
	return msgs, toChatError(err)
}

// SubmitFeedback rates an assistant message.
func (r *ChatRepository) SubmitFeedback(ctx context.Context, messageID string, feedback model.Feedback, comment string) error {
	req := api.Request{Endpoint: api.MessageFeedback(messageID), Body: dto.MessageFeedbackRequest{
		Feedback: string(feedback),
		Comment:  comment,
	}}
	return toChatError(exec(ctx, r.transport, req, "Failed to submit feedback"))
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// Conversations lists the user's conversations.
func (r *ChatRepository) Conversations(ctx context.Context, q ConversationQuery) ([]model.Conversation, error) {
	req := api.Request{Endpoint: api.Conversations(), Query: q.values()}
	return r.conversations(ctx, req)
}

// SearchConversations finds conversations by title or content.
func (r *ChatRepository) SearchConversations(ctx context.Context, query string) ([]model.Conversation, error) {
	req := api.Request{Endpoint: api.SearchConversations(), Query: url.Values{"q": {query}}}
	return r.conversations(ctx, req)
}

func (r *ChatRepository) conversations(ctx context.Context, req api.Request) ([]model.Conversation, error) {
	items, err := fetchList[dto.ConversationDTO](ctx, r.transport, req, "Failed to load conversations")
	if err != nil {
		return nil, toChatError(err)
	}
	convs, err := dto.ToConversations(items)
	return convs, toChatError(err)
}

// Conversation loads one conversation together with its messages.
func (r *ChatRepository) Conversation(ctx context.Context, id string) (model.Conversation, []model.ChatMessage, error) {
	payload, err := fetch[dto.ConversationDetailDTO](ctx, r.transport, api.Request{Endpoint: api.Conversation(id)}, "Failed to load conversation")
	if err != nil {
		return model.Conversation{}, nil, toChatError(err)
	}
	conv, msgs, err := dto.ToConversationDetail(payload)
	if err != nil {
		return model.Conversation{}, nil, toChatError(err)
	}
	return conv, msgs, nil
}

// RenameConversation sets a conversation's title.
func (r *ChatRepository) RenameConversation(ctx context.Context, id, title string) (model.Conversation, error) {
	return r.update(ctx, id, model.ConversationUpdate{Title: &title})
}

// SetPinned pins or unpins a conversation.
func (r *ChatRepository) SetPinned(ctx context.Context, id string, pinned bool) (model.Conversation, error) {
	return r.update(ctx, id, model.ConversationUpdate{IsPinned: &pinned})
}

// SetArchived archives or restores a conversation.
func (r *ChatRepository) SetArchived(ctx context.Context, id string, archived bool) (model.Conversation, error) {
	return r.update(ctx, id, model.ConversationUpdate{IsArchived: &archived})
}

// update patches a conversation. When the response has no body the
// conversation is read back.
func (r *ChatRepository) update(ctx context.Context, id string, u model.ConversationUpdate) (model.Conversation, error) {
	req := api.Request{Endpoint: api.UpdateConversation(id), Body: dto.FromConversationUpdate(u)}
	payload, err := fetchOptional[dto.ConversationDTO](ctx, r.transport, req, "Failed to update conversation")
	if err != nil {
		return model.Conversation{}, toChatError(err)
	}
	if payload == nil {
		r.logger.Debug("update returned no conversation, reading back", zap.String("id", id))
		conv, _, err := r.Conversation(ctx, id)
		return conv, err
	}
	conv, err := dto.ToConversation(*payload)
	return conv, toChatError(err)
}

// DeleteConversation removes a conversation.
func (r *ChatRepository) DeleteConversation(ctx context.Context, id string) error {
	return toChatError(exec(ctx, r.transport, api.Request{Endpoint: api.DeleteConversation(id)}, "Failed to delete conversation"))
}

// ShareConversation creates a public link.
func (r *ChatRepository) ShareConversation(ctx context.Context, id string) (model.ShareLink, error) {
	payload, err := fetch[dto.ShareDTO](ctx, r.transport, api.Request{Endpoint: api.ShareConversation(id)}, "Failed to share conversation")
	if err != nil {
		return model.ShareLink{}, toChatError(err)
	}
	link, err := dto.ToShareLink(payload)
	return link, toChatError(err)
}

// SharedConversation opens a public link. No token is sent.
func (r *ChatRepository) SharedConversation(ctx context.Context, shareID string) (model.SharedConversation, error) {
	payload, err := fetch[dto.SharedConversationDTO](ctx, r.transport, api.Request{Endpoint: api.SharedConversation(shareID)}, "Failed to open shared conversation")
	if err != nil {
		return model.SharedConversation{}, toChatError(err)
	}
	shared, err := dto.ToSharedConversation(payload)
	return shared, toChatError(err)
}

// =============================================================================
// MODES, USAGE, ANALYSIS
// =============================================================================

// Modes lists the AI modes available to the user.
func (r *ChatRepository) Modes(ctx context.Context) ([]model.AIMode, error) {
	items, err := fetchList[dto.ModeDTO](ctx, r.transport, api.Request{Endpoint: api.Modes()}, "Failed to load modes")
	if err != nil {
		return nil, toChatError(err)
	}
	modes, err := dto.ToModes(items)
	return modes, toChatError(err)
}

// Usage returns the current quota usage.
func (r *ChatRepository) Usage(ctx context.Context) (model.UsageInfo, error) {
	payload, err := fetch[dto.UsageDTO](ctx, r.transport, api.Request{Endpoint: api.Usage()}, "Failed to load usage")
	if err != nil {
		return model.UsageInfo{}, toChatError(err)
	}
	return dto.ToUsage(payload), nil
}

// AnalyzePrompt asks the backend which mode suits a prompt.
func (r *ChatRepository) AnalyzePrompt(ctx context.Context, prompt string) (model.PromptAnalysis, error) {
	req := api.Request{Endpoint: api.AnalyzePrompt(), Body: dto.AnalyzePromptRequest{Prompt: prompt}}
	payload, err := fetch[dto.PromptAnalysisDTO](ctx, r.transport, req, "Failed to analyze prompt")
	if err != nil {
		return model.PromptAnalysis{}, toChatError(err)
	}
	return dto.ToPromptAnalysis(payload), nil
}

// =============================================================================
// IMAGES
// =============================================================================

// GenerateImage creates an image. It runs under the image timeout.
func (r *ChatRepository) GenerateImage(ctx context.Context, in model.ImageRequest, conversationID string) (model.ImageResult, error) {
	req := api.Request{Endpoint: api.GenerateImage(), Body: dto.ImageRequest{
		Prompt:         in.Prompt,
		Style:          in.Style,
		AspectRatio:    in.AspectRatio,
		ConversationID: conversationID,
	}}
	payload, err := fetch[dto.ImageResultDTO](ctx, r.transport, req, "Image generation failed")
	if err != nil {
		return model.ImageResult{}, toChatError(err)
	}
	img, err := dto.ToImageResult(payload)
	return img, toChatError(err)
}

// ImageHistory lists previously generated images.
func (r *ChatRepository) ImageHistory(ctx context.Context) ([]model.ImageResult, error) {
	items, err := fetchList[dto.ImageResultDTO](ctx, r.transport, api.Request{Endpoint: api.ImageHistory()}, "Failed to load images")
	if err != nil {
		return nil, toChatError(err)
	}
	imgs, err := dto.ToImageResults(items)
	return imgs, toChatError(err)
}

// =============================================================================
// FILES
// =============================================================================

// UploadFile sends a file as multipart under the "file" field. A non-empty
// conversationID is sent as the conversation_id form field.
func (r *ChatRepository) UploadFile(ctx context.Context, f model.FileData, conversationID string) (model.UploadedFile, error) {
	var fields []api.FormField
	if conversationID != "" {
		fields = append(fields, api.FormField{Name: "conversation_id", Value: conversationID})
	}
	payload, err := upload[dto.FileDTO](ctx, r.transport, api.UploadFile(), api.DefaultFileField, f, fields, "Upload failed")
	if err != nil {
		return model.UploadedFile{}, toChatError(err)
	}
	file, err := dto.ToUploadedFile(payload)
	return file, toChatError(err)
}

// FileStatus polls the processing state of an upload.
func (r *ChatRepository) FileStatus(ctx context.Context, id string) (model.UploadedFile, error) {
	payload, err := fetch[dto.FileDTO](ctx, r.transport, api.Request{Endpoint: api.FileStatus(id)}, "Failed to load file")
	if err != nil {
		return model.UploadedFile{}, toChatError(err)
	}
	file, err := dto.ToUploadedFile(payload)
	return file, toChatError(err)
}

// DeleteFile removes an upload.
func (r *ChatRepository) DeleteFile(ctx context.Context, id string) error {
	return toChatError(exec(ctx, r.transport, api.Request{Endpoint: api.DeleteFile(id)}, "Failed to delete file"))
}

// Files lists the user's uploads.
func (r *ChatRepository) Files(ctx context.Context) ([]model.UploadedFile, error) {
	items, err := fetchList[dto.FileDTO](ctx, r.transport, api.Request{Endpoint: api.Files()}, "Failed to load files")
	if err != nil {
		return nil, toChatError(err)
	}
	files, err := dto.ToUploadedFiles(items)
	return files, toChatError(err)
}
