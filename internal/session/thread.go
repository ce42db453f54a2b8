// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/baatcheet/baatcheet-cli/internal/model"
	"github.com/baatcheet/baatcheet-cli/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrStaleReply is returned by Send when the thread was reset while the
// request was in flight. The reply is discarded.
var ErrStaleReply = errors.New("reply arrived after the conversation changed")

// Sender sends one chat message. *usecase.ChatUseCase satisfies it.
type Sender interface {
	Send(ctx context.Context, content string, opts model.SendOptions) (model.ChatReply, error)
}

// ChatThread is the message list of the conversation on screen.
type ChatThread struct {
	mu sync.Mutex

	sender Sender
	logger *zap.Logger
	now    func() time.Time

	messages       []model.ChatMessage
	conversationID string
	title          string
	projectID      string
	mode           string

	// generation changes on every reset; replies from an older
	// generation are dropped.
	generation uint64
}

// NewChatThread creates an empty thread.
func NewChatThread(sender Sender, logger *zap.Logger) *ChatThread {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatThread{sender: sender, logger: logger.Named("thread"), now: time.Now}
}

// Messages returns a copy of the visible messages.
func (t *ChatThread) Messages() []model.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

// ConversationID returns the backend id, empty until the first reply of a
// new chat.
func (t *ChatThread) ConversationID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conversationID
}

// Title returns the conversation title if the backend supplied one.
func (t *ChatThread) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}

// SetMode selects the AI mode for subsequent sends.
func (t *ChatThread) SetMode(mode string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = mode
}

// SetProject scopes subsequent sends of a new chat to a project.
func (t *ChatThread) SetProject(projectID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.projectID = projectID
}

// NewChat clears the thread. Replies still in flight will be dropped.
func (t *ChatThread) NewChat() {
	t.reset("", "", nil)
}

// Load replaces the thread with an existing conversation.
func (t *ChatThread) Load(conv model.Conversation, msgs []model.ChatMessage) {
	t.reset(conv.ID, conv.Title, msgs)
}

func (t *ChatThread) reset(id, title string, msgs []model.ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.generation++
	t.conversationID = id
	t.title = title
	t.messages = append([]model.ChatMessage(nil), msgs...)
}

// InFlight reports whether any placeholder is waiting for a reply.
func (t *ChatThread) InFlight() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range t.messages {
		if m.IsStreaming {
			return true
		}
	}
	return false
}

// Send appends the user message and a streaming placeholder, performs the
// send and replaces the placeholder with the reply or a failure message.
// The placeholder is never left behind unless the thread was reset, in
// which case ErrStaleReply is returned.
func (t *ChatThread) Send(ctx context.Context, content string) (model.ChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return model.ChatMessage{}, &repository.ChatError{Code: repository.ChatEmptyMessage, Message: "Message cannot be empty"}
	}

	requestID := uuid.NewString()
	t.mu.Lock()
	gen := t.generation
	at := t.now()
	t.messages = append(t.messages,
		model.NewUserMessage("local-"+requestID, content, at),
		model.NewStreamingPlaceholder(requestID, at),
	)
	opts := model.SendOptions{ConversationID: t.conversationID, Mode: t.mode}
	if opts.ConversationID == "" {
		opts.ProjectID = t.projectID
	}
	t.mu.Unlock()

	reply, err := t.sender.Send(ctx, content, opts)

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.generation {
		t.logger.Debug("dropping stale reply", zap.String("request_id", requestID))
		return model.ChatMessage{}, ErrStaleReply
	}

	var msg model.ChatMessage
	if err != nil {
		msg = model.NewFailureMessage(requestID, failureReason(err), t.now())
	} else {
		msg = reply.Message
		msg.IsStreaming = false
		msg.RequestID = requestID
		if t.conversationID == "" {
			t.conversationID = reply.ConversationID
		}
		if reply.Title != nil {
			t.title = *reply.Title
		}
	}
	t.replaceLocked(requestID, msg)
	return msg, err
}

// replaceLocked swaps the placeholder for requestID with msg in place.
func (t *ChatThread) replaceLocked(requestID string, msg model.ChatMessage) {
	for i := range t.messages {
		if t.messages[i].IsStreaming && t.messages[i].RequestID == requestID {
			t.messages[i] = msg
			return
		}
	}
	// The placeholder is always present for the current generation.
	t.logger.Warn("placeholder missing, appending reply", zap.String("request_id", requestID))
	t.messages = append(t.messages, msg)
}

func failureReason(err error) string {
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return "Something went wrong. Please try again."
}
