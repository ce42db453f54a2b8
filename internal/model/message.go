// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "BaatCheet"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// TokenInfo is the token accounting attached to a message. Prompt and
// Completion are nil when the server only reported a total.
type TokenInfo struct {
	Prompt     *int
	Completion *int
	Total      int
}

// ImageResult describes a generated image.
type ImageResult struct {
	URL           string
	Prompt        string
	RevisedPrompt *string
	Model         *string
	Style         *string
	CreatedAt     *time.Time
}

// Attachment is a file referenced by a message.
type Attachment struct {
	ID       string
	Filename string
	MIMEType string
	Size     int64
	URL      *string
	Status   FileUploadStatus
}

// ChatMessage is a single message in a conversation.
//
// IsStreaming marks a local placeholder created while a reply is in flight.
// The backend never returns streaming messages; a placeholder is always
// replaced in place once its request resolves.
type ChatMessage struct {
	ID             string
	Content        string
	Role           Role
	Timestamp      *time.Time
	IsStreaming    bool
	ConversationID *string
	Attachments    []Attachment
	ImageResult    *ImageResult
	Tokens         *TokenInfo

	// RequestID correlates a placeholder with the send that created it.
	// Local only.
	RequestID string
}

// NewUserMessage creates a local user message.
func NewUserMessage(id, content string, at time.Time) ChatMessage {
	return ChatMessage{
		ID:        id,
		Content:   content,
		Role:      RoleUser,
		Timestamp: &at,
	}
}

// NewStreamingPlaceholder creates the assistant placeholder shown while the
// reply for requestID is in flight.
func NewStreamingPlaceholder(requestID string, at time.Time) ChatMessage {
	return ChatMessage{
		ID:          "pending-" + requestID,
		Role:        RoleAssistant,
		Timestamp:   &at,
		IsStreaming: true,
		RequestID:   requestID,
	}
}

// NewFailureMessage is the terminal message that replaces a placeholder
// whose request failed.
func NewFailureMessage(requestID, reason string, at time.Time) ChatMessage {
	return ChatMessage{
		ID:        "failed-" + requestID,
		Content:   reason,
		Role:      RoleSystem,
		Timestamp: &at,
		RequestID: requestID,
	}
}

// HasImage reports whether the message carries a generated image.
func (m ChatMessage) HasImage() bool {
	return m.ImageResult != nil && m.ImageResult.URL != ""
}

// ChatReply is the result of a send: the assistant message plus the
// conversation it landed in (which is new when none was given).
type ChatReply struct {
	ConversationID string
	Message        ChatMessage
	Title          *string
}

// SendOptions are the optional parameters of a chat send.
type SendOptions struct {
	ConversationID string
	ProjectID      string
	Mode           string
	AttachmentIDs  []string
}

// Feedback is a thumbs-up/down rating on an assistant message.
type Feedback string

const (
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
)
