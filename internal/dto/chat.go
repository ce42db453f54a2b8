// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import (
	"github.com/baatcheet/baatcheet-cli/internal/model"
)

type SendMessageRequest struct {
	Message        string   `json:"message"`
	ConversationID string   `json:"conversationId,omitempty"`
	ProjectID      string   `json:"projectId,omitempty"`
	Mode           string   `json:"mode,omitempty"`
	AttachmentIDs  []string `json:"attachmentIds,omitempty"`
}

type RegenerateRequest struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId,omitempty"`
	Mode           string `json:"mode,omitempty"`
}

type MessageFeedbackRequest struct {
	Feedback string `json:"feedback"`
	Comment  string `json:"comment,omitempty"`
}

type AnalyzePromptRequest struct {
	Prompt string `json:"prompt"`
}

// ChatResponseDTO is the reply to a send or regenerate. The backend either
// returns a full message object or a bare response string with its id.
type ChatResponseDTO struct {
	ConversationID string      `json:"conversationId" validate:"required"`
	Message        *MessageDTO `json:"message"`
	Response       *string     `json:"response"`
	MessageID      *string     `json:"messageId"`
	Title          *string     `json:"title"`
	Tokens         *Tokens     `json:"tokens"`
	CreatedAt      *string     `json:"createdAt"`
}

// ToChatReply maps a chat reply. The returned message always carries the
// conversation id.
func ToChatReply(d ChatResponseDTO) (model.ChatReply, error) {
	if err := check("chat response", d); err != nil {
		return model.ChatReply{}, err
	}

	var msg model.ChatMessage
	switch {
	case d.Message != nil:
		m, err := ToMessage(*d.Message)
		if err != nil {
			return model.ChatReply{}, err
		}
		msg = m
	case d.Response != nil:
		if optional(d.MessageID) == nil {
			return model.ChatReply{}, mappingErr("chat response", "messageId is required")
		}
		msg = model.ChatMessage{
			ID:        *d.MessageID,
			Content:   *d.Response,
			Role:      model.RoleAssistant,
			Timestamp: ParseTime(d.CreatedAt),
		}
		if d.Tokens != nil {
			t := d.Tokens.ToModel()
			msg.Tokens = &t
		}
	default:
		return model.ChatReply{}, mappingErr("chat response", "message is missing")
	}

	if msg.ConversationID == nil {
		id := d.ConversationID
		msg.ConversationID = &id
	}
	return model.ChatReply{
		ConversationID: d.ConversationID,
		Message:        msg,
		Title:          optional(d.Title),
	}, nil
}

// ModeDTO is an AI mode descriptor.
type ModeDTO struct {
	ID          string  `json:"id" validate:"required"`
	Name        *string `json:"name"`
	Icon        *string `json:"icon"`
	Description *string `json:"description"`
	IsAvailable *bool   `json:"isAvailable"`
	RequiresPro *bool   `json:"requiresPro"`
}

// ToMode maps a mode. Icon defaults to "sparkles", availability to true and
// the name to the id.
func ToMode(d ModeDTO) (model.AIMode, error) {
	if err := check("mode", d); err != nil {
		return model.AIMode{}, err
	}
	return model.AIMode{
		ID:          d.ID,
		Name:        stringOr(d.Name, d.ID),
		Icon:        stringOr(d.Icon, DefaultModeIcon),
		Description: stringOr(d.Description, ""),
		IsAvailable: boolOr(d.IsAvailable, true),
		RequiresPro: boolOr(d.RequiresPro, false),
	}, nil
}

// ToModes maps a mode list.
func ToModes(ds []ModeDTO) ([]model.AIMode, error) {
	out := make([]model.AIMode, 0, len(ds))
	for _, d := range ds {
		m, err := ToMode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// UsageDTO is the usage snapshot.
type UsageDTO struct {
	Tier             *string `json:"tier"`
	MessagesUsed     *int    `json:"messagesUsed"`
	MessagesLimit    *int    `json:"messagesLimit"`
	ImagesUsed       *int    `json:"imagesUsed"`
	ImagesLimit      *int    `json:"imagesLimit"`
	FileUploadsUsed  *int    `json:"fileUploadsUsed"`
	FileUploadsLimit *int    `json:"fileUploadsLimit"`
	ResetsAt         *string `json:"resetsAt"`
}

// ToUsage maps usage. Limits default to 50 messages, 5 images and 10 uploads.
func ToUsage(d UsageDTO) model.UsageInfo {
	return model.UsageInfo{
		Tier:             stringOr(d.Tier, DefaultTier),
		MessagesUsed:     intOr(d.MessagesUsed, 0),
		MessagesLimit:    intOr(d.MessagesLimit, DefaultMessagesLimit),
		ImagesUsed:       intOr(d.ImagesUsed, 0),
		ImagesLimit:      intOr(d.ImagesLimit, DefaultImagesLimit),
		FileUploadsUsed:  intOr(d.FileUploadsUsed, 0),
		FileUploadsLimit: intOr(d.FileUploadsLimit, DefaultFileUploadLimit),
		ResetsAt:         ParseTime(d.ResetsAt),
	}
}

// PromptAnalysisDTO is the prompt classifier output.
type PromptAnalysisDTO struct {
	Intent         *string  `json:"intent"`
	SuggestedMode  *string  `json:"suggestedMode"`
	Confidence     *float64 `json:"confidence"`
	IsImageRequest *bool    `json:"isImageRequest"`
	Complexity     *string  `json:"complexity"`
}

// ToPromptAnalysis maps an analysis. Intent defaults to "general" and
// complexity to "simple".
func ToPromptAnalysis(d PromptAnalysisDTO) model.PromptAnalysis {
	confidence := 0.0
	if d.Confidence != nil {
		confidence = *d.Confidence
	}
	return model.PromptAnalysis{
		Intent:         stringOr(d.Intent, DefaultIntent),
		SuggestedMode:  optional(d.SuggestedMode),
		Confidence:     confidence,
		IsImageRequest: boolOr(d.IsImageRequest, false),
		Complexity:     stringOr(d.Complexity, DefaultComplexity),
	}
}

// ImageRequest is the wire form of an image generation request.
type ImageRequest struct {
	Prompt         string `json:"prompt"`
	Style          string `json:"style,omitempty"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
}
