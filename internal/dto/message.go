// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import (
	"strings"

	"github.com/baatcheet/baatcheet-cli/internal/model"
)

// MessageDTO is a wire chat message.
type MessageDTO struct {
	ID             string          `json:"id" validate:"required"`
	Content        string          `json:"content"`
	Role           string          `json:"role"`
	Timestamp      *string         `json:"timestamp"`
	CreatedAt      *string         `json:"createdAt"`
	ConversationID *string         `json:"conversationId"`
	Attachments    []FileDTO       `json:"attachments"`
	ImageResult    *ImageResultDTO `json:"imageResult"`
	ImageURL       *string         `json:"imageUrl"`
	Tokens         *Tokens         `json:"tokens"`
}

// ToMessage maps a message. An unknown role becomes assistant; the
// timestamp is taken from timestamp, then createdAt.
func ToMessage(d MessageDTO) (model.ChatMessage, error) {
	if err := check("message", d); err != nil {
		return model.ChatMessage{}, err
	}

	role := model.Role(strings.ToLower(strings.TrimSpace(d.Role)))
	if !role.Valid() {
		role = model.RoleAssistant
	}

	msg := model.ChatMessage{
		ID:             d.ID,
		Content:        d.Content,
		Role:           role,
		Timestamp:      firstTime(d.Timestamp, d.CreatedAt),
		ConversationID: optional(d.ConversationID),
	}

	if len(d.Attachments) > 0 {
		msg.Attachments = make([]model.Attachment, 0, len(d.Attachments))
		for _, a := range d.Attachments {
			att, err := ToAttachment(a)
			if err != nil {
				return model.ChatMessage{}, err
			}
			msg.Attachments = append(msg.Attachments, att)
		}
	}

	switch {
	case d.ImageResult != nil:
		img, err := ToImageResult(*d.ImageResult)
		if err != nil {
			return model.ChatMessage{}, err
		}
		msg.ImageResult = &img
	case optional(d.ImageURL) != nil:
		msg.ImageResult = &model.ImageResult{URL: *d.ImageURL, Prompt: d.Content}
	}

	if d.Tokens != nil {
		t := d.Tokens.ToModel()
		msg.Tokens = &t
	}
	return msg, nil
}

// ToMessages maps a slice, failing on the first bad element.
func ToMessages(ds []MessageDTO) ([]model.ChatMessage, error) {
	out := make([]model.ChatMessage, 0, len(ds))
	for _, d := range ds {
		m, err := ToMessage(d)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// ImageResultDTO is a generated image.
type ImageResultDTO struct {
	URL           *string `json:"url"`
	ImageURL      *string `json:"imageUrl"`
	Prompt        string  `json:"prompt"`
	RevisedPrompt *string `json:"revisedPrompt"`
	Model         *string `json:"model"`
	Style         *string `json:"style"`
	CreatedAt     *string `json:"createdAt"`
}

// ToImageResult maps an image; a missing URL is a mapping error.
func ToImageResult(d ImageResultDTO) (model.ImageResult, error) {
	url := firstString(d.URL, d.ImageURL)
	if url == nil {
		return model.ImageResult{}, mappingErr("image", "url is required")
	}
	return model.ImageResult{
		URL:           *url,
		Prompt:        d.Prompt,
		RevisedPrompt: optional(d.RevisedPrompt),
		Model:         optional(d.Model),
		Style:         optional(d.Style),
		CreatedAt:     ParseTime(d.CreatedAt),
	}, nil
}

// ToImageResults maps an image history list.
func ToImageResults(ds []ImageResultDTO) ([]model.ImageResult, error) {
	out := make([]model.ImageResult, 0, len(ds))
	for _, d := range ds {
		img, err := ToImageResult(d)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}
