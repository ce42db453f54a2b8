// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import "github.com/baatcheet/baatcheet-cli/internal/model"

// ConversationDTO is a wire conversation summary.
type ConversationDTO struct {
	ID           string  `json:"id" validate:"required"`
	Title        *string `json:"title"`
	MessageCount *int    `json:"messageCount"`
	IsPinned     *bool   `json:"isPinned"`
	IsArchived   *bool   `json:"isArchived"`
	ProjectID    *string `json:"projectId"`
	Mode         *string `json:"mode"`
	LastMessage  *string `json:"lastMessage"`
	CreatedAt    *string `json:"createdAt"`
	UpdatedAt    *string `json:"updatedAt"`
}

// ToConversation maps a conversation. A blank title becomes
// "New Conversation".
func ToConversation(d ConversationDTO) (model.Conversation, error) {
	if err := check("conversation", d); err != nil {
		return model.Conversation{}, err
	}
	return model.Conversation{
		ID:           d.ID,
		Title:        stringOr(d.Title, model.DefaultConversationTitle),
		MessageCount: intOr(d.MessageCount, 0),
		IsPinned:     boolOr(d.IsPinned, false),
		IsArchived:   boolOr(d.IsArchived, false),
		ProjectID:    optional(d.ProjectID),
		Mode:         optional(d.Mode),
		LastMessage:  optional(d.LastMessage),
		CreatedAt:    ParseTime(d.CreatedAt),
		UpdatedAt:    ParseTime(d.UpdatedAt),
	}, nil
}

// ToConversations maps a conversation list.
func ToConversations(ds []ConversationDTO) ([]model.Conversation, error) {
	out := make([]model.Conversation, 0, len(ds))
	for _, d := range ds {
		c, err := ToConversation(d)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ConversationDetailDTO is a conversation with its messages. It also
// accepts {conversation: {...}, messages: [...]}.
type ConversationDetailDTO struct {
	ConversationDTO
	Conversation *ConversationDTO `json:"conversation"`
	Messages     []MessageDTO     `json:"messages"`
}

// ToConversationDetail maps a detail payload into the conversation and its
// messages.
func ToConversationDetail(d ConversationDetailDTO) (model.Conversation, []model.ChatMessage, error) {
	summary := d.ConversationDTO
	if d.Conversation != nil {
		summary = *d.Conversation
	}
	conv, err := ToConversation(summary)
	if err != nil {
		return model.Conversation{}, nil, err
	}
	msgs, err := ToMessages(d.Messages)
	if err != nil {
		return model.Conversation{}, nil, err
	}
	return conv, msgs, nil
}

// ConversationUpdateRequest is the PATCH body for a conversation.
type ConversationUpdateRequest struct {
	Title      *string `json:"title,omitempty"`
	IsPinned   *bool   `json:"isPinned,omitempty"`
	IsArchived *bool   `json:"isArchived,omitempty"`
}

// FromConversationUpdate builds the PATCH body.
func FromConversationUpdate(u model.ConversationUpdate) ConversationUpdateRequest {
	return ConversationUpdateRequest{Title: u.Title, IsPinned: u.IsPinned, IsArchived: u.IsArchived}
}

// ShareDTO is the response of sharing a conversation.
type ShareDTO struct {
	ShareID  string  `json:"shareId" validate:"required"`
	ShareURL *string `json:"shareUrl"`
	URL      *string `json:"url"`
}

// ToShareLink maps a share response.
func ToShareLink(d ShareDTO) (model.ShareLink, error) {
	if err := check("share", d); err != nil {
		return model.ShareLink{}, err
	}
	link := model.ShareLink{ShareID: d.ShareID}
	if u := firstString(d.ShareURL, d.URL); u != nil {
		link.URL = *u
	}
	return link, nil
}

// SharedConversationDTO is a publicly shared conversation.
type SharedConversationDTO struct {
	ShareID   string       `json:"shareId" validate:"required"`
	Title     *string      `json:"title"`
	OwnerName *string      `json:"ownerName"`
	Messages  []MessageDTO `json:"messages"`
	SharedAt  *string      `json:"sharedAt"`
	CreatedAt *string      `json:"createdAt"`
}

// ToSharedConversation maps a shared conversation.
func ToSharedConversation(d SharedConversationDTO) (model.SharedConversation, error) {
	if err := check("shared conversation", d); err != nil {
		return model.SharedConversation{}, err
	}
	msgs, err := ToMessages(d.Messages)
	if err != nil {
		return model.SharedConversation{}, err
	}
	return model.SharedConversation{
		ShareID:   d.ShareID,
		Title:     stringOr(d.Title, model.DefaultConversationTitle),
		OwnerName: optional(d.OwnerName),
		Messages:  msgs,
		SharedAt:  firstTime(d.SharedAt, d.CreatedAt),
	}, nil
}
