// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// DefaultConversationTitle is used when the backend has not titled a conversation yet.
const DefaultConversationTitle = "New Conversation"

// Conversation is a chat thread owned by the current user, optionally
// scoped to a project. Flags only change through explicit update calls.
type Conversation struct {
	ID           string
	Title        string
	MessageCount int
	IsPinned     bool
	IsArchived   bool
	ProjectID    *string
	Mode         *string
	LastMessage  *string
	CreatedAt    *time.Time
	UpdatedAt    *time.Time
}

// InProject reports whether the conversation belongs to a project.
func (c Conversation) InProject() bool {
	return c.ProjectID != nil && *c.ProjectID != ""
}

// ConversationUpdate is a partial update; nil fields are left unchanged.
type ConversationUpdate struct {
	Title      *string `json:"title,omitempty"`
	IsPinned   *bool   `json:"isPinned,omitempty"`
	IsArchived *bool   `json:"isArchived,omitempty"`
}

// SharedConversation is a read-only public view reached through a share link.
type SharedConversation struct {
	ShareID   string
	Title     string
	OwnerName *string
	Messages  []ChatMessage
	SharedAt  *time.Time
}

// ShareLink is returned when a conversation is published.
type ShareLink struct {
	ShareID string
	URL     string
}
