// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/baatcheet/baatcheet-cli/internal/model"
)

// JSONResponse is the envelope every command prints in --json mode.
type JSONResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Error     *string     `json:"error"`
	Timestamp string      `json:"timestamp"`
	Command   string      `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a failed response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response to w, indented.
func (r *JSONResponse) Print(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the response as indented JSON.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// =============================================================================
// COMMAND DATA
// =============================================================================

// VersionData is printed by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// WhoamiData is printed by the whoami command.
type WhoamiData struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Tier           string     `json:"tier"`
	SessionExpires *time.Time `json:"session_expires,omitempty"`
}

// MessageData is one chat message.
type MessageData struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Tokens    int        `json:"tokens,omitempty"`
}

// AskData is printed by the ask command.
type AskData struct {
	ConversationID string      `json:"conversation_id"`
	Reply          MessageData `json:"reply"`
}

// ConversationData is one conversation summary.
type ConversationData struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	MessageCount int        `json:"message_count"`
	Pinned       bool       `json:"pinned"`
	Archived     bool       `json:"archived"`
	ProjectID    string     `json:"project_id,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// TranscriptData is printed by the open command.
type TranscriptData struct {
	Conversation ConversationData `json:"conversation"`
	Messages     []MessageData    `json:"messages"`
}

// ProjectData is one project summary.
type ProjectData struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	IsOwner           bool   `json:"is_owner"`
	Collaborators     int    `json:"collaborators"`
	ConversationCount int    `json:"conversation_count"`
}

// UsageData is printed by the usage command.
type UsageData struct {
	Tier              string     `json:"tier"`
	MessagesUsed      int        `json:"messages_used"`
	MessagesLimit     int        `json:"messages_limit"`
	MessagesRemaining int        `json:"messages_remaining"`
	ImagesUsed        int        `json:"images_used"`
	ImagesLimit       int        `json:"images_limit"`
	ResetsAt          *time.Time `json:"resets_at,omitempty"`
}

func messageData(m model.ChatMessage) MessageData {
	d := MessageData{ID: m.ID, Role: string(m.Role), Content: m.Content, Timestamp: m.Timestamp}
	if m.Tokens != nil {
		d.Tokens = m.Tokens.Total
	}
	return d
}

func conversationData(c model.Conversation) ConversationData {
	d := ConversationData{
		ID:           c.ID,
		Title:        c.Title,
		MessageCount: c.MessageCount,
		Pinned:       c.IsPinned,
		Archived:     c.IsArchived,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.ProjectID != nil {
		d.ProjectID = *c.ProjectID
	}
	return d
}

func projectData(p model.Project) ProjectData {
	d := ProjectData{
		ID:                p.ID,
		Name:              p.Name,
		IsOwner:           p.IsOwner,
		Collaborators:     len(p.Collaborators),
		ConversationCount: p.ConversationCount,
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	return d
}
