// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// AIMode is a server-advertised assistant mode (e.g. "code", "research").
type AIMode struct {
	ID          string
	Name        string
	Icon        string
	Description string
	IsAvailable bool
	RequiresPro bool
}

// UsageInfo is the server-reported quota snapshot for the current user.
type UsageInfo struct {
	Tier             string
	MessagesUsed     int
	MessagesLimit    int
	ImagesUsed       int
	ImagesLimit      int
	FileUploadsUsed  int
	FileUploadsLimit int
	ResetsAt         *time.Time
}

// MessagesRemaining returns the remaining message quota, never negative.
func (u UsageInfo) MessagesRemaining() int {
	if r := u.MessagesLimit - u.MessagesUsed; r > 0 {
		return r
	}
	return 0
}

// ImagesRemaining returns the remaining image quota, never negative.
func (u UsageInfo) ImagesRemaining() int {
	if r := u.ImagesLimit - u.ImagesUsed; r > 0 {
		return r
	}
	return 0
}

// PromptAnalysis is the server's classification of a draft prompt.
type PromptAnalysis struct {
	Intent         string
	SuggestedMode  *string
	Confidence     float64
	IsImageRequest bool
	Complexity     string
}

// ImageRequest holds the parameters of an image generation call.
type ImageRequest struct {
	Prompt      string `json:"prompt"`
	Style       string `json:"style,omitempty"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}
