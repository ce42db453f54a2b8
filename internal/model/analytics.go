// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// AnalyticsSummary is the per-user activity dashboard.
type AnalyticsSummary struct {
	TotalMessages      int
	TotalConversations int
	TotalTokens        int
	ImagesGenerated    int
	MostUsedMode       *string
	DailyActivity      []DailyActivity
}

// DailyActivity is one day of the activity chart.
type DailyActivity struct {
	Date     string
	Messages int
	Tokens   int
}

// AnalyticsEvent is a client-side event reported to the backend.
type AnalyticsEvent struct {
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
}

// FeedbackInput is general product feedback.
type FeedbackInput struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Rating   int    `json:"rating,omitempty"`
}
