// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import "github.com/baatcheet/baatcheet-cli/internal/model"

type DailyActivityDTO struct {
	Date     string `json:"date" validate:"required"`
	Messages *int   `json:"messages"`
	Tokens   *int   `json:"tokens"`
}

type AnalyticsSummaryDTO struct {
	TotalMessages      *int               `json:"totalMessages"`
	TotalConversations *int               `json:"totalConversations"`
	TotalTokens        *int               `json:"totalTokens"`
	ImagesGenerated    *int               `json:"imagesGenerated"`
	MostUsedMode       *string            `json:"mostUsedMode"`
	DailyActivity      []DailyActivityDTO `json:"dailyActivity"`
}

// ToAnalyticsSummary maps the summary; counters default to zero.
func ToAnalyticsSummary(d AnalyticsSummaryDTO) (model.AnalyticsSummary, error) {
	daily, err := ToDailyActivity(d.DailyActivity)
	if err != nil {
		return model.AnalyticsSummary{}, err
	}
	return model.AnalyticsSummary{
		TotalMessages:      intOr(d.TotalMessages, 0),
		TotalConversations: intOr(d.TotalConversations, 0),
		TotalTokens:        intOr(d.TotalTokens, 0),
		ImagesGenerated:    intOr(d.ImagesGenerated, 0),
		MostUsedMode:       optional(d.MostUsedMode),
		DailyActivity:      daily,
	}, nil
}

// ToDailyActivity maps a per-day series.
func ToDailyActivity(ds []DailyActivityDTO) ([]model.DailyActivity, error) {
	out := make([]model.DailyActivity, 0, len(ds))
	for _, d := range ds {
		if err := check("daily activity", d); err != nil {
			return nil, err
		}
		out = append(out, model.DailyActivity{
			Date:     d.Date,
			Messages: intOr(d.Messages, 0),
			Tokens:   intOr(d.Tokens, 0),
		})
	}
	return out, nil
}

type EventRequest struct {
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
}

type FeedbackRequest struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Rating   int    `json:"rating,omitempty"`
}
