// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repository

import (
	"context"
	"net/url"
	"strconv"

	"github.com/baatcheet/baatcheet-cli/internal/api"
	"github.com/baatcheet/baatcheet-cli/internal/dto"
	"github.com/baatcheet/baatcheet-cli/internal/model"
	"go.uber.org/zap"
)

// AnalyticsRepository reads usage statistics and records client events.
type AnalyticsRepository struct {
	transport Transport
	logger    *zap.Logger
}

// NewAnalyticsRepository creates an analytics façade.
func NewAnalyticsRepository(t Transport, logger *zap.Logger) *AnalyticsRepository {
	return &AnalyticsRepository{transport: t, logger: orNop(logger).Named("analytics")}
}

// Summary returns lifetime totals plus recent daily activity.
func (r *AnalyticsRepository) Summary(ctx context.Context) (model.AnalyticsSummary, error) {
	payload, err := fetch[dto.AnalyticsSummaryDTO](ctx, r.transport, api.Request{Endpoint: api.AnalyticsSummary()}, "Failed to load analytics")
	if err != nil {
		return model.AnalyticsSummary{}, toAnalyticsError(err)
	}
	s, err := dto.ToAnalyticsSummary(payload)
	if err != nil {
		return model.AnalyticsSummary{}, toAnalyticsError(err)
	}
	return s, nil
}

// Usage returns per-day activity for the last days days. Zero uses the
// server default.
func (r *AnalyticsRepository) Usage(ctx context.Context, days int) ([]model.DailyActivity, error) {
	req := api.Request{Endpoint: api.AnalyticsUsage()}
	if days > 0 {
		req.Query = url.Values{"days": {strconv.Itoa(days)}}
	}
	items, err := fetchList[dto.DailyActivityDTO](ctx, r.transport, req, "Failed to load usage")
	if err != nil {
		return nil, toAnalyticsError(err)
	}
	activity, err := dto.ToDailyActivity(items)
	if err != nil {
		return nil, toAnalyticsError(err)
	}
	return activity, nil
}

// TrackEvent records a client event. Failures are logged and returned;
// callers normally ignore them.
func (r *AnalyticsRepository) TrackEvent(ctx context.Context, ev model.AnalyticsEvent) error {
	req := api.Request{Endpoint: api.TrackEvent(), Body: dto.EventRequest{Name: ev.Name, Properties: ev.Properties}}
	if err := exec(ctx, r.transport, req, "Failed to record event"); err != nil {
		r.logger.Debug("event not recorded", zap.String("event", ev.Name), zap.Error(err))
		return toAnalyticsError(err)
	}
	return nil
}

// SubmitFeedback sends free-form product feedback.
func (r *AnalyticsRepository) SubmitFeedback(ctx context.Context, in model.FeedbackInput) error {
	req := api.Request{Endpoint: api.SubmitFeedback(), Body: dto.FeedbackRequest{
		Category: in.Category,
		Message:  in.Message,
		Rating:   in.Rating,
	}}
	if err := exec(ctx, r.transport, req, "Failed to submit feedback"); err != nil {
		return toAnalyticsError(err)
	}
	return nil
}
