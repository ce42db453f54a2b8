// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig configures the optional circuit breaker. The breaker never
// retries; once open it fails calls immediately with NetworkError until
// Timeout has elapsed.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig trips at 80% failures over at least 5 requests.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// errServerStatus marks a 5xx as a breaker failure without losing the response.
var errServerStatus = errors.New("server status")

// WithCircuitBreaker enables the breaker. Network failures and 5xx responses
// count as failures; 4xx responses do not.
func (c *Client) WithCircuitBreaker(cfg BreakerConfig) *Client {
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "baatcheet-api",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Info("circuit breaker state changed",
				zap.String("name", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})
	return c
}

// exchange runs roundTrip through the breaker when one is configured.
func (c *Client) exchange(req *http.Request) (int, []byte, error) {
	if c.breaker == nil {
		return c.roundTrip(req)
	}

	var (
		status int
		data   []byte
	)
	_, err := c.breaker.Execute(func() (interface{}, error) {
		var err error
		status, data, err = c.roundTrip(req)
		if err != nil {
			return nil, err
		}
		if status >= 500 {
			return nil, errServerStatus
		}
		return nil, nil
	})

	switch {
	case err == nil, errors.Is(err, errServerStatus):
		return status, data, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return 0, nil, &Error{Kind: KindNetwork, Message: "circuit breaker open", Err: err}
	default:
		return status, data, err
	}
}
