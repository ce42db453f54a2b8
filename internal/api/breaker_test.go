// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_OpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"down"}`)
	}, nil)
	client.WithCircuitBreaker(BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	})

	for i := 0; i < 2; i++ {
		err := client.Do(context.Background(), Request{Endpoint: Profile()}, nil)
		assert.True(t, errors.Is(err, ErrServer), "got %v", err)
		assert.Equal(t, "down", MessageOf(err))
	}

	err := client.Do(context.Background(), Request{Endpoint: Profile()}, nil)
	assert.True(t, errors.Is(err, ErrNetwork), "got %v", err)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(2), hits.Load())
}

func TestCircuitBreaker_IgnoresClientErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, nil)
	client.WithCircuitBreaker(BreakerConfig{MinRequests: 1, FailureThreshold: 0.1, Timeout: time.Minute})

	for i := 0; i < 5; i++ {
		err := client.Do(context.Background(), Request{Endpoint: Project("p1")}, nil)
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	}
}
