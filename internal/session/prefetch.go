// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"

	"github.com/baatcheet/baatcheet-cli/internal/model"
	"go.uber.org/zap"
)

// ProfileLoader loads the user's profile.
type ProfileLoader interface {
	Profile(ctx context.Context) (model.Profile, error)
}

// ChatInfoLoader loads quota usage and the available modes.
type ChatInfoLoader interface {
	Usage(ctx context.Context) (model.UsageInfo, error)
	Modes(ctx context.Context) ([]model.AIMode, error)
}

// Prefetched is whatever loaded successfully. Missing parts are nil.
type Prefetched struct {
	Profile *model.Profile
	Usage   *model.UsageInfo
	Modes   []model.AIMode
}

// Prefetch loads profile, usage and modes in parallel after sign-in.
// Failures are logged and leave the corresponding field nil; they never
// fail the whole prefetch.
func Prefetch(ctx context.Context, profiles ProfileLoader, chat ChatInfoLoader, logger *zap.Logger) Prefetched {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		out Prefetched
		mu  sync.Mutex
		wg  sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		p, err := profiles.Profile(ctx)
		if err != nil {
			logger.Warn("prefetch profile failed", zap.Error(err))
			return
		}
		mu.Lock()
		out.Profile = &p
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		u, err := chat.Usage(ctx)
		if err != nil {
			logger.Warn("prefetch usage failed", zap.Error(err))
			return
		}
		mu.Lock()
		out.Usage = &u
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		modes, err := chat.Modes(ctx)
		if err != nil {
			logger.Warn("prefetch modes failed", zap.Error(err))
			return
		}
		mu.Lock()
		out.Modes = modes
		mu.Unlock()
	}()
	wg.Wait()
	return out
}
