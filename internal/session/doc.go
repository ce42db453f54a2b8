// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the client-side state that outlives a single call.
//
// # Key Types
//
//   - AuthFlow: the authentication state machine (idle, loading,
//     authenticated, needsVerification, error, unauthenticated)
//   - ChatThread: the visible message list of one conversation, with a
//     streaming placeholder per in-flight send
//   - Prefetch: parallel startup load of profile, usage and modes
//
// # Usage
//
//	flow := session.NewAuthFlow(authUseCase, logger)
//	flow.OnChange(func(s session.Snapshot) { render(s) })
//	result, err := flow.SignIn(ctx, email, password)
//
// Chat sends are correlated with their placeholder by a request id, so a
// reply always lands on the placeholder it belongs to. Replies that arrive
// after NewChat are dropped.
package session
