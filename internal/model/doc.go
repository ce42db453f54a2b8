// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the domain types of the BaatCheet client.
//
// Everything in this package is post-mapping: wire DTOs are converted into
// these types exactly once, in package dto, and nothing here knows about
// JSON field names or response envelopes.
//
// # Key Types
//
//   - User: identity and entitlement tier, with derived DisplayName/Initials
//   - Conversation, ChatMessage: chat history and the streaming placeholder
//   - Project, Collaborator, Invitation: collaboration containers
//   - AuthResult: closed sum type (AuthSuccess | AuthNeedsVerification | AuthFailure)
//   - FileUploadStatus: closed sum type for server-side file processing
//   - AIMode, UsageInfo, PromptAnalysis: server-reported descriptive snapshots
//
// # Usage
//
// Handle an authentication result exhaustively:
//
//	switch r := result.(type) {
//	case model.AuthSuccess:
//	    fmt.Println("welcome", r.User.DisplayName())
//	case model.AuthNeedsVerification:
//	    fmt.Println("check your inbox:", r.Email)
//	case model.AuthFailure:
//	    fmt.Println("sign-in failed:", r.Err)
//	}
package model
