// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dto holds the wire shapes of the BaatCheet backend and the rules
// that turn them into domain models.
//
// DTOs are tagged in camelCase; the transport rewrites the backend's
// snake_case keys before decoding. Every defaulting rule lives in a To*
// mapper and is applied exactly once, so mapping the same DTO twice yields
// equal models. A DTO missing a required identifier produces *MappingError
// instead of a model with an invented id.
//
// Irregular backend shapes are absorbed here:
//
//   - Envelope: {success, data, error, message}
//   - List: a bare array or an object wrapping it under one of several keys
//   - Tokens: a {prompt, completion, total} object or a bare integer
package dto
