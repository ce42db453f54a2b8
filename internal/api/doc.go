// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the transport layer of the BaatCheet client.
//
// It owns three things: the endpoint catalog (every backend route, as a
// closed set of constructors), the HTTP client that builds requests,
// attaches the bearer token and classifies responses, and the JSON key
// translation between the backend's snake_case and the camelCase used by
// the DTO layer.
//
// # Key Types
//
//   - Endpoint: a backend route with its canonical method, auth flag and call class
//   - Client: performs a request and decodes the response or returns *Error
//   - Error: the transport error taxonomy (Unauthorized, ServerError, NetworkError, ...)
//   - File, FormField: multipart upload inputs
//
// # Usage
//
//	client := api.NewClient("https://api.baatcheet.app", store).
//	    WithLogger(logger)
//
//	var env dto.Envelope[dto.UserDTO]
//	err := client.Do(ctx, api.Request{Endpoint: api.CurrentUser()}, &env)
//	if errors.Is(err, api.ErrUnauthorized) {
//	    // token missing or expired
//	}
//
// # Security
//
// The Authorization header is attached here and nowhere else. Request and
// response logging records method, path, status and duration only; headers
// and bodies are never logged.
package api
