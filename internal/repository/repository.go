// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package repository holds the façades that sit between use cases and the
// transport. Each operation issues one call (or a short fixed sequence),
// unwraps the response envelope, maps DTOs to domain models and reports
// failures in the façade's own error family. Nothing here retries.
package repository

import (
	"context"

	"github.com/baatcheet/baatcheet-cli/internal/api"
	"github.com/baatcheet/baatcheet-cli/internal/dto"
	"github.com/baatcheet/baatcheet-cli/internal/model"
	"go.uber.org/zap"
)

// Transport is the part of *api.Client the façades depend on.
type Transport interface {
	Do(ctx context.Context, req api.Request, out any) error
	Upload(ctx context.Context, ep api.Endpoint, file api.File, fields []api.FormField, out any) error
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// fetch performs req and returns the envelope payload.
func fetch[T any](ctx context.Context, t Transport, req api.Request, fallback string) (T, error) {
	var env dto.Envelope[T]
	if err := t.Do(ctx, req, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Value(fallback)
}

// fetchOptional is fetch for operations whose payload may be absent.
func fetchOptional[T any](ctx context.Context, t Transport, req api.Request, fallback string) (*T, error) {
	var env dto.Envelope[T]
	if err := t.Do(ctx, req, &env); err != nil {
		return nil, err
	}
	return env.Optional(fallback)
}

// fetchList performs req and normalizes the list payload.
func fetchList[T any](ctx context.Context, t Transport, req api.Request, fallback string) ([]T, error) {
	var env dto.Envelope[dto.List[T]]
	if err := t.Do(ctx, req, &env); err != nil {
		return nil, err
	}
	return dto.Items(env, fallback)
}

// exec performs req and only checks the envelope's success flag.
func exec(ctx context.Context, t Transport, req api.Request, fallback string) error {
	var env dto.Envelope[any]
	if err := t.Do(ctx, req, &env); err != nil {
		return err
	}
	if env.Success == nil {
		// Bodies like {"message":"ok"} or an empty 204 carry no flag.
		if nonEmptyPtr(env.Error) {
			return env.Err(fallback)
		}
		return nil
	}
	return env.Err(fallback)
}

// upload sends file as multipart and returns the envelope payload.
func upload[T any](ctx context.Context, t Transport, ep api.Endpoint, field string, f model.FileData, fields []api.FormField, fallback string) (T, error) {
	var env dto.Envelope[T]
	file := api.File{Field: field, Filename: f.Filename, MIMEType: f.MIMEType, Data: f.Data}
	if err := t.Upload(ctx, ep, file, fields, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Value(fallback)
}

func nonEmptyPtr(s *string) bool {
	return s != nil && *s != ""
}

