// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repository

import (
	"context"

	"github.com/baatcheet/baatcheet-cli/internal/api"
	"github.com/baatcheet/baatcheet-cli/internal/dto"
	"github.com/baatcheet/baatcheet-cli/internal/model"
	"go.uber.org/zap"
)

// AvatarField is the multipart field name for avatar uploads.
const AvatarField = "avatar"

// ProfileRepository covers the user's profile, avatar and taught facts.
type ProfileRepository struct {
	transport Transport
	logger    *zap.Logger
}

// NewProfileRepository creates a profile façade.
func NewProfileRepository(t Transport, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{transport: t, logger: orNop(logger).Named("profile")}
}

// Profile loads the user's profile.
func (r *ProfileRepository) Profile(ctx context.Context) (model.Profile, error) {
	payload, err := fetch[dto.ProfileDTO](ctx, r.transport, api.Request{Endpoint: api.Profile()}, "Failed to load profile")
	if err != nil {
		return model.Profile{}, toProfileError(err, ProfileServerError)
	}
	p, err := dto.ToProfile(payload)
	return p, toProfileError(err, ProfileServerError)
}

// UpdateProfile patches the profile. Nil fields are left unchanged.
func (r *ProfileRepository) UpdateProfile(ctx context.Context, u model.ProfileUpdate) (model.Profile, error) {
	req := api.Request{Endpoint: api.UpdateProfile(), Body: dto.FromProfileUpdate(u)}
	payload, err := fetchOptional[dto.ProfileDTO](ctx, r.transport, req, "Failed to update profile")
	if err != nil {
		return model.Profile{}, toProfileError(err, ProfileUpdateFailed)
	}
	if payload == nil {
		r.logger.Debug("profile update returned no body, reading back")
		return r.Profile(ctx)
	}
	p, err := dto.ToProfile(*payload)
	return p, toProfileError(err, ProfileUpdateFailed)
}

// UploadAvatar replaces the avatar image and returns its URL.
func (r *ProfileRepository) UploadAvatar(ctx context.Context, f model.FileData) (string, error) {
	payload, err := upload[dto.AvatarDTO](ctx, r.transport, api.UploadAvatar(), AvatarField, f, nil, "Avatar upload failed")
	if err != nil {
		return "", toProfileError(err, ProfileUploadFailed)
	}
	url, err := dto.ToAvatarURL(payload)
	return url, toProfileError(err, ProfileUploadFailed)
}

// DeleteAvatar removes the avatar image.
func (r *ProfileRepository) DeleteAvatar(ctx context.Context) error {
	err := exec(ctx, r.transport, api.Request{Endpoint: api.DeleteAvatar()}, "Failed to remove avatar")
	return toProfileError(err, ProfileUpdateFailed)
}

// Teach stores a fact the assistant should remember about the user.
func (r *ProfileRepository) Teach(ctx context.Context, fact, category string) error {
	req := api.Request{Endpoint: api.TeachAI(), Body: dto.TeachRequest{Fact: fact, Category: category}}
	return toProfileError(exec(ctx, r.transport, req, "Failed to teach fact"), ProfileTeachFailed)
}

// Facts lists the taught facts.
func (r *ProfileRepository) Facts(ctx context.Context) ([]model.ProfileFact, error) {
	items, err := fetchList[dto.FactDTO](ctx, r.transport, api.Request{Endpoint: api.ProfileFacts()}, "Failed to load facts")
	if err != nil {
		return nil, toProfileError(err, ProfileServerError)
	}
	facts, err := dto.ToFacts(items)
	return facts, toProfileError(err, ProfileServerError)
}

// DeleteFact forgets a taught fact.
func (r *ProfileRepository) DeleteFact(ctx context.Context, id string) error {
	err := exec(ctx, r.transport, api.Request{Endpoint: api.DeleteProfileFact(id)}, "Failed to delete fact")
	return toProfileError(err, ProfileUpdateFailed)
}

// DeleteAccount permanently deletes the account. Local credentials are
// not touched here; see AuthRepository.ClearSession.
func (r *ProfileRepository) DeleteAccount(ctx context.Context, password string) error {
	req := api.Request{Endpoint: api.DeleteAccount(), Body: dto.DeleteAccountRequest{Password: password}}
	return toProfileError(exec(ctx, r.transport, req, "Failed to delete account"), ProfileServerError)
}
