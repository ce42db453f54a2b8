// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/baatcheet/baatcheet-cli/internal/model"
	"github.com/baatcheet/baatcheet-cli/internal/repository"
)

// ProfileService is the profile façade as seen by ProfileUseCase.
type ProfileService interface {
	UpdateProfile(ctx context.Context, u model.ProfileUpdate) (model.Profile, error)
	Teach(ctx context.Context, fact, category string) error
	UploadAvatar(ctx context.Context, f model.FileData) (string, error)
}

type factInput struct {
	Fact string `validate:"required,max=500"`
}

// ProfileUseCase validates profile edits.
type ProfileUseCase struct {
	profile ProfileService
}

// NewProfileUseCase creates a ProfileUseCase.
func NewProfileUseCase(profile ProfileService) *ProfileUseCase {
	return &ProfileUseCase{profile: profile}
}

// Update normalizes the changed fields and applies them. An update with
// no fields set is rejected.
func (u *ProfileUseCase) Update(ctx context.Context, in model.ProfileUpdate) (model.Profile, error) {
	in.FirstName = normalizePtr(in.FirstName)
	in.LastName = normalizePtr(in.LastName)
	in.Bio = normalizePtr(in.Bio)
	in.Occupation = normalizePtr(in.Occupation)
	in.CustomInstructions = normalizePtr(in.CustomInstructions)
	if in.Interests != nil {
		interests := make([]string, 0, len(in.Interests))
		for _, s := range in.Interests {
			if s = normalize(s); s != "" {
				interests = append(interests, s)
			}
		}
		in.Interests = interests
	}
	if emptyUpdate(in) {
		return model.Profile{}, &repository.ProfileError{Code: repository.ProfileUpdateFailed, Message: "Nothing to update"}
	}
	return u.profile.UpdateProfile(ctx, in)
}

func emptyUpdate(in model.ProfileUpdate) bool {
	return in.FirstName == nil && in.LastName == nil && in.Bio == nil &&
		in.Occupation == nil && in.CustomInstructions == nil && in.Interests == nil
}

// Teach stores a fact about the user.
func (u *ProfileUseCase) Teach(ctx context.Context, fact, category string) error {
	fact = normalize(fact)
	if _, msg, bad := invalid(factInput{Fact: fact}); bad {
		return &repository.ProfileError{Code: repository.ProfileTeachFailed, Message: msg}
	}
	return u.profile.Teach(ctx, fact, strings.ToLower(normalize(category)))
}

// UploadAvatar checks that data is an image and uploads it.
func (u *ProfileUseCase) UploadAvatar(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &repository.ProfileError{Code: repository.ProfileUploadFailed, Message: "Image is empty"}
	}
	if len(data) > MaxAvatarSize {
		return "", &repository.ProfileError{
			Code:    repository.ProfileUploadFailed,
			Message: fmt.Sprintf("Image is larger than %d MB", MaxAvatarSize>>20),
		}
	}
	mt := detectMIME(data)
	if !strings.HasPrefix(mt, "image/") {
		return "", &repository.ProfileError{Code: repository.ProfileUploadFailed, Message: "Avatar must be an image, got " + mt}
	}
	return u.profile.UploadAvatar(ctx, model.FileData{Filename: filepath.Base(name), MIMEType: mt, Data: data})
}
