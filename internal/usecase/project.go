// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package usecase

import (
	"context"
	"strings"

	"github.com/baatcheet/baatcheet-cli/internal/model"
	"github.com/baatcheet/baatcheet-cli/internal/repository"
)

// ProjectService is the project façade as seen by ProjectUseCase.
type ProjectService interface {
	CreateProject(ctx context.Context, in model.ProjectInput) (model.Project, error)
	Invite(ctx context.Context, projectID, email string, role model.ProjectRole) error
}

type projectNameInput struct {
	Name string `validate:"required,max=100"`
}

type inviteInput struct {
	Email string `validate:"required,email"`
	Role  string `validate:"required,oneof=admin moderator viewer"`
}

// ProjectUseCase validates project creation and invitations.
type ProjectUseCase struct {
	projects ProjectService
}

// NewProjectUseCase creates a ProjectUseCase.
func NewProjectUseCase(projects ProjectService) *ProjectUseCase {
	return &ProjectUseCase{projects: projects}
}

// Create validates the name (non-empty, at most 100 characters) and
// creates the project.
func (u *ProjectUseCase) Create(ctx context.Context, in model.ProjectInput) (model.Project, error) {
	in.Name = normalize(in.Name)
	in.Description = normalizePtr(in.Description)
	in.Instructions = normalizePtr(in.Instructions)
	if _, msg, bad := invalid(projectNameInput{Name: in.Name}); bad {
		return model.Project{}, &repository.ProjectError{Code: repository.ProjectInvalidName, Message: msg}
	}
	return u.projects.CreateProject(ctx, in)
}

// Invite validates the address and role and sends the invitation.
func (u *ProjectUseCase) Invite(ctx context.Context, projectID, email string, role model.ProjectRole) error {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return &repository.ProjectError{Code: repository.ProjectInvalidID, Message: "Invalid project id"}
	}
	email = normalizeEmail(email)
	role = model.ProjectRole(strings.ToLower(strings.TrimSpace(string(role))))
	if _, msg, bad := invalid(inviteInput{Email: email, Role: string(role)}); bad {
		return &repository.ProjectError{Code: repository.ProjectInvalidInput, Message: msg}
	}
	return u.projects.Invite(ctx, projectID, email, role)
}
