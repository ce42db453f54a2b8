// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import (
	"strings"

	"github.com/baatcheet/baatcheet-cli/internal/model"
)

// PermissionsDTO is the wire permission block.
type PermissionsDTO struct {
	CanEdit        *bool `json:"canEdit"`
	CanDelete      *bool `json:"canDelete"`
	CanInvite      *bool `json:"canInvite"`
	CanManageRoles *bool `json:"canManageRoles"`
}

// toPermissions fills every absent flag with def.
func toPermissions(d *PermissionsDTO, def bool) model.Permissions {
	if d == nil {
		return model.Permissions{CanEdit: def, CanDelete: def, CanInvite: def, CanManageRoles: def}
	}
	return model.Permissions{
		CanEdit:        boolOr(d.CanEdit, def),
		CanDelete:      boolOr(d.CanDelete, def),
		CanInvite:      boolOr(d.CanInvite, def),
		CanManageRoles: boolOr(d.CanManageRoles, def),
	}
}

// CollaboratorDTO is a project member.
type CollaboratorDTO struct {
	ID          string          `json:"id" validate:"required"`
	UserID      *string         `json:"userId"`
	Role        string          `json:"role"`
	Permissions *PermissionsDTO `json:"permissions"`
	User        *UserDTO        `json:"user"`
	JoinedAt    *string         `json:"joinedAt"`
	CreatedAt   *string         `json:"createdAt"`
}

// ToCollaborator maps a collaborator. Permissions come from the wire only;
// absent flags are false regardless of role.
func ToCollaborator(d CollaboratorDTO) (model.Collaborator, error) {
	if err := check("collaborator", d); err != nil {
		return model.Collaborator{}, err
	}
	c := model.Collaborator{
		ID:          d.ID,
		Role:        model.ProjectRole(strings.ToLower(strings.TrimSpace(d.Role))),
		Permissions: toPermissions(d.Permissions, false),
		JoinedAt:    firstTime(d.JoinedAt, d.CreatedAt),
	}
	if d.User != nil {
		u, err := ToUser(*d.User)
		if err != nil {
			return model.Collaborator{}, err
		}
		c.User = &u
	}
	switch {
	case optional(d.UserID) != nil:
		c.UserID = *d.UserID
	case c.User != nil:
		c.UserID = c.User.ID
	default:
		return model.Collaborator{}, mappingErr("collaborator", "userId is required")
	}
	return c, nil
}

// ToCollaborators maps a collaborator list.
func ToCollaborators(ds []CollaboratorDTO) ([]model.Collaborator, error) {
	out := make([]model.Collaborator, 0, len(ds))
	for _, d := range ds {
		c, err := ToCollaborator(d)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ProjectDTO is a wire project.
type ProjectDTO struct {
	ID                string            `json:"id" validate:"required"`
	Name              string            `json:"name"`
	Description       *string           `json:"description"`
	Permissions       *PermissionsDTO   `json:"permissions"`
	Collaborators     []CollaboratorDTO `json:"collaborators"`
	Instructions      *string           `json:"instructions"`
	Context           *string           `json:"context"`
	Emoji             *string           `json:"emoji"`
	Color             *string           `json:"color"`
	IsOwner           *bool             `json:"isOwner"`
	ConversationCount *int              `json:"conversationCount"`
	CreatedAt         *string           `json:"createdAt"`
	UpdatedAt         *string           `json:"updatedAt"`
}

// ToProject maps a project. isOwner defaults to true and absent permission
// flags to isOwner.
func ToProject(d ProjectDTO) (model.Project, error) {
	if err := check("project", d); err != nil {
		return model.Project{}, err
	}
	isOwner := boolOr(d.IsOwner, true)
	collabs, err := ToCollaborators(d.Collaborators)
	if err != nil {
		return model.Project{}, err
	}
	return model.Project{
		ID:                d.ID,
		Name:              d.Name,
		Description:       optional(d.Description),
		Permissions:       toPermissions(d.Permissions, isOwner),
		Collaborators:     collabs,
		Instructions:      optional(d.Instructions),
		Context:           optional(d.Context),
		Emoji:             optional(d.Emoji),
		Color:             optional(d.Color),
		IsOwner:           isOwner,
		ConversationCount: intOr(d.ConversationCount, 0),
		CreatedAt:         ParseTime(d.CreatedAt),
		UpdatedAt:         ParseTime(d.UpdatedAt),
	}, nil
}

// ToProjects maps a project list.
func ToProjects(ds []ProjectDTO) ([]model.Project, error) {
	out := make([]model.Project, 0, len(ds))
	for _, d := range ds {
		p, err := ToProject(d)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ProjectRequest is the create/update body.
type ProjectRequest struct {
	Name         string  `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
	Emoji        *string `json:"emoji,omitempty"`
	Color        *string `json:"color,omitempty"`
}

// FromProjectInput builds the create/update body.
func FromProjectInput(in model.ProjectInput) ProjectRequest {
	return ProjectRequest{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Instructions: in.Instructions,
		Emoji:        in.Emoji,
		Color:        in.Color,
	}
}

// ProjectContextDTO is the project knowledge block.
type ProjectContextDTO struct {
	Instructions *string   `json:"instructions"`
	Context      *string   `json:"context"`
	Files        []FileDTO `json:"files"`
	UpdatedAt    *string   `json:"updatedAt"`
}

// ToProjectContext maps a project context.
func ToProjectContext(d ProjectContextDTO) (model.ProjectContext, error) {
	pc := model.ProjectContext{
		Instructions: optional(d.Instructions),
		Context:      optional(d.Context),
		UpdatedAt:    ParseTime(d.UpdatedAt),
		Files:        make([]model.Attachment, 0, len(d.Files)),
	}
	for _, f := range d.Files {
		a, err := ToAttachment(f)
		if err != nil {
			return model.ProjectContext{}, err
		}
		pc.Files = append(pc.Files, a)
	}
	return pc, nil
}

type ProjectContextRequest struct {
	Instructions *string `json:"instructions,omitempty"`
	Context      *string `json:"context,omitempty"`
}

type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type RoleRequest struct {
	Role string `json:"role"`
}

// ProjectRefDTO is the nested project of an invitation.
type ProjectRefDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InvitationDTO is a pending project invitation.
type InvitationDTO struct {
	ID          string         `json:"id" validate:"required"`
	ProjectID   *string        `json:"projectId"`
	ProjectName *string        `json:"projectName"`
	Project     *ProjectRefDTO `json:"project"`
	InviterName *string        `json:"inviterName"`
	InvitedBy   *UserDTO       `json:"invitedBy" validate:"-"`
	Email       *string        `json:"email"`
	Role        string         `json:"role"`
	Status      *string        `json:"status"`
	CreatedAt   *string        `json:"createdAt"`
	ExpiresAt   *string        `json:"expiresAt"`
}

// ToInvitation maps an invitation. The project id is required, either flat
// or nested; status defaults to pending.
func ToInvitation(d InvitationDTO) (model.Invitation, error) {
	if err := check("invitation", d); err != nil {
		return model.Invitation{}, err
	}
	inv := model.Invitation{
		ID:          d.ID,
		InviterName: optional(d.InviterName),
		Email:       optional(d.Email),
		Role:        model.ProjectRole(strings.ToLower(strings.TrimSpace(d.Role))),
		Status:      model.InvitationStatus(stringOr(d.Status, string(model.InvitationPending))),
		CreatedAt:   ParseTime(d.CreatedAt),
		ExpiresAt:   ParseTime(d.ExpiresAt),
	}

	switch {
	case optional(d.ProjectID) != nil:
		inv.ProjectID = *d.ProjectID
	case d.Project != nil && d.Project.ID != "":
		inv.ProjectID = d.Project.ID
	default:
		return model.Invitation{}, mappingErr("invitation", "projectId is required")
	}
	if name := optional(d.ProjectName); name != nil {
		inv.ProjectName = *name
	} else if d.Project != nil {
		inv.ProjectName = d.Project.Name
	}
	if inv.InviterName == nil && d.InvitedBy != nil {
		if u, err := ToUser(*d.InvitedBy); err == nil {
			name := u.DisplayName()
			inv.InviterName = &name
		}
	}
	return inv, nil
}

// ToInvitations maps an invitation list.
func ToInvitations(ds []InvitationDTO) ([]model.Invitation, error) {
	out := make([]model.Invitation, 0, len(ds))
	for _, d := range ds {
		inv, err := ToInvitation(d)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}
