// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// ProjectRole is the current user's standing in a project.
type ProjectRole string

const (
	ProjectRoleOwner     ProjectRole = "owner"
	ProjectRoleAdmin     ProjectRole = "admin"
	ProjectRoleModerator ProjectRole = "moderator"
	ProjectRoleViewer    ProjectRole = "viewer"
	ProjectRoleNone      ProjectRole = ""
)

// CollaboratorRoles lists the roles that can be granted to a collaborator.
var CollaboratorRoles = []ProjectRole{ProjectRoleAdmin, ProjectRoleModerator, ProjectRoleViewer}

// ValidCollaboratorRole reports whether r can be assigned to a collaborator.
func ValidCollaboratorRole(r ProjectRole) bool {
	for _, role := range CollaboratorRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Permissions are explicit permission bits returned by the server.
type Permissions struct {
	CanEdit        bool
	CanDelete      bool
	CanInvite      bool
	CanManageRoles bool
}

// FullPermissions grants everything.
func FullPermissions() Permissions {
	return Permissions{CanEdit: true, CanDelete: true, CanInvite: true, CanManageRoles: true}
}

// Collaborator is a membership edge between a user and a project. Its
// permissions come from the server and are not derived from Role.
type Collaborator struct {
	ID          string
	UserID      string
	Role        ProjectRole
	Permissions Permissions
	User        *User
	JoinedAt    *time.Time
}

// Project is a collaboration container with shared context for the assistant.
type Project struct {
	ID                string
	Name              string
	Description       *string
	Permissions       Permissions
	Collaborators     []Collaborator
	Instructions      *string
	Context           *string
	Emoji             *string
	Color             *string
	IsOwner           bool
	ConversationCount int
	CreatedAt         *time.Time
	UpdatedAt         *time.Time
}

// MyRole derives the role of userID from collaborator membership.
func (p Project) MyRole(userID string) ProjectRole {
	if p.IsOwner {
		return ProjectRoleOwner
	}
	for _, c := range p.Collaborators {
		if c.UserID == userID {
			return c.Role
		}
	}
	return ProjectRoleNone
}

// Collaborator returns the membership record for userID.
func (p Project) Collaborator(userID string) (Collaborator, bool) {
	for _, c := range p.Collaborators {
		if c.UserID == userID {
			return c, true
		}
	}
	return Collaborator{}, false
}

// ProjectInput is used to create or update a project.
type ProjectInput struct {
	Name         string  `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
	Emoji        *string `json:"emoji,omitempty"`
	Color        *string `json:"color,omitempty"`
}

// ProjectContext is the shared context the assistant receives for every
// conversation in a project.
type ProjectContext struct {
	Instructions *string
	Context      *string
	Files        []Attachment
	UpdatedAt    *time.Time
}

// InvitationStatus is the lifecycle state of a project invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation is an invitation to join a project.
type Invitation struct {
	ID          string
	ProjectID   string
	ProjectName string
	InviterName *string
	Email       *string
	Role        ProjectRole
	Status      InvitationStatus
	CreatedAt   *time.Time
	ExpiresAt   *time.Time
}
