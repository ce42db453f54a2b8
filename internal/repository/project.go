// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repository

import (
	"context"
	"strings"

	"github.com/baatcheet/baatcheet-cli/internal/api"
	"github.com/baatcheet/baatcheet-cli/internal/dto"
	"github.com/baatcheet/baatcheet-cli/internal/model"
	"go.uber.org/zap"
)

// ProjectRepository covers projects, their chat, context, collaborators
// and invitations.
type ProjectRepository struct {
	transport Transport
	logger    *zap.Logger
}

// NewProjectRepository creates a project façade.
func NewProjectRepository(t Transport, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{transport: t, logger: orNop(logger).Named("project")}
}

// Projects lists projects the user owns or collaborates on.
func (r *ProjectRepository) Projects(ctx context.Context) ([]model.Project, error) {
	items, err := fetchList[dto.ProjectDTO](ctx, r.transport, api.Request{Endpoint: api.Projects()}, "Failed to load projects")
	if err != nil {
		return nil, toProjectError(err)
	}
	projects, err := dto.ToProjects(items)
	return projects, toProjectError(err)
}

// CreateProject creates a project owned by the user.
func (r *ProjectRepository) CreateProject(ctx context.Context, in model.ProjectInput) (model.Project, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.Project{}, &ProjectError{Code: ProjectInvalidName, Message: "Project name is required"}
	}
	req := api.Request{Endpoint: api.CreateProject(), Body: dto.FromProjectInput(in)}
	return r.project(ctx, req, "Failed to create project")
}

// Project loads one project.
func (r *ProjectRepository) Project(ctx context.Context, id string) (model.Project, error) {
	return r.project(ctx, api.Request{Endpoint: api.Project(id)}, "Failed to load project")
}

// UpdateProject patches a project. Empty fields are left unchanged.
func (r *ProjectRepository) UpdateProject(ctx context.Context, id string, in model.ProjectInput) (model.Project, error) {
	req := api.Request{Endpoint: api.UpdateProject(id), Body: dto.FromProjectInput(in)}
	return r.project(ctx, req, "Failed to update project")
}

func (r *ProjectRepository) project(ctx context.Context, req api.Request, fallback string) (model.Project, error) {
	payload, err := fetch[dto.ProjectDTO](ctx, r.transport, req, fallback)
	if err != nil {
		return model.Project{}, toProjectError(err)
	}
	p, err := dto.ToProject(payload)
	return p, toProjectError(err)
}

// DeleteProject removes a project. Only the owner may do this.
func (r *ProjectRepository) DeleteProject(ctx context.Context, id string) error {
	return toProjectError(exec(ctx, r.transport, api.Request{Endpoint: api.DeleteProject(id)}, "Failed to delete project"))
}

// Conversations lists a project's conversations.
func (r *ProjectRepository) Conversations(ctx context.Context, id string) ([]model.Conversation, error) {
	items, err := fetchList[dto.ConversationDTO](ctx, r.transport, api.Request{Endpoint: api.ProjectConversations(id)}, "Failed to load conversations")
	if err != nil {
		return nil, toProjectError(err)
	}
	convs, err := dto.ToConversations(items)
	return convs, toProjectError(err)
}

// =============================================================================
// PROJECT CHAT
// =============================================================================

// Messages returns the project's shared chat.
func (r *ProjectRepository) Messages(ctx context.Context, id string) ([]model.ChatMessage, error) {
	items, err := fetchList[dto.MessageDTO](ctx, r.transport, api.Request{Endpoint: api.ProjectChatMessages(id)}, "Failed to load messages")
	if err != nil {
		return nil, toProjectError(err)
	}
	msgs, err := dto.ToMessages(items)
	return msgs, toProjectError(err)
}

// SendMessage posts to the project's shared chat and returns the stored
// message.
func (r *ProjectRepository) SendMessage(ctx context.Context, id, content string) (model.ChatMessage, error) {
	req := api.Request{Endpoint: api.SendProjectChatMessage(id), Body: dto.SendMessageRequest{Message: content}}
	payload, err := fetch[dto.MessageDTO](ctx, r.transport, req, "Failed to send message")
	if err != nil {
		return model.ChatMessage{}, toProjectError(err)
	}
	msg, err := dto.ToMessage(payload)
	return msg, toProjectError(err)
}

// =============================================================================
// CONTEXT
// =============================================================================

// Context returns the instructions and files attached to a project.
func (r *ProjectRepository) Context(ctx context.Context, id string) (model.ProjectContext, error) {
	payload, err := fetch[dto.ProjectContextDTO](ctx, r.transport, api.Request{Endpoint: api.ProjectContext(id)}, "Failed to load project context")
	if err != nil {
		return model.ProjectContext{}, toProjectError(err)
	}
	pc, err := dto.ToProjectContext(payload)
	return pc, toProjectError(err)
}

// UpdateContext replaces the project's instructions and context text.
func (r *ProjectRepository) UpdateContext(ctx context.Context, id string, instructions, text *string) (model.ProjectContext, error) {
	req := api.Request{Endpoint: api.UpdateProjectContext(id), Body: dto.ProjectContextRequest{
		Instructions: instructions,
		Context:      text,
	}}
	payload, err := fetchOptional[dto.ProjectContextDTO](ctx, r.transport, req, "Failed to update project context")
	if err != nil {
		return model.ProjectContext{}, toProjectError(err)
	}
	if payload == nil {
		r.logger.Debug("context update returned no body", zap.String("project", id))
		return model.ProjectContext{Instructions: instructions, Context: text}, nil
	}
	pc, err := dto.ToProjectContext(*payload)
	return pc, toProjectError(err)
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Collaborators lists a project's members.
func (r *ProjectRepository) Collaborators(ctx context.Context, id string) ([]model.Collaborator, error) {
	items, err := fetchList[dto.CollaboratorDTO](ctx, r.transport, api.Request{Endpoint: api.Collaborators(id)}, "Failed to load collaborators")
	if err != nil {
		return nil, toProjectError(err)
	}
	cs, err := dto.ToCollaborators(items)
	return cs, toProjectError(err)
}

// Invite sends a collaboration invitation.
func (r *ProjectRepository) Invite(ctx context.Context, id, email string, role model.ProjectRole) error {
	req := api.Request{Endpoint: api.InviteCollaborator(id), Body: dto.InviteRequest{Email: email, Role: string(role)}}
	return toProjectError(exec(ctx, r.transport, req, "Failed to send invitation"))
}

// UpdateRole changes a collaborator's role.
func (r *ProjectRepository) UpdateRole(ctx context.Context, projectID, userID string, role model.ProjectRole) error {
	req := api.Request{Endpoint: api.UpdateCollaboratorRole(projectID, userID), Body: dto.RoleRequest{Role: string(role)}}
	return toProjectError(exec(ctx, r.transport, req, "Failed to update role"))
}

// RemoveCollaborator removes a member from a project.
func (r *ProjectRepository) RemoveCollaborator(ctx context.Context, projectID, userID string) error {
	req := api.Request{Endpoint: api.RemoveCollaborator(projectID, userID)}
	return toProjectError(exec(ctx, r.transport, req, "Failed to remove collaborator"))
}

// Leave removes the user from a project they do not own.
func (r *ProjectRepository) Leave(ctx context.Context, id string) error {
	return toProjectError(exec(ctx, r.transport, api.Request{Endpoint: api.LeaveProject(id)}, "Failed to leave project"))
}

// =============================================================================
// INVITATIONS
// =============================================================================

// PendingInvitations lists invitations addressed to the user.
func (r *ProjectRepository) PendingInvitations(ctx context.Context) ([]model.Invitation, error) {
	items, err := fetchList[dto.InvitationDTO](ctx, r.transport, api.Request{Endpoint: api.PendingInvitations()}, "Failed to load invitations")
	if err != nil {
		return nil, toProjectError(err)
	}
	invs, err := dto.ToInvitations(items)
	return invs, toProjectError(err)
}

// AcceptInvitation joins the inviting project.
func (r *ProjectRepository) AcceptInvitation(ctx context.Context, id string) error {
	return toProjectError(exec(ctx, r.transport, api.Request{Endpoint: api.AcceptInvitation(id)}, "Failed to accept invitation"))
}

// DeclineInvitation rejects an invitation.
func (r *ProjectRepository) DeclineInvitation(ctx context.Context, id string) error {
	return toProjectError(exec(ctx, r.transport, api.Request{Endpoint: api.DeclineInvitation(id)}, "Failed to decline invitation"))
}
