// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Class selects the timeout applied to a call.
type Class int

const (
	ClassDefault Class = iota
	ClassUpload
	ClassImage
)

// String returns the class name used in logs.
func (c Class) String() string {
	switch c {
	case ClassUpload:
		return "upload"
	case ClassImage:
		return "image"
	default:
		return "default"
	}
}

// Endpoint is one backend route. Endpoints are built only through the
// constructors in this file; a parameterized constructor given an empty
// identifier yields an endpoint that fails with InvalidURL when used.
type Endpoint struct {
	Name   string
	Method string
	Path   string
	Auth   bool
	Class  Class

	missing string
}

// Validate reports whether all required identifiers were supplied.
func (e Endpoint) Validate() error {
	if e.missing != "" {
		return &Error{Kind: KindInvalidURL, Message: fmt.Sprintf("%s: missing %s", e.Name, e.missing)}
	}
	if e.Path == "" || !strings.HasPrefix(e.Path, "/") {
		return &Error{Kind: KindInvalidURL, Message: fmt.Sprintf("%s: invalid path %q", e.Name, e.Path)}
	}
	return nil
}

// String returns "METHOD /path".
func (e Endpoint) String() string {
	return e.Method + " " + e.Path
}

func route(name, method, path string) Endpoint {
	return Endpoint{Name: name, Method: method, Path: path, Auth: true}
}

func public(name, method, path string) Endpoint {
	return Endpoint{Name: name, Method: method, Path: path}
}

// param interpolates identifiers into format, escaping each as a path segment.
// Names and ids alternate: param(name, method, format, "id", id, "userId", uid).
func param(name, method, format string, pairs ...string) Endpoint {
	args := make([]any, 0, len(pairs)/2)
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		label, value := pairs[i], strings.TrimSpace(pairs[i+1])
		if value == "" {
			missing = append(missing, label)
		}
		args = append(args, url.PathEscape(value))
	}
	ep := route(name, method, fmt.Sprintf(format, args...))
	ep.missing = strings.Join(missing, ", ")
	return ep
}

func withClass(ep Endpoint, c Class) Endpoint {
	ep.Class = c
	return ep
}

// =============================================================================
// AUTH
// =============================================================================

// SignIn exchanges email and password for a session token.
func SignIn() Endpoint { return public("auth.signIn", http.MethodPost, "/auth/login") }

// SignUp registers a new account.
func SignUp() Endpoint { return public("auth.signUp", http.MethodPost, "/auth/register") }

// VerifyEmail submits the emailed verification code.
func VerifyEmail() Endpoint {
	return public("auth.verifyEmail", http.MethodPost, "/auth/verify-email")
}

// ResendVerification asks for a fresh verification code.
func ResendVerification() Endpoint {
	return public("auth.resendVerification", http.MethodPost, "/auth/resend-verification")
}

// Logout ends the current session on the server.
func Logout() Endpoint { return route("auth.logout", http.MethodPost, "/auth/logout") }

// CurrentUser returns the signed-in user.
func CurrentUser() Endpoint { return route("auth.me", http.MethodGet, "/auth/me") }

// RefreshToken trades the current token for a new one.
func RefreshToken() Endpoint { return route("auth.refresh", http.MethodPost, "/auth/refresh") }

// ForgotPassword starts a password reset by email.
func ForgotPassword() Endpoint {
	return public("auth.forgotPassword", http.MethodPost, "/auth/forgot-password")
}

// ResetPassword completes a password reset with the emailed token.
func ResetPassword() Endpoint {
	return public("auth.resetPassword", http.MethodPost, "/auth/reset-password")
}

// ChangePassword replaces the signed-in user's password.
func ChangePassword() Endpoint {
	return route("auth.changePassword", http.MethodPost, "/auth/change-password")
}

// =============================================================================
// CHAT & CONVERSATIONS
// =============================================================================

// SendMessage posts a chat message and returns the assistant reply.
func SendMessage() Endpoint { return route("chat.send", http.MethodPost, "/chat/completions") }

// RegenerateMessage asks for a new reply to an earlier message.
func RegenerateMessage() Endpoint {
	return route("chat.regenerate", http.MethodPost, "/chat/regenerate")
}

// Conversations lists the user's conversations.
func Conversations() Endpoint {
	return route("chat.conversations", http.MethodGet, "/chat/conversations")
}

// SearchConversations finds conversations matching ?q=.
func SearchConversations() Endpoint {
	return route("chat.searchConversations", http.MethodGet, "/chat/conversations/search")
}

// Conversation loads one conversation with its messages.
func Conversation(id string) Endpoint {
	return param("chat.conversation", http.MethodGet, "/chat/conversations/%s", "id", id)
}

// ConversationMessages lists the messages of a conversation.
func ConversationMessages(id string) Endpoint {
	return param("chat.conversationMessages", http.MethodGet, "/chat/conversations/%s/messages", "id", id)
}

// UpdateConversation patches title, pin or archive state.
func UpdateConversation(id string) Endpoint {
	return param("chat.updateConversation", http.MethodPatch, "/chat/conversations/%s", "id", id)
}

// DeleteConversation removes a conversation.
func DeleteConversation(id string) Endpoint {
	return param("chat.deleteConversation", http.MethodDelete, "/chat/conversations/%s", "id", id)
}

// ShareConversation creates a public share link.
func ShareConversation(id string) Endpoint {
	return param("chat.shareConversation", http.MethodPost, "/chat/conversations/%s/share", "id", id)
}

// SharedConversation is readable without a session.
func SharedConversation(shareID string) Endpoint {
	ep := param("chat.sharedConversation", http.MethodGet, "/share/%s", "shareId", shareID)
	ep.Auth = false
	return ep
}

// MessageFeedback rates an assistant message.
func MessageFeedback(messageID string) Endpoint {
	return param("chat.messageFeedback", http.MethodPost, "/chat/messages/%s/feedback", "messageId", messageID)
}

// Modes lists the available AI modes.
func Modes() Endpoint { return route("chat.modes", http.MethodGet, "/chat/modes") }

// Usage returns the user's message quota.
func Usage() Endpoint { return route("chat.usage", http.MethodGet, "/chat/usage") }

// AnalyzePrompt suggests a mode for a prompt.
func AnalyzePrompt() Endpoint { return route("chat.analyze", http.MethodPost, "/chat/analyze") }

// GenerateImage creates an image from a prompt.
func GenerateImage() Endpoint {
	return withClass(route("images.generate", http.MethodPost, "/images/generate"), ClassImage)
}

// ImageHistory lists previously generated images.
func ImageHistory() Endpoint { return route("images.history", http.MethodGet, "/images/history") }

// =============================================================================
// FILES
// =============================================================================

// UploadFile sends a multipart file for processing.
func UploadFile() Endpoint {
	return withClass(route("files.upload", http.MethodPost, "/files/upload"), ClassUpload)
}

// FileStatus reports the processing state of an upload.
func FileStatus(id string) Endpoint {
	return param("files.status", http.MethodGet, "/files/%s/status", "id", id)
}

// DeleteFile removes an uploaded file.
func DeleteFile(id string) Endpoint {
	return param("files.delete", http.MethodDelete, "/files/%s", "id", id)
}

// Files lists the user's uploads.
func Files() Endpoint { return route("files.list", http.MethodGet, "/files") }

// =============================================================================
// PROJECTS & COLLABORATION
// =============================================================================

// Projects lists the projects the user belongs to.
func Projects() Endpoint { return route("projects.list", http.MethodGet, "/projects") }

// CreateProject creates a project owned by the user.
func CreateProject() Endpoint { return route("projects.create", http.MethodPost, "/projects") }

// Project loads one project.
func Project(id string) Endpoint {
	return param("projects.get", http.MethodGet, "/projects/%s", "id", id)
}

// UpdateProject patches project fields.
func UpdateProject(id string) Endpoint {
	return param("projects.update", http.MethodPatch, "/projects/%s", "id", id)
}

// DeleteProject removes a project.
func DeleteProject(id string) Endpoint {
	return param("projects.delete", http.MethodDelete, "/projects/%s", "id", id)
}

// ProjectConversations lists conversations filed under a project.
func ProjectConversations(id string) Endpoint {
	return param("projects.conversations", http.MethodGet, "/projects/%s/conversations", "id", id)
}

// ProjectChatMessages lists the project's shared chat.
func ProjectChatMessages(id string) Endpoint {
	return param("projects.chatMessages", http.MethodGet, "/projects/%s/chat/messages", "id", id)
}

// SendProjectChatMessage posts to the project's shared chat.
func SendProjectChatMessage(id string) Endpoint {
	return param("projects.sendChatMessage", http.MethodPost, "/projects/%s/chat/messages", "id", id)
}

// ProjectContext returns the project's instructions for the AI.
func ProjectContext(id string) Endpoint {
	return param("projects.context", http.MethodGet, "/projects/%s/context", "id", id)
}

// UpdateProjectContext replaces the project's instructions.
func UpdateProjectContext(id string) Endpoint {
	return param("projects.updateContext", http.MethodPut, "/projects/%s/context", "id", id)
}

// Collaborators lists project members.
func Collaborators(id string) Endpoint {
	return param("projects.collaborators", http.MethodGet, "/projects/%s/collaborators", "id", id)
}

// InviteCollaborator invites a user by email.
func InviteCollaborator(id string) Endpoint {
	return param("projects.invite", http.MethodPost, "/projects/%s/invite", "id", id)
}

// UpdateCollaboratorRole changes a member's role.
func UpdateCollaboratorRole(projectID, userID string) Endpoint {
	return param("projects.updateRole", http.MethodPatch, "/projects/%s/collaborators/%s",
		"projectId", projectID, "userId", userID)
}

// RemoveCollaborator drops a member from a project.
func RemoveCollaborator(projectID, userID string) Endpoint {
	return param("projects.removeCollaborator", http.MethodDelete, "/projects/%s/collaborators/%s",
		"projectId", projectID, "userId", userID)
}

// LeaveProject removes the signed-in user from a project.
func LeaveProject(id string) Endpoint {
	return param("projects.leave", http.MethodPost, "/projects/%s/leave", "id", id)
}

// PendingInvitations lists invitations awaiting an answer.
func PendingInvitations() Endpoint {
	return route("invitations.pending", http.MethodGet, "/invitations/pending")
}

// AcceptInvitation joins the inviting project.
func AcceptInvitation(id string) Endpoint {
	return param("invitations.accept", http.MethodPost, "/invitations/%s/accept", "id", id)
}

// DeclineInvitation rejects an invitation.
func DeclineInvitation(id string) Endpoint {
	return param("invitations.decline", http.MethodPost, "/invitations/%s/decline", "id", id)
}

// =============================================================================
// PROFILE
// =============================================================================

// Profile returns the user's profile.
func Profile() Endpoint { return route("profile.get", http.MethodGet, "/profile") }

// UpdateProfile patches profile fields.
func UpdateProfile() Endpoint { return route("profile.update", http.MethodPatch, "/profile") }

// UploadAvatar sends a new avatar image.
func UploadAvatar() Endpoint {
	return withClass(route("profile.uploadAvatar", http.MethodPost, "/profile/avatar"), ClassUpload)
}

// DeleteAvatar removes the avatar image.
func DeleteAvatar() Endpoint { return route("profile.deleteAvatar", http.MethodDelete, "/profile/avatar") }

// TeachAI stores a fact for the AI to remember.
func TeachAI() Endpoint { return route("profile.teach", http.MethodPost, "/profile/teach") }

// ProfileFacts lists the stored facts.
func ProfileFacts() Endpoint { return route("profile.facts", http.MethodGet, "/profile/facts") }

// DeleteProfileFact forgets one fact.
func DeleteProfileFact(id string) Endpoint {
	return param("profile.deleteFact", http.MethodDelete, "/profile/facts/%s", "id", id)
}

// DeleteAccount closes the account.
func DeleteAccount() Endpoint { return route("profile.deleteAccount", http.MethodDelete, "/profile") }

// =============================================================================
// ANALYTICS
// =============================================================================

// AnalyticsSummary returns aggregate usage figures.
func AnalyticsSummary() Endpoint {
	return route("analytics.summary", http.MethodGet, "/analytics/summary")
}

// AnalyticsUsage returns usage over time.
func AnalyticsUsage() Endpoint { return route("analytics.usage", http.MethodGet, "/analytics/usage") }

// TrackEvent records a client event.
func TrackEvent() Endpoint { return route("analytics.track", http.MethodPost, "/analytics/events") }

// SubmitFeedback sends free-form product feedback.
func SubmitFeedback() Endpoint { return route("feedback.submit", http.MethodPost, "/feedback") }

// All returns every endpoint in the catalog, using sample for each
// required identifier.
func All(sample string) []Endpoint {
	return []Endpoint{
		SignIn(), SignUp(), VerifyEmail(), ResendVerification(), Logout(),
		CurrentUser(), RefreshToken(), ForgotPassword(), ResetPassword(), ChangePassword(),

		SendMessage(), RegenerateMessage(), Conversations(), SearchConversations(),
		Conversation(sample), ConversationMessages(sample), UpdateConversation(sample),
		DeleteConversation(sample), ShareConversation(sample), SharedConversation(sample),
		MessageFeedback(sample), Modes(), Usage(), AnalyzePrompt(), GenerateImage(), ImageHistory(),

		UploadFile(), FileStatus(sample), DeleteFile(sample), Files(),

		Projects(), CreateProject(), Project(sample), UpdateProject(sample), DeleteProject(sample),
		ProjectConversations(sample), ProjectChatMessages(sample), SendProjectChatMessage(sample),
		ProjectContext(sample), UpdateProjectContext(sample), Collaborators(sample),
		InviteCollaborator(sample), UpdateCollaboratorRole(sample, sample),
		RemoveCollaborator(sample, sample), LeaveProject(sample),
		PendingInvitations(), AcceptInvitation(sample), DeclineInvitation(sample),

		Profile(), UpdateProfile(), UploadAvatar(), DeleteAvatar(), TeachAI(),
		ProfileFacts(), DeleteProfileFact(sample), DeleteAccount(),

		AnalyticsSummary(), AnalyticsUsage(), TrackEvent(), SubmitFeedback(),
	}
}
