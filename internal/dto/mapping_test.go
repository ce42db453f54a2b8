// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baatcheet/baatcheet-cli/internal/model"
)

func TestToAuthResult_Branches(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    model.AuthResult
		wantErr bool
	}{
		{
			name: "success",
			body: `{"token":"t1","user":{"id":"u1","email":"a@b.com"}}`,
			want: model.AuthSuccess{Token: "t1", UserID: "u1", User: model.User{ID: "u1", Email: "a@b.com", Tier: "free"}},
		},
		{
			name: "verification required with email",
			body: `{"status":"verification_required","email":"x@y.com"}`,
			want: model.AuthNeedsVerification{Email: "x@y.com"},
		},
		{
			name: "verification required without email",
			body: `{"status":"verification_required"}`,
			want: model.AuthNeedsVerification{Email: "req@b.com"},
		},
		{
			name: "needs verification",
			body: `{"status":"needs_verification","token":"ignored"}`,
			want: model.AuthNeedsVerification{Email: "req@b.com"},
		},
		{
			name: "requires verification flag",
			body: `{"requires_verification":true,"email":"z@b.com"}`,
			want: model.AuthNeedsVerification{Email: "z@b.com"},
		},
		{name: "missing token", body: `{"user":{"id":"u1"}}`, wantErr: true},
		{name: "missing user", body: `{"token":"t1"}`, wantErr: true},
		{name: "user without id", body: `{"token":"t1","user":{"email":"a@b.com"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decode[AuthResponseDTO](t, tt.body)
			got, err := ToAuthResult(d, "req@b.com")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMapping))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToUser(t *testing.T) {
	d := decode[UserDTO](t, `{"id":"u1","email":"a@b.com","first_name":"Asha","last_name":"  ","avatar_url":"http://x/a.png","tier":"pro"}`)
	u, err := ToUser(d)
	require.NoError(t, err)
	assert.Equal(t, "Asha", *u.FirstName)
	assert.Nil(t, u.LastName)
	assert.Equal(t, "http://x/a.png", *u.Avatar)
	assert.Equal(t, "pro", u.Tier)

	_, err = ToUser(UserDTO{Email: "a@b.com"})
	var mErr *MappingError
	require.ErrorAs(t, err, &mErr)
	assert.Contains(t, mErr.Error(), "id is required")
}

func TestToCurrentUser_BothShapes(t *testing.T) {
	nested, err := ToCurrentUser(decode[MeDTO](t, `{"user":{"id":"u1","email":"a@b.com"}}`))
	require.NoError(t, err)
	flat, err := ToCurrentUser(decode[MeDTO](t, `{"id":"u1","email":"a@b.com"}`))
	require.NoError(t, err)
	assert.Equal(t, nested, flat)
}

func TestDefaults_AppliedOnceAndIdempotent(t *testing.T) {
	conv := decode[ConversationDTO](t, `{"id":"c1","title":"  "}`)
	a, err := ToConversation(conv)
	require.NoError(t, err)
	b, err := ToConversation(conv)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, model.DefaultConversationTitle, a.Title)
	assert.Nil(t, a.CreatedAt)

	mode, err := ToMode(decode[ModeDTO](t, `{"id":"code"}`))
	require.NoError(t, err)
	assert.Equal(t, model.AIMode{ID: "code", Name: "code", Icon: "sparkles", IsAvailable: true}, mode)

	usage := ToUsage(UsageDTO{})
	assert.Equal(t, model.UsageInfo{Tier: "free", MessagesLimit: 50, ImagesLimit: 5, FileUploadsLimit: 10}, usage)
	assert.Equal(t, usage, ToUsage(UsageDTO{}))

	analysis := ToPromptAnalysis(PromptAnalysisDTO{})
	assert.Equal(t, "general", analysis.Intent)
	assert.Equal(t, "simple", analysis.Complexity)
}

func TestToProject_PermissionDefaults(t *testing.T) {
	owned, err := ToProject(decode[ProjectDTO](t, `{"id":"p1","name":"Thesis"}`))
	require.NoError(t, err)
	assert.True(t, owned.IsOwner)
	assert.Equal(t, model.FullPermissions(), owned.Permissions)
	assert.Empty(t, owned.Collaborators)

	shared, err := ToProject(decode[ProjectDTO](t, `{"id":"p2","name":"Team","is_owner":false,"permissions":{"can_edit":true}}`))
	require.NoError(t, err)
	assert.False(t, shared.IsOwner)
	assert.Equal(t, model.Permissions{CanEdit: true}, shared.Permissions)

	_, err = ToProject(decode[ProjectDTO](t, `{"name":"no id"}`))
	assert.True(t, errors.Is(err, ErrMapping))
}

func TestToCollaborator_PermissionsNotDerivedFromRole(t *testing.T) {
	c, err := ToCollaborator(decode[CollaboratorDTO](t, `{"id":"m1","role":"Admin","user":{"id":"u9","email":"z@b.com"}}`))
	require.NoError(t, err)
	assert.Equal(t, model.ProjectRoleAdmin, c.Role)
	assert.Equal(t, "u9", c.UserID)
	assert.Equal(t, model.Permissions{}, c.Permissions)

	_, err = ToCollaborator(decode[CollaboratorDTO](t, `{"id":"m1","role":"viewer"}`))
	assert.True(t, errors.Is(err, ErrMapping))
}

func TestToInvitation(t *testing.T) {
	inv, err := ToInvitation(decode[InvitationDTO](t,
		`{"id":"i1","project":{"id":"p1","name":"Thesis"},"role":"viewer","invited_by":{"id":"u2","email":"bo@x.com","first_name":"Bo"}}`))
	require.NoError(t, err)
	assert.Equal(t, "p1", inv.ProjectID)
	assert.Equal(t, "Thesis", inv.ProjectName)
	assert.Equal(t, model.InvitationPending, inv.Status)
	require.NotNil(t, inv.InviterName)
	assert.Equal(t, "Bo", *inv.InviterName)

	_, err = ToInvitation(decode[InvitationDTO](t, `{"id":"i1","role":"viewer"}`))
	assert.True(t, errors.Is(err, ErrMapping))
}

func TestToMessage_RoleAndImage(t *testing.T) {
	m, err := ToMessage(decode[MessageDTO](t, `{"id":"m1","content":"a cat","role":"robot","image_url":"http://img/1.png"}`))
	require.NoError(t, err)
	assert.Equal(t, model.RoleAssistant, m.Role)
	require.True(t, m.HasImage())
	assert.Equal(t, "a cat", m.ImageResult.Prompt)

	m, err = ToMessage(decode[MessageDTO](t, `{"id":"m2","content":"hi","role":"USER"}`))
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, m.Role)

	_, err = ToMessage(decode[MessageDTO](t, `{"content":"no id"}`))
	assert.True(t, errors.Is(err, ErrMapping))
}

func TestToChatReply_Shapes(t *testing.T) {
	full, err := ToChatReply(decode[ChatResponseDTO](t,
		`{"conversation_id":"c1","title":"Greetings","message":{"id":"m1","content":"Hello","role":"assistant"}}`))
	require.NoError(t, err)
	assert.Equal(t, "c1", full.ConversationID)
	assert.Equal(t, "m1", full.Message.ID)
	require.NotNil(t, full.Message.ConversationID)
	assert.Equal(t, "c1", *full.Message.ConversationID)
	assert.Equal(t, "Greetings", *full.Title)

	bare, err := ToChatReply(decode[ChatResponseDTO](t,
		`{"conversation_id":"c1","response":"Hello","message_id":"m1","tokens":12}`))
	require.NoError(t, err)
	assert.Equal(t, model.RoleAssistant, bare.Message.Role)
	assert.Equal(t, "Hello", bare.Message.Content)
	assert.Equal(t, 12, bare.Message.Tokens.Total)

	for _, body := range []string{
		`{"response":"Hello","message_id":"m1"}`,
		`{"conversation_id":"c1","response":"Hello"}`,
		`{"conversation_id":"c1"}`,
	} {
		_, err := ToChatReply(decode[ChatResponseDTO](t, body))
		assert.True(t, errors.Is(err, ErrMapping), body)
	}
}

func TestToUploadStatus(t *testing.T) {
	str := func(s string) *string { return &s }
	progress := 0.4

	tests := []struct {
		name string
		dto  FileDTO
		want model.FileUploadStatus
	}{
		{"pending", FileDTO{Status: str("pending")}, model.UploadPending{}},
		{"processing", FileDTO{Status: str("processing"), Progress: &progress}, model.UploadProcessing{Progress: &progress}},
		{"completed", FileDTO{Status: str("completed"), URL: str("http://f"), ExtractedText: str("txt")}, model.UploadCompleted{URL: "http://f", ExtractedText: str("txt")}},
		{"failed with reason", FileDTO{Status: str("failed"), Error: str("too big")}, model.UploadFailed{Reason: "too big"}},
		{"failed without reason", FileDTO{Status: str("error")}, model.UploadFailed{Reason: DefaultUploadFailure}},
		{"no status but url", FileDTO{URL: str("http://f")}, model.UploadCompleted{URL: "http://f"}},
		{"no status", FileDTO{}, model.UploadPending{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToUploadStatus(tt.dto))
		})
	}
}

func TestToProfile(t *testing.T) {
	p, err := ToProfile(decode[ProfileDTO](t,
		`{"id":"u1","email":"a@b.com","bio":"hi","facts":[{"id":"f1","content":"likes tea"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "u1", p.User.ID)
	assert.Equal(t, "hi", *p.Bio)
	assert.Equal(t, []string{}, p.Interests)
	require.Len(t, p.Facts, 1)
	assert.Equal(t, "likes tea", p.Facts[0].Fact)
	assert.Equal(t, DefaultFactCategory, p.Facts[0].Category)
}

func TestToAnalyticsSummary(t *testing.T) {
	s, err := ToAnalyticsSummary(decode[AnalyticsSummaryDTO](t,
		`{"total_messages":5,"daily_activity":[{"date":"2024-05-01","messages":2}]}`))
	require.NoError(t, err)
	assert.Equal(t, 5, s.TotalMessages)
	assert.Equal(t, []model.DailyActivity{{Date: "2024-05-01", Messages: 2}}, s.DailyActivity)

	_, err = ToAnalyticsSummary(decode[AnalyticsSummaryDTO](t, `{"daily_activity":[{"messages":2}]}`))
	assert.True(t, errors.Is(err, ErrMapping))
}

func TestToShareLink(t *testing.T) {
	link, err := ToShareLink(decode[ShareDTO](t, `{"share_id":"s1","share_url":"https://b.app/share/s1"}`))
	require.NoError(t, err)
	assert.Equal(t, model.ShareLink{ShareID: "s1", URL: "https://b.app/share/s1"}, link)
}
