// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repository

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/baatcheet/baatcheet-cli/internal/api"
	"github.com/baatcheet/baatcheet-cli/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatRepo(t *testing.T, rs routes) (*ChatRepository, func() int32) {
	t.Helper()
	client, hits := newTransport(t, rs, api.StaticToken("t1"))
	return NewChatRepository(client, nil), hits.Load
}

func TestChat_EmptyMessageSendsNothing(t *testing.T) {
	repo, hits := newChatRepo(t, routes{})
	for _, content := range []string{"", "   ", "\n\t "} {
		_, err := repo.SendMessage(context.Background(), content, model.SendOptions{})
		assert.True(t, errors.Is(err, ErrEmptyMessage), "content %q: %v", content, err)
	}
	assert.Zero(t, hits())
}

func TestChat_SendMessage(t *testing.T) {
	repo, _ := newChatRepo(t, routes{
		"POST /chat/completions": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
			body := readBody(t, r)
			assert.Equal(t, "hello", body["message"])
			assert.Equal(t, "c1", body["conversation_id"])
			assert.Equal(t, "code", body["mode"])
			assert.NotContains(t, body, "project_id")
			reply(200, `{"success":true,"data":{"conversation_id":"c1","response":"hi there","message_id":"m2","tokens":42}}`)(w, r)
		},
	})

	got, err := repo.SendMessage(context.Background(), "hello", model.SendOptions{ConversationID: "c1", Mode: "code"})
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ConversationID)
	assert.Equal(t, "m2", got.Message.ID)
	assert.Equal(t, "hi there", got.Message.Content)
	assert.Equal(t, model.RoleAssistant, got.Message.Role)
	require.NotNil(t, got.Message.Tokens)
	assert.Equal(t, 42, got.Message.Tokens.Total)
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
		wantMsg string
	}{
		{"not found", reply(404, `{"error":"Conversation not found"}`), ErrConversationNotFound, "Conversation not found"},
		{"rate limited", reply(429, `{"error":"Too many requests"}`), ErrChatRateLimited, "Too many requests"},
		{"session expired", reply(401, `{"error":"jwt expired"}`), ErrChatServer, SessionExpiredMessage},
		{"forbidden", reply(403, `{"error":"Not yours"}`), ErrChatServer, "Not yours"},
		{"server", reply(500, `{"error":"boom"}`), ErrChatServer, "boom"},
		{"envelope", reply(200, `{"success":false,"message":"Quota exceeded"}`), ErrChatServer, "Quota exceeded"},
		{"bad payload", reply(200, `{"success":true,"data":{"id":""}}`), ErrChatServer, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := newChatRepo(t, routes{"GET /chat/conversations/c1": tt.handler})
			_, _, err := repo.Conversation(context.Background(), "c1")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
		})
	}
}

func TestChat_InvalidConversationID(t *testing.T) {
	repo, hits := newChatRepo(t, routes{})
	ctx := context.Background()

	_, _, err := repo.Conversation(ctx, "")
	assert.True(t, errors.Is(err, ErrInvalidConversationID), "got %v", err)
	assert.True(t, errors.Is(err, api.ErrInvalidURL))

	_, err = repo.RegenerateMessage(ctx, " ", "m1", "")
	assert.True(t, errors.Is(err, ErrInvalidConversationID))

	assert.True(t, errors.Is(repo.DeleteConversation(ctx, ""), ErrInvalidConversationID))
	assert.Zero(t, hits())
}

func TestChat_ConversationDetail(t *testing.T) {
	repo, _ := newChatRepo(t, routes{
		"GET /chat/conversations/c1": reply(200, `{"success":true,"data":{
			"conversation":{"id":"c1","title":"Trip","is_pinned":true},
			"messages":[
				{"id":"m1","content":"plan a trip","role":"user","created_at":"2025-01-02T03:04:05Z"},
				{"id":"m2","content":"sure","role":"assistant"}
			]}}`),
	})

	conv, msgs, err := repo.Conversation(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Trip", conv.Title)
	assert.True(t, conv.IsPinned)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	require.NotNil(t, msgs[0].Timestamp)
	assert.Equal(t, 2025, msgs[0].Timestamp.Year())
}

func TestChat_ConversationsQueryAndShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `{"success":true,"data":[{"id":"c1"},{"id":"c2"}]}`, 2},
		{"keyed list", `{"success":true,"data":{"conversations":[{"id":"c1"}],"pagination":{"page":1,"total":1}}}`, 1},
		{"items list", `{"success":true,"data":{"items":[{"id":"c1"},{"id":"c2"},{"id":"c3"}]}}`, 3},
		{"empty data object", `{"success":true,"data":{}}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archived := false
			repo, _ := newChatRepo(t, routes{
				"GET /chat/conversations": func(w http.ResponseWriter, r *http.Request) {
					q := r.URL.Query()
					assert.Equal(t, "2", q.Get("page"))
					assert.Equal(t, "20", q.Get("limit"))
					assert.Equal(t, "false", q.Get("archived"))
					assert.False(t, q.Has("pinned"))
					reply(200, tt.body)(w, r)
				},
			})

			convs, err := repo.Conversations(context.Background(), ConversationQuery{Page: 2, Limit: 20, Archived: &archived})
			require.NoError(t, err)
			assert.NotNil(t, convs)
			assert.Len(t, convs, tt.want)
		})
	}
}

func TestChat_UnusableEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"null data", `{"success":true,"data":null}`},
		{"missing data", `{"success":true}`},
		{"missing flag", `{"data":[{"id":"c1"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := newChatRepo(t, routes{
				"GET /chat/conversations": reply(200, tt.body),
				"GET /chat/usage":         reply(200, `{"data":{"messages_used":1}}`),
			})
			ctx := context.Background()

			convs, err := repo.Conversations(ctx, ConversationQuery{})
			require.Error(t, err)
			assert.Nil(t, convs)
			assert.True(t, errors.Is(err, ErrChatServer), "got %v", err)

			_, err = repo.Usage(ctx)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrChatServer), "got %v", err)
		})
	}
}

func TestChat_SearchConversations(t *testing.T) {
	repo, _ := newChatRepo(t, routes{
		"GET /chat/conversations/search": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "golang & rust", r.URL.Query().Get("q"))
			reply(200, `{"success":true,"data":{"results":[{"id":"c1","title":"Go vs Rust"}]}}`)(w, r)
		},
	})
	convs, err := repo.SearchConversations(context.Background(), "golang & rust")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "Go vs Rust", convs[0].Title)
}

func TestChat_UpdateReadsBackWithoutBody(t *testing.T) {
	repo, hits := newChatRepo(t, routes{
		"PATCH /chat/conversations/c1": func(w http.ResponseWriter, r *http.Request) {
			body := readBody(t, r)
			assert.Equal(t, true, body["is_pinned"])
			assert.NotContains(t, body, "title")
			reply(200, `{"success":true}`)(w, r)
		},
		"GET /chat/conversations/c1": reply(200, `{"success":true,"data":{"id":"c1","is_pinned":true}}`),
	})

	conv, err := repo.SetPinned(context.Background(), "c1", true)
	require.NoError(t, err)
	assert.True(t, conv.IsPinned)
	assert.Equal(t, int32(2), hits())
}

func TestChat_Rename(t *testing.T) {
	repo, hits := newChatRepo(t, routes{
		"PATCH /chat/conversations/c1": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "New title", readBody(t, r)["title"])
			reply(200, `{"success":true,"data":{"id":"c1","title":"New title"}}`)(w, r)
		},
	})
	conv, err := repo.RenameConversation(context.Background(), "c1", "New title")
	require.NoError(t, err)
	assert.Equal(t, "New title", conv.Title)
	assert.Equal(t, int32(1), hits())
}

func TestChat_DeleteConversationNoContent(t *testing.T) {
	repo, _ := newChatRepo(t, routes{
		"DELETE /chat/conversations/c1": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		},
	})
	require.NoError(t, repo.DeleteConversation(context.Background(), "c1"))
}

func TestChat_SharedConversationIsPublic(t *testing.T) {
	repo, _ := newChatRepo(t, routes{
		"GET /share/s1": func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			reply(200, `{"success":true,"data":{"share_id":"s1","title":"Recipe","messages":[{"id":"m1","content":"hi","role":"user"}]}}`)(w, r)
		},
	})
	shared, err := repo.SharedConversation(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Recipe", shared.Title)
	assert.Len(t, shared.Messages, 1)
}

func TestChat_UploadFile(t *testing.T) {
	repo, _ := newChatRepo(t, routes{
		"POST /files/upload": func(w http.ResponseWriter, r *http.Request) {
			if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
				return
			}
			assert.Equal(t, "c1", r.FormValue("conversation_id"))
			f, hdr, err := r.FormFile(api.DefaultFileField)
			if !assert.NoError(t, err) {
				return
			}
			defer f.Close()
			data, _ := io.ReadAll(f)
			assert.Equal(t, "notes.txt", hdr.Filename)
			assert.Equal(t, "text/plain", hdr.Header.Get("Content-Type"))
			assert.Equal(t, "some notes", string(data))
			reply(200, `{"success":true,"data":{"id":"f1","original_name":"notes.txt","mime_type":"text/plain","size":10,"status":"processing","progress":0.5}}`)(w, r)
		},
	})

	file, err := repo.UploadFile(context.Background(), model.FileData{
		Filename: "notes.txt",
		MIMEType: "text/plain",
		Data:     []byte("some notes"),
	}, "c1")
	require.NoError(t, err)
	assert.Equal(t, "f1", file.ID)
	assert.Equal(t, "notes.txt", file.Filename)
	status, ok := file.Status.(model.UploadProcessing)
	require.True(t, ok, "got %T", file.Status)
	require.NotNil(t, status.Progress)
	assert.InDelta(t, 0.5, *status.Progress, 1e-9)
}

func TestChat_FileStatusFailed(t *testing.T) {
	repo, _ := newChatRepo(t, routes{
		"GET /files/f1/status": reply(200, `{"success":true,"data":{"id":"f1","status":"failed","error":"unsupported"}}`),
	})
	file, err := repo.FileStatus(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, model.UploadFailed{Reason: "unsupported"}, file.Status)
	assert.True(t, file.Status.Terminal())
}

func TestChat_ModesAndUsage(t *testing.T) {
	repo, _ := newChatRepo(t, routes{
		"GET /chat/modes": reply(200, `{"success":true,"data":{"modes":[{"id":"chat","name":"Chat"},{"id":"research","requires_pro":true}]}}`),
		"GET /chat/usage": reply(200, `{"success":true,"data":{"tier":"free","messages_used":3,"messages_limit":50}}`),
	})
	ctx := context.Background()

	modes, err := repo.Modes(ctx)
	require.NoError(t, err)
	require.Len(t, modes, 2)
	assert.True(t, modes[1].RequiresPro)

	usage, err := repo.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 47, usage.MessagesRemaining())
}

func TestChat_GenerateImage(t *testing.T) {
	repo, _ := newChatRepo(t, routes{
		"POST /images/generate": func(w http.ResponseWriter, r *http.Request) {
			body := readBody(t, r)
			assert.Equal(t, "a red fox", body["prompt"])
			assert.Equal(t, "16:9", body["aspect_ratio"])
			reply(200, `{"success":true,"data":{"image_url":"https://cdn/x.png","prompt":"a red fox"}}`)(w, r)
		},
	})
	img, err := repo.GenerateImage(context.Background(), model.ImageRequest{Prompt: "a red fox", AspectRatio: "16:9"}, "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.png", img.URL)
}
