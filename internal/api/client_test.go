// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, tokens)
}

func TestDo_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    error
		wantMsg string
	}{
		{"unauthorized", 401, `{"success":false,"error":"Invalid token"}`, ErrUnauthorized, "Invalid token"},
		{"forbidden", 403, `{"message":"Not a member"}`, ErrForbidden, "Not a member"},
		{"not found", 404, ``, ErrNotFound, DefaultErrorMessage},
		{"rate limited", 429, `{"error":"slow down"}`, ErrRateLimited, "slow down"},
		{"server error 500", 500, `{"error":"boom"}`, ErrServer, "boom"},
		{"server error 599", 599, `not json`, ErrServer, DefaultErrorMessage},
		{"other status", 418, `{"error":{"message":"teapot"}}`, ErrHTTP, "teapot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, nil)

			var out map[string]any
			err := client.Do(context.Background(), Request{Endpoint: CurrentUser()}, &out)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, tt.status, StatusOf(err))
			assert.Equal(t, tt.wantMsg, MessageOf(err))
		})
	}
}

func TestDo_DecodesSnakeCaseResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":"u1","first_name":"Asha","user_stats":[{"message_count":3}]}}`)
	}, nil)

	var out struct {
		Success bool `json:"success"`
		Data    struct {
			ID        string `json:"id"`
			FirstName string `json:"firstName"`
			UserStats []struct {
				MessageCount int `json:"messageCount"`
			} `json:"userStats"`
		} `json:"data"`
	}
	require.NoError(t, client.Do(context.Background(), Request{Endpoint: CurrentUser()}, &out))
	assert.True(t, out.Success)
	assert.Equal(t, "u1", out.Data.ID)
	assert.Equal(t, "Asha", out.Data.FirstName)
	require.Len(t, out.Data.UserStats, 1)
	assert.Equal(t, 3, out.Data.UserStats[0].MessageCount)
}

func TestDo_EncodesSnakeCaseBody(t *testing.T) {
	var got map[string]any
	var contentType string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"success":true}`)
	}, nil)

	body := struct {
		FirstName string `json:"firstName"`
		Settings  struct {
			IsPinned bool `json:"isPinned"`
		} `json:"settings"`
	}{FirstName: "Asha"}
	body.Settings.IsPinned = true

	require.NoError(t, client.Do(context.Background(), Request{Endpoint: SignUp(), Body: body}, nil))
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "Asha", got["first_name"])
	assert.Equal(t, map[string]any{"is_pinned": true}, got["settings"])
}

func TestDo_AuthorizationHeader(t *testing.T) {
	tests := []struct {
		name   string
		tokens TokenSource
		req    Request
		want   string
	}{
		{"authenticated endpoint with token", StaticToken("t1"), Request{Endpoint: CurrentUser()}, "Bearer t1"},
		{"public endpoint", StaticToken("t1"), Request{Endpoint: SignIn()}, ""},
		{"no token stored", StaticToken(""), Request{Endpoint: CurrentUser()}, ""},
		{"nil token source", nil, Request{Endpoint: CurrentUser()}, ""},
		{"override to none", StaticToken("t1"), Request{Endpoint: CurrentUser(), Auth: AuthNone}, ""},
		{"override to required", StaticToken("t1"), Request{Endpoint: SignIn(), Auth: AuthRequired}, "Bearer t1"},
		{"token source failure", failingTokens{}, Request{Endpoint: CurrentUser()}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var header string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				header = r.Header.Get("Authorization")
				_, _ = io.WriteString(w, `{}`)
			}, tt.tokens)

			require.NoError(t, client.Do(context.Background(), tt.req, nil))
			assert.Equal(t, tt.want, header)
		})
	}
}

type failingTokens struct{}

func (failingTokens) BearerToken(context.Context) (string, error) {
	return "", errors.New("keychain locked")
}

func TestDo_URLAndQuery(t *testing.T) {
	var gotPath, gotQuery, gotMethod string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{}`)
	}, nil)

	q := url.Values{}
	q.Set("page", "2")
	q.Set("q", "hello world")
	require.NoError(t, client.Do(context.Background(), Request{Endpoint: Conversations(), Query: q}, nil))
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/api/v1/chat/conversations", gotPath)
	assert.Equal(t, "page=2&q=hello+world", gotQuery)

	require.NoError(t, client.Do(context.Background(), Request{Endpoint: Conversation("c1"), Method: http.MethodHead}, nil))
	assert.Equal(t, http.MethodHead, gotMethod)
}

func TestDo_InvalidURL(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, nil)

	err := client.Do(context.Background(), Request{Endpoint: Project("")}, nil)
	assert.True(t, errors.Is(err, ErrInvalidURL), "got %v", err)
	assert.False(t, called)

	bad := NewClient("not a url", nil)
	err = bad.Do(context.Background(), Request{Endpoint: Profile()}, nil)
	assert.True(t, errors.Is(err, ErrInvalidURL), "got %v", err)
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	err := NewClient(addr, nil).Do(context.Background(), Request{Endpoint: Profile()}, nil)
	assert.True(t, errors.Is(err, ErrNetwork), "got %v", err)
}

func TestDo_TimeoutIsNetworkError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, nil)
	client.WithTimeouts(Timeouts{Default: 50 * time.Millisecond})

	err := client.Do(context.Background(), Request{Endpoint: Profile()}, nil)
	assert.True(t, errors.Is(err, ErrNetwork), "got %v", err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestDo_DecodingError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>maintenance</html>`)
	}, nil)

	var out map[string]any
	err := client.Do(context.Background(), Request{Endpoint: Profile()}, &out)
	assert.True(t, errors.Is(err, ErrDecoding), "got %v", err)
	assert.Equal(t, http.StatusOK, StatusOf(err))

	// Without a destination the body is not inspected.
	require.NoError(t, client.Do(context.Background(), Request{Endpoint: Profile()}, nil))
}

func TestDo_OversizeBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", MaxResponseSize+1)))
	}, nil)

	err := client.Do(context.Background(), Request{Endpoint: Profile()}, nil)
	assert.True(t, errors.Is(err, ErrInvalidResponse), "got %v", err)
}

func TestDo_RateLimitWaitHonorsContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}, nil)
	client.WithRateLimit(0.001)

	require.NoError(t, client.Do(context.Background(), Request{Endpoint: Profile()}, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := client.Do(ctx, Request{Endpoint: Profile()}, nil)
	assert.True(t, errors.Is(err, ErrNetwork), "got %v", err)
}

func TestUpload_MultipartStructure(t *testing.T) {
	type part struct {
		name, filename, contentType, body string
	}
	var parts []part
	var boundary string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		require.True(t, strings.HasPrefix(ct, "multipart/form-data; boundary="), ct)
		boundary = strings.TrimPrefix(ct, "multipart/form-data; boundary=")

		mr, err := r.MultipartReader()
		require.NoError(t, err)
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			data, err := io.ReadAll(p)
			require.NoError(t, err)
			parts = append(parts, part{p.FormName(), p.FileName(), p.Header.Get("Content-Type"), string(data)})
		}
		_, _ = io.WriteString(w, `{"success":true}`)
	}, StaticToken("t1"))

	file := File{Field: "avatar", Filename: "me.jpg", MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}
	fields := []FormField{{Name: "conversation_id", Value: "c1"}, {Name: "purpose", Value: "chat"}}
	require.NoError(t, client.Upload(context.Background(), UploadAvatar(), file, fields, nil))

	assert.True(t, strings.HasPrefix(boundary, "Boundary-"), boundary)
	require.Len(t, parts, 3)
	assert.Equal(t, part{"avatar", "me.jpg", "image/jpeg", "\xff\xd8\xff"}, parts[0])
	assert.Equal(t, "conversation_id", parts[1].name)
	assert.Equal(t, "c1", parts[1].body)
	assert.Empty(t, parts[1].filename)
	assert.Equal(t, "purpose", parts[2].name)
	assert.Equal(t, "chat", parts[2].body)
}

func TestUpload_DefaultFieldName(t *testing.T) {
	var field string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mr, err := r.MultipartReader()
		require.NoError(t, err)
		p, err := mr.NextPart()
		require.NoError(t, err)
		field = p.FormName()
		_, _ = io.WriteString(w, `{}`)
	}, nil)

	require.NoError(t, client.Upload(context.Background(), UploadFile(), File{Filename: "a.txt", Data: []byte("x")}, nil, nil))
	assert.Equal(t, DefaultFileField, field)

	err := client.Upload(context.Background(), UploadFile(), File{}, nil, nil)
	assert.Error(t, err)
}

func TestTimeouts_For(t *testing.T) {
	tt := DefaultTimeouts()
	assert.Equal(t, 30*time.Second, tt.For(ClassDefault))
	assert.Equal(t, 120*time.Second, tt.For(ClassUpload))
	assert.Equal(t, 180*time.Second, tt.For(ClassImage))

	c := NewClient("", nil).WithTimeouts(Timeouts{Upload: time.Minute})
	assert.Equal(t, 30*time.Second, c.Timeouts().Default)
	assert.Equal(t, time.Minute, c.Timeouts().Upload)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}

func TestError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := error(&Error{Kind: KindNetwork, Err: cause})

	assert.True(t, errors.Is(err, ErrNetwork))
	assert.False(t, errors.Is(err, ErrServer))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("other")))

	server := &Error{Kind: KindServer, Status: 503}
	assert.True(t, errors.Is(server, ErrServer))
	assert.True(t, errors.Is(server, &Error{Kind: KindServer, Status: 503}))
	assert.False(t, errors.Is(server, &Error{Kind: KindServer, Status: 500}))
	assert.Equal(t, "ServerError (HTTP 503)", server.Error())
}
