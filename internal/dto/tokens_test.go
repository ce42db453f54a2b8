// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baatcheet/baatcheet-cli/internal/api"
	"github.com/baatcheet/baatcheet-cli/internal/model"
)

func intPtr(v int) *int { return &v }

func TestTokens_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want model.TokenInfo
	}{
		{"object", `{"prompt":10,"completion":32,"total":42}`, model.TokenInfo{Prompt: intPtr(10), Completion: intPtr(32), Total: 42}},
		{"object total only", `{"total":42}`, model.TokenInfo{Total: 42}},
		{"bare integer", `42`, model.TokenInfo{Total: 42}},
		{"bare float", `42.0`, model.TokenInfo{Total: 42}},
		{"openai style", `{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}`, model.TokenInfo{Prompt: intPtr(1), Completion: intPtr(2), Total: 3}},
		{"sum when total missing", `{"prompt":4,"completion":5}`, model.TokenInfo{Prompt: intPtr(4), Completion: intPtr(5), Total: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tok Tokens
			require.NoError(t, api.DecodeJSON([]byte(tt.body), &tok))
			assert.Equal(t, tt.want, tok.ToModel())
		})
	}
}

func TestTokens_ObjectAndIntegerAreEquivalent(t *testing.T) {
	var a, b Tokens
	require.NoError(t, api.DecodeJSON([]byte(`{"total":42}`), &a))
	require.NoError(t, api.DecodeJSON([]byte(`42`), &b))
	assert.Equal(t, a, b)
	assert.Nil(t, a.Prompt)
	assert.Nil(t, a.Completion)
}

func TestTokens_Rejects(t *testing.T) {
	var tok Tokens
	assert.Error(t, api.DecodeJSON([]byte(`"many"`), &tok))
	assert.Error(t, api.DecodeJSON([]byte(`[1,2]`), &tok))
	assert.Error(t, api.DecodeJSON([]byte(`42.7`), &tok))
	assert.Error(t, api.DecodeJSON([]byte(`-0.5`), &tok))
	assert.Error(t, api.DecodeJSON([]byte(`1e300`), &tok))
}

func TestMessage_FractionalTokensFail(t *testing.T) {
	var m MessageDTO
	err := api.DecodeJSON([]byte(`{"id":"m1","content":"hi","role":"assistant","tokens":42.7}`), &m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a whole number")
}

func TestMessage_TokensFieldEitherShape(t *testing.T) {
	obj := decode[MessageDTO](t, `{"id":"m1","content":"hi","role":"assistant","tokens":{"total":42}}`)
	num := decode[MessageDTO](t, `{"id":"m1","content":"hi","role":"assistant","tokens":42}`)

	a, err := ToMessage(obj)
	require.NoError(t, err)
	b, err := ToMessage(num)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	require.NotNil(t, a.Tokens)
	assert.Equal(t, 42, a.Tokens.Total)
}

func TestParseTime(t *testing.T) {
	str := func(s string) *string { return &s }

	frac := ParseTime(str("2024-05-01T10:20:30.123Z"))
	require.NotNil(t, frac)
	assert.Equal(t, 123*time.Millisecond, time.Duration(frac.Nanosecond()))

	plain := ParseTime(str("2024-05-01T10:20:30Z"))
	require.NotNil(t, plain)
	assert.Equal(t, 30, plain.Second())

	offset := ParseTime(str("2024-05-01T10:20:30+05:30"))
	require.NotNil(t, offset)
	assert.Equal(t, time.Date(2024, 5, 1, 4, 50, 30, 0, time.UTC), offset.UTC())

	assert.Nil(t, ParseTime(nil))
	assert.Nil(t, ParseTime(str("")))
	assert.Nil(t, ParseTime(str("yesterday")))
}

func TestMessage_TimestampFallback(t *testing.T) {
	both := decode[MessageDTO](t, `{"id":"m","timestamp":"2024-01-01T00:00:00Z","created_at":"2023-01-01T00:00:00Z"}`)
	m, err := ToMessage(both)
	require.NoError(t, err)
	require.NotNil(t, m.Timestamp)
	assert.Equal(t, 2024, m.Timestamp.Year())

	created := decode[MessageDTO](t, `{"id":"m","created_at":"2023-01-01T00:00:00.5Z"}`)
	m, err = ToMessage(created)
	require.NoError(t, err)
	require.NotNil(t, m.Timestamp)
	assert.Equal(t, 2023, m.Timestamp.Year())

	neither := decode[MessageDTO](t, `{"id":"m"}`)
	m, err = ToMessage(neither)
	require.NoError(t, err)
	assert.Nil(t, m.Timestamp)
}
