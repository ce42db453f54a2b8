// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCamelToSnake(t *testing.T) {
	tests := map[string]string{
		"id":            "id",
		"isPinned":      "is_pinned",
		"messagesUsed":  "messages_used",
		"imageURL":      "image_url",
		"URLValue":      "url_value",
		"userID":        "user_id",
		"already_snake": "already_snake",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CamelToSnake(in), in)
	}
}

func TestSnakeToCamel(t *testing.T) {
	tests := map[string]string{
		"id":          "id",
		"created_at":  "createdAt",
		"image_url":   "imageUrl",
		"createdAt":   "createdAt",
		"_private":    "_private",
		"trailing_":   "trailing_",
		"a__b":        "aB",
		"can_edit_it": "canEditIt",
		"__":          "__",
	}
	for in, want := range tests {
		assert.Equal(t, want, SnakeToCamel(in), in)
	}
}

func TestDecodeJSON_NestedKeys(t *testing.T) {
	var got map[string]any
	require.NoError(t, DecodeJSON([]byte(`{"data":{"items":[{"created_at":"x","user_info":{"first_name":"A"}}]}}`), &got))

	items := got["data"].(map[string]any)["items"].([]any)
	item := items[0].(map[string]any)
	assert.Equal(t, "x", item["createdAt"])
	assert.Equal(t, map[string]any{"firstName": "A"}, item["userInfo"])
}

func TestEncodeJSON_KeepsFreeFormMapKeys(t *testing.T) {
	body := struct {
		EventName  string            `json:"eventName"`
		Properties map[string]string `json:"properties"`
	}{
		EventName:  "screen_view",
		Properties: map[string]string{"screenName": "chat", "user_id": "u1"},
	}
	raw, err := EncodeJSON(body)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "screen_view", got["event_name"])
	assert.Equal(t, map[string]any{"screenName": "chat", "user_id": "u1"}, got["properties"])

	var back struct {
		Properties map[string]string `json:"properties"`
	}
	require.NoError(t, DecodeJSON(raw, &back))
	assert.Equal(t, body.Properties, back.Properties)
}

func TestDecodeJSON_PreservesNumbers(t *testing.T) {
	var got struct {
		Big int64 `json:"bigNumber"`
	}
	require.NoError(t, DecodeJSON([]byte(`{"big_number": 9007199254740993}`), &got))
	assert.Equal(t, int64(9007199254740993), got.Big)
}

func TestDecodeJSON_Rejects(t *testing.T) {
	var v any
	assert.Error(t, DecodeJSON([]byte(``), &v))
	assert.Error(t, DecodeJSON([]byte(`{} {}`), &v))
}

func TestEncodeJSON_RoundTrip(t *testing.T) {
	in := struct {
		ConversationID string            `json:"conversationId"`
		Attachments    []map[string]bool `json:"attachmentIds"`
	}{ConversationID: "c1", Attachments: []map[string]bool{{"isImage": true}}}

	data, err := EncodeJSON(in)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "c1", wire["conversation_id"])
	assert.Equal(t, []any{map[string]any{"is_image": true}}, wire["attachment_ids"])

	var back struct {
		ConversationID string `json:"conversationId"`
	}
	require.NoError(t, DecodeJSON(data, &back))
	assert.Equal(t, "c1", back.ConversationID)
}

func TestExtractMessage(t *testing.T) {
	tests := map[string]string{
		`{"error":"bad"}`:                "bad",
		`{"error":{"message":"nested"}}`: "nested",
		`{"message":"msg"}`:              "msg",
		`{"error":"","message":"fb"}`:    "fb",
		`{"success":false}`:              DefaultErrorMessage,
		`garbage`:                        DefaultErrorMessage,
		``:                               DefaultErrorMessage,
	}
	for body, want := range tests {
		assert.Equal(t, want, extractMessage([]byte(body)), body)
	}
}
