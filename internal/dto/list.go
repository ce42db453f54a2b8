// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// listKeys are the wrapper keys the backend uses for collections, in the
// order they are tried.
var listKeys = []string{
	"items", "conversations", "projects", "invitations", "messages",
	"collaborators", "files", "facts", "images", "modes", "results",
}

// Pagination is the optional paging block of wrapped lists.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

// List decodes any of the backend's collection shapes: a bare array, or an
// object holding the array under one of listKeys. Missing or null arrays
// decode to an empty list.
type List[T any] struct {
	Items      []T
	Total      *int
	Pagination *Pagination
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	*l = List[T]{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || isNull(data) {
		return nil
	}
	if data[0] == '[' {
		return json.Unmarshal(data, &l.Items)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("list: %w", err)
	}
	for _, key := range listKeys {
		raw, ok := obj[key]
		if !ok || isNull(raw) {
			continue
		}
		if err := json.Unmarshal(raw, &l.Items); err != nil {
			return fmt.Errorf("list %s: %w", key, err)
		}
		break
	}
	if raw, ok := obj["total"]; ok && !isNull(raw) {
		var total int
		if err := json.Unmarshal(raw, &total); err == nil {
			l.Total = &total
		}
	}
	if raw, ok := obj["pagination"]; ok && !isNull(raw) {
		var p Pagination
		if err := json.Unmarshal(raw, &p); err == nil {
			l.Pagination = &p
		}
	}
	return nil
}

// Slice returns the items, never nil.
func (l List[T]) Slice() []T {
	if l.Items == nil {
		return []T{}
	}
	return l.Items
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
