// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// The backend speaks snake_case; DTOs and request structs are tagged in
// camelCase. Translation is applied to every object key, recursively, in
// both directions. Keys already in the target convention pass through
// unchanged, so a backend that mixes "created_at" and "createdAt" decodes
// into the same field. Values under an opaque key hold caller-chosen map
// keys and are copied verbatim.

// opaqueKeys name fields whose object values are free-form maps.
var opaqueKeys = map[string]bool{
	"properties": true,
}

// EncodeJSON marshals v and rewrites every object key to snake_case.
func EncodeJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	tree, err := decodeTree(raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rewriteKeys(tree, CamelToSnake))
}

// DecodeJSON rewrites every object key in data to camelCase and unmarshals
// the result into v.
func DecodeJSON(data []byte, v any) error {
	tree, err := decodeTree(data)
	if err != nil {
		return err
	}
	camel, err := json.Marshal(rewriteKeys(tree, SnakeToCamel))
	if err != nil {
		return err
	}
	return json.Unmarshal(camel, v)
}

func decodeTree(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level JSON value")
	}
	return tree, nil
}

func rewriteKeys(v any, convert func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			key := convert(k)
			if opaqueKeys[key] {
				out[key] = val
				continue
			}
			out[key] = rewriteKeys(val, convert)
		}
		return out
	case []any:
		for i := range t {
			t[i] = rewriteKeys(t[i], convert)
		}
		return t
	default:
		return v
	}
}

// CamelToSnake converts "isPinned" to "is_pinned" and "imageURL" to
// "image_url". Acronym runs are kept together.
func CamelToSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if !unicode.IsUpper(r) {
			b.WriteRune(r)
			continue
		}
		if i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// SnakeToCamel converts "created_at" to "createdAt". Leading and trailing
// underscores are preserved; keys without inner underscores are returned
// unchanged.
func SnakeToCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	start := 0
	for start < len(s) && s[start] == '_' {
		start++
	}
	end := len(s)
	for end > start && s[end-1] == '_' {
		end--
	}
	if start == end {
		return s
	}

	parts := strings.Split(s[start:end], "_")
	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:start])
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		runes := []rune(strings.ToLower(p))
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	b.WriteString(s[end:])
	return b.String()
}
