// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/baatcheet/baatcheet-cli/internal/model"
)

// Tokens accepts either {prompt, completion, total} or a bare total.
type Tokens struct {
	Prompt     *int
	Completion *int
	Total      int
}

type tokensObject struct {
	Prompt           *int `json:"prompt"`
	Completion       *int `json:"completion"`
	Total            *int `json:"total"`
	PromptTokens     *int `json:"promptTokens"`
	CompletionTokens *int `json:"completionTokens"`
	TotalTokens      *int `json:"totalTokens"`
}

// UnmarshalJSON tries the object form first, then the integer form.
func (t *Tokens) UnmarshalJSON(data []byte) error {
	*t = Tokens{}
	data = bytes.TrimSpace(data)

	var obj tokensObject
	if len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("tokens: %w", err)
		}
		t.Prompt = firstInt(obj.Prompt, obj.PromptTokens)
		t.Completion = firstInt(obj.Completion, obj.CompletionTokens)
		switch total := firstInt(obj.Total, obj.TotalTokens); {
		case total != nil:
			t.Total = *total
		case t.Prompt != nil && t.Completion != nil:
			t.Total = *t.Prompt + *t.Completion
		}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("tokens: unsupported shape %s", data)
	}
	if i, err := n.Int64(); err == nil {
		t.Total = int(i)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("tokens: %w", err)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("tokens: %s is not a whole number", n)
	}
	t.Total = int(f)
	return nil
}

// MarshalJSON writes the object form.
func (t Tokens) MarshalJSON() ([]byte, error) {
	return json.Marshal(tokensObject{Prompt: t.Prompt, Completion: t.Completion, Total: &t.Total})
}

// ToModel converts to the domain shape.
func (t Tokens) ToModel() model.TokenInfo {
	return model.TokenInfo{Prompt: t.Prompt, Completion: t.Completion, Total: t.Total}
}

func firstInt(vals ...*int) *int {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
