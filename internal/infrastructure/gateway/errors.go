package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/doeshing/budgetq/internal/domain"
)

// errorMessage extracts a human message from an error body: the first of
// message, detail or error, else the plain text. FastAPI validation errors
// carry a list under detail; their msg fields are joined.
func errorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		if trimmed[0] == '{' || trimmed[0] == '[' {
			return ""
		}
		return string(trimmed)
	}
	for _, key := range []string{"message", "detail", "error"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if msg := rawMessage(raw); msg != "" {
			return msg
		}
	}
	return ""
}

func rawMessage(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		var parts []string
		for _, item := range items {
			if item.Msg != "" {
				parts = append(parts, item.Msg)
			}
		}
		return strings.Join(parts, "; ")
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return nested.Message
	}
	return ""
}

// decodeRecordList accepts a top-level array or an object holding the array
// under one of keys.
func decodeRecordList(raw json.RawMessage, keys ...string) ([]domain.Fields, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var records []domain.Fields
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, err
	}
	for _, key := range keys {
		inner, ok := wrapper[key]
		if !ok {
			continue
		}
		var records []domain.Fields
		if err := json.Unmarshal(inner, &records); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return records, nil
	}
	return nil, fmt.Errorf("no record list under %s", strings.Join(keys, ", "))
}
