// Package codec converts learner answers between their in-memory shape and
// the canonical string sent to the Submission Service.
package codec

import (
	"encoding/json"
	"strings"

	"github.com/SAP-F-2025/exam-engine/internal/models"
)

// Value is the in-memory answer of one question. Single-value types use
// Text; gap_fill, matching and table_completion use Slots.
type Value struct {
	Text  string   `json:"value,omitempty"`
	Slots []string `json:"slots,omitempty"`
}

// Encode returns the wire form of v. Array types serialize Slots verbatim as
// a JSON array of strings; the other types are identity encodings.
func Encode(t models.QuestionType, v Value) string {
	if !t.IsArray() {
		return v.Text
	}
	slots := v.Slots
	if slots == nil {
		slots = []string{}
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		// []string always marshals
		return "[]"
	}
	return string(raw)
}

// Decode restores the in-memory form of encoded. For array types the result
// always has exactly slotCount entries: absent or malformed input gives
// empty strings, short arrays are padded and entries beyond slotCount are
// dropped. Decode never fails.
func Decode(t models.QuestionType, encoded string, slotCount int) Value {
	if !t.IsArray() {
		return Value{Text: encoded}
	}
	return Value{Slots: Fit(parseArray(encoded), slotCount)}
}

// Empty is the encoding of an unanswered question.
func Empty(t models.QuestionType, slotCount int) string {
	return Encode(t, Blank(t, slotCount))
}

// Blank is the unanswered in-memory value.
func Blank(t models.QuestionType, slotCount int) Value {
	if !t.IsArray() {
		return Value{}
	}
	return Value{Slots: make([]string, max(slotCount, 0))}
}

// Fit pads or truncates slots to exactly n entries.
func Fit(slots []string, n int) []string {
	n = max(n, 0)
	out := make([]string, n)
	copy(out, slots)
	return out
}

// IsEmpty reports whether v carries no answer at all.
func IsEmpty(v Value) bool {
	if strings.TrimSpace(v.Text) != "" {
		return false
	}
	for _, s := range v.Slots {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

func parseArray(encoded string) []string {
	if strings.TrimSpace(encoded) == "" {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(encoded), &items); err != nil {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = scalarString(item)
	}
	return out
}

// scalarString keeps strings as-is, renders numbers and booleans as their
// JSON text and maps null, objects and arrays to "".
func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed[0] == '{' || trimmed[0] == '[' {
		return ""
	}
	return trimmed
}
