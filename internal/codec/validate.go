package codec

import (
	"fmt"

	"github.com/SAP-F-2025/exam-engine/internal/models"
)

// ShapeError describes an answer that does not fit its question.
type ShapeError struct {
	Type   models.QuestionType
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid %s answer: %s", e.Type, e.Reason)
}

// CheckShape verifies that v fits a question of type t with the given slot
// and option counts. Empty values are always accepted.
func CheckShape(t models.QuestionType, v Value, slotCount, optionCount int) error {
	if t.IsArray() {
		if v.Text != "" {
			return &ShapeError{Type: t, Reason: "expected slots, got a single value"}
		}
		if len(v.Slots) != slotCount {
			return &ShapeError{Type: t, Reason: fmt.Sprintf("expected %d slots, got %d", slotCount, len(v.Slots))}
		}
		if t == models.QuestionTypeMatching {
			for i, s := range v.Slots {
				if s == "" {
					continue
				}
				if idx, ok := models.OptionIndex(s); !ok || idx >= optionCount {
					return &ShapeError{Type: t, Reason: fmt.Sprintf("slot %d: unknown option %q", i, s)}
				}
			}
		}
		return nil
	}

	if len(v.Slots) > 0 {
		return &ShapeError{Type: t, Reason: "expected a single value, got slots"}
	}
	if v.Text == "" {
		return nil
	}
	switch t {
	case models.QuestionTypeMultipleChoice:
		if idx, ok := models.OptionIndex(v.Text); !ok || idx >= optionCount {
			return &ShapeError{Type: t, Reason: fmt.Sprintf("unknown option %q", v.Text)}
		}
	case models.QuestionTypeTrueFalseNotGiven:
		switch v.Text {
		case models.AnswerTrue, models.AnswerFalse, models.AnswerNotGiven:
		default:
			return &ShapeError{Type: t, Reason: fmt.Sprintf("expected T, F or NG, got %q", v.Text)}
		}
	}
	return nil
}
