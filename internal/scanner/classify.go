package scanner

import (
	"strings"

	"github.com/SAP-F-2025/exam-engine/internal/models"
)

var typeAliases = map[string]models.QuestionType{
	"mcq":             models.QuestionTypeMultipleChoice,
	"mc":              models.QuestionTypeMultipleChoice,
	"multiple_choice": models.QuestionTypeMultipleChoice,

	"tfng":                 models.QuestionTypeTrueFalseNotGiven,
	"tf":                   models.QuestionTypeTrueFalseNotGiven,
	"true_false":           models.QuestionTypeTrueFalseNotGiven,
	"truefalse":            models.QuestionTypeTrueFalseNotGiven,
	"true_false_not_given": models.QuestionTypeTrueFalseNotGiven,

	"gap":                 models.QuestionTypeGapFill,
	"gap_fill":            models.QuestionTypeGapFill,
	"fill_blank":          models.QuestionTypeGapFill,
	"sentence_completion": models.QuestionTypeGapFill,
	"cloze":               models.QuestionTypeGapFill,

	"matching": models.QuestionTypeMatching,

	"table":            models.QuestionTypeTableCompletion,
	"chart":            models.QuestionTypeTableCompletion,
	"table_chart":      models.QuestionTypeTableCompletion,
	"table_completion": models.QuestionTypeTableCompletion,
}

// Classify maps an upstream type string onto its canonical variant.
// Unknown strings (short, long, phrase_extraction, ...) are free text.
func Classify(raw string) models.QuestionType {
	if t, ok := typeAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t
	}
	return models.QuestionTypeFreeText
}

// Normalize fills in q.Type from q.RawType when it is not set yet.
func Normalize(q *models.Question) {
	if q.Type == "" {
		q.Type = Classify(q.RawType)
	}
}

// TypeOf returns the canonical type of q, classifying RawType if needed.
func TypeOf(q models.Question) models.QuestionType {
	if q.Type != "" {
		return q.Type
	}
	return Classify(q.RawType)
}
