package scanner

import (
	"github.com/SAP-F-2025/exam-engine/internal/models"
)

// Template is everything a renderer needs to lay out one question.
// SlotCount is the exact length of the answer array for array types and 0
// for single-value types.
type Template struct {
	QuestionID uint                `json:"question_id"`
	Type       models.QuestionType `json:"type"`
	Header     string              `json:"header,omitempty"`
	Body       string              `json:"body"`
	Choices    []models.Choice     `json:"choices,omitempty"`
	Blanks     []int               `json:"blanks,omitempty"`
	Segments   []string            `json:"segments,omitempty"`
	Matching   *Matching           `json:"matching,omitempty"`
	Table      *Table              `json:"table,omitempty"`
	SlotCount  int                 `json:"slot_count"`
	// Unstructured is set when a matching or table question could not be
	// parsed and is rendered as plain text.
	Unstructured bool `json:"unstructured,omitempty"`
}

// Scan derives the template of q from its current text and options.
func Scan(q models.Question) Template {
	t := TypeOf(q)
	split := Display(q)
	tpl := Template{
		QuestionID: q.ID,
		Type:       t,
		Header:     split.Header,
		Body:       split.Body,
	}

	switch t {
	case models.QuestionTypeMultipleChoice:
		tpl.Choices = models.LabelChoices(q.Options)
	case models.QuestionTypeTrueFalseNotGiven:
		tpl.Choices = models.TrueFalseChoices
	case models.QuestionTypeGapFill:
		tpl.Blanks = FindBlanks(split.Body)
		tpl.Segments = SplitBlanks(split.Body)
		// Without a blank run the question still takes one typed answer.
		tpl.SlotCount = max(len(tpl.Blanks), 1)
	case models.QuestionTypeMatching:
		m := ParseMatching(split.Body, q.Options)
		if len(m.LeftItems) == 0 || len(m.Options) == 0 {
			tpl.Unstructured = true
			break
		}
		tpl.Matching = &m
		tpl.SlotCount = len(m.LeftItems)
	case models.QuestionTypeTableCompletion:
		table := BuildTable(ParseTableRows(split.Body))
		if table == nil {
			tpl.Unstructured = true
			break
		}
		tpl.Table = table
		tpl.SlotCount = table.Slots
	}
	return tpl
}

// SlotCount is the number of answer slots q currently has.
func SlotCount(q models.Question) int {
	return Scan(q).SlotCount
}
