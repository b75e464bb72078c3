package services

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/exam-engine/internal/codec"
	"github.com/SAP-F-2025/exam-engine/internal/models"
	"github.com/SAP-F-2025/exam-engine/internal/scanner"
)

const NotAnswered = "Not answered"

// Review is the read-only rendering of a submitted attempt
type Review struct {
	PaperID      uint         `json:"paper_id"`
	SubmissionID uint         `json:"submission_id"`
	Title        string       `json:"title"`
	Answered     int          `json:"answered"`
	Total        int          `json:"total"`
	Items        []ReviewItem `json:"items"`
}

type ReviewItem struct {
	Number     int                 `json:"number"`
	QuestionID uint                `json:"question_id"`
	Type       models.QuestionType `json:"type"`
	Header     string              `json:"header,omitempty"`
	Prompt     string              `json:"prompt"`
	Answer     string              `json:"answer"`
	Encoded    string              `json:"encoded"`
	Answered   bool                `json:"answered"`
}

// BuildReview pairs every question with its stored encoded answer
func BuildReview(paper *models.Paper, submissionID uint, answers map[uint]string) *Review {
	review := &Review{
		PaperID:      paper.ID,
		SubmissionID: submissionID,
		Title:        paper.Title,
		Total:        len(paper.Questions),
		Items:        make([]ReviewItem, 0, len(paper.Questions)),
	}

	for i, q := range paper.Questions {
		split := scanner.Display(q)
		encoded := answers[q.ID]
		text, ok := ReadableAnswer(q, encoded)
		if ok {
			review.Answered++
		} else {
			text = NotAnswered
		}
		review.Items = append(review.Items, ReviewItem{
			Number:     i + 1,
			QuestionID: q.ID,
			Type:       scanner.TypeOf(q),
			Header:     split.Header,
			Prompt:     split.Body,
			Answer:     text,
			Encoded:    encoded,
			Answered:   ok,
		})
	}
	return review
}

// ReadableAnswer converts an encoded answer into display text. ok is false
// when the question was left unanswered.
func ReadableAnswer(q models.Question, encoded string) (string, bool) {
	tpl := scanner.Scan(q)
	v := codec.Decode(tpl.Type, encoded, tpl.SlotCount)
	if codec.IsEmpty(v) {
		return "", false
	}

	switch tpl.Type {
	case models.QuestionTypeMultipleChoice:
		return labelled(v.Text, q.Options), true
	case models.QuestionTypeTrueFalseNotGiven:
		for _, c := range models.TrueFalseChoices {
			if c.Label == v.Text {
				return c.Text, true
			}
		}
		return v.Text, true
	case models.QuestionTypeGapFill, models.QuestionTypeTableCompletion:
		parts := make([]string, 0, len(v.Slots))
		for _, s := range v.Slots {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " / "), true
	case models.QuestionTypeMatching:
		return matchingPairs(tpl.Matching, v.Slots), true
	default:
		return v.Text, true
	}
}

func labelled(label string, options []string) string {
	if idx, ok := models.OptionIndex(label); ok && idx < len(options) {
		return fmt.Sprintf("%s. %s", label, options[idx])
	}
	return label
}

func matchingPairs(m *scanner.Matching, slots []string) string {
	if m == nil {
		return strings.Join(slots, ", ")
	}
	pairs := make([]string, 0, len(slots))
	for i, label := range slots {
		if label == "" || i >= len(m.LeftItems) {
			continue
		}
		pairs = append(pairs, fmt.Sprintf("%d. %s -> %s", i+1, m.LeftItems[i], labelled(label, m.Options)))
	}
	return strings.Join(pairs, "; ")
}
