package models

type QuestionType string

const (
	QuestionTypeMultipleChoice    QuestionType = "multiple_choice"
	QuestionTypeTrueFalseNotGiven QuestionType = "true_false_not_given"
	QuestionTypeGapFill           QuestionType = "gap_fill"
	QuestionTypeMatching          QuestionType = "matching"
	QuestionTypeTableCompletion   QuestionType = "table_completion"
	QuestionTypeFreeText          QuestionType = "free_text"
)

// IsArray reports whether answers of this type are encoded as a JSON array of slots.
func (t QuestionType) IsArray() bool {
	switch t {
	case QuestionTypeGapFill, QuestionTypeMatching, QuestionTypeTableCompletion:
		return true
	}
	return false
}

// IsInline reports whether the question body carries its own inputs (blanks,
// matching slots, table cells), which makes the first line a standalone header.
func (t QuestionType) IsInline() bool {
	return t.IsArray()
}

// Question is one item of a paper as delivered by the Paper Provider.
// RawType is the upstream type string; Type is its normalized form and is
// filled in when the paper is loaded.
type Question struct {
	ID      uint         `json:"id" validate:"required"`
	Text    string       `json:"question_text"`
	RawType string       `json:"question_type"`
	Type    QuestionType `json:"type,omitempty"`
	Options []string     `json:"options,omitempty" validate:"omitempty,dive,max=2000"`
}

// Paper is a loaded exam paper. DurationSeconds is nil for untimed papers.
type Paper struct {
	ID              uint       `json:"id" validate:"required"`
	Title           string     `json:"title"`
	ReferenceText   string     `json:"article_content"`
	DurationSeconds *int       `json:"duration_seconds,omitempty" validate:"omitempty,min=1"`
	Questions       []Question `json:"questions" validate:"dive"`
}

// Question returns the question with the given id.
func (p *Paper) Question(id uint) (*Question, bool) {
	for i := range p.Questions {
		if p.Questions[i].ID == id {
			return &p.Questions[i], true
		}
	}
	return nil, false
}
