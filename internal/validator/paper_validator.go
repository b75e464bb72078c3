package validator

import (
	"fmt"

	"github.com/SAP-F-2025/exam-engine/internal/models"
)

// maxOptions is the number of letter labels available (A..Z)
const maxOptions = 26

// PaperValidator checks a loaded paper for inconsistencies the session
// cannot work around
type PaperValidator struct{}

func NewPaperValidator() *PaperValidator {
	return &PaperValidator{}
}

// Validate reports duplicate question ids and option lists too long to label
func (v *PaperValidator) Validate(paper *models.Paper) ValidationErrors {
	var errs ValidationErrors

	seen := make(map[uint]int, len(paper.Questions))
	for i, q := range paper.Questions {
		field := fmt.Sprintf("questions[%d]", i)
		if prev, ok := seen[q.ID]; ok {
			errs = append(errs, *NewValidationErrorWithRule(field+".id",
				fmt.Sprintf("duplicates questions[%d].id", prev), "unique_id", q.ID))
		} else {
			seen[q.ID] = i
		}
		if len(q.Options) > maxOptions {
			errs = append(errs, *NewValidationErrorWithRule(field+".options",
				fmt.Sprintf("must have at most %d options", maxOptions), "max_options", len(q.Options)))
		}
	}

	return errs
}
