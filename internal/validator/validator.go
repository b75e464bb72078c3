package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/exam-engine/internal/models"
	"github.com/SAP-F-2025/exam-engine/internal/scanner"
	"github.com/go-playground/validator/v10"
)

// Validator combines struct tag validation with paper consistency checks
type Validator struct {
	structValidator *validator.Validate
	paperValidator  *PaperValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		paperValidator:  NewPaperValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Validate performs struct validation and, for papers, the consistency checks
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		return err
	}

	if paper, ok := s.(*models.Paper); ok {
		if errs := v.paperValidator.Validate(paper); len(errs) > 0 {
			return errs
		}
	}

	return nil
}

// Paper returns the paper validator
func (v *Validator) Paper() *PaperValidator {
	return v.paperValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateQuestionType accepts canonical types and every known alias.
// Unknown strings are still valid upstream data (free text), so this tag is
// only used where a caller names a type explicitly.
func validateQuestionType(fl validator.FieldLevel) bool {
	value := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	if value == "" {
		return false
	}
	return scanner.Classify(value) != models.QuestionTypeFreeText || isFreeTextName(value)
}

func isFreeTextName(value string) bool {
	switch value {
	case string(models.QuestionTypeFreeText), "short", "long", "open_ended", "phrase_extraction", "essay":
		return true
	}
	return false
}
