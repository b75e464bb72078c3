package models

const (
	AnswerTrue     = "T"
	AnswerFalse    = "F"
	AnswerNotGiven = "NG"
)

// Choice is one selectable option with its letter label.
type Choice struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// TrueFalseChoices are the fixed options of a true_false_not_given question.
var TrueFalseChoices = []Choice{
	{Label: AnswerTrue, Text: "True"},
	{Label: AnswerFalse, Text: "False"},
	{Label: AnswerNotGiven, Text: "Not Given"},
}

// OptionLabel returns the letter for the option at index i (0 -> "A").
func OptionLabel(i int) string {
	return string(rune('A' + i))
}

// OptionIndex is the inverse of OptionLabel.
func OptionIndex(label string) (int, bool) {
	if len(label) != 1 || label[0] < 'A' || label[0] > 'Z' {
		return 0, false
	}
	return int(label[0] - 'A'), true
}

// LabelChoices pairs option texts with their letter labels.
func LabelChoices(options []string) []Choice {
	out := make([]Choice, len(options))
	for i, opt := range options {
		out[i] = Choice{Label: OptionLabel(i), Text: opt}
	}
	return out
}
