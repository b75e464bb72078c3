package scanner

import (
	"regexp"
	"strings"

	"github.com/SAP-F-2025/exam-engine/internal/models"
)

var (
	tagPrefix = regexp.MustCompile(`^\[.*?\]\s*`)
	lineBreak = regexp.MustCompile(`\r?\n`)
	blankRun  = regexp.MustCompile(`_{2,}`)
)

// Split is a question text divided into a standalone instruction line and
// the prompt proper.
type Split struct {
	Header string `json:"header,omitempty"`
	Body   string `json:"body"`
}

// StripTag removes a leading bracketed tag such as "[1] " or "[Q3]".
func StripTag(text string) string {
	return tagPrefix.ReplaceAllString(text, "")
}

// SplitHeaderBody treats the first non-empty line as a header when at least
// two non-empty lines exist. Otherwise the whole trimmed text is the body.
func SplitHeaderBody(text string) Split {
	cleaned := strings.TrimSpace(text)
	var lines []string
	for _, line := range lineBreak.Split(cleaned, -1) {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) >= 2 {
		return Split{Header: lines[0], Body: strings.Join(lines[1:], "\n")}
	}
	return Split{Body: cleaned}
}

// Display returns the header and body to show for a question. Only gap,
// matching and table questions split off a header; other types show the
// tag-stripped text as both. A first line that already holds a blank, a
// table row or a matching marker stays in the body.
func Display(q models.Question) Split {
	cleaned := StripTag(q.Text)
	t := TypeOf(q)
	if !t.IsInline() {
		return Split{Header: cleaned, Body: cleaned}
	}
	split := SplitHeaderBody(cleaned)
	if split.Header != "" && carriesStructure(t, split.Header) {
		return Split{Body: strings.TrimSpace(cleaned)}
	}
	if split.Body == "" {
		split.Body = cleaned
	}
	return split
}

func carriesStructure(t models.QuestionType, line string) bool {
	switch t {
	case models.QuestionTypeGapFill:
		return blankRun.MatchString(line)
	case models.QuestionTypeTableCompletion:
		return strings.Contains(line, "|")
	case models.QuestionTypeMatching:
		return leadMarker.MatchString(line + " ")
	}
	return false
}

// FindBlanks returns the byte offset of every run of two or more
// underscores, left to right. A single underscore is never a blank.
func FindBlanks(text string) []int {
	locs := blankRun.FindAllStringIndex(text, -1)
	offsets := make([]int, len(locs))
	for i, loc := range locs {
		offsets[i] = loc[0]
	}
	return offsets
}

// SplitBlanks returns the text segments around each blank; there is always
// one more segment than there are blanks.
func SplitBlanks(text string) []string {
	return blankRun.Split(text, -1)
}
