package scanner

import (
	"fmt"
	"regexp"
	"strings"
)

const itemLabel = `(?:\d+|i{1,3}|iv|v|vi{0,3}|ix|x)`

var (
	firstOption  = regexp.MustCompile(`\bA\.\s`)
	leadMarker   = regexp.MustCompile(`(?i)^(?:` + itemLabel + `|[A-E])\.\s`)
	firstItem    = regexp.MustCompile(`(?i)\b` + itemLabel + `\.\s`)
	itemMarker   = regexp.MustCompile(`(?i)(?:^|\s)` + itemLabel + `\.\s`)
	optionMarker = regexp.MustCompile(`(?:^|\s)[A-E]\.\s`)
)

// Matching is the recovered structure of a matching question.
type Matching struct {
	Prompt    string   `json:"prompt,omitempty"`
	LeftItems []string `json:"left_items"`
	Options   []string `json:"options"`
}

// ParseMatching splits text into numbered left items and lettered options.
// The left column is everything before the first "A. " marker. When explicit
// options are supplied they replace the derived ones. With options but no
// recognisable items, placeholder items "Item 1".."Item N" are produced so
// every option has a slot.
func ParseMatching(text string, explicitOptions []string) Matching {
	cleaned := strings.TrimSpace(text)
	prompt, body := "", cleaned
	// A first line that is itself an item or option belongs to the body.
	if split := SplitHeaderBody(cleaned); split.Header != "" && !leadMarker.MatchString(split.Header+" ") {
		prompt, body = split.Header, split.Body
	}

	leftText, rightText := body, ""
	if loc := firstOption.FindStringIndex(body); loc != nil {
		leftText = strings.TrimSpace(body[:loc[0]])
		rightText = strings.TrimSpace(body[loc[0]:])
	}

	if loc := firstItem.FindStringIndex(leftText); prompt == "" && loc != nil && loc[0] > 0 {
		prompt = strings.TrimSpace(leftText[:loc[0]])
		leftText = strings.TrimSpace(leftText[loc[0]:])
	}

	items := splitByMarkers(leftText, itemMarker)
	options := splitByMarkers(rightText, optionMarker)
	if len(explicitOptions) > 0 {
		options = append([]string(nil), explicitOptions...)
	}
	if len(items) == 0 {
		items = make([]string, len(options))
		for i := range options {
			items[i] = fmt.Sprintf("Item %d", i+1)
		}
	}

	return Matching{Prompt: prompt, LeftItems: items, Options: options}
}

// splitByMarkers returns the non-empty text between consecutive marker
// matches, the last one running to the end of text.
func splitByMarkers(text string, marker *regexp.Regexp) []string {
	locs := marker.FindAllStringIndex(text, -1)
	out := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if content := strings.TrimSpace(text[loc[1]:end]); content != "" {
			out = append(out, content)
		}
	}
	return out
}
