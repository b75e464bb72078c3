package scanner

import (
	"strings"
	"unicode"
)

// Cell is one table cell. Parts holds the text around each blank, so
// len(Parts) == Blanks+1. FirstSlot is the answer slot of the cell's first
// blank.
type Cell struct {
	Text      string   `json:"text"`
	Parts     []string `json:"parts,omitempty"`
	Blanks    int      `json:"blanks"`
	FirstSlot int      `json:"first_slot"`
}

type Table struct {
	Rows  [][]Cell `json:"rows"`
	Slots int      `json:"slots"`
}

// ParseTableRows extracts pipe-delimited rows from text. Markdown separator
// rows are dropped before counting; fewer than two genuine rows yields nil
// and the question is shown as plain text.
func ParseTableRows(text string) [][]string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "|") || isSeparatorRow(line) {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		return nil
	}

	rows := make([][]string, len(lines))
	for i, line := range lines {
		line = strings.TrimPrefix(line, "|")
		line = strings.TrimSuffix(line, "|")
		cells := strings.Split(line, "|")
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}
		rows[i] = cells
	}
	return rows
}

// isSeparatorRow reports rows like "|---|:--:|" or "|   |" made only of
// dashes, colons, pipes and whitespace.
func isSeparatorRow(line string) bool {
	for _, r := range line {
		switch {
		case r == '-', r == ':', r == '|', unicode.IsSpace(r):
		default:
			return false
		}
	}
	return true
}

// BuildTable numbers the blanks of rows row by row, left to right.
func BuildTable(rows [][]string) *Table {
	if rows == nil {
		return nil
	}
	t := &Table{Rows: make([][]Cell, len(rows))}
	for i, row := range rows {
		cells := make([]Cell, len(row))
		for j, text := range row {
			blanks := len(FindBlanks(text))
			cell := Cell{Text: text, Blanks: blanks, FirstSlot: t.Slots}
			if blanks > 0 {
				cell.Parts = SplitBlanks(text)
			}
			t.Slots += blanks
			cells[j] = cell
		}
		t.Rows[i] = cells
	}
	return t
}
