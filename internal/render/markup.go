// Package render turns the free-form description text stored in the product
// feed into an HTML fragment.
//
// The input is line oriented. Runs of pipe-delimited lines become a table,
// lines that are just an image URL become an image, blank lines become
// breaks and everything else becomes a paragraph. Table cells may use the
// span sentinels ">" (extend the cell to the left) and "^" (extend the cell
// above), and a leading "#" marks a borderless cell.
//
// No escaping is performed; callers own sanitization of the result.
package render

import (
	"regexp"
	"strings"
)

var imageLine = regexp.MustCompile(`(?i)^https?://.*\.(jpg|jpeg|png|webp|gif|svg)(\?.*)?$`)

// Description renders text to HTML. It never fails: malformed tables degrade
// to whatever structure can be inferred.
func Description(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")

	var b strings.Builder
	var block [][]string
	flush := func() {
		if len(block) > 0 {
			writeTable(&b, block)
			block = nil
		}
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if isTableRow(line) {
			if isSeparator(line) {
				continue
			}
			block = append(block, splitCells(line))
			continue
		}
		flush()
		switch {
		case line == "":
			if i < len(lines)-1 {
				b.WriteString("<br>")
			}
		case imageLine.MatchString(line):
			b.WriteString(`<div class="desc-image"><img src="`)
			b.WriteString(line)
			b.WriteString(`"></div>`)
		default:
			b.WriteString("<p>")
			b.WriteString(line)
			b.WriteString("</p>")
		}
	}
	flush()
	return b.String()
}

func isTableRow(line string) bool {
	return len(line) >= 2 && line[0] == '|' && line[len(line)-1] == '|'
}

// isSeparator reports whether a table row is an alignment rule such as
// "|---|:--:|". A dash is required so rows of empty cells survive.
func isSeparator(line string) bool {
	dash := false
	for _, r := range line {
		switch r {
		case '-':
			dash = true
		case '|', ':', ' ', '\t':
		default:
			return false
		}
	}
	return dash
}

// splitCells splits "| a | b |" into ["a", "b"].
func splitCells(line string) []string {
	parts := strings.Split(line, "|")
	parts = parts[1 : len(parts)-1]
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}
