package render

import (
	"strconv"
	"strings"
)

const (
	sentinelLeft  = ">"
	sentinelAbove = "^"
)

func isSentinel(c string) bool { return c == sentinelLeft || c == sentinelAbove }

// cellAt returns row[c], treating missing cells as empty.
func cellAt(row []string, c int) string {
	if c < len(row) {
		return row[c]
	}
	return ""
}

// writeTable renders one buffered block. The first row is the header and
// fixes the column count; extra cells in later rows are ignored.
func writeTable(b *strings.Builder, block [][]string) {
	header := block[0]
	cols := len(header)
	body := block[1:]

	b.WriteString(`<table class="desc-table"><thead><tr>`)
	for c := 0; c < cols; c++ {
		cell := header[c]
		if isSentinel(cell) {
			continue
		}
		span := 1
		for c+span < cols && header[c+span] == sentinelLeft {
			span++
		}
		writeCell(b, "th", cell, 1, span)
		c += span - 1
	}
	b.WriteString("</tr></thead>")

	if len(body) > 0 {
		skip := make([][]bool, len(body))
		for r := range skip {
			skip[r] = make([]bool, cols)
		}

		b.WriteString("<tbody>")
		for r, row := range body {
			b.WriteString("<tr>")
			for c := 0; c < cols; c++ {
				if skip[r][c] {
					continue
				}
				cell := cellAt(row, c)
				if isSentinel(cell) {
					// Orphan: nothing to extend.
					continue
				}

				colspan := 1
				for c+colspan < cols && cellAt(row, c+colspan) == sentinelLeft {
					skip[r][c+colspan] = true
					colspan++
				}

				rowspan := 1
				for r+rowspan < len(body) && cellAt(body[r+rowspan], c) == sentinelAbove {
					for k := 0; k < colspan; k++ {
						skip[r+rowspan][c+k] = true
					}
					rowspan++
				}

				writeCell(b, "td", cell, rowspan, colspan)
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody>")
	}
	b.WriteString("</table>")
}

func writeCell(b *strings.Builder, tag, content string, rowspan, colspan int) {
	b.WriteString("<")
	b.WriteString(tag)
	if strings.HasPrefix(content, "#") {
		content = content[1:]
		b.WriteString(` class="no-border-cell"`)
	}
	if rowspan > 1 {
		b.WriteString(` rowspan="`)
		b.WriteString(strconv.Itoa(rowspan))
		b.WriteString(`"`)
	}
	if colspan > 1 {
		b.WriteString(` colspan="`)
		b.WriteString(strconv.Itoa(colspan))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	b.WriteString(content)
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">")
}
