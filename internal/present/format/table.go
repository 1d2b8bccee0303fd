package format

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mithrel/sheetsite/pkg/api"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// WritePrettyProducts draws products as a bordered table.
func WritePrettyProducts(w io.Writer, products []api.Product, lang api.Lang) error {
	t := newTable("Code", "Category", "Name", "Packing", "Images")
	for _, p := range products {
		t.Row(p.Code, p.Category, p.Name(lang), p.PackingLabel(), strconv.Itoa(len(p.Images)))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// WritePrettyRows draws a sheet as a bordered table.
func WritePrettyRows(w io.Writer, sheet api.Sheet) error {
	t := newTable("Key", "中文", "English", "Image", "Link")
	for _, r := range sheet.Rows {
		t.Row(r.Col(api.ColKey), r.Col(api.ColZH), r.Col(api.ColEN), r.Col(api.ColImage), r.Col(api.ColLink))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
