package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mithrel/sheetsite/pkg/api"
)

// ProductMarkdown is the markdown detail view shared by the pretty output
// and the browser.
func ProductMarkdown(p api.Product, lang api.Lang) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name(lang))
	if other := p.Name(lang.Toggle()); other != "" {
		fmt.Fprintf(&b, "_%s_\n\n", other)
	}
	fmt.Fprintf(&b, "> **Code:** %s | **Category:** %s\n>\n> **Packing:** %s\n\n", p.Code, p.Category, p.PackingLabel())
	if len(p.Images) > 0 {
		b.WriteString("**Images**\n\n")
		for _, img := range p.Images {
			fmt.Fprintf(&b, "- %s\n", img)
		}
		b.WriteString("\n")
	}
	if d := strings.TrimSpace(p.Description(lang)); d != "" {
		b.WriteString("---\n\n")
		for _, line := range strings.Split(d, "\n") {
			// Keep the author's line breaks.
			b.WriteString(line + "  \n")
		}
	}
	return b.String()
}

// WritePrettyProduct renders a product with glamour.
func WritePrettyProduct(w io.Writer, p api.Product, lang api.Lang, width int) error {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(ProductMarkdown(p, lang))
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
