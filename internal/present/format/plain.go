package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mithrel/sheetsite/pkg/api"
)

const productHeader = "code\tcategory\tname\tpacking\timages\n"

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

func newTab(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// WritePlainProducts writes one aligned line per product.
func WritePlainProducts(w io.Writer, products []api.Product, lang api.Lang, headers bool) error {
	tw := newTab(w)
	if headers {
		_, _ = io.WriteString(tw, productHeader)
	}
	for _, p := range products {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			esc(p.Code), esc(p.Category), esc(p.Name(lang)), esc(p.PackingLabel()), len(p.Images))
	}
	return tw.Flush()
}

// WritePlainProduct writes a product as label: value lines followed by
// the raw description markup.
func WritePlainProduct(w io.Writer, p api.Product, lang api.Lang) error {
	tw := newTab(w)
	_, _ = fmt.Fprintf(tw, "Code:\t%s\n", p.Code)
	_, _ = fmt.Fprintf(tw, "Category:\t%s\n", p.Category)
	_, _ = fmt.Fprintf(tw, "Name:\t%s\n", p.Name(lang))
	_, _ = fmt.Fprintf(tw, "Name (%s):\t%s\n", lang.Toggle(), p.Name(lang.Toggle()))
	_, _ = fmt.Fprintf(tw, "Packing:\t%s\n", p.PackingLabel())
	for i, img := range p.Images {
		_, _ = fmt.Fprintf(tw, "Image %d:\t%s\n", i+1, img)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if d := strings.TrimSpace(p.Description(lang)); d != "" {
		_, err := fmt.Fprintf(w, "---\n%s\n", d)
		return err
	}
	return nil
}

// WritePlainRows writes a sheet as tab-separated cells, one row per line.
func WritePlainRows(w io.Writer, sheet api.Sheet, headers bool) error {
	tw := newTab(w)
	if headers {
		_, _ = io.WriteString(tw, "key\tzh\ten\timage\tlink\n")
	}
	for _, r := range sheet.Rows {
		cells := make([]string, 5)
		for i := range cells {
			cells[i] = esc(r.Col(i))
		}
		_, _ = io.WriteString(tw, strings.Join(cells, "\t")+"\n")
	}
	return tw.Flush()
}

// WritePlainSnapshots lists stored snapshots with their age relative to now.
func WritePlainSnapshots(w io.Writer, infos []api.SnapshotInfo, now time.Time, headers bool) error {
	tw := newTab(w)
	if headers {
		_, _ = io.WriteString(tw, "kind\tname\titems\tfetched\thash\n")
	}
	for _, in := range infos {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			in.Kind, esc(in.Name), humanize.Comma(int64(in.Items)),
			humanize.RelTime(in.FetchedAt, now, "ago", "from now"), shortHash(in.Hash))
	}
	return tw.Flush()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
