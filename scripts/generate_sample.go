package main

import (
	"encoding/json"
	"fmt"
	mrand "math/rand"
	"os"
	"path/filepath"
)

// cell and row mirror the query response the dir source parses.
type cell struct {
	V any `json:"v"`
}

type row struct {
	C []*cell `json:"c"`
}

type col struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type table struct {
	Cols []col `json:"cols"`
	Rows []row `json:"rows"`
}

type response struct {
	Version string `json:"version"`
	Status  string `json:"status"`
	Table   table  `json:"table"`
}

var categories = []struct{ zh, en string }{
	{"茶葉", "Tea"},
	{"零食", "Snacks"},
	{"調味料", "Seasoning"},
	{"飲料", "Drinks"},
}

func main() {
	out := "sample"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		fail(err)
	}
	// Deterministic seed for reproducible output
	mr := mrand.New(mrand.NewSource(42))

	tabs := map[string][][]string{
		"Content": {
			{"title", "首頁", "Home"},
			{"Upper Image", "", "", "https://picsum.photos/seed/upper/1200/400"},
			{"Company Name", "星河貿易有限公司", "Galaxy Trading Co."},
			{"Introduction Title", "關於我們", "Who we are"},
			{"Introduction", "我們進口亞洲食品。", "We import Asian groceries."},
			{"Address", "台北市信義區", "Xinyi District, Taipei"},
			{"Bottom Image", "", "", "https://picsum.photos/seed/bottom/1200/300"},
		},
		"About Us": {
			{"title", "關於我們", "About Us"},
			{"Chinese Content", "成立於1998年。", ""},
			{"English Content", "", "Founded in 1998."},
			{"Chinese PDF Button", "公司簡介", "", "", "https://example.com/profile-zh.pdf"},
			{"English PDF Button", "", "Company profile", "", "https://example.com/profile-en.pdf"},
		},
		"Business Scope": {
			{"title", "營業項目", "Business Scope"},
			{"Logo", "", "", "https://picsum.photos/seed/logo/200/200"},
			{"Store 1", "信義門市", "Xinyi store", "https://picsum.photos/seed/store1/400/300"},
			{"Store 2", "板橋門市", "Banqiao store", "https://picsum.photos/seed/store2/400/300"},
		},
		"Product Catalog": catalogTab(),
		"Join Us": {
			{"title", "加入我們", "Join Us"},
			{"Position", "業務專員", "Sales representative"},
			{"Email", "jobs@example.com", "jobs@example.com"},
		},
		"Contact Us": {
			{"title", "聯絡我們", "Contact Us"},
			{"Phone", "02-1234-5678", "+886 2 1234 5678"},
			{"Fax", "02-1234-5679", "+886 2 1234 5679"},
			{"Email", "hello@example.com", "hello@example.com"},
			{"Map", "", "", "", "https://maps.example.com/?q=taipei"},
		},
	}
	for name, rows := range tabs {
		if err := writeJSON(filepath.Join(out, name+".json"), gviz(rows)); err != nil {
			fail(err)
		}
	}

	const total = 60
	products := make([]map[string]any, 0, total)
	for i := 0; i < total; i++ {
		c := categories[mr.Intn(len(categories))]
		n := 1 + mr.Intn(3)
		imgs := ""
		for j := 0; j < n; j++ {
			if j > 0 {
				imgs += ", "
			}
			imgs += fmt.Sprintf("https://picsum.photos/seed/p%03d-%d/600/600", i+1, j)
		}
		products = append(products, map[string]any{
			"Item code (ERP)":      1000 + i + 1,
			"Category":             c.en,
			"Chinese product name": fmt.Sprintf("%s %03d", c.zh, i+1),
			"English product name": fmt.Sprintf("%s %03d", c.en, i+1),
			"Pcs / Packing":        6 * (1 + mr.Intn(4)),
			"計量單位":                 []string{"box", "bag", "case"}[mr.Intn(3)],
			"中文描述":                 fmt.Sprintf("樣品商品 %03d。", i+1),
			"英文描述":                 fmt.Sprintf("Sample product %03d.", i+1),
			"圖片":                   imgs,
		})
	}
	if err := writeJSON(filepath.Join(out, "products.json"), products); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %d tabs and %d products to %s\n", len(tabs), len(products), out)
}

func catalogTab() [][]string {
	rows := [][]string{{"title", "產品目錄", "Product Catalog"}}
	for i, c := range categories {
		rows = append(rows, []string{
			fmt.Sprintf("Categories %d", i+1), c.zh, c.en,
			fmt.Sprintf("https://picsum.photos/seed/cat%d/400/300", i+1),
		})
	}
	return rows
}

func gviz(rows [][]string) response {
	t := table{}
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		t.Cols = append(t.Cols, col{ID: id, Type: "string"})
	}
	for _, r := range rows {
		var out row
		for i := 0; i < len(t.Cols); i++ {
			if i < len(r) && r[i] != "" {
				out.C = append(out.C, &cell{V: r[i]})
			} else {
				out.C = append(out.C, nil)
			}
		}
		t.Rows = append(t.Rows, out)
	}
	return response{Version: "0.6", Status: "ok", Table: t}
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
