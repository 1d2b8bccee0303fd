package api

import (
	"strings"
	"time"
)

// Lang selects which spreadsheet column holds the visible text.
type Lang string

const (
	LangZH Lang = "zh"
	LangEN Lang = "en"
)

// ParseLang accepts "zh" or "en" (case-insensitive).
func ParseLang(s string) (Lang, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zh":
		return LangZH, true
	case "en":
		return LangEN, true
	default:
		return LangZH, false
	}
}

// Column returns the row index of the text for this language.
func (l Lang) Column() int {
	if l == LangEN {
		return ColEN
	}
	return ColZH
}

// Toggle returns the other language.
func (l Lang) Toggle() Lang {
	if l == LangEN {
		return LangZH
	}
	return LangEN
}

// ToggleLabel is the caption of the language switch, naming the target language.
func (l Lang) ToggleLabel() string {
	if l == LangEN {
		return "中"
	}
	return "EN"
}

// Spreadsheet column conventions.
const (
	ColKey   = 0
	ColZH    = 1
	ColEN    = 2
	ColImage = 3
	ColLink  = 4
)

// Row is one spreadsheet row with every cell already stringified.
type Row []string

// Col returns the cell at i, or "" when the row is shorter.
func (r Row) Col(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Key is the lower-cased, trimmed row label used for keyword matching.
func (r Row) Key() string { return strings.ToLower(strings.TrimSpace(r.Col(ColKey))) }

func (r Row) Text(l Lang) string { return r.Col(l.Column()) }

func (r Row) Image() string { return strings.TrimSpace(r.Col(ColImage)) }

func (r Row) Link() string { return strings.TrimSpace(r.Col(ColLink)) }

// Sheet is one spreadsheet tab.
type Sheet struct {
	Name      string    `json:"name" yaml:"name"`
	Rows      []Row     `json:"rows" yaml:"rows"`
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// Find returns the first row whose key equals key exactly.
func (s Sheet) Find(key string) (Row, bool) {
	for _, r := range s.Rows {
		if r.Key() == key {
			return r, true
		}
	}
	return nil, false
}

// Title returns the tab's display title for l, falling back to the tab name.
func (s Sheet) Title(l Lang) string {
	if r, ok := s.Find("title"); ok {
		if t := r.Text(l); t != "" {
			return t
		}
	}
	return s.Name
}

// Product feed field names.
const (
	FieldCode          = "Item code (ERP)"
	FieldCategory      = "Category"
	FieldNameZH        = "Chinese product name"
	FieldNameEN        = "English product name"
	FieldPacking       = "Pcs / Packing"
	FieldUnit          = "計量單位"
	FieldDescriptionZH = "中文描述"
	FieldDescriptionEN = "英文描述"
	FieldImages        = "圖片"
)

// Product is one record of the catalog feed.
type Product struct {
	Code          string            `json:"code" yaml:"code"`
	Category      string            `json:"category" yaml:"category"`
	NameZH        string            `json:"name_zh" yaml:"name_zh"`
	NameEN        string            `json:"name_en" yaml:"name_en"`
	Packing       string            `json:"packing" yaml:"packing"`
	Unit          string            `json:"unit" yaml:"unit"`
	DescriptionZH string            `json:"description_zh" yaml:"description_zh"`
	DescriptionEN string            `json:"description_en" yaml:"description_en"`
	Images        []string          `json:"images" yaml:"images"`
	Fields        map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

func (p Product) Name(l Lang) string {
	if l == LangEN {
		return p.NameEN
	}
	return p.NameZH
}

func (p Product) Description(l Lang) string {
	if l == LangEN {
		return p.DescriptionEN
	}
	return p.DescriptionZH
}

// PackingLabel joins the pack count and its unit, e.g. "12 box".
func (p Product) PackingLabel() string {
	return p.Packing + " " + p.Unit
}

// FirstImage returns the main product image or "".
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductFromFields maps a feed record onto a Product.
func ProductFromFields(fields map[string]string) Product {
	p := Product{
		Code:          fields[FieldCode],
		Category:      fields[FieldCategory],
		NameZH:        fields[FieldNameZH],
		NameEN:        fields[FieldNameEN],
		Packing:       fields[FieldPacking],
		Unit:          fields[FieldUnit],
		DescriptionZH: fields[FieldDescriptionZH],
		DescriptionEN: fields[FieldDescriptionEN],
		Fields:        fields,
	}
	if imgs := fields[FieldImages]; imgs != "" {
		for _, s := range strings.Split(imgs, ",") {
			if s = strings.TrimSpace(s); s != "" {
				p.Images = append(p.Images, s)
			}
		}
	}
	return p
}

// SnapshotInfo describes one persisted upstream snapshot.
type SnapshotInfo struct {
	Kind      string    `json:"kind" yaml:"kind"`
	Name      string    `json:"name" yaml:"name"`
	Hash      string    `json:"hash" yaml:"hash"`
	Items     int       `json:"items" yaml:"items"`
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}
