package site

import (
	"slices"
	"strings"
	"unicode"

	"github.com/mithrel/sheetsite/pkg/api"
)

// blockKind is what a spreadsheet row contributes to a page, decided by
// its key in column 0.
type blockKind int

const (
	blockNone blockKind = iota
	blockUpperImage
	blockCompanyName
	blockIntroTitle
	blockIntro
	blockAddress
	blockBottomImage
	blockContentZH
	blockContentEN
	blockPDFZH
	blockPDFEN
	blockCategory
	blockLogo
	blockStore
	blockTitle
	blockPosition
	blockEmail
	blockPhone
	blockFax
	blockMap
	blockImage
	blockText
	blockLink
)

type rule struct {
	kind  blockKind
	match func(key string) bool
}

func contains(subs ...string) func(string) bool {
	return func(key string) bool {
		for _, s := range subs {
			if strings.Contains(key, s) {
				return true
			}
		}
		return false
	}
}

// words matches when one of the key's words equals a sub, so "tel" does
// not match "hotel".
func words(subs ...string) func(string) bool {
	return func(key string) bool {
		for _, w := range strings.FieldsFunc(key, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			if slices.Contains(subs, w) {
				return true
			}
		}
		return false
	}
}

func equals(want string) func(string) bool {
	return func(key string) bool { return key == want }
}

// rules is checked in order; the first match wins, so specific keys such
// as "upper image" sit before the generic "image".
var rules = []rule{
	{blockUpperImage, contains("upper image")},
	{blockCompanyName, contains("company name")},
	{blockIntroTitle, contains("introduction title")},
	{blockIntro, func(k string) bool { return strings.Contains(k, "introduction") && !strings.Contains(k, "title") }},
	{blockAddress, contains("address")},
	{blockBottomImage, contains("bottom image")},
	{blockContentZH, contains("chinese content")},
	{blockContentEN, contains("english content")},
	{blockPDFZH, contains("chinese pdf button")},
	{blockPDFEN, contains("english pdf button")},
	{blockCategory, contains("categories", "catagories")},
	{blockLogo, equals("logo")},
	{blockStore, contains("store")},
	{blockTitle, equals("title")},
	{blockPosition, contains("position", "job")},
	{blockEmail, contains("email")},
	{blockPhone, words("phone", "tel", "telephone", "cellphone")},
	{blockFax, contains("fax")},
	{blockMap, contains("map")},
	{blockImage, contains("image")},
	{blockText, contains("content", "text")},
	{blockLink, contains("link", "button")},
}

// classify returns the block kind of a row key (already lower-cased and trimmed).
func classify(key string) blockKind {
	if key == "" {
		return blockNone
	}
	for _, r := range rules {
		if r.match(key) {
			return r.kind
		}
	}
	return blockNone
}

func contentKind(l api.Lang) blockKind {
	if l == api.LangEN {
		return blockContentEN
	}
	return blockContentZH
}

func pdfKind(l api.Lang) blockKind {
	if l == api.LangEN {
		return blockPDFEN
	}
	return blockPDFZH
}

// isImageKind covers the rows whose column 3 is shown as a picture.
func isImageKind(k blockKind) bool {
	return k == blockUpperImage || k == blockBottomImage || k == blockImage
}

// textOr returns the row text in l, falling back to the other language.
// Used for values such as phone numbers that are often filled in once.
func textOr(r api.Row, l api.Lang) string {
	if t := strings.TrimSpace(r.Text(l)); t != "" {
		return t
	}
	return strings.TrimSpace(r.Text(l.Toggle()))
}
