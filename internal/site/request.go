package site

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/mithrel/sheetsite/pkg/api"
)

// Synthetic pages that are not spreadsheet tabs.
const (
	PageProduct  = "product"
	PageCategory = "category"
	PageSearch   = "search"

	DefaultPage = "Content"
	CatalogPage = "Product Catalog"

	// LangCookie remembers the visitor's language between requests.
	LangCookie = "lang"
)

// Request is a resolved page request.
type Request struct {
	Page  string
	ID    string
	Query string
	Lang  api.Lang
	// LangExplicit is set when the language came from the query string.
	LangExplicit bool
}

// ParseRequest resolves page, id, q and lang from the query string. An
// unknown page falls back to the default page; the language falls back to
// the cookie and then to the configured default.
func (s *Site) ParseRequest(r *http.Request) Request {
	q := r.URL.Query()
	req := Request{
		Page:  s.resolvePage(q.Get("page")),
		ID:    strings.TrimSpace(q.Get("id")),
		Query: strings.TrimSpace(q.Get("q")),
		Lang:  s.defaultLang,
	}
	if l, ok := api.ParseLang(q.Get("lang")); ok {
		req.Lang = l
		req.LangExplicit = true
	} else if c, err := r.Cookie(LangCookie); err == nil {
		if l, ok := api.ParseLang(c.Value); ok {
			req.Lang = l
		}
	}
	return req
}

func (s *Site) resolvePage(page string) string {
	switch page {
	case PageProduct, PageCategory, PageSearch:
		return page
	}
	if s.content.IsTab(page) {
		return page
	}
	return s.defaultPage()
}

func (s *Site) defaultPage() string {
	if s.content.IsTab(DefaultPage) {
		return DefaultPage
	}
	return s.content.Tabs()[0]
}

// Href builds the relative link for a request.
func (r Request) Href() string {
	v := url.Values{}
	v.Set("page", r.Page)
	if r.ID != "" {
		v.Set("id", r.ID)
	}
	if r.Query != "" {
		v.Set("q", r.Query)
	}
	v.Set("lang", string(r.Lang))
	return "?" + v.Encode()
}

func pageHref(page string, l api.Lang) string {
	return Request{Page: page, Lang: l}.Href()
}

func productHref(code string, l api.Lang) string {
	return Request{Page: PageProduct, ID: code, Lang: l}.Href()
}

func categoryHref(name string, l api.Lang) string {
	return Request{Page: PageCategory, ID: name, Lang: l}.Href()
}
