// Package site renders the public pages from spreadsheet content.
package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	"github.com/mithrel/sheetsite/internal/content"
	"github.com/mithrel/sheetsite/pkg/api"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the embedded stylesheet and script, rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

type Options struct {
	Title       string
	DefaultLang api.Lang
	// SearchLimit caps search results; zero means no cap.
	SearchLimit int
	Logger      *zap.Logger
}

// Site renders pages. It holds no per-request state.
type Site struct {
	content     *content.Service
	title       string
	defaultLang api.Lang
	searchLimit int
	log         *zap.Logger
	tmpl        *template.Template
	sanitize    func(string) string
}

// Result is a rendered page.
type Result struct {
	Status int
	Title  string
	Body   []byte
}

func New(svc *content.Service, opts Options) (*Site, error) {
	tmpl, err := template.New("site").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	lang := opts.DefaultLang
	if lang == "" {
		lang = api.LangZH
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	title := opts.Title
	if title == "" {
		title = "sheetsite"
	}
	return &Site{
		content:     svc,
		title:       title,
		defaultLang: lang,
		searchLimit: opts.SearchLimit,
		log:         log.Named("site"),
		tmpl:        tmpl,
		sanitize:    newSanitizer(),
	}, nil
}

// DefaultLang is the language used when the request names none.
func (s *Site) DefaultLang() api.Lang { return s.defaultLang }

// body is what a page handler produces before the layout wraps it.
type body struct {
	status int
	title  string
	tmpl   string
	data   any
}

func message(status int, text string) body {
	return body{status: status, tmpl: "message", data: messageData{Text: text, Error: status >= 400}}
}

// Render produces the full HTML document for req. Upstream failures become
// error pages; only template failures are returned as errors.
func (s *Site) Render(ctx context.Context, req Request) (Result, error) {
	b := s.page(ctx, req)

	var inner bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&inner, b.tmpl, b.data); err != nil {
		return Result{}, fmt.Errorf("render %s: %w", b.tmpl, err)
	}

	layout := s.layout(ctx, req)
	layout.Body = template.HTML(inner.String())
	layout.PageTitle = b.title
	if layout.PageTitle == "" {
		layout.PageTitle = req.Page
	}

	var out bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&out, "layout", layout); err != nil {
		return Result{}, fmt.Errorf("render layout: %w", err)
	}
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	return Result{Status: status, Title: layout.PageTitle, Body: out.Bytes()}, nil
}

// RenderBody renders just the page content without the layout, for the CLI.
func (s *Site) RenderBody(ctx context.Context, req Request) (Result, error) {
	b := s.page(ctx, req)
	var inner bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&inner, b.tmpl, b.data); err != nil {
		return Result{}, fmt.Errorf("render %s: %w", b.tmpl, err)
	}
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	return Result{Status: status, Title: b.title, Body: inner.Bytes()}, nil
}

func (s *Site) page(ctx context.Context, req Request) body {
	switch req.Page {
	case PageProduct:
		return s.productPage(ctx, req)
	case PageCategory:
		return s.categoryPage(ctx, req)
	case PageSearch:
		return s.searchPage(ctx, req)
	}

	sheet, err := s.content.Sheet(ctx, req.Page)
	if err != nil {
		s.log.Error("sheet load failed", zap.String("page", req.Page), zap.Error(err))
		return message(http.StatusBadGateway, msgPageLoadError)
	}
	switch req.Page {
	case "Content":
		return s.contentPage(sheet, req)
	case "About Us":
		return s.aboutPage(sheet, req)
	case "Business Scope":
		return s.businessPage(sheet, req)
	case CatalogPage:
		return s.catalogPage(ctx, sheet, req)
	case "Join Us":
		return s.joinPage(sheet, req)
	case "Contact Us":
		return s.contactPage(sheet, req)
	default:
		return s.genericPage(sheet, req)
	}
}

// layout collects the header and navigation. A failing Content sheet
// only costs the logo and store badges.
func (s *Site) layout(ctx context.Context, req Request) layoutData {
	lb := labelsFor(req.Lang)
	toggle := req
	toggle.Lang = req.Lang.Toggle()

	ld := layoutData{
		SiteTitle:   s.title,
		Lang:        req.Lang,
		HomeHref:    pageHref(s.defaultPage(), req.Lang),
		ToggleHref:  toggle.Href(),
		ToggleLabel: req.Lang.ToggleLabel(),
		Query:       req.Query,
		Labels:      lb,
	}
	if home, err := s.content.Sheet(ctx, DefaultPage); err == nil {
		for _, r := range home.Rows {
			img := r.Image()
			if img == "" {
				continue
			}
			switch classify(r.Key()) {
			case blockLogo:
				ld.Logo = img
			case blockStore:
				href := r.Link()
				if href == "" {
					href = "#"
				}
				ld.Stores = append(ld.Stores, imageLink{Src: img, Href: safeURL(href)})
			}
		}
	} else if !errors.Is(err, context.Canceled) {
		s.log.Warn("header data unavailable", zap.Error(err))
	}

	nav, err := s.content.NavTitles(ctx, req.Lang)
	if err != nil {
		nav = nil
		for _, t := range s.content.Tabs() {
			nav = append(nav, content.NavItem{Tab: t, Title: t})
		}
	}
	for _, item := range nav {
		ld.Nav = append(ld.Nav, navLink{
			Title:  item.Title,
			Href:   pageHref(item.Tab, req.Lang),
			Active: item.Tab == req.Page || (item.Tab == CatalogPage && (req.Page == PageProduct || req.Page == PageCategory)),
		})
	}
	return ld
}
