package site

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mithrel/sheetsite/internal/content"
	"github.com/mithrel/sheetsite/internal/render"
	"github.com/mithrel/sheetsite/pkg/api"
)

func companyOf(r api.Row) companyName {
	return companyName{Primary: r.Col(api.ColZH), Secondary: r.Col(api.ColEN)}
}

func (s *Site) contentPage(sheet api.Sheet, req Request) body {
	var d homeData
	for _, r := range sheet.Rows {
		switch classify(r.Key()) {
		case blockCompanyName:
			d.Companies = append(d.Companies, companyOf(r))
		case blockAddress:
			d.Address = append(d.Address, r.Text(req.Lang))
		case blockBottomImage:
			if img := r.Image(); img != "" {
				d.BottomImages = append(d.BottomImages, img)
			}
		}
	}
	return body{title: sheet.Title(req.Lang), tmpl: "content", data: d}
}

func (s *Site) aboutPage(sheet api.Sheet, req Request) body {
	var d aboutData
	for _, r := range sheet.Rows {
		text := r.Text(req.Lang)
		switch classify(r.Key()) {
		case blockUpperImage:
			if img := r.Image(); img != "" {
				d.UpperImages = append(d.UpperImages, img)
			}
		case blockCompanyName:
			d.Companies = append(d.Companies, companyOf(r))
		case blockIntroTitle:
			if text != "" {
				d.Intro = append(d.Intro, introBlock{Heading: true, Text: text})
			}
		case blockIntro:
			if text != "" {
				d.Intro = append(d.Intro, introBlock{Text: text})
			}
		case blockAddress:
			d.Address = append(d.Address, text)
		case blockBottomImage:
			if img := r.Image(); img != "" {
				d.BottomImages = append(d.BottomImages, img)
			}
		}
	}
	return body{title: sheet.Title(req.Lang), tmpl: "about", data: d}
}

func (s *Site) businessPage(sheet api.Sheet, req Request) body {
	d := businessData{Title: sheet.Title(req.Lang)}
	want := contentKind(req.Lang)
	for _, r := range sheet.Rows {
		if classify(r.Key()) == want {
			if img := r.Image(); img != "" {
				d.Images = append(d.Images, img)
			}
		}
	}
	if len(d.Images) == 0 {
		d.Empty = msgNoImages
	}
	return body{title: d.Title, tmpl: "business", data: d}
}

func (s *Site) catalogPage(ctx context.Context, sheet api.Sheet, req Request) body {
	d := catalogData{Title: sheet.Title(req.Lang)}
	pdf := pdfKind(req.Lang)
	for _, r := range sheet.Rows {
		text := r.Text(req.Lang)
		switch classify(r.Key()) {
		case pdf:
			if href := r.Link(); href != "" {
				d.PDFs = append(d.PDFs, link{Text: text, Href: safeURL(href)})
			}
		case blockCategory:
			if text == "" {
				continue
			}
			d.Cards = append(d.Cards, categoryCard{
				Text:    text,
				Image:   r.Image(),
				Href:    s.cardHref(ctx, r.Link(), text, req.Lang),
				NoImage: msgNoImage,
			})
		}
	}
	return body{title: d.Title, tmpl: "catalog", data: d}
}

// cardHref links a category card to the product named by its item code,
// or to the category listing when the code is not a product.
func (s *Site) cardHref(ctx context.Context, code, text string, l api.Lang) string {
	if code != "" && s.content.HasProduct(ctx, code) {
		return productHref(code, l)
	}
	if code == "" {
		code = text
	}
	return categoryHref(code, l)
}

func cardOf(p api.Product, l api.Lang) productCard {
	name := p.Name(l)
	if name == "" {
		name = p.Name(l.Toggle())
	}
	return productCard{
		Code:    p.Code,
		Name:    name,
		Image:   p.FirstImage(),
		Href:    productHref(p.Code, l),
		NoImage: msgNoImage,
	}
}

func (s *Site) categoryPage(ctx context.Context, req Request) body {
	lb := labelsFor(req.Lang)
	products, err := s.content.Category(ctx, req.ID)
	if err != nil {
		s.log.Error("product feed failed", zap.String("category", req.ID), zap.Error(err))
		return message(http.StatusBadGateway, msgProductLoadError)
	}
	d := categoryData{
		Name:         req.ID,
		CatalogLabel: lb.Catalog,
		CatalogHref:  pageHref(CatalogPage, req.Lang),
	}
	for _, p := range products {
		d.Products = append(d.Products, cardOf(p, req.Lang))
	}
	if len(d.Products) == 0 {
		d.Empty = msgNoResults
	}
	return body{title: req.ID, tmpl: "category", data: d}
}

func (s *Site) productPage(ctx context.Context, req Request) body {
	p, err := s.content.Product(ctx, req.ID)
	switch {
	case errors.Is(err, content.ErrProductNotFound):
		return message(http.StatusNotFound, msgProductNotFound)
	case err != nil:
		s.log.Error("product feed failed", zap.String("id", req.ID), zap.Error(err))
		return message(http.StatusBadGateway, msgProductLoadError)
	}
	lb := labelsFor(req.Lang)
	d := productData{
		CatalogLabel:     lb.Catalog,
		CatalogHref:      pageHref(CatalogPage, req.Lang),
		Category:         p.Category,
		MainImage:        p.FirstImage(),
		Images:           p.Images,
		Name:             p.Name(req.Lang),
		Code:             p.Code,
		PackingLabel:     lb.Packing,
		Packing:          p.PackingLabel(),
		DescriptionLabel: lb.Description,
		Description:      template.HTML(s.sanitize(render.Description(p.Description(req.Lang)))),
		NoImage:          msgNoImage,
	}
	if c := strings.TrimSpace(p.Category); c != "" {
		d.CategoryHref = categoryHref(c, req.Lang)
	}
	title := d.Name
	if title == "" {
		title = p.Code
	}
	return body{title: title, tmpl: "product", data: d}
}

func (s *Site) searchPage(ctx context.Context, req Request) body {
	lb := labelsFor(req.Lang)
	d := searchData{Query: req.Query, ResultsFor: lb.ResultsFor}
	results, err := s.content.Search(ctx, req.Query, req.Lang, s.searchLimit)
	if err != nil {
		s.log.Error("product feed failed", zap.String("q", req.Query), zap.Error(err))
		return message(http.StatusBadGateway, msgProductLoadError)
	}
	for _, p := range results {
		d.Results = append(d.Results, cardOf(p, req.Lang))
	}
	if len(d.Results) == 0 {
		d.Empty = msgNoResults
	}
	return body{title: lb.Search, tmpl: "search", data: d}
}

func (s *Site) joinPage(sheet api.Sheet, req Request) body {
	lb := labelsFor(req.Lang)
	d := joinData{Title: sheet.Title(req.Lang), Labels: lb}
	for _, r := range sheet.Rows {
		text := r.Text(req.Lang)
		kind := classify(r.Key())
		switch {
		case kind == blockIntroTitle:
			if text != "" {
				d.Intro = append(d.Intro, introBlock{Heading: true, Text: text})
			}
		case kind == blockIntro || kind == blockText:
			if text != "" {
				d.Intro = append(d.Intro, introBlock{Text: text})
			}
		case kind == blockPosition:
			if text == "" {
				continue
			}
			d.Positions = append(d.Positions, position{
				Text:       text,
				Image:      r.Image(),
				Href:       optionalURL(r.Link()),
				ApplyLabel: lb.Apply,
			})
		case kind == blockEmail:
			if addr := textOr(r, req.Lang); addr != "" {
				d.Emails = append(d.Emails, link{Text: addr, Href: safeURL("mailto:" + addr)})
			}
		case kind == blockLink:
			if href := r.Link(); href != "" {
				d.Links = append(d.Links, link{Text: linkText(text, href), Href: safeURL(href)})
			}
		case isImageKind(kind):
			if img := r.Image(); img != "" {
				d.Images = append(d.Images, img)
			}
		}
	}
	return body{title: d.Title, tmpl: "join", data: d}
}

func (s *Site) contactPage(sheet api.Sheet, req Request) body {
	lb := labelsFor(req.Lang)
	d := contactData{Title: sheet.Title(req.Lang), Labels: lb}
	for _, r := range sheet.Rows {
		kind := classify(r.Key())
		switch {
		case kind == blockAddress:
			if t := textOr(r, req.Lang); t != "" {
				d.Address = append(d.Address, t)
			}
		case kind == blockPhone:
			if t := textOr(r, req.Lang); t != "" {
				d.Phones = append(d.Phones, link{Text: t, Href: safeURL("tel:" + dialable(t))})
			}
		case kind == blockFax:
			if t := textOr(r, req.Lang); t != "" {
				d.Faxes = append(d.Faxes, t)
			}
		case kind == blockEmail:
			if t := textOr(r, req.Lang); t != "" {
				d.Emails = append(d.Emails, link{Text: t, Href: safeURL("mailto:" + t)})
			}
		case kind == blockMap:
			href := r.Link()
			if href == "" {
				continue
			}
			text := r.Text(req.Lang)
			if text == "" {
				text = lb.Map
			}
			d.Maps = append(d.Maps, link{Text: text, Href: safeURL(href)})
		case isImageKind(kind):
			if img := r.Image(); img != "" {
				d.Images = append(d.Images, img)
			}
		}
	}
	return body{title: d.Title, tmpl: "contact", data: d}
}

// genericPage renders any extra configured tab from its text, image and link rows.
func (s *Site) genericPage(sheet api.Sheet, req Request) body {
	d := genericData{Title: sheet.Title(req.Lang)}
	for _, r := range sheet.Rows {
		text := r.Text(req.Lang)
		kind := classify(r.Key())
		switch {
		case kind == blockTitle:
		case kind == blockLink:
			if href := r.Link(); href != "" {
				d.Links = append(d.Links, link{Text: linkText(text, href), Href: safeURL(href)})
			}
		case isImageKind(kind):
			if img := r.Image(); img != "" {
				d.Images = append(d.Images, img)
			}
		case text != "":
			d.Paragraphs = append(d.Paragraphs, text)
		}
	}
	return body{title: d.Title, tmpl: "generic", data: d}
}

func optionalURL(raw string) template.URL {
	if raw == "" {
		return ""
	}
	return safeURL(raw)
}

func linkText(text, href string) string {
	if text != "" {
		return text
	}
	return href
}

// dialable strips everything but digits and a leading plus.
func dialable(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
