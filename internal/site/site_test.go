package site_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/mithrel/sheetsite/internal/content"
	"github.com/mithrel/sheetsite/internal/sheets"
	"github.com/mithrel/sheetsite/internal/site"
	"github.com/mithrel/sheetsite/pkg/api"
)

type fakeSource struct {
	mu           sync.Mutex
	sheets       map[string]api.Sheet
	products     []api.Product
	failSheets   bool
	failProducts bool
}

func (f *fakeSource) Sheet(ctx context.Context, name string) (api.Sheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sh, ok := f.sheets[name]
	if f.failSheets || !ok {
		return api.Sheet{}, fmt.Errorf("%w: %s", sheets.ErrUpstream, name)
	}
	return sh, nil
}

func (f *fakeSource) Products(ctx context.Context) ([]api.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failProducts {
		return nil, fmt.Errorf("%w: feed down", sheets.ErrUpstream)
	}
	return f.products, nil
}

func fixture() *fakeSource {
	return &fakeSource{
		sheets: map[string]api.Sheet{
			"Content": {Name: "Content", Rows: []api.Row{
				{"Title", "首頁", "Home"},
				{"Logo", "", "", "https://img.example.com/logo.png"},
				{"App Store", "", "", "https://img.example.com/apple.png", "https://apps.example.com/x"},
				{"Play Store", "", "", "https://img.example.com/play.png"},
				{"Company Name", "星河貿易", "Galaxy Trading"},
				{"Address", "台北市信義路", "Xinyi Rd, Taipei"},
				{"Bottom Image", "", "", "https://img.example.com/b1.png"},
			}},
			"About Us": {Name: "About Us", Rows: []api.Row{
				{"title", "關於我們", "About Us"},
				{"Upper Image", "", "", "https://img.example.com/u.png"},
				{"Introduction Title", "我們的故事", "Our Story"},
				{"Introduction 1", "第一段", "First paragraph"},
			}},
			"Business Scope": {Name: "Business Scope", Rows: []api.Row{
				{"title", "營業項目", "Business Scope"},
				{"Chinese Content", "", "", "https://img.example.com/zh.png"},
			}},
			"Product Catalog": {Name: "Product Catalog", Rows: []api.Row{
				{"title", "商品目錄", "Catalog"},
				{"Chinese PDF Button", "下載目錄", "", "", "https://files.example.com/zh.pdf"},
				{"English PDF Button", "", "Download", "", "https://files.example.com/en.pdf"},
				{"Categories 1", "茶", "Tea", "https://img.example.com/tea.png", "Tea"},
				{"Catagories 2", "單品", "Single", "", "1001"},
				{"Categories 3", "零食", "Snacks"},
				{"Categories 4", "", ""},
			}},
			"Join Us": {Name: "Join Us", Rows: []api.Row{
				{"title", "加入我們", "Join Us"},
				{"Introduction", "歡迎加入", "Welcome aboard"},
				{"Position 1", "業務專員", "Sales", "https://img.example.com/job.png", "https://jobs.example.com/1"},
				{"Email", "hr@example.com"},
				{"Link", "惡意", "Bad", "", "javascript:alert(1)"},
			}},
			"Contact Us": {Name: "Contact Us", Rows: []api.Row{
				{"title", "聯絡我們", "Contact"},
				{"Address", "台北市", "Taipei"},
				{"Phone", "+886 (2) 1234-5678"},
				{"Fax", "02-8765-4321"},
				{"Email", "info@example.com"},
				{"Map", "", "", "", "https://maps.example.com/?q=x"},
			}},
		},
		products: []api.Product{
			{
				Code: "1001", Category: "Tea", NameZH: "烏龍茶", NameEN: "Oolong Tea",
				Packing: "12", Unit: "box",
				DescriptionZH: "好茶\n| 產地 | 重量 |\n|---|---|\n| 台灣 | 600g |",
				DescriptionEN: "Good tea<script>alert(1)</script>\nhttps://img.example.com/d.png",
				Images:        []string{"https://img.example.com/1.png", "https://img.example.com/2.png"},
			},
			{Code: "1002", Category: "tea", NameZH: "綠茶", NameEN: "Green Tea"},
			{Code: "A-7", Category: "Snacks", NameZH: "餅乾", NameEN: "Cookies"},
		},
	}
}

func newSite(t *testing.T, src sheets.Source) *site.Site {
	t.Helper()
	svc := content.New(src, nil, content.Options{})
	s, err := site.New(svc, site.Options{Title: "Galaxy", DefaultLang: api.LangZH, SearchLimit: 20})
	require.NoError(t, err)
	return s
}

func render(t *testing.T, s *site.Site, rawQuery string) (site.Result, *html.Node) {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	res, err := s.Render(context.Background(), s.ParseRequest(r))
	require.NoError(t, err)
	doc, err := html.Parse(bytes.NewReader(res.Body))
	require.NoError(t, err)
	return res, doc
}

// find returns every element whose class list contains class.
func find(n *html.Node, class string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, f := range strings.Fields(attr(n, "class")) {
				if f == class {
					out = append(out, n)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findTag(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

func hrefs(nodes []*html.Node) []string {
	var out []string
	for _, n := range nodes {
		for _, a := range findTag(n, "a") {
			out = append(out, attr(a, "href"))
		}
	}
	return out
}

func TestParseRequest(t *testing.T) {
	s := newSite(t, fixture())

	tests := []struct {
		name   string
		query  string
		cookie string
		want   site.Request
	}{
		{"defaults", "", "", site.Request{Page: "Content", Lang: api.LangZH}},
		{"tab", "page=About+Us&lang=en", "", site.Request{Page: "About Us", Lang: api.LangEN, LangExplicit: true}},
		{"unknown page", "page=Nope", "", site.Request{Page: "Content", Lang: api.LangZH}},
		{"product", "page=product&id=+1001+", "", site.Request{Page: "product", ID: "1001", Lang: api.LangZH}},
		{"cookie", "page=search&q=tea", "en", site.Request{Page: "search", Query: "tea", Lang: api.LangEN}},
		{"query beats cookie", "lang=zh", "en", site.Request{Page: "Content", Lang: api.LangZH, LangExplicit: true}},
		{"bad lang", "lang=fr", "xx", site.Request{Page: "Content", Lang: api.LangZH}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: site.LangCookie, Value: tt.cookie})
			}
			assert.Equal(t, tt.want, s.ParseRequest(r))
		})
	}
}

func TestRequestHref(t *testing.T) {
	r := site.Request{Page: "product", ID: "A 7", Lang: api.LangEN}
	assert.Equal(t, "?id=A+7&lang=en&page=product", r.Href())
}

func TestLayout(t *testing.T) {
	s := newSite(t, fixture())
	res, doc := render(t, s, "page=About+Us&lang=en")
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "About Us", res.Title)

	logo := find(doc, "logo-img")
	require.Len(t, logo, 1)
	assert.Equal(t, "https://img.example.com/logo.png", attr(logo[0], "src"))

	stores := findTag(find(doc, "site-header")[0], "a")
	var storeLinks []string
	for _, a := range stores {
		if attr(a, "target") == "_blank" {
			storeLinks = append(storeLinks, attr(a, "href"))
		}
	}
	assert.Equal(t, []string{"https://apps.example.com/x", "#"}, storeLinks)

	toggle := find(doc, "lang-toggle")
	require.Len(t, toggle, 1)
	assert.Equal(t, "中", text(toggle[0]))
	assert.Equal(t, "?lang=zh&page=About+Us", attr(toggle[0], "href"))

	items := find(doc, "nav-item")
	require.Len(t, items, 6)
	var titles []string
	for _, it := range items {
		titles = append(titles, text(it))
	}
	assert.Equal(t, []string{"Home", "About Us", "Business Scope", "Catalog", "Join Us", "Contact"}, titles)
	active := find(doc, "active")
	require.Len(t, active, 1)
	assert.Equal(t, "About Us", text(active[0]))
}

func TestContentPage(t *testing.T) {
	s := newSite(t, fixture())
	_, doc := render(t, s, "")

	companies := find(doc, "company")
	require.Len(t, companies, 1)
	assert.Equal(t, "星河貿易", text(findTag(companies[0], "h2")[0]))
	assert.Equal(t, "Galaxy Trading", text(findTag(companies[0], "h3")[0]))
	assert.Equal(t, "台北市信義路", text(find(doc, "address")[0]))
	imgs := find(doc, "home-bottom-image")
	require.Len(t, imgs, 1)
	assert.Equal(t, "https://img.example.com/b1.png", attr(imgs[0], "src"))
	assert.Equal(t, "EN", text(find(doc, "lang-toggle")[0]))
}

func TestAboutPage(t *testing.T) {
	s := newSite(t, fixture())
	_, doc := render(t, s, "page=About+Us&lang=en")
	intro := find(doc, "about-intro")[0]
	assert.Equal(t, "Our Story", text(findTag(intro, "h4")[0]))
	assert.Equal(t, "First paragraph", text(findTag(intro, "p")[0]))
	assert.Len(t, find(doc, "home-bottom-image"), 1, "upper image only")
}

func TestBusinessScope(t *testing.T) {
	s := newSite(t, fixture())

	_, doc := render(t, s, "page=Business+Scope&lang=zh")
	imgs := findTag(find(doc, "content-images")[0], "img")
	require.Len(t, imgs, 1)
	assert.Equal(t, "https://img.example.com/zh.png", attr(imgs[0], "src"))

	_, doc = render(t, s, "page=Business+Scope&lang=en")
	assert.Equal(t, "No images available.", text(find(doc, "content-images")[0]))
}

func TestCatalogPage(t *testing.T) {
	s := newSite(t, fixture())
	_, doc := render(t, s, "page=Product+Catalog&lang=en")

	assert.Equal(t, "Catalog", text(findTag(find(doc, "page-catalog")[0], "h1")[0]))
	pdfs := find(doc, "pdf-button")
	require.Len(t, pdfs, 1)
	assert.Equal(t, "https://files.example.com/en.pdf", attr(pdfs[0], "href"))
	assert.Equal(t, "Download", text(pdfs[0]))

	cards := find(doc, "category-card")
	require.Len(t, cards, 3, "cards without text are skipped")
	assert.Equal(t, "?id=Tea&lang=en&page=category", attr(cards[0], "href"))
	assert.Equal(t, "?id=1001&lang=en&page=product", attr(cards[1], "href"))
	assert.Equal(t, "?id=Snacks&lang=en&page=category", attr(cards[2], "href"))
	assert.Equal(t, "No Image", text(find(cards[1], "no-image")[0]))
}

func TestCategoryPage(t *testing.T) {
	s := newSite(t, fixture())
	_, doc := render(t, s, "page=category&id=TEA&lang=en")
	cards := find(doc, "product-card")
	require.Len(t, cards, 2)
	assert.Equal(t, "?id=1001&lang=en&page=product", attr(cards[0], "href"))

	crumbs := hrefs(find(doc, "breadcrumb"))
	assert.Equal(t, []string{"?lang=en&page=Product+Catalog"}, crumbs)
	active := find(doc, "active")
	require.Len(t, active, 1)
	assert.Equal(t, "Catalog", text(active[0]))

	_, doc = render(t, s, "page=category&id=Nothing")
	assert.Equal(t, "No results.", text(find(doc, "empty")[0]))
}

func TestProductPage(t *testing.T) {
	s := newSite(t, fixture())

	res, doc := render(t, s, "page=product&id=1001")
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "烏龍茶", res.Title)
	info := find(doc, "info")[0]
	assert.Equal(t, "烏龍茶", text(findTag(info, "h1")[0]))
	assert.Equal(t, "1001", text(find(info, "code")[0]))
	assert.Equal(t, "包裝規格", text(find(info, "label")[0]))
	assert.Equal(t, "12 box", text(find(info, "value")[0]))
	assert.Equal(t, "商品描述", text(findTag(info, "h4")[0]))
	assert.Equal(t, "商品目錄", text(findTag(find(doc, "breadcrumb")[0], "a")[0]))

	table := find(doc, "desc-table")
	require.Len(t, table, 1)
	assert.Len(t, findTag(table[0], "th"), 2)
	assert.Equal(t, "600g", text(findTag(table[0], "td")[1]))

	assert.Len(t, find(doc, "thumb"), 2)
	assert.Equal(t, "https://img.example.com/1.png", attr(find(doc, "main-image")[0], "src"))
}

func TestProductDescriptionIsSanitized(t *testing.T) {
	s := newSite(t, fixture())
	res, doc := render(t, s, "page=product&id=1001&lang=en")
	desc := find(doc, "description")[0]
	assert.Empty(t, findTag(desc, "script"))
	assert.NotContains(t, string(res.Body), "alert(1)")
	imgs := findTag(find(desc, "desc-image")[0], "img")
	require.Len(t, imgs, 1)
	assert.Equal(t, "https://img.example.com/d.png", attr(imgs[0], "src"))
}

func TestProductErrors(t *testing.T) {
	src := fixture()
	s := newSite(t, src)

	res, doc := render(t, s, "page=product&id=nope")
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "Product Not Found.", text(find(doc, "message")[0]))

	src.failProducts = true
	s = newSite(t, src)
	res, doc = render(t, s, "page=product&id=1001")
	assert.Equal(t, http.StatusBadGateway, res.Status)
	assert.Equal(t, "Failed to load product data.", text(find(doc, "message-error")[0]))
}

func TestSheetFailure(t *testing.T) {
	src := fixture()
	src.failSheets = true
	s := newSite(t, src)

	res, doc := render(t, s, "page=About+Us")
	assert.Equal(t, http.StatusBadGateway, res.Status)
	assert.Equal(t, "Failed to load page data.", text(find(doc, "message")[0]))
	// The menu still renders with tab names.
	assert.Len(t, find(doc, "nav-item"), 6)
	assert.Empty(t, find(doc, "logo-img"))
}

func TestJoinPage(t *testing.T) {
	s := newSite(t, fixture())
	_, doc := render(t, s, "page=Join+Us&lang=en")

	cards := find(doc, "position-card")
	require.Len(t, cards, 1)
	assert.Contains(t, text(cards[0]), "Sales")
	assert.Equal(t, []string{"https://jobs.example.com/1"}, hrefs(cards))

	assert.Equal(t, []string{"#"}, hrefs(find(doc, "links")), "javascript: links are neutralized")
	assert.Contains(t, hrefs(find(doc, "page-join")), "mailto:hr@example.com")
	assert.Equal(t, "Welcome aboard", text(find(doc, "intro")[0]))
}

func TestContactPage(t *testing.T) {
	s := newSite(t, fixture())
	_, doc := render(t, s, "page=Contact+Us&lang=en")

	links := hrefs(find(doc, "contact-details"))
	assert.Equal(t, []string{"tel:+886212345678", "mailto:info@example.com", "https://maps.example.com/?q=x"}, links)
	assert.Contains(t, text(find(doc, "contact-details")[0]), "02-8765-4321")
	assert.Contains(t, text(find(doc, "contact-details")[0]), "View Map")
}

func TestSearchPage(t *testing.T) {
	s := newSite(t, fixture())

	_, doc := render(t, s, "page=search&q=cookies&lang=en")
	cards := find(doc, "product-card")
	require.Len(t, cards, 1)
	assert.Equal(t, "?id=A-7&lang=en&page=product", attr(cards[0], "href"))
	assert.Equal(t, "cookies", attr(findTag(find(doc, "search-form")[0], "input")[2], "value"))

	_, doc = render(t, s, "page=search&q=zzzz")
	assert.Equal(t, "No results.", text(find(doc, "empty")[0]))
}

func TestRenderBody(t *testing.T) {
	s := newSite(t, fixture())
	res, err := s.RenderBody(context.Background(), site.Request{Page: "Business Scope", Lang: api.LangEN})
	require.NoError(t, err)
	assert.Equal(t, "Business Scope", res.Title)
	assert.NotContains(t, string(res.Body), "<html")
	assert.Contains(t, string(res.Body), "No images available.")
}
