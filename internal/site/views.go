package site

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/mithrel/sheetsite/pkg/api"
)

type layoutData struct {
	SiteTitle   string
	PageTitle   string
	Lang        api.Lang
	HomeHref    string
	Logo        string
	Stores      []imageLink
	Nav         []navLink
	ToggleHref  string
	ToggleLabel string
	Query       string
	Labels      labels
	Body        template.HTML
}

type navLink struct {
	Title  string
	Href   string
	Active bool
}

type imageLink struct {
	Src  string
	Href template.URL
}

type link struct {
	Text string
	Href template.URL
}

type messageData struct {
	Text  string
	Error bool
}

// companyName shows the Chinese name over the English one in every language.
type companyName struct {
	Primary   string
	Secondary string
}

// introBlock is a heading or a paragraph, kept in sheet order.
type introBlock struct {
	Heading bool
	Text    string
}

type homeData struct {
	Companies    []companyName
	Address      []string
	BottomImages []string
}

type aboutData struct {
	UpperImages  []string
	Companies    []companyName
	Intro        []introBlock
	Address      []string
	BottomImages []string
}

type businessData struct {
	Title  string
	Images []string
	Empty  string
}

type categoryCard struct {
	Text    string
	Image   string
	Href    string
	NoImage string
}

type catalogData struct {
	Title string
	PDFs  []link
	Cards []categoryCard
}

type productCard struct {
	Code    string
	Name    string
	Image   string
	Href    string
	NoImage string
}

type categoryData struct {
	Name         string
	CatalogLabel string
	CatalogHref  string
	Products     []productCard
	Empty        string
}

type productData struct {
	CatalogLabel     string
	CatalogHref      string
	Category         string
	CategoryHref     string
	MainImage        string
	Images           []string
	Name             string
	Code             string
	PackingLabel     string
	Packing          string
	DescriptionLabel string
	Description      template.HTML
	NoImage          string
}

type position struct {
	Text       string
	Image      string
	Href       template.URL
	ApplyLabel string
}

type joinData struct {
	Title     string
	Intro     []introBlock
	Positions []position
	Images    []string
	Links     []link
	Emails    []link
	Labels    labels
}

type contactData struct {
	Title   string
	Address []string
	Phones  []link
	Faxes   []string
	Emails  []link
	Maps    []link
	Images  []string
	Labels  labels
}

type searchData struct {
	Query      string
	ResultsFor string
	Results    []productCard
	Empty      string
}

type genericData struct {
	Title      string
	Paragraphs []string
	Images     []string
	Links      []link
}

// safeURL passes web, mail and phone links and replaces anything else,
// such as javascript: URLs typed into the sheet, with "#".
func safeURL(raw string) template.URL {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto", "tel":
		return template.URL(raw)
	}
	return "#"
}
