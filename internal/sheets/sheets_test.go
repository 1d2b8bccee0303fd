package sheets_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/sheetsite/internal/sheets"
	"github.com/mithrel/sheetsite/pkg/api"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return b
}

func TestDirSheet(t *testing.T) {
	src := sheets.NewDir("testdata")
	sheet, err := src.Sheet(context.Background(), "Content")
	require.NoError(t, err)

	assert.Equal(t, "Content", sheet.Name)
	require.Len(t, sheet.Rows, 4)
	assert.Equal(t, "Home", sheet.Title(api.LangEN))
	assert.Equal(t, "首頁", sheet.Title(api.LangZH))

	row, ok := sheet.Find("company name")
	require.True(t, ok)
	assert.Equal(t, "Galaxy Trading", row.Text(api.LangEN))

	// Falsy values read as empty cells.
	img, ok := sheet.Find("bottom image")
	require.True(t, ok)
	assert.Equal(t, "", img.Col(1))
	assert.Equal(t, "", img.Col(2))
	assert.Equal(t, "https://img.example.com/a.png", img.Image())
	assert.False(t, sheet.FetchedAt.IsZero())
}

func TestDirSheetMissing(t *testing.T) {
	src := sheets.NewDir(t.TempDir())
	_, err := src.Sheet(context.Background(), "Nope")
	require.ErrorIs(t, err, sheets.ErrUpstream)
}

func TestDirBareJSON(t *testing.T) {
	dir := t.TempDir()
	body := `{"status":"ok","table":{"rows":[{"c":[{"v":"title"},{"v":"關於"},{"v":"About"}]}]}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "About Us.json"), []byte(body), 0o644))

	sheet, err := sheets.NewDir(dir).Sheet(context.Background(), "About Us")
	require.NoError(t, err)
	assert.Equal(t, "About", sheet.Title(api.LangEN))
}

func TestDirProducts(t *testing.T) {
	products, err := sheets.NewDir("testdata").Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	tea := products[0]
	assert.Equal(t, "1001", tea.Code)
	assert.Equal(t, "Oolong Tea", tea.Name(api.LangEN))
	assert.Equal(t, "12 box", tea.PackingLabel())
	assert.Equal(t, []string{"https://img.example.com/1.png", "https://img.example.com/2.png"}, tea.Images)

	cookies := products[1]
	assert.Equal(t, "A-7", cookies.Code)
	assert.Equal(t, "", cookies.Packing)
	assert.Equal(t, "", cookies.DescriptionEN)
	assert.Empty(t, cookies.Images)
}

func TestGoogleSheet(t *testing.T) {
	fixture := readFixture(t, "Content.json")
	var gotPath, gotSheet, gotTqx string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSheet = r.URL.Query().Get("sheet")
		gotTqx = r.URL.Query().Get("tqx")
		_, _ = w.Write(fixture)
	}))
	defer ts.Close()

	g := sheets.NewGoogle(sheets.GoogleConfig{SpreadsheetID: "abc123", BaseURL: ts.URL, Timeout: 5 * time.Second})
	sheet, err := g.Sheet(context.Background(), "About Us")
	require.NoError(t, err)

	assert.Equal(t, "/abc123/gviz/tq", gotPath)
	assert.Equal(t, "About Us", gotSheet)
	assert.Equal(t, "out:json", gotTqx)
	assert.Equal(t, "About Us", sheet.Name)
	assert.Len(t, sheet.Rows, 4)
}

func TestGoogleSheetURL(t *testing.T) {
	g := sheets.NewGoogle(sheets.GoogleConfig{SpreadsheetID: "abc"})
	assert.Equal(t,
		"https://docs.google.com/spreadsheets/d/abc/gviz/tq?tqx=out:json&sheet=Product+Catalog",
		g.SheetURL("Product Catalog"))
}

func TestGoogleStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`google.visualization.Query.setResponse({"status":"error","errors":[{"reason":"invalid_query","message":"INVALID_QUERY","detailed_message":"Invalid sheet name"}]});`))
	}))
	defer ts.Close()

	g := sheets.NewGoogle(sheets.GoogleConfig{SpreadsheetID: "x", BaseURL: ts.URL})
	_, err := g.Sheet(context.Background(), "Missing")
	require.ErrorIs(t, err, sheets.ErrUpstream)
	assert.Contains(t, err.Error(), "Invalid sheet name")
}

func TestGoogleRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	fixture := readFixture(t, "products.json")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(fixture)
	}))
	defer ts.Close()

	g := sheets.NewGoogle(sheets.GoogleConfig{ProductsURL: ts.URL, Retries: 3, Timeout: 10 * time.Second})
	products, err := g.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGoogleClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer ts.Close()

	g := sheets.NewGoogle(sheets.GoogleConfig{ProductsURL: ts.URL, Retries: 5})
	_, err := g.Products(context.Background())
	require.ErrorIs(t, err, sheets.ErrUpstream)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGoogleMissingConfig(t *testing.T) {
	g := sheets.NewGoogle(sheets.GoogleConfig{})
	_, err := g.Sheet(context.Background(), "Content")
	require.ErrorIs(t, err, sheets.ErrUpstream)
	_, err = g.Products(context.Background())
	require.ErrorIs(t, err, sheets.ErrUpstream)
}

func TestNewSelectsMode(t *testing.T) {
	v := viper.New()
	src, err := sheets.New(v)
	require.NoError(t, err)
	assert.IsType(t, &sheets.Google{}, src)

	v.Set("source.mode", "dir")
	_, err = sheets.New(v)
	require.Error(t, err)

	v.Set("source.dir", "testdata")
	src, err = sheets.New(v)
	require.NoError(t, err)
	assert.IsType(t, &sheets.Dir{}, src)

	v.Set("source.mode", "ftp")
	_, err = sheets.New(v)
	require.Error(t, err)
}
