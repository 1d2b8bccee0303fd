package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mithrel/sheetsite/pkg/api"
)

var oolong = api.Product{
	Code:          "1001",
	Category:      "Tea",
	NameZH:        "烏龍茶",
	NameEN:        "Oolong Tea",
	Packing:       "12",
	Unit:          "box",
	DescriptionEN: "Roasted\nHigh mountain",
	Images:        []string{"https://img.example.com/a.png", "https://img.example.com/b.png"},
}

func TestWritePlainProducts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlainProducts(&buf, []api.Product{oolong, {Code: "A-7", NameEN: "tab\there"}}, api.LangEN, true))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "code"))
	assert.Equal(t, []string{"1001", "Tea", "Oolong", "Tea", "12", "box", "2"}, strings.Fields(lines[1]))
	assert.Contains(t, lines[2], `tab\there`)
}

func TestWritePlainProduct(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlainProduct(&buf, oolong, api.LangEN))
	out := buf.String()
	assert.Contains(t, out, "Name (zh):")
	assert.Contains(t, out, "烏龍茶")
	assert.Contains(t, out, "Image 2:")
	assert.True(t, strings.HasSuffix(out, "---\nRoasted\nHigh mountain\n"))
}

func TestWritePlainRows(t *testing.T) {
	var buf bytes.Buffer
	sheet := api.Sheet{Name: "Content", Rows: []api.Row{{"title", "首頁", "Home"}, {"logo", "", "", "https://x/l.png"}}}
	require.NoError(t, WritePlainRows(&buf, sheet, false))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"title", "首頁", "Home"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"logo", "https://x/l.png"}, strings.Fields(lines[1]))
}

func TestWritePlainSnapshots(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, WritePlainSnapshots(&buf, []api.SnapshotInfo{
		{Kind: "products", Name: "catalog", Hash: "0123456789abcdef0123", Items: 1500, FetchedAt: now.Add(-2 * time.Hour)},
	}, now, true))
	out := buf.String()
	assert.Contains(t, out, "1,500")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "0123456789ab\n")
	assert.NotContains(t, out, "0123456789abc")
}

func TestWriteJSONAndNDJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []api.Product{oolong}, false))
	var back []api.Product
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, []api.Product{oolong}, back)

	buf.Reset()
	require.NoError(t, WriteNDJSON(&buf, []api.Product{oolong, oolong}))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), `"name_zh":"烏龍茶"`)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, oolong))
	var back map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "1001", back["code"])
	assert.Equal(t, "Tea", back["category"])
}

func TestProductMarkdown(t *testing.T) {
	md := ProductMarkdown(oolong, api.LangEN)
	assert.True(t, strings.HasPrefix(md, "# Oolong Tea\n"))
	assert.Contains(t, md, "_烏龍茶_")
	assert.Contains(t, md, "**Packing:** 12 box")
	assert.Contains(t, md, "- https://img.example.com/b.png")
	assert.Contains(t, md, "Roasted  \nHigh mountain  \n")
}

func TestPrettyOutputs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePrettyProduct(&buf, oolong, api.LangEN, 60))
	assert.Contains(t, buf.String(), "Oolong")

	buf.Reset()
	require.NoError(t, WritePrettyProducts(&buf, []api.Product{oolong}, api.LangZH))
	assert.Contains(t, buf.String(), "烏龍茶")
	assert.Contains(t, buf.String(), "Code")

	buf.Reset()
	require.NoError(t, WritePrettyRows(&buf, api.Sheet{Rows: []api.Row{{"title", "首頁", "Home"}}}))
	assert.Contains(t, buf.String(), "Home")
}
