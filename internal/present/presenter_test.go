package present

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/sheetsite/pkg/api"
)

func TestParseMode(t *testing.T) {
	for i, name := range ModeNames {
		m, ok := ParseMode(name)
		require.True(t, ok, name)
		assert.Equal(t, Mode(i), m)
	}
	_, ok := ParseMode("xml")
	assert.False(t, ok)
}

func TestRenderProductsEmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderProducts(context.Background(), &buf, nil, Options{Mode: ModeJSON}))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderProducts(context.Background(), &buf, nil, Options{Mode: ModeYAML}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRenderSheetNDJSONRows(t *testing.T) {
	var buf bytes.Buffer
	sheet := api.Sheet{Name: "Content", Rows: []api.Row{{"title", "首頁", "Home"}, {"logo"}}}
	require.NoError(t, RenderSheet(&buf, sheet, Options{Mode: ModeNDJSON}))
	assert.Equal(t, "[\"title\",\"首頁\",\"Home\"]\n[\"logo\"]\n", buf.String())
}

func TestSingleItemTUIRejected(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, RenderProduct(&buf, api.Product{}, Options{Mode: ModeTUI}))
	assert.Error(t, RenderSheet(&buf, api.Sheet{}, Options{Mode: ModeTUI}))
	assert.Error(t, RenderSnapshots(&buf, nil, Options{Mode: ModeTUI}))
}
