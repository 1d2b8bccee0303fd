package db

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/sheetsite/pkg/api"
)

func TestRowsCodecKeepsRaggedRows(t *testing.T) {
	in := []api.Row{{"a", "", "c"}, {}, {"only"}}
	b, err := encodeRows(in)
	require.NoError(t, err)
	out, err := decodeRows(b)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestProductsCodecWithoutFields(t *testing.T) {
	in := []api.Product{{Code: "X1", NameZH: "甲", Images: []string{"a.png", "b.png"}}}
	b, err := encodeProducts(in)
	require.NoError(t, err)
	out, err := decodeProducts(b)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "X1", out[0].Code)
	require.Equal(t, "甲", out[0].NameZH)
	require.Equal(t, []string{"a.png", "b.png"}, out[0].Images)
}
