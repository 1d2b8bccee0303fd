package sheets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"", ""},
		{"text", "text"},
		{false, ""},
		{true, "true"},
		{float64(0), ""},
		{float64(12), "12"},
		{float64(3.5), "3.5"},
		{float64(1e21), "1000000000000000000000"},
		{json.Number("0"), ""},
		{json.Number("42"), "42"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cellString(tt.in), "%#v", tt.in)
	}
}

func TestUnwrapJSONP(t *testing.T) {
	got, err := unwrapJSONP([]byte(`/*O_o*/ cb({"a":{"b":1}});`))
	assert.NoError(t, err)
	assert.Equal(t, `{"a":{"b":1}}`, string(got))

	_, err = unwrapJSONP([]byte(`<html>sign in</html>`))
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestParseGvizNullCells(t *testing.T) {
	sheet, err := parseGviz("T", []byte(`{"status":"ok","table":{"rows":[{"c":[null,{"v":"x"},{}]}]}}`))
	assert.NoError(t, err)
	assert.Equal(t, []string{"", "x", ""}, []string(sheet.Rows[0]))
}
