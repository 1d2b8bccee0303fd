package sheets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mithrel/sheetsite/pkg/api"
)

// gvizResponse is the subset of the visualization query response we read.
type gvizResponse struct {
	Status string `json:"status"`
	Errors []struct {
		Reason          string `json:"reason"`
		Message         string `json:"message"`
		DetailedMessage string `json:"detailed_message"`
	} `json:"errors"`
	Table struct {
		Rows []struct {
			C []*gvizCell `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

type gvizCell struct {
	V any `json:"v"`
}

// unwrapJSONP strips the "google.visualization.Query.setResponse(...);"
// wrapper. Bare JSON passes through unchanged.
func unwrapJSONP(body []byte) ([]byte, error) {
	start := bytes.IndexByte(body, '{')
	end := bytes.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: response has no JSON object", ErrUpstream)
	}
	return body[start : end+1], nil
}

// parseGviz turns a (possibly wrapped) query response into a Sheet.
func parseGviz(name string, body []byte) (api.Sheet, error) {
	raw, err := unwrapJSONP(body)
	if err != nil {
		return api.Sheet{}, err
	}
	var resp gvizResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return api.Sheet{}, fmt.Errorf("%w: decode sheet %q: %v", ErrUpstream, name, err)
	}
	if resp.Status == "error" {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			m := e.DetailedMessage
			if m == "" {
				m = e.Message
			}
			if m == "" {
				m = e.Reason
			}
			msgs = append(msgs, m)
		}
		return api.Sheet{}, fmt.Errorf("%w: sheet %q: %s", ErrUpstream, name, strings.Join(msgs, "; "))
	}

	sheet := api.Sheet{Name: name, Rows: make([]api.Row, 0, len(resp.Table.Rows))}
	for _, r := range resp.Table.Rows {
		row := make(api.Row, len(r.C))
		for i, c := range r.C {
			if c != nil {
				row[i] = cellString(c.V)
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// cellString stringifies a JSON value the way the published site always
// has: null, false, 0 and "" all read as empty.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
		return "true"
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return ""
		}
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
