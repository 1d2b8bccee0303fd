package sheets

import (
	"encoding/json"
	"fmt"

	"github.com/mithrel/sheetsite/pkg/api"
)

// parseProducts decodes the catalog feed: a JSON array of flat objects.
func parseProducts(body []byte) ([]api.Product, error) {
	var records []map[string]any
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: decode products: %v", ErrUpstream, err)
	}
	out := make([]api.Product, 0, len(records))
	for _, rec := range records {
		fields := make(map[string]string, len(rec))
		for k, v := range rec {
			fields[k] = cellString(v)
		}
		out = append(out, api.ProductFromFields(fields))
	}
	return out, nil
}
