package api

import (
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// Hash returns a deterministic BLAKE3 hash of the sheet content.
// It covers the tab name and every cell; FetchedAt is excluded so an
// unchanged upstream produces the same hash on every fetch.
func (s Sheet) Hash() string {
	h := blake3.New()

	h.Write([]byte(s.Name))
	h.Write([]byte{0})

	for _, r := range s.Rows {
		// Length prefix keeps ["a", ""] and ["a"] apart.
		h.Write([]byte(strconv.Itoa(len(r))))
		h.Write([]byte{0})
		for _, c := range r {
			h.Write([]byte(c))
			h.Write([]byte{0})
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns a deterministic BLAKE3 hash of the raw feed fields.
// Field names are sorted so map iteration order never leaks in.
func (p Product) Hash() string {
	h := blake3.New()

	fields := p.Fields
	if fields == nil {
		fields = map[string]string{
			FieldCode:          p.Code,
			FieldCategory:      p.Category,
			FieldNameZH:        p.NameZH,
			FieldNameEN:        p.NameEN,
			FieldPacking:       p.Packing,
			FieldUnit:          p.Unit,
			FieldDescriptionZH: p.DescriptionZH,
			FieldDescriptionEN: p.DescriptionEN,
			FieldImages:        strings.Join(p.Images, ","),
		}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(fields[k]))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}

// CatalogHash hashes a whole feed in order. An unchanged feed keeps its hash.
func CatalogHash(products []Product) string {
	h := blake3.New()
	for _, p := range products {
		h.Write([]byte(p.Hash()))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
