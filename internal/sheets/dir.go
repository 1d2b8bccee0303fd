package sheets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mithrel/sheetsite/pkg/api"
)

// ProductsFile is the file name Dir reads the catalog from.
const ProductsFile = "products.json"

// Dir serves tabs and products from JSON files on disk, one file per tab.
// A tab file may hold the wrapped query response or its bare JSON.
type Dir struct {
	root string
}

func NewDir(root string) *Dir { return &Dir{root: root} }

// SheetPath is the file a tab is read from.
func (d *Dir) SheetPath(name string) string {
	return filepath.Join(d.root, name+".json")
}

func (d *Dir) Sheet(ctx context.Context, name string) (api.Sheet, error) {
	if err := ctx.Err(); err != nil {
		return api.Sheet{}, err
	}
	path := d.SheetPath(name)
	body, err := os.ReadFile(path)
	if err != nil {
		return api.Sheet{}, d.readErr(path, err)
	}
	sheet, err := parseGviz(name, body)
	if err != nil {
		return api.Sheet{}, err
	}
	if fi, err := os.Stat(path); err == nil {
		sheet.FetchedAt = fi.ModTime().UTC()
	}
	return sheet, nil
}

func (d *Dir) Products(ctx context.Context) ([]api.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(d.root, ProductsFile)
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, d.readErr(path, err)
	}
	return parseProducts(body)
}

func (d *Dir) readErr(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s does not exist", ErrUpstream, path)
	}
	return fmt.Errorf("%w: read %s: %v", ErrUpstream, path, err)
}
