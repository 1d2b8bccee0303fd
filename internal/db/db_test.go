package db_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/sheetsite/internal/db"
	"github.com/mithrel/sheetsite/pkg/api"
)

func backends(t *testing.T) map[string]db.Store {
	t.Helper()
	ctx := context.Background()
	sq, err := db.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "snap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	mem, err := db.Open(ctx, "mem://")
	require.NoError(t, err)
	return map[string]db.Store{"sqlite": sq, "mem": mem}
}

func sampleSheet() api.Sheet {
	return api.Sheet{
		Name: "About Us",
		Rows: []api.Row{
			{"title", "關於我們", "About Us"},
			{"upper image", "", "", "https://img.example.com/u.png"},
			{},
		},
		FetchedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func sampleProducts() []api.Product {
	return []api.Product{
		api.ProductFromFields(map[string]string{
			api.FieldCode: "1001", api.FieldCategory: "Tea", api.FieldNameEN: "Oolong",
			api.FieldImages: "https://img.example.com/1.png,https://img.example.com/2.png",
		}),
		api.ProductFromFields(map[string]string{api.FieldCode: "A-7", api.FieldCategory: "Snacks"}),
	}
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := db.Open(context.Background(), "postgres://localhost/x")
	require.Error(t, err)
	_, err = db.Open(context.Background(), "")
	require.Error(t, err)
}

func TestSheetRoundTrip(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := st.LoadSheet(ctx, "About Us")
			require.ErrorIs(t, err, db.ErrNotFound)

			in := sampleSheet()
			changed, err := st.SaveSheet(ctx, in)
			require.NoError(t, err)
			assert.True(t, changed)

			out, err := st.LoadSheet(ctx, "About Us")
			require.NoError(t, err)
			assert.Equal(t, in.Name, out.Name)
			assert.Equal(t, in.Rows, out.Rows)
			assert.True(t, in.FetchedAt.Equal(out.FetchedAt))
			assert.Equal(t, in.Hash(), out.Hash())
		})
	}
}

func TestSaveSkipsUnchanged(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := sampleSheet()
			_, err := st.SaveSheet(ctx, s)
			require.NoError(t, err)

			s.FetchedAt = s.FetchedAt.Add(time.Hour)
			changed, err := st.SaveSheet(ctx, s)
			require.NoError(t, err)
			assert.False(t, changed)

			got, err := st.LoadSheet(ctx, s.Name)
			require.NoError(t, err)
			assert.True(t, s.FetchedAt.Equal(got.FetchedAt), "fetch time still advances")

			s.Rows = append(s.Rows, api.Row{"address", "台北", "Taipei"})
			changed, err = st.SaveSheet(ctx, s)
			require.NoError(t, err)
			assert.True(t, changed)
		})
	}
}

func TestProductsRoundTrip(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := st.LoadProducts(ctx)
			require.ErrorIs(t, err, db.ErrNotFound)

			in := sampleProducts()
			changed, err := st.SaveProducts(ctx, in, time.Now())
			require.NoError(t, err)
			assert.True(t, changed)

			out, err := st.LoadProducts(ctx)
			require.NoError(t, err)
			require.Len(t, out, 2)
			assert.Equal(t, "1001", out[0].Code)
			assert.Equal(t, []string{"https://img.example.com/1.png", "https://img.example.com/2.png"}, out[0].Images)
			assert.Equal(t, api.CatalogHash(in), api.CatalogHash(out))

			changed, err = st.SaveProducts(ctx, out, time.Now())
			require.NoError(t, err)
			assert.False(t, changed)
		})
	}
}

func TestListSnapshots(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := st.SaveSheet(ctx, sampleSheet())
			require.NoError(t, err)
			_, err = st.SaveSheet(ctx, api.Sheet{Name: "Content", Rows: []api.Row{{"title"}}})
			require.NoError(t, err)
			_, err = st.SaveProducts(ctx, sampleProducts(), time.Time{})
			require.NoError(t, err)

			list, err := st.ListSnapshots(ctx)
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, db.KindProducts, list[0].Kind)
			assert.Equal(t, 2, list[0].Items)
			assert.Equal(t, "About Us", list[1].Name)
			assert.Equal(t, "Content", list[2].Name)
			assert.Equal(t, 1, list[2].Items)
			for _, si := range list {
				assert.Len(t, si.Hash, 64)
				assert.False(t, si.FetchedAt.IsZero())
			}
		})
	}
}

func TestSaveSheetRequiresName(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.SaveSheet(context.Background(), api.Sheet{})
			require.ErrorIs(t, err, db.ErrConflict)
		})
	}
}

func TestBatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "batch.db")
	st, err := db.Open(ctx, "sqlite://"+path)
	require.NoError(t, err)

	err = st.Batch(ctx, func(ctx context.Context) error {
		if _, err := st.SaveSheet(ctx, sampleSheet()); err != nil {
			return err
		}
		_, err := st.SaveProducts(ctx, sampleProducts(), time.Now())
		return err
	})
	require.NoError(t, err)

	boom := assert.AnError
	err = st.Batch(ctx, func(ctx context.Context) error {
		if _, err := st.SaveSheet(ctx, api.Sheet{Name: "Join Us", Rows: []api.Row{{"title"}}}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, st.Close())

	// Reopen: the first batch persisted, the failed one rolled back.
	st, err = db.Open(ctx, "sqlite://"+path)
	require.NoError(t, err)
	defer st.Close()
	list, err := st.ListSnapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	_, err = st.LoadSheet(ctx, "Join Us")
	require.ErrorIs(t, err, db.ErrNotFound)
}
