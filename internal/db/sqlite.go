package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mithrel/sheetsite/pkg/api"
)

type sqliteStore struct{ db *sql.DB }

// openSQLite connects with the modernc.org/sqlite driver and ensures the schema exists.
func openSQLite(ctx context.Context, dsn string) (*sqliteStore, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// set WAL mode
	if _, err := dbh.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if _, err := dbh.ExecContext(ctx, `PRAGMA busy_timeout=5000;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &sqliteStore{db: dbh}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS snapshots (
  kind TEXT NOT NULL,
  name TEXT NOT NULL,
  hash TEXT NOT NULL,
  items INTEGER NOT NULL,
  payload BLOB NOT NULL,
  fetched_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL,
  PRIMARY KEY(kind, name)
);
CREATE INDEX IF NOT EXISTS idx_snapshots_fetched ON snapshots(fetched_at DESC);
`)
	return err
}

func (s *sqliteStore) conn(ctx context.Context) execer {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func (s *sqliteStore) Batch(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// save writes a snapshot unless the stored hash already matches, in which
// case only fetched_at moves forward.
func (s *sqliteStore) save(ctx context.Context, kind, name, hash string, items int, payload func() ([]byte, error), fetchedAt time.Time) (bool, error) {
	c := s.conn(ctx)
	now := time.Now().UTC()

	var current string
	err := c.QueryRowContext(ctx, `SELECT hash FROM snapshots WHERE kind=? AND name=?`, kind, name).Scan(&current)
	switch {
	case err == nil && current == hash:
		_, err = c.ExecContext(ctx, `UPDATE snapshots SET fetched_at=? WHERE kind=? AND name=?`, fetchedAt.UTC(), kind, name)
		return false, err
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return false, err
	}

	body, err := payload()
	if err != nil {
		return false, err
	}
	_, err = c.ExecContext(ctx, `
INSERT INTO snapshots(kind, name, hash, items, payload, fetched_at, updated_at) VALUES(?,?,?,?,?,?,?)
ON CONFLICT(kind, name) DO UPDATE SET
  hash=excluded.hash, items=excluded.items, payload=excluded.payload,
  fetched_at=excluded.fetched_at, updated_at=excluded.updated_at`,
		kind, name, hash, items, body, fetchedAt.UTC(), now)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *sqliteStore) load(ctx context.Context, kind, name string) ([]byte, time.Time, error) {
	var payload []byte
	var fetchedAt time.Time
	row := s.conn(ctx).QueryRowContext(ctx, `SELECT payload, fetched_at FROM snapshots WHERE kind=? AND name=?`, kind, name)
	if err := row.Scan(&payload, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, ErrNotFound
		}
		return nil, time.Time{}, err
	}
	return payload, fetchedAt, nil
}

func (s *sqliteStore) SaveSheet(ctx context.Context, sh api.Sheet) (bool, error) {
	if sh.Name == "" {
		return false, fmt.Errorf("save sheet: %w: empty name", ErrConflict)
	}
	fetched := sh.FetchedAt
	if fetched.IsZero() {
		fetched = time.Now()
	}
	return s.save(ctx, KindSheet, sh.Name, sh.Hash(), len(sh.Rows),
		func() ([]byte, error) { return encodeRows(sh.Rows) }, fetched)
}

func (s *sqliteStore) LoadSheet(ctx context.Context, name string) (api.Sheet, error) {
	payload, fetchedAt, err := s.load(ctx, KindSheet, name)
	if err != nil {
		return api.Sheet{}, err
	}
	rows, err := decodeRows(payload)
	if err != nil {
		return api.Sheet{}, err
	}
	return api.Sheet{Name: name, Rows: rows, FetchedAt: fetchedAt}, nil
}

func (s *sqliteStore) SaveProducts(ctx context.Context, products []api.Product, fetchedAt time.Time) (bool, error) {
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	return s.save(ctx, KindProducts, catalogName, api.CatalogHash(products), len(products),
		func() ([]byte, error) { return encodeProducts(products) }, fetchedAt)
}

func (s *sqliteStore) LoadProducts(ctx context.Context) ([]api.Product, error) {
	payload, _, err := s.load(ctx, KindProducts, catalogName)
	if err != nil {
		return nil, err
	}
	return decodeProducts(payload)
}

func (s *sqliteStore) ListSnapshots(ctx context.Context) ([]api.SnapshotInfo, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT kind, name, hash, items, fetched_at FROM snapshots ORDER BY kind, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []api.SnapshotInfo
	for rows.Next() {
		var si api.SnapshotInfo
		if err := rows.Scan(&si.Kind, &si.Name, &si.Hash, &si.Items, &si.FetchedAt); err != nil {
			return nil, err
		}
		out = append(out, si)
	}
	return out, rows.Err()
}
