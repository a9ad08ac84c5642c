package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS plugin_state (
	id         TEXT PRIMARY KEY,
	alias      TEXT NOT NULL,
	record     TEXT NOT NULL
);
`

// SQLiteStore persists records in a local SQLite database using the pure-Go
// driver. Transactions run with SQLite's single-writer semantics, so Update
// never needs optimistic retries.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the schema exists. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection avoids SQLITE_BUSY between the pool's handles.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create plugin_state table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Update implements Store.
func (s *SQLiteStore) Update(ctx context.Context, id string, fn func(ctx context.Context, tx Txn) error) error {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	tx := &sqliteTxn{dbtx: dbtx, id: id}
	if err := fn(ctx, tx); err != nil {
		dbtx.Rollback()
		return err
	}
	if err := tx.flush(ctx); err != nil {
		dbtx.Rollback()
		return err
	}
	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("failed to commit plugin state %s: %w", id, err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	return scanRecord(s.db.QueryRowContext(ctx,
		`SELECT record FROM plugin_state WHERE id = ?`, id))
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM plugin_state ORDER BY alias`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		rec, err := decodeRecord([]byte(data))
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqliteTxn struct {
	dbtx    *sql.Tx
	id      string
	put     *Record
	deleted bool
}

func (t *sqliteTxn) Get(ctx context.Context) (*Record, error) {
	if t.deleted {
		return nil, nil
	}
	if t.put != nil {
		rec := *t.put
		return &rec, nil
	}
	return scanRecord(t.dbtx.QueryRowContext(ctx,
		`SELECT record FROM plugin_state WHERE id = ?`, t.id))
}

func (t *sqliteTxn) Put(ctx context.Context, rec Record) error {
	rec.ID = t.id
	t.put = &rec
	t.deleted = false
	return nil
}

func (t *sqliteTxn) Delete(ctx context.Context) error {
	t.put = nil
	t.deleted = true
	return nil
}

func (t *sqliteTxn) flush(ctx context.Context) error {
	switch {
	case t.deleted:
		_, err := t.dbtx.ExecContext(ctx,
			`DELETE FROM plugin_state WHERE id = ?`, t.id)
		return err
	case t.put != nil:
		data, err := json.Marshal(t.put)
		if err != nil {
			return fmt.Errorf("failed to marshal plugin state: %w", err)
		}
		_, err = t.dbtx.ExecContext(ctx,
			`INSERT INTO plugin_state (id, alias, record) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET alias = excluded.alias, record = excluded.record`,
			t.id, t.put.Alias, string(data))
		return err
	}
	return nil
}

func scanRecord(row *sql.Row) (*Record, error) {
	var data string
	err := row.Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord([]byte(data))
}
