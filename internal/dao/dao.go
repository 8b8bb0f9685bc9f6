// Package dao is the only component that talks to journal storage. It maps
// trips, points and media items onto the schema in package db.
package dao

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hpungsan/mapjournal/internal/config"
	"github.com/hpungsan/mapjournal/internal/db"
	"github.com/hpungsan/mapjournal/internal/errors"
)

// DAO mediates all reads and writes of journal records. A DAO starts closed;
// every operation fails with NOT_OPEN until Open succeeds and after Close.
type DAO struct {
	baseDir string
	cfg     *config.Config
	log     zerolog.Logger

	mu   sync.RWMutex
	conn *sql.DB
}

// New returns a closed DAO for the database under baseDir.
func New(baseDir string, cfg *config.Config, log zerolog.Logger) *DAO {
	return &DAO{
		baseDir: baseDir,
		cfg:     cfg,
		log:     log,
	}
}

// Open opens the storage handle. Calling Open on an open DAO is a no-op.
func (d *DAO) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.NewCancelled("open")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != nil {
		return nil
	}

	conn, err := db.Open(d.baseDir, d.log)
	if err != nil {
		return errors.NewInternal(err)
	}
	db.ConfigurePool(conn, d.cfg)
	d.conn = conn
	return nil
}

// Close releases the storage handle. Closing twice is safe.
func (d *DAO) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	if err != nil {
		return errors.NewInternal(err)
	}
	d.log.Debug().Str("dir", d.baseDir).Msg("database closed")
	return nil
}

// BaseDir returns the directory holding the database file.
func (d *DAO) BaseDir() string {
	return d.baseDir
}

// IsOpen reports whether the DAO holds an open handle.
func (d *DAO) IsOpen() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.conn != nil
}

// acquire returns the open handle with the read lock held. The caller must
// call release when done.
func (d *DAO) acquire() (conn *sql.DB, release func(), err error) {
	d.mu.RLock()
	if d.conn == nil {
		d.mu.RUnlock()
		return nil, nil, errors.NewNotOpen()
	}
	return d.conn, d.mu.RUnlock, nil
}

// Tx exposes the write operations that Import needs inside a single transaction.
type Tx struct {
	tx  *sql.Tx
	log zerolog.Logger
}

// InTx runs fn inside one transaction. The transaction commits only if fn
// returns nil.
func (d *DAO) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	conn, release, err := d.acquire()
	if err != nil {
		return err
	}
	defer release()

	sqlTx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(ctx, "begin transaction", err)
	}
	defer sqlTx.Rollback() //nolint:errcheck

	if err := fn(&Tx{tx: sqlTx, log: d.log}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return storageErr(ctx, "commit", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// queryAll runs query and decodes every row with scan. The result set must
// have exactly len(cols) columns.
func queryAll[T any](ctx context.Context, q querier, table string, cols []string,
	scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(ctx, "query "+table, err)
	}
	defer rows.Close()

	got, err := rows.Columns()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if len(got) != len(cols) {
		return nil, errors.NewSchemaMismatch(table, len(cols), len(got))
	}

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(ctx, "query "+table, err)
	}
	return out, nil
}

// queryOne is queryAll for an identity lookup. No row is NOT_FOUND.
func queryOne[T any](ctx context.Context, q querier, table, kind string, cols []string,
	scan func(scanner) (T, error), query string, id int64) (T, error) {
	var zero T
	items, err := queryAll(ctx, q, table, cols, scan, query, id)
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, errors.NewNotFound(kind, id)
	}
	return items[0], nil
}

// exec runs a write statement and returns the number of affected rows.
func exec(ctx context.Context, q querier, op, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storageErr(ctx, op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// insert runs an INSERT and returns the engine-assigned row id.
func insert(ctx context.Context, q querier, op, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storageErr(ctx, op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return id, nil
}

func storageErr(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return errors.NewCancelled(op)
	}
	return errors.NewInternal(fmt.Errorf("%s: %w", op, err))
}
