package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/paychain/internal/client/migrations"
	"github.com/dmitrijs2005/paychain/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Storage keys.
const (
	KeyAuthToken    = "auth_token"
	KeyAuthSlice    = "paychain-auth-storage"
	KeyTransactions = "paychain_transactions"
	KeyReceipts     = "paychain_nft_receipts"
	KeyLastSync     = "paychain_last_sync"
)

var ErrClosed = errors.New("storage is closed")

// goose keeps its dialect and base FS in package globals.
var migrateMu sync.Mutex

// RunMigrations applies the embedded schema to db. It is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Local is a SQLite-backed key/value store.
type Local struct {
	db *sql.DB

	mu     sync.RWMutex
	closed bool
}

// Open opens (creating if needed) the database at path and migrates it.
// Use ":memory:" only in single-connection tests.
func Open(ctx context.Context, path string) (*Local, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// one writer; sqlite serialises anyway and this avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Local{db: db}, nil
}

func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}

func (l *Local) conn() (*sql.DB, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrClosed
	}
	return l.db, nil
}

// Get returns the value under key, or (nil, nil) when the key is absent.
func (l *Local) Get(ctx context.Context, key string) ([]byte, error) {
	db, err := l.conn()
	if err != nil {
		return nil, err
	}
	return get(ctx, db, key)
}

func (l *Local) Set(ctx context.Context, key string, value []byte) error {
	db, err := l.conn()
	if err != nil {
		return err
	}
	return set(ctx, db, key, value)
}

// Delete removes key. Deleting an absent key is not an error.
func (l *Local) Delete(ctx context.Context, key string) error {
	db, err := l.conn()
	if err != nil {
		return err
	}
	return del(ctx, db, key)
}

// Keys lists every stored key in lexical order.
func (l *Local) Keys(ctx context.Context) ([]string, error) {
	db, err := l.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT key FROM metadata ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

// update runs fn in a single transaction so multi-key writes land together.
func (l *Local) update(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	db, err := l.conn()
	if err != nil {
		return err
	}
	return dbx.WithTx(ctx, db, nil, fn)
}

func get(ctx context.Context, db dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func del(ctx context.Context, db dbx.DBTX, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
