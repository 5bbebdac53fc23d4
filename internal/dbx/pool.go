package dbx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// PoolConfig mirrors the pool settings of the service: at most MaxOpenConns
// connections, idle ones closed after IdleTimeout, and ConnectTimeout bounding
// both dialing a new connection and waiting for a free one in Conn.
type PoolConfig struct {
	DSN            string
	MaxOpenConns   int
	ConnectTimeout time.Duration
	IdleTimeout    time.Duration
}

// openDB is a seam for tests.
var openDB = openPgx

func openPgx(cfg PoolConfig) (*sqlx.DB, error) {
	connCfg, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.ConnectTimeout > 0 {
		connCfg.ConnectTimeout = cfg.ConnectTimeout
	}

	db := sqlx.NewDb(stdlib.OpenDB(*connCfg), "pgx")
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	if cfg.IdleTimeout > 0 {
		db.SetConnMaxIdleTime(cfg.IdleTimeout)
	}
	return db, nil
}

// Pool opens the database handle on first use and shares it afterwards.
// Concurrent first callers block on the same open; a failed open is not
// cached, so the next caller retries.
type Pool struct {
	cfg PoolConfig

	mu sync.Mutex
	db *sqlx.DB
}

func NewPool(cfg PoolConfig) *Pool {
	return &Pool{cfg: cfg}
}

// Get returns the shared handle, opening and pinging it if needed.
func (p *Pool) Get(ctx context.Context) (*sqlx.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return p.db, nil
	}

	db, err := openDB(p.cfg)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	p.db = db
	return db, nil
}

// ErrAcquireTimeout is returned by Conn when no pooled connection became free
// within the configured ConnectTimeout.
var ErrAcquireTimeout = errors.New("timed out waiting for a database connection")

// Conn takes one connection from the pool, opening the pool if needed. The
// wait for a free connection is bounded by ConnectTimeout; statements on the
// returned connection run under the caller's ctx. Close it to release it.
func (p *Pool) Conn(ctx context.Context) (*sqlx.Conn, error) {
	db, err := p.Get(ctx)
	if err != nil {
		return nil, err
	}

	acquireCtx := ctx
	if p.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, p.cfg.ConnectTimeout)
		defer cancel()
	}

	conn, err := db.Connx(acquireCtx)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrAcquireTimeout, p.cfg.ConnectTimeout)
		}
		return nil, fmt.Errorf("db conn error: %w", err)
	}
	return conn, nil
}

// Ping checks the shared handle. It does not open the pool.
func (p *Pool) Ping(ctx context.Context) error {
	p.mu.Lock()
	db := p.db
	p.mu.Unlock()

	if db == nil {
		return fmt.Errorf("db pool not initialized")
	}
	return db.PingContext(ctx)
}

// Close releases the handle if it was opened. The pool can be reopened by a
// later Get.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
