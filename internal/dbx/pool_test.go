package dbx

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func stubOpen(t *testing.T, fn func(PoolConfig) (*sqlx.DB, error)) {
	t.Helper()
	orig := openDB
	openDB = fn
	t.Cleanup(func() { openDB = orig })
}

func sqliteOpener(opens *atomic.Int32) func(PoolConfig) (*sqlx.DB, error) {
	return func(cfg PoolConfig) (*sqlx.DB, error) {
		opens.Add(1)
		return sqlx.Open("sqlite", "file:"+cfg.DSN+"?mode=memory&cache=shared")
	}
}

func TestPool_ConcurrentFirstCallersOpenOnce(t *testing.T) {
	var opens atomic.Int32
	stubOpen(t, sqliteOpener(&opens))

	p := NewPool(PoolConfig{DSN: "pool_once"})
	t.Cleanup(func() { _ = p.Close() })

	const callers = 16
	handles := make([]*sqlx.DB, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := p.Get(context.Background())
			assert.NoError(t, err)
			handles[i] = db
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, opens.Load())
	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}
	assert.NoError(t, p.Ping(context.Background()))
}

func TestPool_FailedOpenIsRetried(t *testing.T) {
	var opens atomic.Int32
	fail := true
	stubOpen(t, func(cfg PoolConfig) (*sqlx.DB, error) {
		if fail {
			opens.Add(1)
			return nil, errors.New("dial refused")
		}
		return sqliteOpener(&opens)(cfg)
	})

	p := NewPool(PoolConfig{DSN: "pool_retry"})
	t.Cleanup(func() { _ = p.Close() })

	_, err := p.Get(context.Background())
	require.ErrorContains(t, err, "dial refused")

	fail = false
	db, err := p.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.EqualValues(t, 2, opens.Load())
}

func TestPool_PingBeforeOpen(t *testing.T) {
	p := NewPool(PoolConfig{DSN: "unused"})
	assert.Error(t, p.Ping(context.Background()))
	assert.NoError(t, p.Close())
}

func TestOpenPgx_InvalidDSN(t *testing.T) {
	_, err := openPgx(PoolConfig{DSN: "postgres://%zz"})
	assert.ErrorContains(t, err, "parse dsn")
}

func TestPool_ConnWaitIsBounded(t *testing.T) {
	stubOpen(t, func(cfg PoolConfig) (*sqlx.DB, error) {
		db, err := sqlx.Open("sqlite", "file:"+cfg.DSN+"?mode=memory&cache=shared")
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		return db, nil
	})

	p := NewPool(PoolConfig{DSN: "pool_acquire", MaxOpenConns: 1, ConnectTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = p.Close() })

	held, err := p.Conn(context.Background())
	require.NoError(t, err)

	start := time.Now()
	_, err = p.Conn(context.Background())
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrAcquireTimeout)
	assert.Less(t, elapsed, 2*time.Second)

	require.NoError(t, held.Close())

	conn, err := p.Conn(context.Background())
	require.NoError(t, err)
	var one int
	require.NoError(t, conn.GetContext(context.Background(), &one, "SELECT 1"))
	assert.Equal(t, 1, one)
	require.NoError(t, conn.Close())
}

func TestPool_ConnCallerCancelIsNotTimeout(t *testing.T) {
	var opens atomic.Int32
	stubOpen(t, sqliteOpener(&opens))

	p := NewPool(PoolConfig{DSN: "pool_cancel", ConnectTimeout: time.Second})
	t.Cleanup(func() { _ = p.Close() })

	_, err := p.Get(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Conn(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAcquireTimeout)
}
