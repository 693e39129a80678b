package db

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePool implements Pool and records whether it has been closed.
type fakePool struct {
	closed  atomic.Bool
	execErr error
}

func (f *fakePool) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	if f.closed.Load() {
		return pgconn.CommandTag{}, errors.New("pool is closed")
	}
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag("SELECT 1"), nil
}

func (f *fakePool) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePool) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (f *fakePool) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePool) Ping(context.Context) error { return nil }

func (f *fakePool) Close() { f.closed.Store(true) }

// fakeClock is a mutable time source safe for concurrent reads.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func TestAcquire_CreatesLazily(t *testing.T) {
	var creates atomic.Int32
	fp := &fakePool{}
	rp := NewRefreshingPool(func(context.Context) (Pool, error) {
		creates.Add(1)
		return fp, nil
	})

	got, err := rp.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, Pool(fp), got)
	assert.Equal(t, int32(1), creates.Load())

	// Second acquire reuses the pool.
	_, err = rp.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), creates.Load())
}

func TestAcquire_CreateFailureIsPoolError(t *testing.T) {
	rp := NewRefreshingPool(func(context.Context) (Pool, error) {
		return nil, errors.New("connection refused")
	})

	_, err := rp.Acquire(context.Background())
	require.Error(t, err)

	var pe *PoolError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Error(), "connection refused")
}

func TestAcquire_RefreshesExpiredPool(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	pools := []*fakePool{{}, {}}
	var creates atomic.Int32

	rp := NewRefreshingPool(
		func(context.Context) (Pool, error) {
			return pools[creates.Add(1)-1], nil
		},
		WithRefreshInterval(time.Hour),
		WithClock(clock.now),
	)

	first, err := rp.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, Pool(pools[0]), first)

	// Not yet expired: same pool, no create-close cycle.
	clock.set(clock.now().Add(30 * time.Minute))
	again, err := rp.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, int32(1), creates.Load())

	// Past the interval: exactly one create-then-close cycle.
	clock.set(clock.now().Add(time.Hour))
	replaced, err := rp.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, Pool(pools[1]), replaced)
	assert.Equal(t, int32(2), creates.Load())
	assert.True(t, pools[0].closed.Load())
	assert.False(t, pools[1].closed.Load())

	// Fresh pool: no further refresh.
	_, err = rp.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), creates.Load())
}

func TestAcquire_ConcurrentDuringRefreshNeverSeesClosedPool(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	var creates atomic.Int32

	rp := NewRefreshingPool(
		func(context.Context) (Pool, error) {
			creates.Add(1)
			return &fakePool{}, nil
		},
		WithRefreshInterval(time.Hour),
		WithClock(clock.now),
	)

	_, err := rp.Acquire(context.Background())
	require.NoError(t, err)

	// Every goroutine races the single refresh triggered by the expired pool.
	clock.set(clock.now().Add(2 * time.Hour))

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool, err := rp.Acquire(context.Background())
			if err != nil {
				errs <- err
				return
			}
			if _, err := pool.Exec(context.Background(), "SELECT 1"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent acquire: %v", err)
	}
	assert.Equal(t, int32(2), creates.Load())
}

func TestHealthCheck(t *testing.T) {
	healthy := NewRefreshingPool(func(context.Context) (Pool, error) {
		return &fakePool{}, nil
	})
	assert.True(t, healthy.HealthCheck(context.Background()))

	broken := NewRefreshingPool(func(context.Context) (Pool, error) {
		return &fakePool{execErr: errors.New("terminating connection")}, nil
	})
	assert.False(t, broken.HealthCheck(context.Background()))

	unreachable := NewRefreshingPool(func(context.Context) (Pool, error) {
		return nil, errors.New("no route to host")
	})
	assert.False(t, unreachable.HealthCheck(context.Background()))
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rp := NewRefreshingPool(func(context.Context) (Pool, error) {
		return mock, nil
	})

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE grid_notes").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = rp.WithTx(context.Background(), func(tx pgx.Tx) error {
		_, err := tx.Exec(context.Background(), "UPDATE grid_notes SET note = 'x'")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rp := NewRefreshingPool(func(context.Context) (Pool, error) {
		return mock, nil
	})

	mock.ExpectBegin()
	mock.ExpectRollback()

	err = rp.WithTx(context.Background(), func(pgx.Tx) error {
		return errors.New("constraint violation")
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
