package db

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultRefreshInterval is how long a pool lives before it is replaced.
const DefaultRefreshInterval = time.Hour

// RefreshingPool owns a single live connection pool and replaces it once it
// grows older than the refresh interval. Replacement order is create new,
// swap the reference, close the old pool, so a concurrent Acquire never sees
// a closed pool or a window with no pool at all.
type RefreshingPool struct {
	mu              sync.Mutex
	factory         Factory
	refreshInterval time.Duration
	now             func() time.Time

	current   Pool
	createdAt time.Time
}

// RefreshOption configures a RefreshingPool.
type RefreshOption func(*RefreshingPool)

// WithRefreshInterval overrides the default one hour pool lifetime.
func WithRefreshInterval(d time.Duration) RefreshOption {
	return func(p *RefreshingPool) {
		if d > 0 {
			p.refreshInterval = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) RefreshOption {
	return func(p *RefreshingPool) {
		p.now = now
	}
}

// NewRefreshingPool creates a RefreshingPool. The underlying pool is created
// lazily on first Acquire.
func NewRefreshingPool(factory Factory, opts ...RefreshOption) *RefreshingPool {
	p := &RefreshingPool{
		factory:         factory,
		refreshInterval: DefaultRefreshInterval,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Acquire returns the current pool, creating it on first use or replacing it
// once it is older than the refresh interval. A creation failure surfaces as
// a *PoolError; there is no silent fallback.
func (p *RefreshingPool) Acquire(ctx context.Context) (Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.current == nil:
		pool, err := p.factory(ctx)
		if err != nil {
			return nil, &PoolError{Err: err}
		}
		p.current = pool
		p.createdAt = p.now()

	case p.now().Sub(p.createdAt) > p.refreshInterval:
		zap.L().Info("db: refreshing connection pool",
			zap.Duration("age", p.now().Sub(p.createdAt)),
		)
		pool, err := p.factory(ctx)
		if err != nil {
			return nil, &PoolError{Err: err}
		}
		old := p.current
		p.current = pool
		p.createdAt = p.now()
		old.Close()
	}

	return p.current, nil
}

// WithTx runs fn inside a transaction on the current pool. Either every
// statement commits or none do.
func (p *RefreshingPool) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	pool, err := p.Acquire(ctx)
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "db: begin tx")
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "db: commit tx")
	}
	return nil
}

// HealthCheck runs a trivial statement against the current pool. It reports
// false instead of returning an error.
func (p *RefreshingPool) HealthCheck(ctx context.Context) bool {
	pool, err := p.Acquire(ctx)
	if err != nil {
		return false
	}
	if _, err := pool.Exec(ctx, "SELECT 1"); err != nil {
		return false
	}
	return true
}

// Close shuts down the current pool, if any.
func (p *RefreshingPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		p.current.Close()
		p.current = nil
	}
}
