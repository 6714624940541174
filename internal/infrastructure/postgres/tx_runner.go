package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Fulfillment-api/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
	sequences   ports.SequenceGenerator
}

// NewTxRunner construye el runner con el pool. lockTimeout 0 deja el valor del servidor.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// WithSequences reemplaza el generador atado a la tx (p. ej. Redis).
func (r *TxRunner) WithSequences(seq ports.SequenceGenerator) *TxRunner {
	r.sequences = seq
	return r
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los errores de bloqueo/deadlock/serialización salen como domain.ErrConcurrencyConflict.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		// SET no admite parámetros
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("lock_timeout: %w", err)
		}
	}

	repos := Repositories(tx)
	if r.sequences != nil {
		repos.Sequences = r.sequences
	}
	if err := fn(repos); err != nil {
		return mapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// Repositories repos atados a q (pool o tx).
func Repositories(q Querier) ports.Repositories {
	return ports.Repositories{
		Orders:      NewOrderRepository(q),
		Inventory:   NewInventoryRecordRepository(q),
		Allocations: NewAllocationRepository(q),
		Waves:       NewWaveRepository(q),
		Tasks:       NewPickTaskRepository(q),
		Movements:   NewInventoryMovementRepository(q),
		Sequences:   NewSequenceGenerator(q),
	}
}
