package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
	"github.com/jhoicas/Fulfillment-api/internal/domain/repository"
)

var _ repository.AllocationRepository = (*AllocationRepo)(nil)

// AllocationRepo reservas sobre PostgreSQL. Nunca se borran.
type AllocationRepo struct {
	q Querier
}

// NewAllocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAllocationRepository(q Querier) *AllocationRepo {
	return &AllocationRepo{q: q}
}

const allocationColumns = `
	id, code, order_id, order_line_id, inventory_record_id, sku_id, warehouse_id,
	allocated_qty, consumed_qty, remaining_qty, status, release_reason, created_by,
	created_at, updated_at, released_at`

func scanAllocation(row pgx.Row) (*entity.Allocation, error) {
	var a entity.Allocation
	var reason, createdBy *string
	err := row.Scan(
		&a.ID, &a.Code, &a.OrderID, &a.OrderLineID, &a.InventoryRecordID, &a.SKUID, &a.WarehouseID,
		&a.AllocatedQty, &a.ConsumedQty, &a.RemainingQty, &a.Status, &reason, &createdBy,
		&a.CreatedAt, &a.UpdatedAt, &a.ReleasedAt,
	)
	if err != nil {
		return nil, err
	}
	a.ReleaseReason = deref(reason)
	a.CreatedBy = deref(createdBy)
	return &a, nil
}

func scanAllocationRows(rows pgx.Rows) (*entity.Allocation, error) { return scanAllocation(rows) }

// Create persiste una reserva nueva.
func (r *AllocationRepo) Create(ctx context.Context, a *entity.Allocation) error {
	query := `INSERT INTO allocations (` + allocationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.Code, a.OrderID, a.OrderLineID, a.InventoryRecordID, a.SKUID, a.WarehouseID,
		a.AllocatedQty, a.ConsumedQty, a.RemainingQty, a.Status, nullable(a.ReleaseReason),
		nullable(a.CreatedBy), a.CreatedAt, a.UpdatedAt, a.ReleasedAt,
	)
	if err != nil {
		return fmt.Errorf("create allocation: %w", err)
	}
	return nil
}

// GetByID obtiene una reserva por ID.
func (r *AllocationRepo) GetByID(ctx context.Context, id string) (*entity.Allocation, error) {
	return r.get(ctx, `SELECT`+allocationColumns+` FROM allocations WHERE id = $1`, id)
}

// GetForUpdate obtiene la reserva y bloquea la fila.
func (r *AllocationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Allocation, error) {
	return r.get(ctx, `SELECT`+allocationColumns+` FROM allocations WHERE id = $1 FOR UPDATE`, id)
}

func (r *AllocationRepo) get(ctx context.Context, query, id string) (*entity.Allocation, error) {
	a, err := scanAllocation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get allocation: %w", err)
	}
	return a, nil
}

// Update persiste cantidades, estado y motivo de liberación.
func (r *AllocationRepo) Update(ctx context.Context, a *entity.Allocation) error {
	query := `
		UPDATE allocations SET consumed_qty = $2, remaining_qty = $3, status = $4,
			release_reason = $5, updated_at = $6, released_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, a.ID, a.ConsumedQty, a.RemainingQty, a.Status,
		nullable(a.ReleaseReason), a.UpdatedAt, a.ReleasedAt)
	if err != nil {
		return fmt.Errorf("update allocation: %w", err)
	}
	return nil
}

// ListByLine reservas de una línea en orden de creación.
func (r *AllocationRepo) ListByLine(ctx context.Context, lineID string) ([]*entity.Allocation, error) {
	return r.list(ctx, `SELECT`+allocationColumns+` FROM allocations WHERE order_line_id = $1 ORDER BY created_at, code`, lineID)
}

// ListByOrder reservas de una orden en orden de creación.
func (r *AllocationRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.Allocation, error) {
	return r.list(ctx, `SELECT`+allocationColumns+` FROM allocations WHERE order_id = $1 ORDER BY created_at, code`, orderID)
}

func (r *AllocationRepo) list(ctx context.Context, query, arg string) ([]*entity.Allocation, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	out, err := collect(rows, scanAllocationRows)
	if err != nil {
		return nil, fmt.Errorf("scan allocations: %w", err)
	}
	return out, nil
}
