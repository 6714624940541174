package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
	"github.com/jhoicas/Fulfillment-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

const movementColumns = `
	id, transaction_id, inventory_record_id, sku_id, warehouse_id, type, quantity,
	unit_cost, total_cost, reference, created_by, created_at`

// Create persiste un movimiento del ledger.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TransactionID, m.InventoryRecordID, m.SKUID, m.WarehouseID, m.Type, m.Quantity,
		m.UnitCost, m.TotalCost, nullable(m.Reference), nullable(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// ListByRecord últimos movimientos de un registro, más recientes primero.
func (r *InventoryMovementRepo) ListByRecord(ctx context.Context, recordID string, limit int) ([]*entity.InventoryMovement, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT` + movementColumns + ` FROM inventory_movements
		WHERE inventory_record_id = $1 ORDER BY created_at DESC, id LIMIT $2`
	rows, err := r.q.Query(ctx, query, recordID, limit)
	if err != nil {
		return nil, fmt.Errorf("list inventory movements: %w", err)
	}
	out, err := collect(rows, func(rows pgx.Rows) (*entity.InventoryMovement, error) {
		var m entity.InventoryMovement
		var ref, createdBy *string
		err := rows.Scan(&m.ID, &m.TransactionID, &m.InventoryRecordID, &m.SKUID, &m.WarehouseID,
			&m.Type, &m.Quantity, &m.UnitCost, &m.TotalCost, &ref, &createdBy, &m.CreatedAt)
		if err != nil {
			return nil, err
		}
		m.Reference = deref(ref)
		m.CreatedBy = deref(createdBy)
		return &m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan inventory movements: %w", err)
	}
	return out, nil
}
