package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
	"github.com/jhoicas/Fulfillment-api/internal/domain/repository"
)

var _ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)

// InventoryRecordRepo ledger de inventario por ubicación/lote sobre PostgreSQL.
type InventoryRecordRepo struct {
	q Querier
}

// NewInventoryRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRecordRepository(q Querier) *InventoryRecordRepo {
	return &InventoryRecordRepo{q: q}
}

const recordColumns = `
	id, warehouse_id, sku_id, location_code, zone, aisle, rack, level, batch_number,
	serial_number, expiry_date, received_at, on_hand_qty, allocated_qty, hold_qty,
	damaged_qty, health_status, unit_cost, updated_at`

// filtro de registros reservables; available = on_hand - allocated - hold - damaged
const allocatableFilter = `
	warehouse_id = $1 AND sku_id = $2 AND health_status = 'HEALTHY'
	AND on_hand_qty - allocated_qty - hold_qty - damaged_qty > 0`

func scanRecord(row pgx.Row) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	var batch, serial *string
	err := row.Scan(
		&rec.ID, &rec.WarehouseID, &rec.SKUID, &rec.Location.Code, &rec.Location.Zone,
		&rec.Location.Aisle, &rec.Location.Rack, &rec.Location.Level, &batch, &serial,
		&rec.ExpiryDate, &rec.ReceivedAt, &rec.OnHandQty, &rec.AllocatedQty, &rec.HoldQty,
		&rec.DamagedQty, &rec.HealthStatus, &rec.UnitCost, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.BatchNumber = deref(batch)
	rec.SerialNumber = deref(serial)
	return &rec, nil
}

func scanRecordRows(rows pgx.Rows) (*entity.InventoryRecord, error) { return scanRecord(rows) }

// GetByID obtiene un registro por ID.
func (r *InventoryRecordRepo) GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.get(ctx, `SELECT`+recordColumns+` FROM inventory_records WHERE id = $1`, id)
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryRecordRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.get(ctx, `SELECT`+recordColumns+` FROM inventory_records WHERE id = $1 FOR UPDATE`, id)
}

func (r *InventoryRecordRepo) get(ctx context.Context, query, id string) (*entity.InventoryRecord, error) {
	rec, err := scanRecord(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory record: %w", err)
	}
	return rec, nil
}

// ListCandidatesForUpdate bloquea los registros reservables del SKU en orden de id,
// el mismo orden para todas las transacciones. La política ordena después.
func (r *InventoryRecordRepo) ListCandidatesForUpdate(ctx context.Context, warehouseID, skuID string) ([]*entity.InventoryRecord, error) {
	query := `SELECT` + recordColumns + ` FROM inventory_records WHERE` + allocatableFilter + `
		ORDER BY id FOR UPDATE`
	rows, err := r.q.Query(ctx, query, warehouseID, skuID)
	if err != nil {
		return nil, fmt.Errorf("list allocation candidates: %w", err)
	}
	out, err := collect(rows, scanRecordRows)
	if err != nil {
		return nil, fmt.Errorf("scan allocation candidates: %w", err)
	}
	return out, nil
}

// FindReallocationCandidateForUpdate primer registro FIFO reservable fuera de excludeIDs.
func (r *InventoryRecordRepo) FindReallocationCandidateForUpdate(ctx context.Context, warehouseID, skuID string, excludeIDs []string) (*entity.InventoryRecord, error) {
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	query := `SELECT` + recordColumns + ` FROM inventory_records WHERE` + allocatableFilter + `
		AND NOT (id = ANY($3))
		ORDER BY received_at, id
		LIMIT 1 FOR UPDATE`
	rec, err := scanRecord(r.q.QueryRow(ctx, query, warehouseID, skuID, excludeIDs))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find reallocation candidate: %w", err)
	}
	return rec, nil
}

// UpdateQuantities persiste los contadores de cantidad del registro.
func (r *InventoryRecordRepo) UpdateQuantities(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `
		UPDATE inventory_records SET on_hand_qty = $2, allocated_qty = $3, hold_qty = $4,
			damaged_qty = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, rec.ID, rec.OnHandQty, rec.AllocatedQty, rec.HoldQty, rec.DamagedQty, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update inventory record: %w", err)
	}
	return nil
}

// Insert alta de un registro (seed e integración; el alta real la hace recepción).
func (r *InventoryRecordRepo) Insert(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `INSERT INTO inventory_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, now())`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.WarehouseID, rec.SKUID, rec.Location.Code, rec.Location.Zone, rec.Location.Aisle,
		rec.Location.Rack, rec.Location.Level, nullable(rec.BatchNumber), nullable(rec.SerialNumber),
		rec.ExpiryDate, rec.ReceivedAt, rec.OnHandQty, rec.AllocatedQty, rec.HoldQty, rec.DamagedQty,
		rec.HealthStatus, rec.UnitCost,
	)
	if err != nil {
		return fmt.Errorf("insert inventory record: %w", err)
	}
	return nil
}
