package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
	"github.com/jhoicas/Fulfillment-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `
	id, code, warehouse_id, client_id, status, priority, total_lines, total_units,
	total_allocated_units, total_picked_units, created_by, created_at, updated_at`

const lineColumns = `
	id, order_id, line_number, sku_id, ordered_qty, allocated_qty, picked_qty,
	short_qty, allocation_rule, status, created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var clientID, createdBy *string
	err := row.Scan(
		&o.ID, &o.Code, &o.WarehouseID, &clientID, &o.Status, &o.Priority,
		&o.TotalLines, &o.TotalUnits, &o.TotalAllocatedUnits, &o.TotalPickedUnits,
		&createdBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.ClientID = deref(clientID)
	o.CreatedBy = deref(createdBy)
	return &o, nil
}

func scanLine(rows pgx.Rows) (*entity.OrderLine, error) {
	var l entity.OrderLine
	err := rows.Scan(
		&l.ID, &l.OrderID, &l.LineNumber, &l.SKUID, &l.OrderedQty, &l.AllocatedQty,
		&l.PickedQty, &l.ShortQty, &l.AllocationRule, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByID obtiene la orden con sus líneas (sin bloqueo).
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la fila de la orden y luego sus líneas, en ese orden.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *OrderRepo) get(ctx context.Context, id, lock string) (*entity.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE id = $1` + lock
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	lines, err := r.lines(ctx, []string{id}, lock)
	if err != nil {
		return nil, err
	}
	o.Lines = lines[id]
	return o, nil
}

func (r *OrderRepo) lines(ctx context.Context, orderIDs []string, lock string) (map[string][]*entity.OrderLine, error) {
	query := `SELECT` + lineColumns + ` FROM order_lines WHERE order_id = ANY($1)
		ORDER BY order_id, line_number` + lock
	rows, err := r.q.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	list, err := collect(rows, scanLine)
	if err != nil {
		return nil, fmt.Errorf("scan order lines: %w", err)
	}
	out := make(map[string][]*entity.OrderLine, len(orderIDs))
	for _, l := range list {
		out[l.OrderID] = append(out[l.OrderID], l)
	}
	return out, nil
}

// Update persiste estado y totales de la orden.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders SET status = $2, total_lines = $3, total_units = $4,
			total_allocated_units = $5, total_picked_units = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, o.ID, o.Status, o.TotalLines, o.TotalUnits,
		o.TotalAllocatedUnits, o.TotalPickedUnits, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update order %s: sin filas", o.ID)
	}
	return nil
}

// UpdateLine persiste contadores y estado de una línea.
func (r *OrderRepo) UpdateLine(ctx context.Context, l *entity.OrderLine) error {
	query := `
		UPDATE order_lines SET allocated_qty = $2, picked_qty = $3, short_qty = $4,
			status = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, l.ID, l.AllocatedQty, l.PickedQty, l.ShortQty, l.Status, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order line: %w", err)
	}
	return nil
}

// ListEligibleForWave órdenes ALLOCATED/PARTIAL_ALLOCATION fuera de olas activas,
// por prioridad y antigüedad.
func (r *OrderRepo) ListEligibleForWave(ctx context.Context, warehouseID string, limit int) ([]*entity.Order, error) {
	query := `SELECT` + orderColumns + `
		FROM orders o
		WHERE o.warehouse_id = $1
		  AND o.status IN ('ALLOCATED', 'PARTIAL_ALLOCATION')
		  AND NOT EXISTS (
			SELECT 1 FROM wave_orders wo JOIN waves w ON w.id = wo.wave_id
			WHERE wo.order_id = o.id AND w.status IN ('PENDING', 'RELEASED', 'IN_PROGRESS'))
		ORDER BY CASE o.priority WHEN 'URGENT' THEN 0 WHEN 'HIGH' THEN 1 WHEN 'LOW' THEN 3 ELSE 2 END,
			o.created_at, o.id
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, warehouseID, limit)
	if err != nil {
		return nil, fmt.Errorf("list eligible orders: %w", err)
	}
	orders, err := collect(rows, func(rows pgx.Rows) (*entity.Order, error) { return scanOrder(rows) })
	if err != nil {
		return nil, fmt.Errorf("scan eligible orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	lines, err := r.lines(ctx, ids, "")
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Lines = lines[o.ID]
	}
	return orders, nil
}

// Insert alta de la orden y sus líneas. La captura real vive fuera del servicio;
// lo usan el seed y las pruebas de integración.
func (r *OrderRepo) Insert(ctx context.Context, o *entity.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query, o.ID, o.Code, o.WarehouseID, nullable(o.ClientID), o.Status, o.Priority,
		o.TotalLines, o.TotalUnits, o.TotalAllocatedUnits, o.TotalPickedUnits, nullable(o.CreatedBy),
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for _, l := range o.Lines {
		if l.Status == "" {
			l.Status = entity.LineStatusPending
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt, l.UpdatedAt = o.CreatedAt, o.CreatedAt
		}
		query := `INSERT INTO order_lines (` + lineColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
		_, err := r.q.Exec(ctx, query, l.ID, o.ID, l.LineNumber, l.SKUID, l.OrderedQty, l.AllocatedQty,
			l.PickedQty, l.ShortQty, l.Rule(), l.Status, l.CreatedAt, l.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}
