package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
	"github.com/jhoicas/Fulfillment-api/internal/domain/repository"
)

var _ repository.PickTaskRepository = (*PickTaskRepo)(nil)

// PickTaskRepo tareas de picking sobre PostgreSQL.
type PickTaskRepo struct {
	q Querier
}

// NewPickTaskRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPickTaskRepository(q Querier) *PickTaskRepo {
	return &PickTaskRepo{q: q}
}

const taskColumns = `
	id, code, wave_id, order_id, order_line_id, allocation_id, inventory_record_id, sku_id,
	location_code, zone, aisle, rack, level, qty_to_pick, qty_picked, qty_short, short_reason,
	pick_sequence, priority, status, assigned_to, reallocated_from_task_id, created_by,
	created_at, updated_at, assigned_at, started_at, completed_at`

func scanTask(row pgx.Row) (*entity.PickTask, error) {
	var t entity.PickTask
	var reason, assignedTo, from, createdBy *string
	err := row.Scan(
		&t.ID, &t.Code, &t.WaveID, &t.OrderID, &t.OrderLineID, &t.AllocationID, &t.InventoryRecordID,
		&t.SKUID, &t.Location.Code, &t.Location.Zone, &t.Location.Aisle, &t.Location.Rack,
		&t.Location.Level, &t.QtyToPick, &t.QtyPicked, &t.QtyShort, &reason, &t.PickSequence,
		&t.Priority, &t.Status, &assignedTo, &from, &createdBy, &t.CreatedAt, &t.UpdatedAt,
		&t.AssignedAt, &t.StartedAt, &t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	t.ShortReason = deref(reason)
	t.AssignedTo = deref(assignedTo)
	t.ReallocatedFromTaskID = deref(from)
	t.CreatedBy = deref(createdBy)
	return &t, nil
}

func scanTaskRows(rows pgx.Rows) (*entity.PickTask, error) { return scanTask(rows) }

// Create persiste una tarea.
func (r *PickTaskRepo) Create(ctx context.Context, t *entity.PickTask) error {
	query := `INSERT INTO pick_tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27, $28)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Code, t.WaveID, t.OrderID, t.OrderLineID, t.AllocationID, t.InventoryRecordID, t.SKUID,
		t.Location.Code, t.Location.Zone, t.Location.Aisle, t.Location.Rack, t.Location.Level,
		t.QtyToPick, t.QtyPicked, t.QtyShort, nullable(t.ShortReason), t.PickSequence, t.Priority,
		t.Status, nullable(t.AssignedTo), nullable(t.ReallocatedFromTaskID), nullable(t.CreatedBy),
		t.CreatedAt, t.UpdatedAt, t.AssignedAt, t.StartedAt, t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("create pick task: %w", err)
	}
	return nil
}

// GetByID obtiene una tarea por ID.
func (r *PickTaskRepo) GetByID(ctx context.Context, id string) (*entity.PickTask, error) {
	return r.get(ctx, `SELECT`+taskColumns+` FROM pick_tasks WHERE id = $1`, id)
}

// GetForUpdate obtiene la tarea y bloquea la fila.
func (r *PickTaskRepo) GetForUpdate(ctx context.Context, id string) (*entity.PickTask, error) {
	return r.get(ctx, `SELECT`+taskColumns+` FROM pick_tasks WHERE id = $1 FOR UPDATE`, id)
}

func (r *PickTaskRepo) get(ctx context.Context, query string, args ...any) (*entity.PickTask, error) {
	t, err := scanTask(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pick task: %w", err)
	}
	return t, nil
}

// Update persiste cantidades, estado, asignación y marcas de tiempo.
func (r *PickTaskRepo) Update(ctx context.Context, t *entity.PickTask) error {
	query := `
		UPDATE pick_tasks SET qty_picked = $2, qty_short = $3, short_reason = $4, pick_sequence = $5,
			priority = $6, status = $7, assigned_to = $8, updated_at = $9, assigned_at = $10,
			started_at = $11, completed_at = $12
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, t.ID, t.QtyPicked, t.QtyShort, nullable(t.ShortReason), t.PickSequence,
		t.Priority, t.Status, nullable(t.AssignedTo), t.UpdatedAt, t.AssignedAt, t.StartedAt, t.CompletedAt)
	if err != nil {
		return fmt.Errorf("update pick task: %w", err)
	}
	return nil
}

// ListByWave tareas de la ola en orden de recorrido.
func (r *PickTaskRepo) ListByWave(ctx context.Context, waveID string) ([]*entity.PickTask, error) {
	return r.list(ctx, `SELECT`+taskColumns+` FROM pick_tasks WHERE wave_id = $1 ORDER BY pick_sequence, code`, waveID)
}

// ListByAllocation tareas generadas desde una reserva.
func (r *PickTaskRepo) ListByAllocation(ctx context.Context, allocationID string) ([]*entity.PickTask, error) {
	return r.list(ctx, `SELECT`+taskColumns+` FROM pick_tasks WHERE allocation_id = $1 ORDER BY created_at, code`, allocationID)
}

func (r *PickTaskRepo) list(ctx context.Context, query, arg string) ([]*entity.PickTask, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list pick tasks: %w", err)
	}
	out, err := collect(rows, scanTaskRows)
	if err != nil {
		return nil, fmt.Errorf("scan pick tasks: %w", err)
	}
	return out, nil
}

// ClaimNextForUpdate siguiente tarea PENDING de una ola en piso; las filas ya
// bloqueadas por otro operario se saltan (SKIP LOCKED). waveID vacío = cualquier ola.
func (r *PickTaskRepo) ClaimNextForUpdate(ctx context.Context, warehouseID, waveID string) (*entity.PickTask, error) {
	query := `SELECT` + prefixed("t", taskColumns) + `
		FROM pick_tasks t JOIN waves w ON w.id = t.wave_id
		WHERE t.status = 'PENDING' AND w.warehouse_id = $1
		  AND w.status IN ('RELEASED', 'IN_PROGRESS')
		  AND ($2 = '' OR t.wave_id = $2)
		ORDER BY t.priority, t.pick_sequence, t.id
		LIMIT 1
		FOR UPDATE OF t SKIP LOCKED`
	return r.get(ctx, query, warehouseID, waveID)
}
