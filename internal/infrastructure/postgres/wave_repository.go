package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Fulfillment-api/internal/domain"
	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
	"github.com/jhoicas/Fulfillment-api/internal/domain/repository"
)

var _ repository.WaveRepository = (*WaveRepo)(nil)

// WaveRepo olas y membresías sobre PostgreSQL.
type WaveRepo struct {
	q Querier
}

// NewWaveRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWaveRepository(q Querier) *WaveRepo {
	return &WaveRepo{q: q}
}

const waveColumns = `
	id, code, warehouse_id, name, status, total_orders, total_lines, total_units,
	picked_units, total_tasks, completed_tasks, cancel_reason, created_by, created_at,
	updated_at, released_at, started_at, completed_at, cancelled_at`

func scanWave(row pgx.Row) (*entity.Wave, error) {
	var w entity.Wave
	var reason, createdBy *string
	err := row.Scan(
		&w.ID, &w.Code, &w.WarehouseID, &w.Name, &w.Status, &w.TotalOrders, &w.TotalLines,
		&w.TotalUnits, &w.PickedUnits, &w.TotalTasks, &w.CompletedTasks, &reason, &createdBy,
		&w.CreatedAt, &w.UpdatedAt, &w.ReleasedAt, &w.StartedAt, &w.CompletedAt, &w.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	w.CancelReason = deref(reason)
	w.CreatedBy = deref(createdBy)
	return &w, nil
}

// Create persiste la ola.
func (r *WaveRepo) Create(ctx context.Context, w *entity.Wave) error {
	query := `INSERT INTO waves (` + waveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		w.ID, w.Code, w.WarehouseID, w.Name, w.Status, w.TotalOrders, w.TotalLines, w.TotalUnits,
		w.PickedUnits, w.TotalTasks, w.CompletedTasks, nullable(w.CancelReason), nullable(w.CreatedBy),
		w.CreatedAt, w.UpdatedAt, w.ReleasedAt, w.StartedAt, w.CompletedAt, w.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("create wave: %w", err)
	}
	return nil
}

// AddMember agrega una orden a la ola.
func (r *WaveRepo) AddMember(ctx context.Context, m *entity.WaveMembership) error {
	_, err := r.q.Exec(ctx, `INSERT INTO wave_orders (wave_id, order_id, added_at) VALUES ($1, $2, $3)`,
		m.WaveID, m.OrderID, m.AddedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("orden %s repetida en la ola: %w", m.OrderID, domain.ErrInvalidInput)
		}
		return fmt.Errorf("add wave member: %w", err)
	}
	return nil
}

// GetByID obtiene una ola por ID.
func (r *WaveRepo) GetByID(ctx context.Context, id string) (*entity.Wave, error) {
	return r.get(ctx, `SELECT`+waveColumns+` FROM waves WHERE id = $1`, id)
}

// GetForUpdate obtiene la ola y bloquea la fila.
func (r *WaveRepo) GetForUpdate(ctx context.Context, id string) (*entity.Wave, error) {
	return r.get(ctx, `SELECT`+waveColumns+` FROM waves WHERE id = $1 FOR UPDATE`, id)
}

func (r *WaveRepo) get(ctx context.Context, query, id string) (*entity.Wave, error) {
	w, err := scanWave(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wave: %w", err)
	}
	return w, nil
}

// Update persiste estado, contadores y marcas de tiempo.
func (r *WaveRepo) Update(ctx context.Context, w *entity.Wave) error {
	query := `
		UPDATE waves SET status = $2, picked_units = $3, total_tasks = $4, completed_tasks = $5,
			cancel_reason = $6, updated_at = $7, released_at = $8, started_at = $9,
			completed_at = $10, cancelled_at = $11
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, w.ID, w.Status, w.PickedUnits, w.TotalTasks, w.CompletedTasks,
		nullable(w.CancelReason), w.UpdatedAt, w.ReleasedAt, w.StartedAt, w.CompletedAt, w.CancelledAt)
	if err != nil {
		return fmt.Errorf("update wave: %w", err)
	}
	return nil
}

// ListMemberOrderIDs órdenes de la ola en orden de alta.
func (r *WaveRepo) ListMemberOrderIDs(ctx context.Context, waveID string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT order_id FROM wave_orders WHERE wave_id = $1 ORDER BY added_at, order_id`, waveID)
	if err != nil {
		return nil, fmt.Errorf("list wave members: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan wave members: %w", err)
	}
	return ids, nil
}

// ActiveWaveForOrder ola PENDING/RELEASED/IN_PROGRESS que contiene la orden, "" si ninguna.
func (r *WaveRepo) ActiveWaveForOrder(ctx context.Context, orderID string) (string, error) {
	query := `
		SELECT w.id FROM wave_orders wo JOIN waves w ON w.id = wo.wave_id
		WHERE wo.order_id = $1 AND w.status IN ('PENDING', 'RELEASED', 'IN_PROGRESS')
		LIMIT 1`
	var id string
	if err := r.q.QueryRow(ctx, query, orderID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("active wave for order: %w", err)
	}
	return id, nil
}
