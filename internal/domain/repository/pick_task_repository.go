package repository

import (
	"context"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
)

// PickTaskRepository puerto de persistencia para tareas de picking.
type PickTaskRepository interface {
	Create(ctx context.Context, task *entity.PickTask) error
	GetByID(ctx context.Context, id string) (*entity.PickTask, error)
	GetForUpdate(ctx context.Context, id string) (*entity.PickTask, error)
	Update(ctx context.Context, task *entity.PickTask) error
	// ListByWave tareas de la ola ordenadas por pick_sequence.
	ListByWave(ctx context.Context, waveID string) ([]*entity.PickTask, error)
	ListByAllocation(ctx context.Context, allocationID string) ([]*entity.PickTask, error)
	// ClaimNextForUpdate bloquea (SKIP LOCKED) la siguiente tarea PENDING de una ola liberada.
	// waveID vacío busca en toda la bodega. Devuelve nil si no hay tareas.
	ClaimNextForUpdate(ctx context.Context, warehouseID, waveID string) (*entity.PickTask, error)
}
