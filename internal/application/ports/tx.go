package ports

import (
	"context"

	"github.com/jhoicas/Fulfillment-api/internal/domain/repository"
)

// Repositories agrupa los repositorios atados a una misma transacción.
type Repositories struct {
	Orders      repository.OrderRepository
	Inventory   repository.InventoryRecordRepository
	Allocations repository.AllocationRepository
	Waves       repository.WaveRepository
	Tasks       repository.PickTaskRepository
	Movements   repository.InventoryMovementRepository
	// Sequences generador atado a la misma conexión; nil usa el del caso de uso.
	Sequences SequenceGenerator
}

// Codes devuelve el generador de la tx si existe, si no fallback.
func (r Repositories) Codes(fallback SequenceGenerator) SequenceGenerator {
	if r.Sequences != nil {
		return r.Sequences
	}
	return fallback
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Cualquier error devuelto por fn hace Rollback; ningún efecto parcial queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}

// SequenceGenerator entrega códigos legibles y únicos por prefijo (WV-000001, PT-000001...).
type SequenceGenerator interface {
	Next(ctx context.Context, prefix string) (string, error)
}
