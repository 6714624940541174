package repository

import (
	"context"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
)

// InventoryRecordRepository puerto del ledger de inventario (registros por ubicación/lote).
type InventoryRecordRepository interface {
	GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error)
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error)
	// ListCandidatesForUpdate bloquea los registros sanos con disponible > 0 de un SKU en una bodega.
	ListCandidatesForUpdate(ctx context.Context, warehouseID, skuID string) ([]*entity.InventoryRecord, error)
	// FindReallocationCandidateForUpdate primer registro FIFO sano con disponible > 0,
	// excluyendo los IDs dados. Devuelve nil si no hay candidato.
	FindReallocationCandidateForUpdate(ctx context.Context, warehouseID, skuID string, excludeIDs []string) (*entity.InventoryRecord, error)
	UpdateQuantities(ctx context.Context, record *entity.InventoryRecord) error
}
