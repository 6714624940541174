package repository

import (
	"context"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
)

// InventoryMovementRepository puerto de auditoría de movimientos del ledger.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByRecord(ctx context.Context, recordID string, limit int) ([]*entity.InventoryMovement, error)
}
