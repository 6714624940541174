package repository

import (
	"context"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
)

// AllocationRepository puerto de persistencia para reservas. No existe Delete.
type AllocationRepository interface {
	Create(ctx context.Context, allocation *entity.Allocation) error
	GetByID(ctx context.Context, id string) (*entity.Allocation, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Allocation, error)
	Update(ctx context.Context, allocation *entity.Allocation) error
	ListByLine(ctx context.Context, lineID string) ([]*entity.Allocation, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.Allocation, error)
}
