package repository

import (
	"context"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
)

// OrderRepository puerto de persistencia para órdenes y sus líneas.
// La creación de órdenes y líneas la hace el sistema de captura (fuera de este servicio).
type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate bloquea la orden y sus líneas (SELECT FOR UPDATE) y las devuelve cargadas.
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	UpdateLine(ctx context.Context, line *entity.OrderLine) error
	// ListEligibleForWave órdenes ALLOCATED/PARTIAL_ALLOCATION sin ola activa.
	ListEligibleForWave(ctx context.Context, warehouseID string, limit int) ([]*entity.Order, error)
}
