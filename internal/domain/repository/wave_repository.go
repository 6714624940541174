package repository

import (
	"context"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
)

// WaveRepository puerto de persistencia para olas y su membresía.
type WaveRepository interface {
	Create(ctx context.Context, wave *entity.Wave) error
	AddMember(ctx context.Context, member *entity.WaveMembership) error
	GetByID(ctx context.Context, id string) (*entity.Wave, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Wave, error)
	Update(ctx context.Context, wave *entity.Wave) error
	ListMemberOrderIDs(ctx context.Context, waveID string) ([]string, error)
	// ActiveWaveForOrder ID de la ola activa (PENDING/RELEASED/IN_PROGRESS) que contiene la orden, "" si ninguna.
	ActiveWaveForOrder(ctx context.Context, orderID string) (string, error)
}
