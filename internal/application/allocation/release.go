package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Fulfillment-api/internal/application/dto"
	"github.com/jhoicas/Fulfillment-api/internal/application/ports"
	"github.com/jhoicas/Fulfillment-api/internal/application/progress"
	"github.com/jhoicas/Fulfillment-api/internal/domain"
	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
)

// Motivos de liberación usados por el propio motor.
const (
	ReleaseReasonOrderCancelled = "ORDER_CANCELLED"
	ReleaseReasonManual         = "MANUAL"
)

// ReleaseAllocation libera una reserva ACTIVE: devuelve remaining_qty al registro,
// marca RELEASED, recalcula la línea y los totales de la orden.
// Una reserva en otro estado devuelve ErrInvalidState sin tocar contadores.
func (uc *UseCase) ReleaseAllocation(ctx context.Context, allocationID, reason, actor string) (*dto.AllocationResponse, error) {
	if reason == "" {
		reason = ReleaseReasonManual
	}
	var out dto.AllocationResponse
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		peek, err := repos.Allocations.GetByID(ctx, allocationID)
		if err != nil {
			return err
		}
		if peek == nil {
			return fmt.Errorf("reserva %s: %w", allocationID, domain.ErrNotFound)
		}
		// orden → reserva → registro, igual que AllocateOrder y CompletePicking
		order, err := repos.Orders.GetForUpdate(ctx, peek.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("orden %s: %w", peek.OrderID, domain.ErrNotFound)
		}
		if err := outsideActiveWave(ctx, repos, order.ID); err != nil {
			return err
		}
		a, err := repos.Allocations.GetForUpdate(ctx, allocationID)
		if err != nil {
			return err
		}
		now := uc.now()
		if _, err := uc.releaseOne(ctx, repos, a, reason, actor, uuid.New().String(), now); err != nil {
			return err
		}
		if err := uc.refreshOrder(ctx, repos, order, now); err != nil {
			return err
		}
		out = dto.ToAllocationResponse(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("allocation_id", allocationID).Str("reason", reason).Msg("reserva liberada")
	return &out, nil
}

// ReleaseOrderAllocations libera todas las reservas ACTIVE de la orden y recalcula sus totales.
func (uc *UseCase) ReleaseOrderAllocations(ctx context.Context, orderID, reason, actor string) (*dto.ReleaseOrderResponse, error) {
	if reason == "" {
		reason = ReleaseReasonManual
	}
	var out *dto.ReleaseOrderResponse
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		order, err := repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("orden %s: %w", orderID, domain.ErrNotFound)
		}
		if err := outsideActiveWave(ctx, repos, order.ID); err != nil {
			return err
		}
		now := uc.now()
		released, qty, err := uc.releaseAll(ctx, repos, order, reason, actor, now)
		if err != nil {
			return err
		}
		if err := uc.refreshOrder(ctx, repos, order, now); err != nil {
			return err
		}
		out = &dto.ReleaseOrderResponse{OrderID: order.ID, Status: order.Status, Released: released, ReleasedQty: qty}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", orderID).Int("released", out.Released).Msg("reservas de orden liberadas")
	return out, nil
}

// CancelOrder cancela una orden hasta PARTIAL_ALLOCATION liberando sus reservas.
// Una orden dentro de una ola activa debe salir de la ola (cancelándola) antes.
func (uc *UseCase) CancelOrder(ctx context.Context, orderID, reason, actor string) (*dto.OrderResponse, error) {
	var out dto.OrderResponse
	var warehouseID string
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		order, err := repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("orden %s: %w", orderID, domain.ErrNotFound)
		}
		if !order.IsCancellable() {
			return fmt.Errorf("orden en estado %s no se puede cancelar: %w", order.Status, domain.ErrInvalidState)
		}
		if err := outsideActiveWave(ctx, repos, orderID); err != nil {
			return err
		}
		warehouseID = order.WarehouseID
		now := uc.now()
		if _, _, err := uc.releaseAll(ctx, repos, order, ReleaseReasonOrderCancelled, actor, now); err != nil {
			return err
		}
		order.Status = entity.OrderStatusCancelled
		for _, l := range order.Lines {
			l.Status = entity.LineStatusCancelled
			if err := progress.RefreshLine(ctx, repos, l, now); err != nil {
				return err
			}
		}
		if err := progress.UpdateOrderPickTotals(ctx, repos, order, now); err != nil {
			return err
		}
		allocs, err := repos.Allocations.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		out = dto.ToOrderResponse(order, allocs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", orderID).Str("reason", reason).Msg("orden cancelada")
	uc.publish(ctx, ports.Event{
		Type:        ports.EventOrderCancelled,
		Subject:     orderID,
		WarehouseID: warehouseID,
		Actor:       actor,
		OccurredAt:  uc.now(),
		Data:        map[string]any{"reason": reason},
	})
	return &out, nil
}

// outsideActiveWave una orden dentro de una ola activa conserva sus reservas
// hasta que la ola termine o se cancele.
func outsideActiveWave(ctx context.Context, repos ports.Repositories, orderID string) error {
	waveID, err := repos.Waves.ActiveWaveForOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if waveID != "" {
		return fmt.Errorf("orden dentro de la ola activa %s: %w", waveID, domain.ErrInvalidState)
	}
	return nil
}

// GetOrder devuelve la orden con líneas y reservas.
func (uc *UseCase) GetOrder(ctx context.Context, orderID string) (*dto.OrderResponse, error) {
	var out dto.OrderResponse
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		order, err := repos.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("orden %s: %w", orderID, domain.ErrNotFound)
		}
		allocs, err := repos.Allocations.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		out = dto.ToOrderResponse(order, allocs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (uc *UseCase) releaseAll(
	ctx context.Context,
	repos ports.Repositories,
	order *entity.Order,
	reason, actor string,
	now time.Time,
) (released, qty int, err error) {
	allocs, err := repos.Allocations.ListByOrder(ctx, order.ID)
	if err != nil {
		return 0, 0, err
	}
	txID := uuid.New().String()
	for _, peek := range allocs {
		if peek.Status != entity.AllocationStatusActive {
			continue
		}
		a, err := repos.Allocations.GetForUpdate(ctx, peek.ID)
		if err != nil {
			return 0, 0, err
		}
		n, err := uc.releaseOne(ctx, repos, a, reason, actor, txID, now)
		if err != nil {
			return 0, 0, err
		}
		released++
		qty += n
	}
	return released, qty, nil
}

// releaseOne libera una reserva ya bloqueada y devuelve su porción no consumida al registro.
func (uc *UseCase) releaseOne(
	ctx context.Context,
	repos ports.Repositories,
	a *entity.Allocation,
	reason, actor, txID string,
	now time.Time,
) (int, error) {
	if a == nil {
		return 0, domain.ErrNotFound
	}
	if a.Status != entity.AllocationStatusActive {
		return 0, fmt.Errorf("reserva %s en estado %s: %w", a.ID, a.Status, domain.ErrInvalidState)
	}
	tasks, err := repos.Tasks.ListByAllocation(ctx, a.ID)
	if err != nil {
		return 0, err
	}
	for _, t := range tasks {
		if t.IsOpen() {
			return 0, fmt.Errorf("reserva %s con tarea abierta %s: %w", a.ID, t.Code, domain.ErrInvalidState)
		}
	}
	record, err := repos.Inventory.GetForUpdate(ctx, a.InventoryRecordID)
	if err != nil {
		return 0, err
	}
	if record == nil {
		return 0, fmt.Errorf("registro %s: %w", a.InventoryRecordID, domain.ErrNotFound)
	}

	qty := a.Release(reason, now)
	if err := repos.Allocations.Update(ctx, a); err != nil {
		return 0, err
	}
	record.AllocatedQty -= qty
	if record.AllocatedQty < 0 {
		record.AllocatedQty = 0
	}
	record.UpdatedAt = now
	if err := repos.Inventory.UpdateQuantities(ctx, record); err != nil {
		return 0, err
	}
	if qty > 0 {
		mov := &entity.InventoryMovement{
			TransactionID:     txID,
			InventoryRecordID: record.ID,
			SKUID:             record.SKUID,
			WarehouseID:       record.WarehouseID,
			Type:              entity.MovementTypeUnreserve,
			Quantity:          -qty,
			Reference:         a.ID,
			CreatedAt:         now,
			CreatedBy:         actor,
		}
		if err := repos.Movements.Create(ctx, mov); err != nil {
			return 0, err
		}
	}
	uc.metrics.AllocationReleased(reason, qty)
	return qty, nil
}

// refreshOrder recalcula líneas, estado de reserva (si la orden no está en piso) y totales.
func (uc *UseCase) refreshOrder(ctx context.Context, repos ports.Repositories, order *entity.Order, now time.Time) error {
	for _, l := range order.Lines {
		if err := progress.RefreshLine(ctx, repos, l, now); err != nil {
			return err
		}
	}
	if order.IsAllocatable() {
		order.Status = order.AllocationStatus()
	}
	return progress.UpdateOrderPickTotals(ctx, repos, order, now)
}
