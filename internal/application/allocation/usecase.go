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
	policy "github.com/jhoicas/Fulfillment-api/internal/domain/allocation"
	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
	"github.com/jhoicas/Fulfillment-api/pkg/logger"
)

// Prefijo de código legible para reservas.
const allocationCodePrefix = "AL"

// UseCase motor de reservas: reserva inventario contra las líneas de una orden
// (FIFO/FEFO/LIFO, first-fit) y libera reservas. Cada operación corre en una sola
// transacción con bloqueo de fila (SELECT FOR UPDATE) sobre orden, líneas y registros.
type UseCase struct {
	txRunner  ports.TxRunner
	sequences ports.SequenceGenerator
	publisher ports.EventPublisher
	metrics   ports.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el motor de reservas.
func NewUseCase(
	txRunner ports.TxRunner,
	sequences ports.SequenceGenerator,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		sequences: sequences,
		publisher: publisher,
		metrics:   metrics,
		log:       log.Named("allocation"),
		now:       time.Now,
	}
}

// AllocateOrder reserva inventario para cada línea de la orden.
// Por línea: restante = ordered_qty - cobertura; si es <= 0 la línea se omite (idempotente).
// Sin candidatos la línea queda sub-reservada; no es error ni afecta a las demás líneas.
func (uc *UseCase) AllocateOrder(ctx context.Context, orderID, actor string) (*dto.AllocateOrderResponse, error) {
	var out *dto.AllocateOrderResponse
	var warehouseID string

	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		order, err := repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("orden %s: %w", orderID, domain.ErrNotFound)
		}
		if !order.IsAllocatable() {
			return fmt.Errorf("orden en estado %s no admite reserva: %w", order.Status, domain.ErrInvalidState)
		}
		warehouseID = order.WarehouseID
		now := uc.now()
		txID := uuid.New().String()

		out = &dto.AllocateOrderResponse{OrderID: order.ID, Lines: make([]dto.LineAllocationResult, 0, len(order.Lines))}
		for _, line := range order.Lines {
			if line.Status == entity.LineStatusCancelled {
				continue
			}
			res, err := uc.allocateLine(ctx, repos, order, line, actor, txID, now)
			if err != nil {
				return err
			}
			out.Lines = append(out.Lines, res)
		}

		order.Status = order.AllocationStatus()
		if err := progress.UpdateOrderPickTotals(ctx, repos, order, now); err != nil {
			return err
		}
		out.Status = order.Status
		out.FullyAllocated = order.Status == entity.OrderStatusAllocated
		out.PartiallyAllocated = order.Status == entity.OrderStatusPartialAllocation
		out.NoAllocation = order.TotalAllocatedUnits == 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	allocatedNow := 0
	for _, l := range out.Lines {
		allocatedNow += l.AllocatedNow
	}
	uc.log.Info().
		Str("order_id", orderID).
		Str("status", out.Status).
		Int("allocated_now", allocatedNow).
		Msg("reserva de orden")

	if allocatedNow > 0 {
		uc.publish(ctx, ports.Event{
			Type:        ports.EventOrderAllocated,
			Subject:     orderID,
			WarehouseID: warehouseID,
			Actor:       actor,
			OccurredAt:  uc.now(),
			Data: map[string]any{
				"status":          out.Status,
				"fully_allocated": out.FullyAllocated,
				"allocated_now":   allocatedNow,
			},
		})
	}
	return out, nil
}

func (uc *UseCase) allocateLine(
	ctx context.Context,
	repos ports.Repositories,
	order *entity.Order,
	line *entity.OrderLine,
	actor, txID string,
	now time.Time,
) (dto.LineAllocationResult, error) {
	res := dto.LineAllocationResult{
		LineID:     line.ID,
		SKUID:      line.SKUID,
		Rule:       line.Rule(),
		OrderedQty: line.OrderedQty,
	}
	existing, err := repos.Allocations.ListByLine(ctx, line.ID)
	if err != nil {
		return res, err
	}
	line.AllocatedQty = entity.SumCoverage(existing)
	demand := line.RemainingDemand()

	if demand > 0 {
		records, err := repos.Inventory.ListCandidatesForUpdate(ctx, order.WarehouseID, line.SKUID)
		if err != nil {
			return res, err
		}
		for _, p := range policy.Plan(line.Rule(), demand, records) {
			if _, err := uc.reserve(ctx, repos, line, p.Record, p.Qty, actor, txID, now); err != nil {
				return res, err
			}
			res.AllocatedNow += p.Qty
			res.Allocations++
			uc.metrics.AllocationCreated(line.Rule(), p.Qty)
		}
	}

	if err := progress.RefreshLine(ctx, repos, line, now); err != nil {
		return res, err
	}
	res.AllocatedTotal = line.AllocatedQty
	res.ShortQty = max(line.OrderedQty-line.AllocatedQty, 0)
	return res, nil
}

// reserve crea una Allocation sobre un registro ya bloqueado e incrementa su allocated_qty.
func (uc *UseCase) reserve(
	ctx context.Context,
	repos ports.Repositories,
	line *entity.OrderLine,
	record *entity.InventoryRecord,
	qty int,
	actor, txID string,
	now time.Time,
) (*entity.Allocation, error) {
	code, err := repos.Codes(uc.sequences).Next(ctx, allocationCodePrefix)
	if err != nil {
		return nil, fmt.Errorf("código de reserva: %w", err)
	}
	return Reserve(ctx, repos, line, record, qty, code, actor, txID, now)
}

// Reserve persiste la reserva, sube allocated_qty del registro y deja el movimiento RESERVE.
// También la usa la reasignación por faltante dentro de la transacción de picking.
func Reserve(
	ctx context.Context,
	repos ports.Repositories,
	line *entity.OrderLine,
	record *entity.InventoryRecord,
	qty int,
	code, actor, txID string,
	now time.Time,
) (*entity.Allocation, error) {
	if qty <= 0 || qty > record.Available() {
		return nil, fmt.Errorf("reserva de %d sobre disponible %d: %w", qty, record.Available(), domain.ErrInsufficientStock)
	}
	a := &entity.Allocation{
		ID:                uuid.New().String(),
		Code:              code,
		OrderID:           line.OrderID,
		OrderLineID:       line.ID,
		InventoryRecordID: record.ID,
		SKUID:             record.SKUID,
		WarehouseID:       record.WarehouseID,
		AllocatedQty:      qty,
		RemainingQty:      qty,
		Status:            entity.AllocationStatusActive,
		CreatedBy:         actor,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := repos.Allocations.Create(ctx, a); err != nil {
		return nil, err
	}
	record.AllocatedQty += qty
	record.UpdatedAt = now
	if err := repos.Inventory.UpdateQuantities(ctx, record); err != nil {
		return nil, err
	}
	mov := &entity.InventoryMovement{
		TransactionID:     txID,
		InventoryRecordID: record.ID,
		SKUID:             record.SKUID,
		WarehouseID:       record.WarehouseID,
		Type:              entity.MovementTypeReserve,
		Quantity:          qty,
		Reference:         a.ID,
		CreatedAt:         now,
		CreatedBy:         actor,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return a, nil
}

func (uc *UseCase) publish(ctx context.Context, events ...ports.Event) {
	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.log.Warn().Err(err).Str("event", events[0].Type).Msg("publicación de evento fallida")
	}
}
