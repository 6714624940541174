package wave

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
	"github.com/jhoicas/Fulfillment-api/internal/domain/picking"
	"github.com/jhoicas/Fulfillment-api/pkg/logger"
)

// Prefijos de código legible.
const (
	waveCodePrefix = "WV"
	taskCodePrefix = "PT"
)

// DefaultEligibleLimit tope de órdenes en la consulta de elegibles.
const DefaultEligibleLimit = 200

// UseCase planificación y liberación de olas: agrupa órdenes reservadas, genera
// una tarea de picking por reserva activa y las secuencia por ubicación.
type UseCase struct {
	txRunner  ports.TxRunner
	sequences ports.SequenceGenerator
	publisher ports.EventPublisher
	metrics   ports.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso de olas.
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
		log:       log.Named("wave"),
		now:       time.Now,
	}
}

// EligibleOrders órdenes ALLOCATED/PARTIAL_ALLOCATION que no están en una ola activa.
func (uc *UseCase) EligibleOrders(ctx context.Context, warehouseID string, limit int) (*dto.EligibleOrdersResponse, error) {
	if warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > DefaultEligibleLimit {
		limit = DefaultEligibleLimit
	}
	out := &dto.EligibleOrdersResponse{Items: []dto.OrderResponse{}}
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		orders, err := repos.Orders.ListEligibleForWave(ctx, warehouseID, limit)
		if err != nil {
			return err
		}
		for _, o := range orders {
			out.Items = append(out.Items, dto.ToOrderResponse(o, nil))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Total = len(out.Items)
	return out, nil
}

// CreateWave toma una foto de las órdenes elegidas: ola PENDING, membresías y
// contadores (órdenes, líneas, unidades) sumados sobre las órdenes incluidas.
func (uc *UseCase) CreateWave(ctx context.Context, in dto.CreateWaveRequest, actor string) (*dto.WaveResponse, error) {
	if in.WarehouseID == "" || len(in.OrderIDs) == 0 {
		return nil, domain.ErrInvalidInput
	}
	seen := make(map[string]bool, len(in.OrderIDs))
	for _, id := range in.OrderIDs {
		if id == "" || seen[id] {
			return nil, fmt.Errorf("order_ids vacío o repetido: %w", domain.ErrInvalidInput)
		}
		seen[id] = true
	}

	var out dto.WaveResponse
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		now := uc.now()
		code, err := repos.Codes(uc.sequences).Next(ctx, waveCodePrefix)
		if err != nil {
			return fmt.Errorf("código de ola: %w", err)
		}
		w := &entity.Wave{
			ID:          uuid.New().String(),
			Code:        code,
			WarehouseID: in.WarehouseID,
			Name:        in.Name,
			Status:      entity.WaveStatusPending,
			CreatedBy:   actor,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if w.Name == "" {
			w.Name = code
		}
		for _, id := range in.OrderIDs {
			order, err := repos.Orders.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if order == nil {
				return fmt.Errorf("orden %s: %w", id, domain.ErrNotFound)
			}
			if order.WarehouseID != in.WarehouseID {
				return fmt.Errorf("orden %s de otra bodega: %w", id, domain.ErrInvalidInput)
			}
			if !order.IsWaveEligible() {
				return fmt.Errorf("orden %s en estado %s: %w", id, order.Status, domain.ErrInvalidState)
			}
			active, err := repos.Waves.ActiveWaveForOrder(ctx, id)
			if err != nil {
				return err
			}
			if active != "" {
				return fmt.Errorf("orden %s ya está en la ola %s: %w", id, active, domain.ErrInvalidState)
			}
			w.TotalOrders++
			for _, l := range order.Lines {
				if l.Status == entity.LineStatusCancelled {
					continue
				}
				w.TotalLines++
				w.TotalUnits += l.OrderedQty
			}
		}
		if err := repos.Waves.Create(ctx, w); err != nil {
			return err
		}
		for _, id := range in.OrderIDs {
			if err := repos.Waves.AddMember(ctx, &entity.WaveMembership{WaveID: w.ID, OrderID: id, AddedAt: now}); err != nil {
				return err
			}
		}
		out = dto.ToWaveResponse(w, in.OrderIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("wave_id", out.ID).Str("code", out.Code).Int("orders", out.TotalOrders).Msg("ola creada")
	return &out, nil
}

// ReleaseWave libera una ola PENDING: una tarea por cada reserva ACTIVE de cada línea
// de cada orden, secuenciadas por ubicación (pick_sequence 1..N). Ola → RELEASED,
// órdenes → PICKING.
func (uc *UseCase) ReleaseWave(ctx context.Context, waveID, actor string) (*dto.WaveResponse, error) {
	var out dto.WaveResponse
	var warehouseID string
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		w, err := repos.Waves.GetForUpdate(ctx, waveID)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("ola %s: %w", waveID, domain.ErrNotFound)
		}
		if w.Status != entity.WaveStatusPending {
			return fmt.Errorf("ola en estado %s no se puede liberar: %w", w.Status, domain.ErrInvalidState)
		}
		warehouseID = w.WarehouseID
		now := uc.now()
		orderIDs, err := repos.Waves.ListMemberOrderIDs(ctx, w.ID)
		if err != nil {
			return err
		}

		var tasks []*entity.PickTask
		var orders []*entity.Order
		for _, id := range orderIDs {
			order, err := repos.Orders.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if order == nil {
				return fmt.Errorf("orden %s: %w", id, domain.ErrNotFound)
			}
			if !order.IsWaveEligible() {
				return fmt.Errorf("orden %s en estado %s: %w", id, order.Status, domain.ErrInvalidState)
			}
			orderTasks, err := uc.buildTasks(ctx, repos, w, order, actor, now)
			if err != nil {
				return err
			}
			tasks = append(tasks, orderTasks...)
			orders = append(orders, order)
		}
		if len(tasks) == 0 {
			return fmt.Errorf("ola sin reservas activas: %w", domain.ErrInvalidState)
		}

		picking.Sequence(tasks)
		for _, t := range tasks {
			if err := repos.Tasks.Create(ctx, t); err != nil {
				return err
			}
		}

		for _, order := range orders {
			order.Status = entity.OrderStatusPicking
			for _, l := range order.Lines {
				if l.Status != entity.LineStatusCancelled {
					l.Status = entity.LineStatusPicking
				}
				if err := progress.RefreshLine(ctx, repos, l, now); err != nil {
					return err
				}
			}
			if err := progress.UpdateOrderPickTotals(ctx, repos, order, now); err != nil {
				return err
			}
		}

		w.Status = entity.WaveStatusReleased
		w.ReleasedAt = &now
		if _, err := progress.UpdateWaveProgress(ctx, repos, w, now); err != nil {
			return err
		}
		out = dto.ToWaveResponse(w, orderIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.WaveReleased(out.TotalTasks)
	uc.log.Info().Str("wave_id", waveID).Int("tasks", out.TotalTasks).Msg("ola liberada")
	uc.publish(ctx, ports.Event{
		Type:        ports.EventWaveReleased,
		Subject:     waveID,
		WarehouseID: warehouseID,
		Actor:       actor,
		OccurredAt:  uc.now(),
		Data:        map[string]any{"total_tasks": out.TotalTasks, "order_ids": out.OrderIDs},
	})
	return &out, nil
}

// buildTasks una tarea PENDING por reserva ACTIVE con remanente.
func (uc *UseCase) buildTasks(
	ctx context.Context,
	repos ports.Repositories,
	w *entity.Wave,
	order *entity.Order,
	actor string,
	now time.Time,
) ([]*entity.PickTask, error) {
	allocs, err := repos.Allocations.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	priority := picking.PriorityForOrder(order.Priority)
	var tasks []*entity.PickTask
	for _, a := range allocs {
		if a.Status != entity.AllocationStatusActive || a.RemainingQty <= 0 {
			continue
		}
		record, err := repos.Inventory.GetByID(ctx, a.InventoryRecordID)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, fmt.Errorf("registro %s: %w", a.InventoryRecordID, domain.ErrNotFound)
		}
		code, err := repos.Codes(uc.sequences).Next(ctx, taskCodePrefix)
		if err != nil {
			return nil, fmt.Errorf("código de tarea: %w", err)
		}
		tasks = append(tasks, &entity.PickTask{
			ID:                uuid.New().String(),
			Code:              code,
			WaveID:            w.ID,
			OrderID:           order.ID,
			OrderLineID:       a.OrderLineID,
			AllocationID:      a.ID,
			InventoryRecordID: record.ID,
			SKUID:             a.SKUID,
			Location:          record.Location,
			QtyToPick:         a.RemainingQty,
			Priority:          priority,
			Status:            entity.TaskStatusPending,
			CreatedBy:         actor,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	return tasks, nil
}

// CancelWave cancela una ola PENDING o RELEASED. Las tareas PENDING/ASSIGNED pasan a
// CANCELLED y las órdenes vuelven a su estado de reserva; las reservas siguen ACTIVE
// para que las órdenes puedan entrar en otra ola.
func (uc *UseCase) CancelWave(ctx context.Context, waveID, reason, actor string) (*dto.WaveResponse, error) {
	var out dto.WaveResponse
	var warehouseID string
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		w, err := repos.Waves.GetForUpdate(ctx, waveID)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("ola %s: %w", waveID, domain.ErrNotFound)
		}
		if !w.IsCancellable() {
			return fmt.Errorf("ola en estado %s no se puede cancelar: %w", w.Status, domain.ErrInvalidState)
		}
		warehouseID = w.WarehouseID
		now := uc.now()

		tasks, err := repos.Tasks.ListByWave(ctx, w.ID)
		if err != nil {
			return err
		}
		for _, peek := range tasks {
			t, err := repos.Tasks.GetForUpdate(ctx, peek.ID)
			if err != nil {
				return err
			}
			if t.Status != entity.TaskStatusPending && t.Status != entity.TaskStatusAssigned {
				return fmt.Errorf("tarea %s en estado %s: %w", t.Code, t.Status, domain.ErrInvalidState)
			}
			t.Status = entity.TaskStatusCancelled
			t.UpdatedAt = now
			if err := repos.Tasks.Update(ctx, t); err != nil {
				return err
			}
		}

		orderIDs, err := repos.Waves.ListMemberOrderIDs(ctx, w.ID)
		if err != nil {
			return err
		}
		for _, id := range orderIDs {
			order, err := repos.Orders.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if order == nil {
				return fmt.Errorf("orden %s: %w", id, domain.ErrNotFound)
			}
			for _, l := range order.Lines {
				l.ResetToAllocationPhase()
				if err := progress.RefreshLine(ctx, repos, l, now); err != nil {
					return err
				}
			}
			if order.Status == entity.OrderStatusPicking || order.IsAllocatable() {
				order.Status = order.AllocationStatus()
			}
			if err := progress.UpdateOrderPickTotals(ctx, repos, order, now); err != nil {
				return err
			}
		}

		w.Status = entity.WaveStatusCancelled
		w.CancelReason = reason
		w.CancelledAt = &now
		if _, err := progress.UpdateWaveProgress(ctx, repos, w, now); err != nil {
			return err
		}
		out = dto.ToWaveResponse(w, orderIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("wave_id", waveID).Str("reason", reason).Msg("ola cancelada")
	uc.publish(ctx, ports.Event{
		Type:        ports.EventWaveCancelled,
		Subject:     waveID,
		WarehouseID: warehouseID,
		Actor:       actor,
		OccurredAt:  uc.now(),
		Data:        map[string]any{"reason": reason},
	})
	return &out, nil
}

// GetWave devuelve la ola con sus órdenes.
func (uc *UseCase) GetWave(ctx context.Context, waveID string) (*dto.WaveResponse, error) {
	var out dto.WaveResponse
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		w, err := repos.Waves.GetByID(ctx, waveID)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("ola %s: %w", waveID, domain.ErrNotFound)
		}
		orderIDs, err := repos.Waves.ListMemberOrderIDs(ctx, waveID)
		if err != nil {
			return err
		}
		out = dto.ToWaveResponse(w, orderIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListWaveTasks tareas de la ola en orden de recorrido.
func (uc *UseCase) ListWaveTasks(ctx context.Context, waveID string) (*dto.WaveTaskListResponse, error) {
	out := &dto.WaveTaskListResponse{WaveID: waveID, Items: []dto.TaskResponse{}}
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		w, err := repos.Waves.GetByID(ctx, waveID)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("ola %s: %w", waveID, domain.ErrNotFound)
		}
		tasks, err := repos.Tasks.ListByWave(ctx, waveID)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			out.Items = append(out.Items, dto.ToTaskResponse(t))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Total = len(out.Items)
	return out, nil
}

func (uc *UseCase) publish(ctx context.Context, events ...ports.Event) {
	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.log.Warn().Err(err).Str("event", events[0].Type).Msg("publicación de evento fallida")
	}
}
