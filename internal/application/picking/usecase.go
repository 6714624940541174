package picking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Fulfillment-api/internal/application/allocation"
	"github.com/jhoicas/Fulfillment-api/internal/application/dto"
	"github.com/jhoicas/Fulfillment-api/internal/application/ports"
	"github.com/jhoicas/Fulfillment-api/internal/application/progress"
	"github.com/jhoicas/Fulfillment-api/internal/domain"
	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
	"github.com/jhoicas/Fulfillment-api/internal/domain/inventory"
	"github.com/jhoicas/Fulfillment-api/internal/domain/picking"
	"github.com/jhoicas/Fulfillment-api/pkg/logger"
)

const (
	taskCodePrefix       = "PT"
	allocationCodePrefix = "AL"
)

// Resultados de reasignación para métricas.
const (
	ReallocationDone      = "reallocated"
	ReallocationNoStock   = "no_candidate"
	ReallocationSkipped   = "skipped"
	reallocationRuleLabel = "REALLOCATION"
)

// UseCase ejecución de tareas de picking y recuperación de faltantes.
type UseCase struct {
	txRunner  ports.TxRunner
	sequences ports.SequenceGenerator
	publisher ports.EventPublisher
	metrics   ports.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso de picking.
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
		log:       log.Named("picking"),
		now:       time.Now,
	}
}

// AssignTask PENDING → ASSIGNED para el operario indicado.
func (uc *UseCase) AssignTask(ctx context.Context, taskID, workerID string) (*dto.TaskResponse, error) {
	if workerID == "" {
		return nil, fmt.Errorf("worker_id requerido: %w", domain.ErrInvalidInput)
	}
	var out dto.TaskResponse
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		t, err := repos.Tasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("tarea %s: %w", taskID, domain.ErrNotFound)
		}
		if t.Status != entity.TaskStatusPending {
			return fmt.Errorf("tarea en estado %s no se puede asignar: %w", t.Status, domain.ErrInvalidState)
		}
		assign(t, workerID, uc.now())
		if err := repos.Tasks.Update(ctx, t); err != nil {
			return err
		}
		out = dto.ToTaskResponse(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("task_id", taskID).Str("worker", workerID).Msg("tarea asignada")
	return &out, nil
}

// ClaimNextTask asigna al operario la siguiente tarea PENDING (prioridad, luego
// secuencia) de una ola liberada. Las tareas bloqueadas por otro operario se saltan.
func (uc *UseCase) ClaimNextTask(ctx context.Context, warehouseID, waveID, workerID string) (*dto.TaskResponse, error) {
	if warehouseID == "" || workerID == "" {
		return nil, fmt.Errorf("warehouse_id y worker_id requeridos: %w", domain.ErrInvalidInput)
	}
	var out dto.TaskResponse
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		t, err := repos.Tasks.ClaimNextForUpdate(ctx, warehouseID, waveID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("sin tareas disponibles: %w", domain.ErrNotFound)
		}
		assign(t, workerID, uc.now())
		if err := repos.Tasks.Update(ctx, t); err != nil {
			return err
		}
		out = dto.ToTaskResponse(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("task_id", out.ID).Str("worker", workerID).Msg("tarea reclamada")
	return &out, nil
}

func assign(t *entity.PickTask, workerID string, now time.Time) {
	t.Status = entity.TaskStatusAssigned
	t.AssignedTo = workerID
	t.AssignedAt = &now
	t.UpdatedAt = now
}

// StartPicking ASSIGNED → IN_PROGRESS. El primer inicio pasa la ola a IN_PROGRESS.
func (uc *UseCase) StartPicking(ctx context.Context, taskID, actor string) (*dto.TaskResponse, error) {
	var out dto.TaskResponse
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		peek, err := repos.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if peek == nil {
			return fmt.Errorf("tarea %s: %w", taskID, domain.ErrNotFound)
		}
		w, err := repos.Waves.GetForUpdate(ctx, peek.WaveID)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("ola %s: %w", peek.WaveID, domain.ErrNotFound)
		}
		if w.Status != entity.WaveStatusReleased && w.Status != entity.WaveStatusInProgress {
			return fmt.Errorf("ola en estado %s: %w", w.Status, domain.ErrInvalidState)
		}
		t, err := repos.Tasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if t.Status != entity.TaskStatusAssigned {
			return fmt.Errorf("tarea en estado %s no se puede iniciar: %w", t.Status, domain.ErrInvalidState)
		}
		now := uc.now()
		t.Status = entity.TaskStatusInProgress
		t.StartedAt = &now
		t.UpdatedAt = now
		if t.AssignedTo == "" {
			t.AssignedTo = actor
		}
		if err := repos.Tasks.Update(ctx, t); err != nil {
			return err
		}
		if w.Status == entity.WaveStatusReleased {
			w.Status = entity.WaveStatusInProgress
			w.StartedAt = &now
			w.UpdatedAt = now
			if err := repos.Waves.Update(ctx, w); err != nil {
				return err
			}
		}
		out = dto.ToTaskResponse(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CompletePicking cierra una tarea IN_PROGRESS con lo pickeado. Un faltante libera
// el remanente de la reserva y, si el motivo lo permite, intenta reasignar el
// faltante a otro registro del mismo SKU con una tarea nueva al final del recorrido.
// Todo ocurre en una sola transacción; un qtyPicked fuera de rango no muta nada.
func (uc *UseCase) CompletePicking(ctx context.Context, taskID string, qtyPicked int, shortReason, actor string) (*dto.CompletePickingResponse, error) {
	if qtyPicked < 0 {
		return nil, fmt.Errorf("qty_picked negativo: %w", domain.ErrInvalidInput)
	}
	if shortReason != "" && !entity.IsShortReason(shortReason) {
		return nil, fmt.Errorf("short_reason %q desconocido: %w", shortReason, domain.ErrInvalidInput)
	}

	var (
		out      dto.CompletePickingResponse
		events   []ports.Event
		task     *entity.PickTask
		outcome  string
		waveDone bool
	)
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		events = events[:0]
		peek, err := repos.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if peek == nil {
			return fmt.Errorf("tarea %s: %w", taskID, domain.ErrNotFound)
		}

		// orden de bloqueo: ola → tarea → orden → reserva → registros
		w, err := repos.Waves.GetForUpdate(ctx, peek.WaveID)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("ola %s: %w", peek.WaveID, domain.ErrNotFound)
		}
		t, err := repos.Tasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if qtyPicked > t.QtyToPick {
			return fmt.Errorf("qty_picked %d mayor que qty_to_pick %d: %w", qtyPicked, t.QtyToPick, domain.ErrInvalidInput)
		}
		if t.Status != entity.TaskStatusInProgress {
			return fmt.Errorf("tarea en estado %s no se puede completar: %w", t.Status, domain.ErrInvalidState)
		}
		order, err := repos.Orders.GetForUpdate(ctx, t.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("orden %s: %w", t.OrderID, domain.ErrNotFound)
		}
		a, err := repos.Allocations.GetForUpdate(ctx, t.AllocationID)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("reserva %s: %w", t.AllocationID, domain.ErrNotFound)
		}
		record, err := repos.Inventory.GetForUpdate(ctx, t.InventoryRecordID)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("registro %s: %w", t.InventoryRecordID, domain.ErrNotFound)
		}

		now := uc.now()
		txID := uuid.New().String()
		short := t.QtyToPick - qtyPicked

		// 1. tarea
		t.QtyPicked = qtyPicked
		t.QtyShort = short
		t.CompletedAt = &now
		t.UpdatedAt = now
		if short > 0 {
			t.Status = entity.TaskStatusShortPick
			t.ShortReason = shortReason
			if t.ShortReason == "" {
				t.ShortReason = entity.ShortReasonOutOfStock
			}
		} else {
			t.Status = entity.TaskStatusCompleted
			t.ShortReason = ""
		}
		if err := repos.Tasks.Update(ctx, t); err != nil {
			return err
		}

		// 2. reserva y registro
		released := a.Consume(qtyPicked, short, now)
		if err := repos.Allocations.Update(ctx, a); err != nil {
			return err
		}
		record.OnHandQty -= qtyPicked
		record.AllocatedQty -= qtyPicked + released
		if record.AllocatedQty < 0 {
			record.AllocatedQty = 0
		}
		record.UpdatedAt = now
		if err := repos.Inventory.UpdateQuantities(ctx, record); err != nil {
			return err
		}
		if err := uc.recordMovements(ctx, repos, t, record, qtyPicked, released, txID, actor, now); err != nil {
			return err
		}

		// 3. candidato de reasignación
		var candidate *entity.InventoryRecord
		switch {
		case short == 0:
		case t.IsReallocation() || !entity.ShortReasonAllowsReallocation(t.ShortReason):
			outcome = ReallocationSkipped
		default:
			candidate, err = uc.findCandidate(ctx, repos, t, w.WarehouseID)
			if err != nil {
				return err
			}
			outcome = ReallocationNoStock
		}

		// 4. línea y orden
		line := findLine(order, t.OrderLineID)
		if line == nil {
			return fmt.Errorf("línea %s: %w", t.OrderLineID, domain.ErrNotFound)
		}
		line.PickedQty += qtyPicked
		line.ShortQty += short

		if candidate != nil {
			newTask, qty, err := uc.reallocate(ctx, repos, w, t, line, candidate, short, actor, txID, now)
			if err != nil {
				return err
			}
			outcome = ReallocationDone
			out.Reallocated = true
			out.ReallocatedQty = qty
			nt := dto.ToTaskResponse(newTask)
			out.NewTask = &nt
		}

		if err := progress.RefreshLine(ctx, repos, line, now); err != nil {
			return err
		}
		if err := progress.UpdateOrderPickTotals(ctx, repos, order, now); err != nil {
			return err
		}

		// 5. progreso de la ola (puede cerrar ola y órdenes)
		wp, err := progress.UpdateWaveProgress(ctx, repos, w, now)
		if err != nil {
			return err
		}
		waveDone = wp.Completed

		task = t
		out.Task = dto.ToTaskResponse(t)
		out.QtyShort = short
		out.WaveStatus = w.Status
		out.WaveCompleted = wp.Completed

		if short > 0 {
			events = append(events, ports.Event{
				Type:        ports.EventPickShort,
				Subject:     t.ID,
				WarehouseID: w.WarehouseID,
				Actor:       actor,
				OccurredAt:  now,
				Data: map[string]any{
					"order_id":        t.OrderID,
					"sku_id":          t.SKUID,
					"qty_short":       short,
					"reason":          t.ShortReason,
					"reallocated":     out.Reallocated,
					"reallocated_qty": out.ReallocatedQty,
				},
			})
		}
		for _, id := range wp.PickedOrderIDs {
			events = append(events, ports.Event{
				Type:        ports.EventOrderPicked,
				Subject:     id,
				WarehouseID: w.WarehouseID,
				Actor:       actor,
				OccurredAt:  now,
				Data:        map[string]any{"wave_id": w.ID},
			})
		}
		if wp.Completed {
			events = append(events, ports.Event{
				Type:        ports.EventWaveCompleted,
				Subject:     w.ID,
				WarehouseID: w.WarehouseID,
				Actor:       actor,
				OccurredAt:  now,
				Data:        map[string]any{"total_tasks": w.TotalTasks, "picked_units": w.PickedUnits},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.TaskCompleted(task.Status, task.QtyPicked)
	if task.QtyShort > 0 {
		uc.metrics.ShortPick(task.ShortReason, task.QtyShort)
		uc.metrics.Reallocation(outcome)
		ev := uc.log.Info()
		if !out.Reallocated {
			ev = uc.log.Warn()
		}
		ev.Str("task_id", task.ID).
			Str("reason", task.ShortReason).
			Int("qty_short", task.QtyShort).
			Str("reallocation", outcome).
			Msg("faltante en picking")
	}
	if waveDone {
		uc.metrics.WaveCompleted()
		uc.log.Info().Str("wave_id", task.WaveID).Msg("ola completada")
	}
	if len(events) > 0 {
		if err := uc.publisher.Publish(ctx, events...); err != nil {
			uc.log.Warn().Err(err).Str("event", events[0].Type).Msg("publicación de evento fallida")
		}
	}
	return &out, nil
}

// findCandidate primer registro FIFO con disponible del mismo SKU, excluyendo el
// registro pickeado y todos los ya reservados para la línea.
func (uc *UseCase) findCandidate(ctx context.Context, repos ports.Repositories, t *entity.PickTask, warehouseID string) (*entity.InventoryRecord, error) {
	allocs, err := repos.Allocations.ListByLine(ctx, t.OrderLineID)
	if err != nil {
		return nil, err
	}
	exclude := []string{t.InventoryRecordID}
	for _, a := range allocs {
		if a.InventoryRecordID != t.InventoryRecordID {
			exclude = append(exclude, a.InventoryRecordID)
		}
	}
	return repos.Inventory.FindReallocationCandidateForUpdate(ctx, warehouseID, t.SKUID, exclude)
}

// reallocate reserva min(short, disponible) en el candidato y crea la tarea de
// reposición con prioridad máxima al final del recorrido de la ola.
func (uc *UseCase) reallocate(
	ctx context.Context,
	repos ports.Repositories,
	w *entity.Wave,
	from *entity.PickTask,
	line *entity.OrderLine,
	candidate *entity.InventoryRecord,
	short int,
	actor, txID string,
	now time.Time,
) (*entity.PickTask, int, error) {
	qty := min(short, candidate.Available())
	code, err := repos.Codes(uc.sequences).Next(ctx, allocationCodePrefix)
	if err != nil {
		return nil, 0, fmt.Errorf("código de reserva: %w", err)
	}
	a, err := allocation.Reserve(ctx, repos, line, candidate, qty, code, actor, txID, now)
	if err != nil {
		return nil, 0, err
	}
	uc.metrics.AllocationCreated(reallocationRuleLabel, qty)

	tasks, err := repos.Tasks.ListByWave(ctx, w.ID)
	if err != nil {
		return nil, 0, err
	}
	taskCode, err := repos.Codes(uc.sequences).Next(ctx, taskCodePrefix)
	if err != nil {
		return nil, 0, fmt.Errorf("código de tarea: %w", err)
	}
	nt := &entity.PickTask{
		ID:                    uuid.New().String(),
		Code:                  taskCode,
		WaveID:                w.ID,
		OrderID:               from.OrderID,
		OrderLineID:           from.OrderLineID,
		AllocationID:          a.ID,
		InventoryRecordID:     candidate.ID,
		SKUID:                 candidate.SKUID,
		Location:              candidate.Location,
		QtyToPick:             qty,
		PickSequence:          picking.NextSequence(tasks),
		Priority:              picking.TaskPriorityReallocation,
		Status:                entity.TaskStatusPending,
		ReallocatedFromTaskID: from.ID,
		CreatedBy:             actor,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := repos.Tasks.Create(ctx, nt); err != nil {
		return nil, 0, err
	}
	return nt, qty, nil
}

// recordMovements PICK por lo pickeado (valorizado al costo unitario del registro)
// y UNRESERVE por el remanente liberado de un faltante.
func (uc *UseCase) recordMovements(
	ctx context.Context,
	repos ports.Repositories,
	t *entity.PickTask,
	record *entity.InventoryRecord,
	picked, released int,
	txID, actor string,
	now time.Time,
) error {
	if picked > 0 {
		mov := &entity.InventoryMovement{
			TransactionID:     txID,
			InventoryRecordID: record.ID,
			SKUID:             record.SKUID,
			WarehouseID:       record.WarehouseID,
			Type:              entity.MovementTypePick,
			Quantity:          -picked,
			UnitCost:          record.UnitCost,
			TotalCost:         inventory.ExtendedCost(record.UnitCost, picked),
			Reference:         t.ID,
			CreatedAt:         now,
			CreatedBy:         actor,
		}
		if err := repos.Movements.Create(ctx, mov); err != nil {
			return err
		}
	}
	if released > 0 {
		mov := &entity.InventoryMovement{
			TransactionID:     txID,
			InventoryRecordID: record.ID,
			SKUID:             record.SKUID,
			WarehouseID:       record.WarehouseID,
			Type:              entity.MovementTypeUnreserve,
			Quantity:          -released,
			Reference:         t.ID,
			CreatedAt:         now,
			CreatedBy:         actor,
		}
		if err := repos.Movements.Create(ctx, mov); err != nil {
			return err
		}
	}
	return nil
}

func findLine(order *entity.Order, lineID string) *entity.OrderLine {
	for _, l := range order.Lines {
		if l.ID == lineID {
			return l
		}
	}
	return nil
}

// GetTask devuelve una tarea.
func (uc *UseCase) GetTask(ctx context.Context, taskID string) (*dto.TaskResponse, error) {
	var out dto.TaskResponse
	err := uc.txRunner.Run(ctx, func(repos ports.Repositories) error {
		t, err := repos.Tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("tarea %s: %w", taskID, domain.ErrNotFound)
		}
		out = dto.ToTaskResponse(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
