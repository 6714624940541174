package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Fulfillment-api/internal/application/ports"
	"github.com/jhoicas/Fulfillment-api/internal/domain"
	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
)

// WaveProgress resultado de recalcular una ola.
type WaveProgress struct {
	Wave           *entity.Wave
	Completed      bool     // la ola pasó a COMPLETED en esta llamada
	PickedOrderIDs []string // órdenes que pasaron a PICKED
}

// RefreshLine recalcula allocated_qty y el estado de la línea desde sus reservas
// y la persiste. La orden dueña debe estar bloqueada por el caller.
func RefreshLine(ctx context.Context, repos ports.Repositories, line *entity.OrderLine, now time.Time) error {
	allocs, err := repos.Allocations.ListByLine(ctx, line.ID)
	if err != nil {
		return err
	}
	line.AllocatedQty = entity.SumCoverage(allocs)
	line.RecomputeStatus(entity.SumOpen(allocs))
	line.UpdatedAt = now
	return repos.Orders.UpdateLine(ctx, line)
}

// UpdateOrderPickTotals recalcula los totales de una orden ya bloqueada (GetForUpdate)
// desde sus líneas: total_picked_units = Σ picked_qty.
func UpdateOrderPickTotals(ctx context.Context, repos ports.Repositories, order *entity.Order, now time.Time) error {
	order.RecomputeTotals()
	order.UpdatedAt = now
	return repos.Orders.Update(ctx, order)
}

// UpdateWaveProgress recalcula los contadores de la ola desde pick_tasks:
// completed_tasks = count(COMPLETED, SHORT_PICK), picked_units = Σ qty_picked,
// total_tasks = tareas no canceladas (crece con las reasignaciones).
// Cuando completed == total la ola pasa a COMPLETED y sus órdenes a PICKED.
// La ola debe estar bloqueada por el caller.
func UpdateWaveProgress(ctx context.Context, repos ports.Repositories, wave *entity.Wave, now time.Time) (*WaveProgress, error) {
	tasks, err := repos.Tasks.ListByWave(ctx, wave.ID)
	if err != nil {
		return nil, err
	}
	total, done, picked := 0, 0, 0
	for _, t := range tasks {
		if t.Status == entity.TaskStatusCancelled {
			continue
		}
		total++
		if t.IsDone() {
			done++
		}
		picked += t.QtyPicked
	}
	wave.TotalTasks = total
	wave.CompletedTasks = done
	wave.PickedUnits = picked
	wave.UpdatedAt = now

	out := &WaveProgress{Wave: wave}
	inFloor := wave.Status == entity.WaveStatusReleased || wave.Status == entity.WaveStatusInProgress
	if inFloor && total > 0 && done == total {
		wave.Status = entity.WaveStatusCompleted
		wave.CompletedAt = &now
		out.Completed = true

		orderIDs, err := repos.Waves.ListMemberOrderIDs(ctx, wave.ID)
		if err != nil {
			return nil, err
		}
		for _, id := range orderIDs {
			picked, err := markOrderPicked(ctx, repos, id, now)
			if err != nil {
				return nil, err
			}
			if picked {
				out.PickedOrderIDs = append(out.PickedOrderIDs, id)
			}
		}
	}
	if err := repos.Waves.Update(ctx, wave); err != nil {
		return nil, err
	}
	return out, nil
}

func markOrderPicked(ctx context.Context, repos ports.Repositories, orderID string, now time.Time) (bool, error) {
	order, err := repos.Orders.GetForUpdate(ctx, orderID)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, fmt.Errorf("orden %s de la ola: %w", orderID, domain.ErrNotFound)
	}
	if order.Status != entity.OrderStatusPicking {
		return false, nil
	}
	for _, l := range order.Lines {
		if err := RefreshLine(ctx, repos, l, now); err != nil {
			return false, err
		}
	}
	order.Status = entity.OrderStatusPicked
	if err := UpdateOrderPickTotals(ctx, repos, order, now); err != nil {
		return false, err
	}
	return true, nil
}
