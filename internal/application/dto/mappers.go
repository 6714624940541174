package dto

import "github.com/jhoicas/Fulfillment-api/internal/domain/entity"

// ToOrderResponse mapea una orden (con líneas cargadas) y sus reservas.
func ToOrderResponse(o *entity.Order, allocs []*entity.Allocation) OrderResponse {
	out := OrderResponse{
		ID:                  o.ID,
		Code:                o.Code,
		WarehouseID:         o.WarehouseID,
		ClientID:            o.ClientID,
		Status:              o.Status,
		Priority:            o.Priority,
		TotalLines:          o.TotalLines,
		TotalUnits:          o.TotalUnits,
		TotalAllocatedUnits: o.TotalAllocatedUnits,
		TotalPickedUnits:    o.TotalPickedUnits,
		Lines:               make([]OrderLineResponse, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, OrderLineResponse{
			ID:             l.ID,
			LineNumber:     l.LineNumber,
			SKUID:          l.SKUID,
			OrderedQty:     l.OrderedQty,
			AllocatedQty:   l.AllocatedQty,
			PickedQty:      l.PickedQty,
			ShortQty:       l.ShortQty,
			AllocationRule: l.Rule(),
			Status:         l.Status,
		})
	}
	for _, a := range allocs {
		out.Allocations = append(out.Allocations, ToAllocationResponse(a))
	}
	return out
}

// ToAllocationResponse mapea una reserva.
func ToAllocationResponse(a *entity.Allocation) AllocationResponse {
	return AllocationResponse{
		ID:                a.ID,
		Code:              a.Code,
		OrderID:           a.OrderID,
		OrderLineID:       a.OrderLineID,
		InventoryRecordID: a.InventoryRecordID,
		AllocatedQty:      a.AllocatedQty,
		ConsumedQty:       a.ConsumedQty,
		RemainingQty:      a.RemainingQty,
		Status:            a.Status,
		ReleaseReason:     a.ReleaseReason,
		CreatedAt:         a.CreatedAt,
		ReleasedAt:        a.ReleasedAt,
	}
}

// ToWaveResponse mapea una ola; orderIDs puede ser nil.
func ToWaveResponse(w *entity.Wave, orderIDs []string) WaveResponse {
	return WaveResponse{
		ID:             w.ID,
		Code:           w.Code,
		WarehouseID:    w.WarehouseID,
		Name:           w.Name,
		Status:         w.Status,
		TotalOrders:    w.TotalOrders,
		TotalLines:     w.TotalLines,
		TotalUnits:     w.TotalUnits,
		PickedUnits:    w.PickedUnits,
		TotalTasks:     w.TotalTasks,
		CompletedTasks: w.CompletedTasks,
		Progress:       w.Progress(),
		OrderIDs:       orderIDs,
		CancelReason:   w.CancelReason,
		CreatedAt:      w.CreatedAt,
		ReleasedAt:     w.ReleasedAt,
		StartedAt:      w.StartedAt,
		CompletedAt:    w.CompletedAt,
	}
}

// ToTaskResponse mapea una tarea de picking.
func ToTaskResponse(t *entity.PickTask) TaskResponse {
	return TaskResponse{
		ID:                    t.ID,
		Code:                  t.Code,
		WaveID:                t.WaveID,
		OrderID:               t.OrderID,
		OrderLineID:           t.OrderLineID,
		AllocationID:          t.AllocationID,
		InventoryRecordID:     t.InventoryRecordID,
		SKUID:                 t.SKUID,
		LocationCode:          t.Location.Code,
		Zone:                  t.Location.Zone,
		QtyToPick:             t.QtyToPick,
		QtyPicked:             t.QtyPicked,
		QtyShort:              t.QtyShort,
		ShortReason:           t.ShortReason,
		PickSequence:          t.PickSequence,
		Priority:              t.Priority,
		Status:                t.Status,
		AssignedTo:            t.AssignedTo,
		ReallocatedFromTaskID: t.ReallocatedFromTaskID,
		StartedAt:             t.StartedAt,
		CompletedAt:           t.CompletedAt,
	}
}
