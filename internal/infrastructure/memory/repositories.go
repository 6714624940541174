package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
	"github.com/jhoicas/Fulfillment-api/internal/domain/repository"
)

var (
	_ repository.OrderRepository             = (*orderRepo)(nil)
	_ repository.InventoryRecordRepository   = (*inventoryRepo)(nil)
	_ repository.AllocationRepository        = (*allocationRepo)(nil)
	_ repository.WaveRepository              = (*waveRepo)(nil)
	_ repository.PickTaskRepository          = (*taskRepo)(nil)
	_ repository.InventoryMovementRepository = (*movementRepo)(nil)
)

// Los repos solo se usan dentro de Store.Run, con el mutex tomado. Devuelven copias:
// un cambio solo llega al estado a través de Update/Create, como en la BD.

type orderRepo struct{ s *Store }

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, nil
	}
	return r.load(o), nil
}

func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) load(o *entity.Order) *entity.Order {
	c := *o
	c.Lines = nil
	for _, l := range r.s.data.lines {
		if l.OrderID == o.ID {
			lc := *l
			c.Lines = append(c.Lines, &lc)
		}
	}
	sort.Slice(c.Lines, func(i, j int) bool { return c.Lines[i].LineNumber < c.Lines[j].LineNumber })
	return &c
}

func (r *orderRepo) Update(_ context.Context, order *entity.Order) error {
	if _, ok := r.s.data.orders[order.ID]; !ok {
		return fmt.Errorf("orden %s no existe", order.ID)
	}
	c := *order
	c.Lines = nil
	r.s.data.orders[order.ID] = &c
	return nil
}

func (r *orderRepo) UpdateLine(_ context.Context, line *entity.OrderLine) error {
	if _, ok := r.s.data.lines[line.ID]; !ok {
		return fmt.Errorf("línea %s no existe", line.ID)
	}
	c := *line
	r.s.data.lines[line.ID] = &c
	return nil
}

func (r *orderRepo) ListEligibleForWave(ctx context.Context, warehouseID string, limit int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.s.data.orders {
		if o.WarehouseID != warehouseID || !o.IsWaveEligible() {
			continue
		}
		waveID, err := (&waveRepo{s: r.s}).ActiveWaveForOrder(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if waveID != "" {
			continue
		}
		out = append(out, r.load(o))
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := entity.PriorityRank(out[i].Priority), entity.PriorityRank(out[j].Priority)
		if pi != pj {
			return pi < pj
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type inventoryRepo struct{ s *Store }

func (r *inventoryRepo) GetByID(_ context.Context, id string) (*entity.InventoryRecord, error) {
	rec, ok := r.s.data.records[id]
	if !ok {
		return nil, nil
	}
	c := *rec
	return &c, nil
}

func (r *inventoryRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.GetByID(ctx, id)
}

func (r *inventoryRepo) ListCandidatesForUpdate(_ context.Context, warehouseID, skuID string) ([]*entity.InventoryRecord, error) {
	var out []*entity.InventoryRecord
	for _, rec := range r.s.data.records {
		if rec.WarehouseID == warehouseID && rec.SKUID == skuID && rec.IsAllocatable() {
			c := *rec
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *inventoryRepo) FindReallocationCandidateForUpdate(ctx context.Context, warehouseID, skuID string, excludeIDs []string) (*entity.InventoryRecord, error) {
	all, err := r.ListCandidatesForUpdate(ctx, warehouseID, skuID)
	if err != nil {
		return nil, err
	}
	var best *entity.InventoryRecord
	for _, rec := range all {
		if slices.Contains(excludeIDs, rec.ID) {
			continue
		}
		if best == nil || rec.ReceivedAt.Before(best.ReceivedAt) ||
			(rec.ReceivedAt.Equal(best.ReceivedAt) && rec.ID < best.ID) {
			best = rec
		}
	}
	return best, nil
}

func (r *inventoryRepo) UpdateQuantities(_ context.Context, record *entity.InventoryRecord) error {
	cur, ok := r.s.data.records[record.ID]
	if !ok {
		return fmt.Errorf("registro %s no existe", record.ID)
	}
	cur.OnHandQty = record.OnHandQty
	cur.AllocatedQty = record.AllocatedQty
	cur.HoldQty = record.HoldQty
	cur.DamagedQty = record.DamagedQty
	cur.UpdatedAt = record.UpdatedAt
	return nil
}

type allocationRepo struct{ s *Store }

func (r *allocationRepo) Create(_ context.Context, a *entity.Allocation) error {
	if _, ok := r.s.data.allocations[a.ID]; ok {
		return fmt.Errorf("reserva %s duplicada", a.ID)
	}
	c := *a
	r.s.data.allocations[a.ID] = &c
	r.s.data.allocOrder = append(r.s.data.allocOrder, a.ID)
	return nil
}

func (r *allocationRepo) GetByID(_ context.Context, id string) (*entity.Allocation, error) {
	a, ok := r.s.data.allocations[id]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

func (r *allocationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Allocation, error) {
	return r.GetByID(ctx, id)
}

func (r *allocationRepo) Update(_ context.Context, a *entity.Allocation) error {
	if _, ok := r.s.data.allocations[a.ID]; !ok {
		return fmt.Errorf("reserva %s no existe", a.ID)
	}
	c := *a
	r.s.data.allocations[a.ID] = &c
	return nil
}

func (r *allocationRepo) ListByLine(_ context.Context, lineID string) ([]*entity.Allocation, error) {
	return r.filter(func(a *entity.Allocation) bool { return a.OrderLineID == lineID }), nil
}

func (r *allocationRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.Allocation, error) {
	return r.filter(func(a *entity.Allocation) bool { return a.OrderID == orderID }), nil
}

func (r *allocationRepo) filter(keep func(*entity.Allocation) bool) []*entity.Allocation {
	var out []*entity.Allocation
	for _, id := range r.s.data.allocOrder {
		a := r.s.data.allocations[id]
		if keep(a) {
			c := *a
			out = append(out, &c)
		}
	}
	return out
}

type waveRepo struct{ s *Store }

func (r *waveRepo) Create(_ context.Context, w *entity.Wave) error {
	if _, ok := r.s.data.waves[w.ID]; ok {
		return fmt.Errorf("ola %s duplicada", w.ID)
	}
	c := *w
	r.s.data.waves[w.ID] = &c
	return nil
}

func (r *waveRepo) AddMember(_ context.Context, m *entity.WaveMembership) error {
	for _, cur := range r.s.data.members[m.WaveID] {
		if cur.OrderID == m.OrderID {
			return fmt.Errorf("orden %s ya es miembro de la ola %s", m.OrderID, m.WaveID)
		}
	}
	c := *m
	r.s.data.members[m.WaveID] = append(r.s.data.members[m.WaveID], &c)
	return nil
}

func (r *waveRepo) GetByID(_ context.Context, id string) (*entity.Wave, error) {
	w, ok := r.s.data.waves[id]
	if !ok {
		return nil, nil
	}
	c := *w
	return &c, nil
}

func (r *waveRepo) GetForUpdate(ctx context.Context, id string) (*entity.Wave, error) {
	return r.GetByID(ctx, id)
}

func (r *waveRepo) Update(_ context.Context, w *entity.Wave) error {
	if _, ok := r.s.data.waves[w.ID]; !ok {
		return fmt.Errorf("ola %s no existe", w.ID)
	}
	c := *w
	r.s.data.waves[w.ID] = &c
	return nil
}

func (r *waveRepo) ListMemberOrderIDs(_ context.Context, waveID string) ([]string, error) {
	var out []string
	for _, m := range r.s.data.members[waveID] {
		out = append(out, m.OrderID)
	}
	return out, nil
}

func (r *waveRepo) ActiveWaveForOrder(_ context.Context, orderID string) (string, error) {
	for waveID, list := range r.s.data.members {
		w := r.s.data.waves[waveID]
		if w == nil || !w.IsActive() {
			continue
		}
		for _, m := range list {
			if m.OrderID == orderID {
				return waveID, nil
			}
		}
	}
	return "", nil
}

type taskRepo struct{ s *Store }

func (r *taskRepo) Create(_ context.Context, t *entity.PickTask) error {
	if _, ok := r.s.data.tasks[t.ID]; ok {
		return fmt.Errorf("tarea %s duplicada", t.ID)
	}
	c := *t
	r.s.data.tasks[t.ID] = &c
	r.s.data.taskOrder = append(r.s.data.taskOrder, t.ID)
	return nil
}

func (r *taskRepo) GetByID(_ context.Context, id string) (*entity.PickTask, error) {
	t, ok := r.s.data.tasks[id]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (r *taskRepo) GetForUpdate(ctx context.Context, id string) (*entity.PickTask, error) {
	return r.GetByID(ctx, id)
}

func (r *taskRepo) Update(_ context.Context, t *entity.PickTask) error {
	if _, ok := r.s.data.tasks[t.ID]; !ok {
		return fmt.Errorf("tarea %s no existe", t.ID)
	}
	c := *t
	r.s.data.tasks[t.ID] = &c
	return nil
}

func (r *taskRepo) ListByWave(_ context.Context, waveID string) ([]*entity.PickTask, error) {
	out := r.filter(func(t *entity.PickTask) bool { return t.WaveID == waveID })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PickSequence != out[j].PickSequence {
			return out[i].PickSequence < out[j].PickSequence
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (r *taskRepo) ListByAllocation(_ context.Context, allocationID string) ([]*entity.PickTask, error) {
	return r.filter(func(t *entity.PickTask) bool { return t.AllocationID == allocationID }), nil
}

func (r *taskRepo) ClaimNextForUpdate(_ context.Context, warehouseID, waveID string) (*entity.PickTask, error) {
	candidates := r.filter(func(t *entity.PickTask) bool {
		if t.Status != entity.TaskStatusPending || (waveID != "" && t.WaveID != waveID) {
			return false
		}
		w := r.s.data.waves[t.WaveID]
		return w != nil && w.WarehouseID == warehouseID &&
			(w.Status == entity.WaveStatusReleased || w.Status == entity.WaveStatusInProgress)
	})
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.PickSequence != b.PickSequence {
			return a.PickSequence < b.PickSequence
		}
		return a.ID < b.ID
	})
	return candidates[0], nil
}

func (r *taskRepo) filter(keep func(*entity.PickTask) bool) []*entity.PickTask {
	var out []*entity.PickTask
	for _, id := range r.s.data.taskOrder {
		t := r.s.data.tasks[id]
		if keep(t) {
			c := *t
			out = append(out, &c)
		}
	}
	return out
}

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	c := *m
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	r.s.data.movements = append(r.s.data.movements, &c)
	return nil
}

func (r *movementRepo) ListByRecord(_ context.Context, recordID string, limit int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for i := len(r.s.data.movements) - 1; i >= 0; i-- {
		m := r.s.data.movements[i]
		if m.InventoryRecordID != recordID {
			continue
		}
		c := *m
		out = append(out, &c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
