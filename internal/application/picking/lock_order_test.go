package picking_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fulfillment-api/internal/application/allocation"
	"github.com/jhoicas/Fulfillment-api/internal/application/picking"
	"github.com/jhoicas/Fulfillment-api/internal/application/ports"
	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
	"github.com/jhoicas/Fulfillment-api/internal/domain/repository"
	"github.com/jhoicas/Fulfillment-api/pkg/logger"
)

// lockRecorder anota el tipo de cada fila bloqueada por la unidad de trabajo.
type lockRecorder struct {
	inner ports.TxRunner
	mu    sync.Mutex
	kinds []string
}

func (r *lockRecorder) add(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

func (r *lockRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = nil
}

// firstLocks tipos en el orden en que se bloquearon por primera vez.
func (r *lockRecorder) firstLocks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, k := range r.kinds {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

func (r *lockRecorder) Run(ctx context.Context, fn func(repos ports.Repositories) error) error {
	return r.inner.Run(ctx, func(repos ports.Repositories) error {
		repos.Waves = lockedWaves{repos.Waves, r}
		repos.Tasks = lockedTasks{repos.Tasks, r}
		repos.Orders = lockedOrders{repos.Orders, r}
		repos.Allocations = lockedAllocations{repos.Allocations, r}
		repos.Inventory = lockedInventory{repos.Inventory, r}
		return fn(repos)
	})
}

type lockedWaves struct {
	repository.WaveRepository
	rec *lockRecorder
}

func (l lockedWaves) GetForUpdate(ctx context.Context, id string) (*entity.Wave, error) {
	l.rec.add("wave")
	return l.WaveRepository.GetForUpdate(ctx, id)
}

type lockedTasks struct {
	repository.PickTaskRepository
	rec *lockRecorder
}

func (l lockedTasks) GetForUpdate(ctx context.Context, id string) (*entity.PickTask, error) {
	l.rec.add("task")
	return l.PickTaskRepository.GetForUpdate(ctx, id)
}

type lockedOrders struct {
	repository.OrderRepository
	rec *lockRecorder
}

func (l lockedOrders) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	l.rec.add("order")
	return l.OrderRepository.GetForUpdate(ctx, id)
}

type lockedAllocations struct {
	repository.AllocationRepository
	rec *lockRecorder
}

func (l lockedAllocations) GetForUpdate(ctx context.Context, id string) (*entity.Allocation, error) {
	l.rec.add("allocation")
	return l.AllocationRepository.GetForUpdate(ctx, id)
}

type lockedInventory struct {
	repository.InventoryRecordRepository
	rec *lockRecorder
}

func (l lockedInventory) GetForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	l.rec.add("record")
	return l.InventoryRecordRepository.GetForUpdate(ctx, id)
}

func (l lockedInventory) ListCandidatesForUpdate(ctx context.Context, warehouseID, skuID string) ([]*entity.InventoryRecord, error) {
	l.rec.add("record")
	return l.InventoryRecordRepository.ListCandidatesForUpdate(ctx, warehouseID, skuID)
}

func (l lockedInventory) FindReallocationCandidateForUpdate(ctx context.Context, warehouseID, skuID string, excludeIDs []string) (*entity.InventoryRecord, error) {
	l.rec.add("record")
	return l.InventoryRecordRepository.FindReallocationCandidateForUpdate(ctx, warehouseID, skuID, excludeIDs)
}

// CompletePicking y ReleaseAllocation comparten orden de bloqueo: orden antes
// que reserva y reserva antes que registro.
func TestLockOrder_CompletePickingYReleaseAllocation(t *testing.T) {
	e, waveID := scenario(t)
	ctx := context.Background()
	rec := &lockRecorder{inner: e.store}
	log := logger.Nop()
	pick := picking.NewUseCase(rec, e.seq, ports.NoopPublisher{}, ports.NoopMetrics{}, log)
	alloc := allocation.NewUseCase(rec, e.seq, ports.NoopPublisher{}, ports.NoopMetrics{}, log)

	onA := e.taskOn(t, waveID, "A")
	e.start(t, onA.ID)
	rec.reset()
	res, err := pick.CompletePicking(ctx, onA.ID, 45, entity.ShortReasonOutOfStock, "worker-1")
	require.NoError(t, err)
	require.True(t, res.Reallocated)
	assert.Equal(t, []string{"wave", "task", "order", "allocation", "record"}, rec.firstLocks())

	// fuera de ola: la misma secuencia relativa al liberar una reserva
	e.store.SeedOrder(&entity.Order{
		ID: "O2", Code: "O2", WarehouseID: "W1", Status: entity.OrderStatusConfirmed,
		Priority: entity.OrderPriorityNormal, CreatedAt: t0,
		Lines: []*entity.OrderLine{{ID: "O2-L1", OrderID: "O2", LineNumber: 1, SKUID: "SKU", OrderedQty: 1}},
	})
	allocated, err := alloc.AllocateOrder(ctx, "O2", "tester")
	require.NoError(t, err)
	require.True(t, allocated.FullyAllocated)
	o2, err := alloc.GetOrder(ctx, "O2")
	require.NoError(t, err)
	require.Len(t, o2.Allocations, 1)

	rec.reset()
	_, err = alloc.ReleaseAllocation(ctx, o2.Allocations[0].ID, "", "tester")
	require.NoError(t, err)
	assert.Equal(t, []string{"order", "allocation", "record"}, rec.firstLocks())
}
