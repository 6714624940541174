package wave_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fulfillment-api/internal/application/allocation"
	"github.com/jhoicas/Fulfillment-api/internal/application/dto"
	"github.com/jhoicas/Fulfillment-api/internal/application/ports"
	"github.com/jhoicas/Fulfillment-api/internal/application/wave"
	"github.com/jhoicas/Fulfillment-api/internal/domain"
	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
	"github.com/jhoicas/Fulfillment-api/internal/infrastructure/memory"
	"github.com/jhoicas/Fulfillment-api/pkg/logger"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

type env struct {
	store *memory.Store
	alloc *allocation.UseCase
	waves *wave.UseCase
}

func newEnv() *env {
	store := memory.NewStore()
	seq := memory.NewSequences()
	log := logger.Nop()
	return &env{
		store: store,
		alloc: allocation.NewUseCase(store, seq, ports.NoopPublisher{}, ports.NoopMetrics{}, log),
		waves: wave.NewUseCase(store, seq, ports.NoopPublisher{}, ports.NoopMetrics{}, log),
	}
}

func (e *env) order(id, priority string, createdMin int, lines ...*entity.OrderLine) {
	for i, l := range lines {
		l.OrderID = id
		l.LineNumber = i + 1
	}
	e.store.SeedOrder(&entity.Order{
		ID: id, Code: id, WarehouseID: "W1", Status: entity.OrderStatusConfirmed,
		Priority: priority, CreatedAt: t0.Add(time.Duration(createdMin) * time.Minute), Lines: lines,
	})
}

func (e *env) record(id, sku string, onHand int, loc entity.Location) {
	loc.Code = id
	e.store.SeedInventoryRecord(&entity.InventoryRecord{
		ID: id, WarehouseID: "W1", SKUID: sku, OnHandQty: onHand,
		HealthStatus: entity.HealthHealthy, ReceivedAt: t0, Location: loc,
	})
}

func (e *env) allocate(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := e.alloc.AllocateOrder(context.Background(), id, "tester")
		require.NoError(t, err)
	}
}

func line(id, sku string, qty int) *entity.OrderLine {
	return &entity.OrderLine{ID: id, SKUID: sku, OrderedQty: qty}
}

func TestEligibleOrders_PrioridadLuegoAntiguedad(t *testing.T) {
	e := newEnv()
	e.order("N-old", entity.OrderPriorityNormal, 0, line("l1", "S", 1))
	e.order("U-new", entity.OrderPriorityUrgent, 30, line("l2", "S", 1))
	e.order("N-new", entity.OrderPriorityNormal, 10, line("l3", "S", 1))
	e.order("sin-stock", entity.OrderPriorityUrgent, 0, line("l4", "X", 1))
	e.record("r1", "S", 10, entity.Location{Zone: "A"})
	e.allocate(t, "N-old", "U-new", "N-new", "sin-stock")

	out, err := e.waves.EligibleOrders(context.Background(), "W1", 0)
	require.NoError(t, err)
	got := make([]string, 0, len(out.Items))
	for _, o := range out.Items {
		got = append(got, o.ID)
	}
	assert.Equal(t, []string{"U-new", "N-old", "N-new"}, got)
}

func TestCreateWave_ContadoresYValidaciones(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.order("O1", entity.OrderPriorityNormal, 0, line("l1", "S", 4), line("l2", "S", 6))
	e.order("O2", entity.OrderPriorityNormal, 0, line("l3", "S", 5))
	e.order("O3", entity.OrderPriorityNormal, 0, line("l4", "S", 5))
	e.record("r1", "S", 100, entity.Location{Zone: "A"})
	e.allocate(t, "O1", "O2")

	w, err := e.waves.CreateWave(ctx, dto.CreateWaveRequest{WarehouseID: "W1", OrderIDs: []string{"O1", "O2"}}, "tester")
	require.NoError(t, err)
	assert.Equal(t, entity.WaveStatusPending, w.Status)
	assert.Equal(t, "WV-000001", w.Code)
	assert.Equal(t, 2, w.TotalOrders)
	assert.Equal(t, 3, w.TotalLines)
	assert.Equal(t, 15, w.TotalUnits)

	_, err = e.waves.CreateWave(ctx, dto.CreateWaveRequest{WarehouseID: "W1", OrderIDs: []string{"O1"}}, "tester")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "ya está en una ola activa")

	_, err = e.waves.CreateWave(ctx, dto.CreateWaveRequest{WarehouseID: "W1", OrderIDs: []string{"O3"}}, "tester")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "sin reserva")

	_, err = e.waves.CreateWave(ctx, dto.CreateWaveRequest{WarehouseID: "W1", OrderIDs: []string{"nope"}}, "tester")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.waves.CreateWave(ctx, dto.CreateWaveRequest{WarehouseID: "W2", OrderIDs: []string{"O2"}}, "tester")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.alloc.CancelOrder(ctx, "O1", "cliente", "tester")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "orden dentro de ola activa")
}

func TestReleaseWave_TareasSecuenciadasPorUbicacion(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.order("O1", entity.OrderPriorityUrgent, 0, line("l1", "S1", 5), line("l2", "S2", 5))
	e.order("O2", entity.OrderPriorityNormal, 0, line("l3", "S3", 5))
	e.record("zB", "S1", 10, entity.Location{Zone: "B", Aisle: "01", Rack: 1, Level: 1})
	e.record("zA2", "S2", 10, entity.Location{Zone: "A", Aisle: "02", Rack: 1, Level: 1})
	e.record("zA1", "S3", 10, entity.Location{Zone: "A", Aisle: "01", Rack: 3, Level: 2})
	e.allocate(t, "O1", "O2")

	w, err := e.waves.CreateWave(ctx, dto.CreateWaveRequest{WarehouseID: "W1", OrderIDs: []string{"O1", "O2"}}, "tester")
	require.NoError(t, err)
	released, err := e.waves.ReleaseWave(ctx, w.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, entity.WaveStatusReleased, released.Status)
	assert.Equal(t, 3, released.TotalTasks)
	assert.NotNil(t, released.ReleasedAt)

	tasks, err := e.waves.ListWaveTasks(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, 3, tasks.Total)
	assert.Equal(t, "zA1", tasks.Items[0].InventoryRecordID)
	assert.Equal(t, "zA2", tasks.Items[1].InventoryRecordID)
	assert.Equal(t, "zB", tasks.Items[2].InventoryRecordID)
	for i, tk := range tasks.Items {
		assert.Equal(t, i+1, tk.PickSequence)
		assert.Equal(t, 5, tk.QtyToPick)
		assert.Equal(t, entity.TaskStatusPending, tk.Status)
	}
	assert.Equal(t, 5, tasks.Items[0].Priority, "O2 NORMAL")
	assert.Equal(t, 1, tasks.Items[1].Priority, "O1 URGENT")

	o1, err := e.alloc.GetOrder(ctx, "O1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPicking, o1.Status)
	for _, l := range o1.Lines {
		assert.Equal(t, entity.LineStatusPicking, l.Status)
	}

	_, err = e.waves.ReleaseWave(ctx, w.ID, "tester")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestReleaseWave_SinTareasEsInvalidState(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	// orden marcada como reservada sin reservas activas
	e.store.SeedOrder(&entity.Order{
		ID: "O1", WarehouseID: "W1", Status: entity.OrderStatusAllocated,
		Lines: []*entity.OrderLine{{ID: "l1", OrderID: "O1", LineNumber: 1, SKUID: "S", OrderedQty: 1}},
	})
	w, err := e.waves.CreateWave(ctx, dto.CreateWaveRequest{WarehouseID: "W1", OrderIDs: []string{"O1"}}, "tester")
	require.NoError(t, err)

	_, err = e.waves.ReleaseWave(ctx, w.ID, "tester")
	require.ErrorIs(t, err, domain.ErrInvalidState)

	got, err := e.waves.GetWave(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.WaveStatusPending, got.Status)
}

func TestReleaseWave_MiembroConservaSusReservas(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.order("O1", entity.OrderPriorityNormal, 0, line("l1", "S", 5))
	e.order("O2", entity.OrderPriorityNormal, 1, line("l2", "S", 5))
	e.record("r1", "S", 20, entity.Location{Zone: "A"})
	e.allocate(t, "O1", "O2")

	w, err := e.waves.CreateWave(ctx, dto.CreateWaveRequest{WarehouseID: "W1", OrderIDs: []string{"O1", "O2"}}, "tester")
	require.NoError(t, err)

	_, err = e.alloc.ReleaseOrderAllocations(ctx, "O2", "MANUAL", "tester")
	require.ErrorIs(t, err, domain.ErrInvalidState)
	o2, err := e.alloc.GetOrder(ctx, "O2")
	require.NoError(t, err)
	require.Len(t, o2.Allocations, 1)
	_, err = e.alloc.ReleaseAllocation(ctx, o2.Allocations[0].ID, "MANUAL", "tester")
	require.ErrorIs(t, err, domain.ErrInvalidState)

	o2, err = e.alloc.GetOrder(ctx, "O2")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusAllocated, o2.Status)
	assert.Equal(t, entity.AllocationStatusActive, o2.Allocations[0].Status)

	released, err := e.waves.ReleaseWave(ctx, w.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, entity.WaveStatusReleased, released.Status)
	assert.Equal(t, 2, released.TotalTasks)
}

func TestCancelWave_DevuelveOrdenesAReserva(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	e.order("O1", entity.OrderPriorityNormal, 0, line("l1", "S", 5))
	e.record("r1", "S", 10, entity.Location{Zone: "A"})
	e.allocate(t, "O1")

	w, err := e.waves.CreateWave(ctx, dto.CreateWaveRequest{WarehouseID: "W1", OrderIDs: []string{"O1"}}, "tester")
	require.NoError(t, err)
	_, err = e.waves.ReleaseWave(ctx, w.ID, "tester")
	require.NoError(t, err)

	cancelled, err := e.waves.CancelWave(ctx, w.ID, "replanificación", "tester")
	require.NoError(t, err)
	assert.Equal(t, entity.WaveStatusCancelled, cancelled.Status)
	assert.Equal(t, 0, cancelled.TotalTasks)

	tasks, err := e.waves.ListWaveTasks(ctx, w.ID)
	require.NoError(t, err)
	for _, tk := range tasks.Items {
		assert.Equal(t, entity.TaskStatusCancelled, tk.Status)
	}

	o, err := e.alloc.GetOrder(ctx, "O1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusAllocated, o.Status)
	assert.Equal(t, entity.LineStatusAllocated, o.Lines[0].Status)
	require.Len(t, o.Allocations, 1)
	assert.Equal(t, entity.AllocationStatusActive, o.Allocations[0].Status)

	eligible, err := e.waves.EligibleOrders(ctx, "W1", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, eligible.Total)

	_, err = e.waves.CancelWave(ctx, w.ID, "otra vez", "tester")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}
