//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/jhoicas/Fulfillment-api/internal/application/allocation"
	"github.com/jhoicas/Fulfillment-api/internal/application/dto"
	"github.com/jhoicas/Fulfillment-api/internal/application/picking"
	"github.com/jhoicas/Fulfillment-api/internal/application/ports"
	"github.com/jhoicas/Fulfillment-api/internal/application/wave"
	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
	"github.com/jhoicas/Fulfillment-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Fulfillment-api/pkg/config"
	"github.com/jhoicas/Fulfillment-api/pkg/logger"
)

type FulfillmentIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	tx        *postgres.TxRunner
	alloc     *allocation.UseCase
	waves     *wave.UseCase
	pick      *picking.UseCase
}

func TestFulfillmentIntegration(t *testing.T) {
	suite.Run(t, new(FulfillmentIntegrationSuite))
}

func (s *FulfillmentIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	container, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("fulfillment"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.pool, err = postgres.NewPool(s.ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 8})
	s.Require().NoError(err)
	s.Require().NoError(postgres.Migrate(s.ctx, s.pool))

	s.tx = postgres.NewTxRunner(s.pool, 2*time.Second)
	log := logger.Nop()
	s.alloc = allocation.NewUseCase(s.tx, nil, ports.NoopPublisher{}, ports.NoopMetrics{}, log)
	s.waves = wave.NewUseCase(s.tx, nil, ports.NoopPublisher{}, ports.NoopMetrics{}, log)
	s.pick = picking.NewUseCase(s.tx, nil, ports.NoopPublisher{}, ports.NoopMetrics{}, log)
}

func (s *FulfillmentIntegrationSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(s.ctx))
	}
}

func (s *FulfillmentIntegrationSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE inventory_movements, pick_tasks, wave_orders, waves,
		allocations, order_lines, orders, inventory_records`)
	s.Require().NoError(err)
	_, err = s.pool.Exec(s.ctx, `ALTER SEQUENCE code_seq_wv RESTART;
		ALTER SEQUENCE code_seq_pt RESTART; ALTER SEQUENCE code_seq_al RESTART`)
	s.Require().NoError(err)
}

func (s *FulfillmentIntegrationSuite) seedOrder(id string, qty int) {
	now := time.Now().UTC()
	err := postgres.NewOrderRepository(s.pool).Insert(s.ctx, &entity.Order{
		ID: id, Code: id, WarehouseID: "W1", Status: entity.OrderStatusConfirmed,
		Priority: entity.OrderPriorityNormal, TotalLines: 1, TotalUnits: qty,
		CreatedAt: now, UpdatedAt: now,
		Lines: []*entity.OrderLine{{ID: id + "-L1", OrderID: id, LineNumber: 1, SKUID: "SKU", OrderedQty: qty}},
	})
	s.Require().NoError(err)
}

func (s *FulfillmentIntegrationSuite) seedRecord(id string, onHand, day int, zone string) {
	err := postgres.NewInventoryRecordRepository(s.pool).Insert(s.ctx, &entity.InventoryRecord{
		ID: id, WarehouseID: "W1", SKUID: "SKU", OnHandQty: onHand,
		HealthStatus: entity.HealthHealthy,
		ReceivedAt:   time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC),
		Location:     entity.Location{Code: zone + "-01-01-1", Zone: zone, Aisle: "01", Rack: "01", Level: "1"},
		UnitCost:     decimal.RequireFromString("2.50"),
	})
	s.Require().NoError(err)
}

func (s *FulfillmentIntegrationSuite) TestFlujoCompletoConFaltante() {
	s.seedOrder("O1", 100)
	s.seedRecord("A", 60, 1, "A")
	s.seedRecord("B", 80, 5, "B")
	s.seedRecord("C", 50, 9, "C")

	res, err := s.alloc.AllocateOrder(s.ctx, "O1", "it")
	s.Require().NoError(err)
	s.True(res.FullyAllocated)

	w, err := s.waves.CreateWave(s.ctx, dto.CreateWaveRequest{WarehouseID: "W1", OrderIDs: []string{"O1"}}, "it")
	s.Require().NoError(err)
	s.Equal("WV-000001", w.Code)
	_, err = s.waves.ReleaseWave(s.ctx, w.ID, "it")
	s.Require().NoError(err)

	first, err := s.pick.ClaimNextTask(s.ctx, "W1", w.ID, "worker-1")
	s.Require().NoError(err)
	s.Equal("A", first.InventoryRecordID)
	_, err = s.pick.StartPicking(s.ctx, first.ID, "worker-1")
	s.Require().NoError(err)
	done, err := s.pick.CompletePicking(s.ctx, first.ID, 45, entity.ShortReasonOutOfStock, "worker-1")
	s.Require().NoError(err)
	s.True(done.Reallocated)
	s.Require().NotNil(done.NewTask)
	s.Equal("C", done.NewTask.InventoryRecordID)

	for {
		next, err := s.pick.ClaimNextTask(s.ctx, "W1", w.ID, "worker-1")
		if err != nil {
			break
		}
		_, err = s.pick.StartPicking(s.ctx, next.ID, "worker-1")
		s.Require().NoError(err)
		_, err = s.pick.CompletePicking(s.ctx, next.ID, next.QtyToPick, "", "worker-1")
		s.Require().NoError(err)
	}

	got, err := s.waves.GetWave(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Equal(entity.WaveStatusCompleted, got.Status)
	s.Equal(3, got.CompletedTasks)

	order, err := s.alloc.GetOrder(s.ctx, "O1")
	s.Require().NoError(err)
	s.Equal(entity.OrderStatusPicked, order.Status)

	movements, err := postgres.NewInventoryMovementRepository(s.pool).ListByRecord(s.ctx, "A", 10)
	s.Require().NoError(err)
	s.NotEmpty(movements)
}

// Dos tx reclamando a la vez nunca obtienen la misma tarea (SKIP LOCKED).
func (s *FulfillmentIntegrationSuite) TestClaimNextSaltaFilasBloqueadas() {
	s.seedOrder("O1", 10)
	s.seedOrder("O2", 10)
	s.seedRecord("A", 10, 1, "A")
	s.seedRecord("B", 10, 2, "B")
	for _, id := range []string{"O1", "O2"} {
		_, err := s.alloc.AllocateOrder(s.ctx, id, "it")
		s.Require().NoError(err)
	}
	w, err := s.waves.CreateWave(s.ctx, dto.CreateWaveRequest{WarehouseID: "W1", OrderIDs: []string{"O1", "O2"}}, "it")
	s.Require().NoError(err)
	_, err = s.waves.ReleaseWave(s.ctx, w.ID, "it")
	s.Require().NoError(err)

	held, err := s.pool.Begin(s.ctx)
	s.Require().NoError(err)
	defer func() { _ = held.Rollback(s.ctx) }()
	locked, err := postgres.Repositories(held).Tasks.ClaimNextForUpdate(s.ctx, "W1", w.ID)
	s.Require().NoError(err)
	s.Require().NotNil(locked)

	other, err := postgres.Repositories(s.pool).Tasks.ClaimNextForUpdate(s.ctx, "W1", w.ID)
	s.Require().NoError(err)
	s.Require().NotNil(other)
	s.NotEqual(locked.ID, other.ID)
}

// Con una sola conexión en el pool cada unidad de trabajo, códigos incluidos,
// debe completarse sin pedir una segunda conexión.
func (s *FulfillmentIntegrationSuite) TestFlujoConUnaSolaConexion() {
	s.seedOrder("O1", 10)
	s.seedRecord("A", 10, 1, "A")

	dsn, err := s.container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	pool, err := postgres.NewPool(s.ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 1})
	s.Require().NoError(err)
	defer pool.Close()

	tx := postgres.NewTxRunner(pool, 2*time.Second)
	log := logger.Nop()
	alloc := allocation.NewUseCase(tx, nil, ports.NoopPublisher{}, ports.NoopMetrics{}, log)
	waves := wave.NewUseCase(tx, nil, ports.NoopPublisher{}, ports.NoopMetrics{}, log)

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()
	_, err = alloc.AllocateOrder(ctx, "O1", "it")
	s.Require().NoError(err)
	w, err := waves.CreateWave(ctx, dto.CreateWaveRequest{WarehouseID: "W1", OrderIDs: []string{"O1"}}, "it")
	s.Require().NoError(err)
	released, err := waves.ReleaseWave(ctx, w.ID, "it")
	s.Require().NoError(err)
	s.Equal(1, released.TotalTasks)
}
