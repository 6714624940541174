// seed_inventory carga registros de inventario y órdenes confirmadas desde CSV
// exportados del WMS anterior (suelen venir en ISO-8859-1).
//
// Uso: go run ./cmd/seed_inventory inventario.csv [ordenes.csv]
//
// inventario.csv: id;warehouse_id;sku_id;location_code;zone;aisle;rack;level;batch;received_at(YYYY-MM-DD);on_hand;unit_cost
// ordenes.csv:    order_id;warehouse_id;priority;line_number;sku_id;qty
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
	"github.com/jhoicas/Fulfillment-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Fulfillment-api/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: seed_inventory inventario.csv [ordenes.csv]")
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración", err)
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fail("conexión a PostgreSQL", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		fail("migraciones", err)
	}

	rows, err := readCSV(os.Args[1])
	if err != nil {
		fail("leer inventario", err)
	}
	records, err := parseRecords(rows)
	if err != nil {
		fail("inventario", err)
	}
	repo := postgres.NewInventoryRecordRepository(pool)
	for _, r := range records {
		if err := repo.Insert(ctx, r); err != nil {
			fail("insertar "+r.ID, err)
		}
	}
	fmt.Printf("OK: %d registros de inventario\n", len(records))

	if len(os.Args) < 3 {
		return
	}
	rows, err = readCSV(os.Args[2])
	if err != nil {
		fail("leer órdenes", err)
	}
	orders, err := parseOrders(rows, time.Now().UTC())
	if err != nil {
		fail("órdenes", err)
	}
	orderRepo := postgres.NewOrderRepository(pool)
	for _, o := range orders {
		if err := orderRepo.Insert(ctx, o); err != nil {
			fail("insertar "+o.ID, err)
		}
	}
	fmt.Printf("OK: %d órdenes\n", len(orders))
}

func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
	os.Exit(1)
}

// readCSV lee un CSV separado por ';'. Si el contenido no es UTF-8 válido se
// decodifica como ISO-8859-1. La primera fila es cabecera.
func readCSV(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in io.Reader = strings.NewReader(string(raw))
	if !utf8.Valid(raw) {
		in = transform.NewReader(in, charmap.ISO8859_1.NewDecoder())
	}
	r := csv.NewReader(in)
	r.Comma = ';'
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}
	return rows, nil
}

func parseRecords(rows [][]string) ([]*entity.InventoryRecord, error) {
	out := make([]*entity.InventoryRecord, 0, len(rows))
	for i, f := range rows {
		if len(f) < 12 {
			return nil, fmt.Errorf("fila %d: se esperaban 12 columnas", i+2)
		}
		received, err := time.Parse("2006-01-02", f[9])
		if err != nil {
			return nil, fmt.Errorf("fila %d received_at: %w", i+2, err)
		}
		onHand, err := strconv.Atoi(f[10])
		if err != nil || onHand < 0 {
			return nil, fmt.Errorf("fila %d on_hand inválido: %q", i+2, f[10])
		}
		cost, err := decimal.NewFromString(strings.ReplaceAll(f[11], ",", "."))
		if err != nil {
			return nil, fmt.Errorf("fila %d unit_cost: %w", i+2, err)
		}
		id := f[0]
		if id == "" {
			id = uuid.New().String()
		}
		out = append(out, &entity.InventoryRecord{
			ID: id, WarehouseID: f[1], SKUID: f[2],
			Location:    entity.Location{Code: f[3], Zone: f[4], Aisle: f[5], Rack: f[6], Level: f[7]},
			BatchNumber: f[8], ReceivedAt: received, OnHandQty: onHand,
			HealthStatus: entity.HealthHealthy, UnitCost: cost,
		})
	}
	return out, nil
}

// parseOrders agrupa filas consecutivas por order_id en una orden CONFIRMED.
func parseOrders(rows [][]string, now time.Time) ([]*entity.Order, error) {
	var out []*entity.Order
	byID := map[string]*entity.Order{}
	for i, f := range rows {
		if len(f) < 6 {
			return nil, fmt.Errorf("fila %d: se esperaban 6 columnas", i+2)
		}
		lineNo, err := strconv.Atoi(f[3])
		if err != nil {
			return nil, fmt.Errorf("fila %d line_number: %w", i+2, err)
		}
		qty, err := strconv.Atoi(f[5])
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("fila %d qty inválida: %q", i+2, f[5])
		}
		o, ok := byID[f[0]]
		if !ok {
			priority := strings.ToUpper(f[2])
			if priority == "" {
				priority = entity.OrderPriorityNormal
			}
			o = &entity.Order{
				ID: f[0], Code: f[0], WarehouseID: f[1], Status: entity.OrderStatusConfirmed,
				Priority: priority, CreatedBy: "seed", CreatedAt: now, UpdatedAt: now,
			}
			byID[f[0]] = o
			out = append(out, o)
		}
		o.Lines = append(o.Lines, &entity.OrderLine{
			ID: fmt.Sprintf("%s-L%d", o.ID, lineNo), OrderID: o.ID, LineNumber: lineNo,
			SKUID: f[4], OrderedQty: qty, Status: entity.LineStatusPending, CreatedAt: now, UpdatedAt: now,
		})
		o.TotalLines++
		o.TotalUnits += qty
	}
	return out, nil
}
