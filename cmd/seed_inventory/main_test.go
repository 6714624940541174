package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
)

func TestReadCSV_Latin1(t *testing.T) {
	body := "id;warehouse_id;sku_id;location_code;zone;aisle;rack;level;batch;received_at;on_hand;unit_cost\n" +
		"R1;W1;CAFÉ-500;A-01-01-1;A;01;01;1;LOTE-Ñ;2026-01-05;60;2,50\n"
	latin, err := charmap.ISO8859_1.NewEncoder().String(body)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "inv.csv")
	require.NoError(t, os.WriteFile(path, []byte(latin), 0o600))

	rows, err := readCSV(path)
	require.NoError(t, err)
	records, err := parseRecords(rows)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "CAFÉ-500", records[0].SKUID)
	assert.Equal(t, "LOTE-Ñ", records[0].BatchNumber)
	assert.Equal(t, "2.5", records[0].UnitCost.String())
	assert.Equal(t, 60, records[0].OnHandQty)
}

func TestParseOrders_AgrupaLineas(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	orders, err := parseOrders([][]string{
		{"O1", "W1", "high", "1", "SKU-A", "10"},
		{"O1", "W1", "high", "2", "SKU-B", "5"},
		{"O2", "W1", "", "1", "SKU-A", "3"},
	}, now)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, entity.OrderPriorityHigh, orders[0].Priority)
	assert.Equal(t, 15, orders[0].TotalUnits)
	assert.Len(t, orders[0].Lines, 2)
	assert.Equal(t, entity.OrderPriorityNormal, orders[1].Priority)

	_, err = parseOrders([][]string{{"O3", "W1", "", "1", "SKU", "0"}}, now)
	assert.Error(t, err)
}
