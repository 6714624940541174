package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de auditoría del ledger.
const (
	MovementTypePick      = "PICK"      // salida física por picking
	MovementTypeReserve   = "RESERVE"   // reserva contra una orden
	MovementTypeUnreserve = "UNRESERVE" // liberación de reserva
)

// InventoryMovement registro de auditoría de un cambio sobre un InventoryRecord.
type InventoryMovement struct {
	ID                string
	TransactionID     string
	InventoryRecordID string
	SKUID             string
	WarehouseID       string
	Type              string
	Quantity          int // negativo en salidas
	UnitCost          decimal.Decimal
	TotalCost         decimal.Decimal
	Reference         string
	CreatedAt         time.Time
	CreatedBy         string
}
