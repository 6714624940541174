package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de salud del inventario. Solo HEALTHY es reservable.
const (
	HealthHealthy    = "HEALTHY"
	HealthQuarantine = "QUARANTINE"
	HealthDamaged    = "DAMAGED"
	HealthExpired    = "EXPIRED"
)

// InventoryRecord registro de stock en una ubicación (lote/serie/vencimiento).
// Disponible = OnHand - Allocated - Hold - Damaged.
type InventoryRecord struct {
	ID           string
	WarehouseID  string
	SKUID        string
	Location     Location
	BatchNumber  string
	SerialNumber string
	ExpiryDate   *time.Time
	ReceivedAt   time.Time
	OnHandQty    int
	AllocatedQty int
	HoldQty      int
	DamagedQty   int
	HealthStatus string
	UnitCost     decimal.Decimal
	UpdatedAt    time.Time
}

// Available cantidad disponible para reservar.
func (r *InventoryRecord) Available() int {
	return r.OnHandQty - r.AllocatedQty - r.HoldQty - r.DamagedQty
}

// IsAllocatable registro sano con disponible positivo.
func (r *InventoryRecord) IsAllocatable() bool {
	return r.HealthStatus == HealthHealthy && r.Available() > 0
}
