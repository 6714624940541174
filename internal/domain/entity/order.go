package entity

import "time"

// Estados de la orden.
const (
	OrderStatusDraft             = "DRAFT"
	OrderStatusConfirmed         = "CONFIRMED"
	OrderStatusAllocated         = "ALLOCATED"
	OrderStatusPartialAllocation = "PARTIAL_ALLOCATION"
	OrderStatusPicking           = "PICKING"
	OrderStatusPicked            = "PICKED"
	OrderStatusPacked            = "PACKED"
	OrderStatusShipped           = "SHIPPED"
	OrderStatusCancelled         = "CANCELLED"
)

// Prioridades de la orden.
const (
	OrderPriorityUrgent = "URGENT"
	OrderPriorityHigh   = "HIGH"
	OrderPriorityNormal = "NORMAL"
	OrderPriorityLow    = "LOW"
)

var orderTransitions = map[string][]string{
	OrderStatusDraft:             {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:         {OrderStatusAllocated, OrderStatusPartialAllocation, OrderStatusCancelled},
	OrderStatusAllocated:         {OrderStatusPartialAllocation, OrderStatusConfirmed, OrderStatusPicking, OrderStatusCancelled},
	OrderStatusPartialAllocation: {OrderStatusAllocated, OrderStatusConfirmed, OrderStatusPicking, OrderStatusCancelled},
	OrderStatusPicking:           {OrderStatusPicked, OrderStatusAllocated, OrderStatusPartialAllocation},
	OrderStatusPicked:            {OrderStatusPacked},
	OrderStatusPacked:            {OrderStatusShipped},
}

// Order representa una orden de cliente a surtir desde una bodega.
// Los totales se recalculan siempre desde las líneas, nunca se acumulan.
type Order struct {
	ID                  string
	Code                string
	WarehouseID         string
	ClientID            string
	Status              string
	Priority            string
	TotalLines          int
	TotalUnits          int
	TotalAllocatedUnits int
	TotalPickedUnits    int
	CreatedBy           string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Lines               []*OrderLine
}

// CanTransition indica si la orden puede pasar al estado destino.
func (o *Order) CanTransition(to string) bool {
	if o.Status == to {
		return true
	}
	for _, s := range orderTransitions[o.Status] {
		if s == to {
			return true
		}
	}
	return false
}

// IsAllocatable: estados desde los que el motor puede reservar.
func (o *Order) IsAllocatable() bool {
	switch o.Status {
	case OrderStatusConfirmed, OrderStatusAllocated, OrderStatusPartialAllocation:
		return true
	}
	return false
}

// IsWaveEligible: órdenes con reserva que aún no están en piso.
func (o *Order) IsWaveEligible() bool {
	return o.Status == OrderStatusAllocated || o.Status == OrderStatusPartialAllocation
}

// IsCancellable: la cancelación solo existe hasta PARTIAL_ALLOCATION.
func (o *Order) IsCancellable() bool {
	switch o.Status {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusAllocated, OrderStatusPartialAllocation:
		return true
	}
	return false
}

// RecomputeTotals recalcula los totales agregados a partir de las líneas cargadas.
// Las líneas canceladas no cuentan, salvo en una orden cancelada (queda el histórico).
func (o *Order) RecomputeTotals() {
	o.TotalLines, o.TotalUnits, o.TotalAllocatedUnits, o.TotalPickedUnits = 0, 0, 0, 0
	for _, l := range o.Lines {
		if l.Status == LineStatusCancelled && o.Status != OrderStatusCancelled {
			continue
		}
		o.TotalLines++
		o.TotalUnits += l.OrderedQty
		o.TotalAllocatedUnits += l.AllocatedQty
		o.TotalPickedUnits += l.PickedQty
	}
}

// AllocationStatus deriva el estado de reserva de la orden desde sus líneas:
// ALLOCATED si todas están cubiertas, PARTIAL_ALLOCATION si alguna tiene reserva,
// CONFIRMED si ninguna.
func (o *Order) AllocationStatus() string {
	active, full, partial := 0, 0, 0
	for _, l := range o.Lines {
		if l.Status == LineStatusCancelled {
			continue
		}
		active++
		if l.AllocatedQty >= l.OrderedQty {
			full++
		}
		if l.AllocatedQty > 0 {
			partial++
		}
	}
	switch {
	case active > 0 && full == active:
		return OrderStatusAllocated
	case partial > 0:
		return OrderStatusPartialAllocation
	default:
		return OrderStatusConfirmed
	}
}

// PriorityRank orden de despacho de la prioridad (menor = antes).
func PriorityRank(priority string) int {
	switch priority {
	case OrderPriorityUrgent:
		return 0
	case OrderPriorityHigh:
		return 1
	case OrderPriorityLow:
		return 3
	default:
		return 2
	}
}
