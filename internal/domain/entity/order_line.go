package entity

import "time"

// Estados de la línea de orden.
const (
	LineStatusPending           = "PENDING"
	LineStatusAllocated         = "ALLOCATED"
	LineStatusPartialAllocation = "PARTIAL_ALLOCATION"
	LineStatusPicking           = "PICKING"
	LineStatusPicked            = "PICKED"
	LineStatusShort             = "SHORT"
	LineStatusCancelled         = "CANCELLED"
)

// Reglas de selección de inventario por línea.
const (
	AllocationRuleFIFO = "FIFO"
	AllocationRuleFEFO = "FEFO"
	AllocationRuleLIFO = "LIFO"
)

// OrderLine demanda de un SKU dentro de una orden.
// AllocatedQty es la cobertura vigente: lo ya consumido más lo reservado pendiente.
type OrderLine struct {
	ID             string
	OrderID        string
	LineNumber     int
	SKUID          string
	OrderedQty     int
	AllocatedQty   int
	PickedQty      int
	ShortQty       int
	AllocationRule string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Rule devuelve la regla de selección, FIFO si no está definida.
func (l *OrderLine) Rule() string {
	switch l.AllocationRule {
	case AllocationRuleFEFO, AllocationRuleLIFO:
		return l.AllocationRule
	}
	return AllocationRuleFIFO
}

// RemainingDemand unidades aún no cubiertas por reservas o picking.
func (l *OrderLine) RemainingDemand() int {
	return l.OrderedQty - l.AllocatedQty
}

// InPickingPhase indica si la línea ya fue liberada a piso.
func (l *OrderLine) InPickingPhase() bool {
	switch l.Status {
	case LineStatusPicking, LineStatusPicked, LineStatusShort:
		return true
	}
	return false
}

// RecomputeStatus deriva el estado desde los contadores.
// openQty es lo reservado y aún no pickeado (suma de remaining de reservas ACTIVE).
func (l *OrderLine) RecomputeStatus(openQty int) {
	if l.Status == LineStatusCancelled {
		return
	}
	if l.InPickingPhase() {
		switch {
		case l.PickedQty >= l.OrderedQty:
			l.Status = LineStatusPicked
		case openQty == 0:
			l.Status = LineStatusShort
		default:
			l.Status = LineStatusPicking
		}
		return
	}
	l.Status = l.allocationStatus()
}

// ResetToAllocationPhase devuelve la línea al estado de reserva (cancelación de ola).
func (l *OrderLine) ResetToAllocationPhase() {
	if l.Status == LineStatusCancelled {
		return
	}
	l.Status = l.allocationStatus()
}

func (l *OrderLine) allocationStatus() string {
	switch {
	case l.AllocatedQty >= l.OrderedQty:
		return LineStatusAllocated
	case l.AllocatedQty > 0:
		return LineStatusPartialAllocation
	default:
		return LineStatusPending
	}
}
