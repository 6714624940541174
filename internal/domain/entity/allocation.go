package entity

import "time"

// Estados de la reserva.
const (
	AllocationStatusActive   = "ACTIVE"
	AllocationStatusConsumed = "CONSUMED"
	AllocationStatusReleased = "RELEASED"
	AllocationStatusExpired  = "EXPIRED"
)

// Allocation reserva de una porción de un InventoryRecord para una línea de orden.
// Nunca se elimina: los estados terminales quedan como historial.
type Allocation struct {
	ID                string
	Code              string
	OrderID           string
	OrderLineID       string
	InventoryRecordID string
	SKUID             string
	WarehouseID       string
	AllocatedQty      int
	ConsumedQty       int
	RemainingQty      int
	Status            string
	ReleaseReason     string
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ReleasedAt        *time.Time
}

// Coverage unidades de la línea que esta reserva cubre (consumidas + pendientes).
func (a *Allocation) Coverage() int {
	if a.Status == AllocationStatusActive {
		return a.ConsumedQty + a.RemainingQty
	}
	return a.ConsumedQty
}

// OpenQty reservado y aún no pickeado.
func (a *Allocation) OpenQty() int {
	if a.Status != AllocationStatusActive {
		return 0
	}
	return a.RemainingQty
}

// Consume registra unidades pickeadas. El remanente de un faltante (short) se
// libera en el mismo paso; devuelve cuánto se liberó de la reserva sin consumir.
func (a *Allocation) Consume(picked, short int, now time.Time) (released int) {
	a.ConsumedQty += picked
	a.RemainingQty -= picked
	if short > 0 {
		released = a.RemainingQty
		a.RemainingQty = 0
	}
	if a.RemainingQty < 0 {
		a.RemainingQty = 0
	}
	if a.RemainingQty == 0 {
		if a.ConsumedQty > 0 {
			a.Status = AllocationStatusConsumed
		} else {
			a.Status = AllocationStatusReleased
			a.ReleaseReason = "SHORT_PICK"
			a.ReleasedAt = &now
		}
	}
	a.UpdatedAt = now
	return released
}

// Release libera la porción no consumida. Devuelve la cantidad devuelta al registro.
func (a *Allocation) Release(reason string, now time.Time) int {
	qty := a.RemainingQty
	a.RemainingQty = 0
	a.Status = AllocationStatusReleased
	a.ReleaseReason = reason
	a.ReleasedAt = &now
	a.UpdatedAt = now
	return qty
}

// SumCoverage y SumOpen agregan sobre las reservas de una línea.
func SumCoverage(list []*Allocation) int {
	total := 0
	for _, a := range list {
		total += a.Coverage()
	}
	return total
}

func SumOpen(list []*Allocation) int {
	total := 0
	for _, a := range list {
		total += a.OpenQty()
	}
	return total
}
