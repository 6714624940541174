package dto

import "time"

// ReleaseRequest body para liberar reservas o cancelar una orden.
type ReleaseRequest struct {
	Reason string `json:"reason" validate:"required,max=200"`
}

// LineAllocationResult resultado de la reserva de una línea.
type LineAllocationResult struct {
	LineID         string `json:"line_id"`
	SKUID          string `json:"sku_id"`
	Rule           string `json:"rule"`
	OrderedQty     int    `json:"ordered_qty"`
	AllocatedNow   int    `json:"allocated_now"`   // reservado en esta llamada
	AllocatedTotal int    `json:"allocated_total"` // cobertura total de la línea
	ShortQty       int    `json:"short_qty"`       // lo que sigue sin cubrir
	Allocations    int    `json:"allocations_created"`
}

// AllocateOrderResponse salida de POST /api/orders/:id/allocate.
type AllocateOrderResponse struct {
	OrderID            string                 `json:"order_id"`
	Status             string                 `json:"status"`
	FullyAllocated     bool                   `json:"fully_allocated"`
	PartiallyAllocated bool                   `json:"partially_allocated"`
	NoAllocation       bool                   `json:"no_allocation"`
	Lines              []LineAllocationResult `json:"lines"`
}

// ReleaseOrderResponse salida de la liberación de reservas de una orden.
type ReleaseOrderResponse struct {
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	Released    int    `json:"allocations_released"`
	ReleasedQty int    `json:"released_qty"`
}

// AllocationResponse salida de una reserva.
type AllocationResponse struct {
	ID                string     `json:"id"`
	Code              string     `json:"code"`
	OrderID           string     `json:"order_id"`
	OrderLineID       string     `json:"order_line_id"`
	InventoryRecordID string     `json:"inventory_record_id"`
	AllocatedQty      int        `json:"allocated_qty"`
	ConsumedQty       int        `json:"consumed_qty"`
	RemainingQty      int        `json:"remaining_qty"`
	Status            string     `json:"status"`
	ReleaseReason     string     `json:"release_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ReleasedAt        *time.Time `json:"released_at,omitempty"`
}

// OrderLineResponse salida de una línea de orden.
type OrderLineResponse struct {
	ID             string `json:"id"`
	LineNumber     int    `json:"line_number"`
	SKUID          string `json:"sku_id"`
	OrderedQty     int    `json:"ordered_qty"`
	AllocatedQty   int    `json:"allocated_qty"`
	PickedQty      int    `json:"picked_qty"`
	ShortQty       int    `json:"short_qty"`
	AllocationRule string `json:"allocation_rule"`
	Status         string `json:"status"`
}

// OrderResponse salida de una orden con líneas y reservas.
type OrderResponse struct {
	ID                  string               `json:"id"`
	Code                string               `json:"code"`
	WarehouseID         string               `json:"warehouse_id"`
	ClientID            string               `json:"client_id"`
	Status              string               `json:"status"`
	Priority            string               `json:"priority"`
	TotalLines          int                  `json:"total_lines"`
	TotalUnits          int                  `json:"total_units"`
	TotalAllocatedUnits int                  `json:"total_allocated_units"`
	TotalPickedUnits    int                  `json:"total_picked_units"`
	Lines               []OrderLineResponse  `json:"lines"`
	Allocations         []AllocationResponse `json:"allocations,omitempty"`
}

// EligibleOrdersResponse órdenes listas para ola.
type EligibleOrdersResponse struct {
	Items []OrderResponse `json:"items"`
	Total int             `json:"total"`
}
