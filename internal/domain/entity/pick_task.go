package entity

import "time"

// Estados de la tarea de picking.
const (
	TaskStatusPending    = "PENDING"
	TaskStatusAssigned   = "ASSIGNED"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusCompleted  = "COMPLETED"
	TaskStatusShortPick  = "SHORT_PICK"
	TaskStatusCancelled  = "CANCELLED"
	TaskStatusFailed     = "FAILED"
)

// Motivos de faltante reportados por el operario.
const (
	ShortReasonOutOfStock       = "OUT_OF_STOCK"
	ShortReasonDamagedInventory = "DAMAGED_INVENTORY"
	ShortReasonExpired          = "EXPIRED"
	ShortReasonLocationEmpty    = "LOCATION_EMPTY"
	ShortReasonWrongItem        = "WRONG_ITEM"
	ShortReasonOther            = "OTHER"
)

// PickTask tarea individual de picking, creada 1:1 desde una Allocation.
type PickTask struct {
	ID                    string
	Code                  string
	WaveID                string
	OrderID               string
	OrderLineID           string
	AllocationID          string
	InventoryRecordID     string
	SKUID                 string
	Location              Location
	QtyToPick             int
	QtyPicked             int
	QtyShort              int
	ShortReason           string
	PickSequence          int
	Priority              int
	Status                string
	AssignedTo            string
	ReallocatedFromTaskID string
	CreatedBy             string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	AssignedAt            *time.Time
	StartedAt             *time.Time
	CompletedAt           *time.Time
}

// IsOpen tarea aún no terminada.
func (t *PickTask) IsOpen() bool {
	switch t.Status {
	case TaskStatusPending, TaskStatusAssigned, TaskStatusInProgress:
		return true
	}
	return false
}

// IsDone cuenta para completed_tasks de la ola.
func (t *PickTask) IsDone() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusShortPick
}

// IsReallocation tarea generada por un faltante; no dispara una nueva reasignación.
func (t *PickTask) IsReallocation() bool {
	return t.ReallocatedFromTaskID != ""
}

// IsShortReason valida el motivo de faltante.
func IsShortReason(reason string) bool {
	switch reason {
	case ShortReasonOutOfStock, ShortReasonDamagedInventory, ShortReasonExpired,
		ShortReasonLocationEmpty, ShortReasonWrongItem, ShortReasonOther:
		return true
	}
	return false
}

// ShortReasonAllowsReallocation los faltantes por daño o vencimiento no se reasignan.
func ShortReasonAllowsReallocation(reason string) bool {
	return reason != ShortReasonDamagedInventory && reason != ShortReasonExpired
}
