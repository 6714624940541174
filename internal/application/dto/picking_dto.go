package dto

import "time"

// AssignTaskRequest body para asignar una tarea a un operario.
type AssignTaskRequest struct {
	WorkerID string `json:"worker_id" validate:"required"`
}

// ClaimTaskRequest body para reclamar la siguiente tarea disponible.
type ClaimTaskRequest struct {
	WarehouseID string `json:"warehouse_id" validate:"required"`
	WaveID      string `json:"wave_id"`
}

// CompletePickingRequest body para cerrar una tarea.
// QtyPicked es puntero para distinguir 0 (faltante total) de ausente.
type CompletePickingRequest struct {
	QtyPicked   *int   `json:"qty_picked" validate:"required"`
	ShortReason string `json:"short_reason"`
}

// TaskResponse salida de una tarea de picking.
type TaskResponse struct {
	ID                    string     `json:"id"`
	Code                  string     `json:"code"`
	WaveID                string     `json:"wave_id"`
	OrderID               string     `json:"order_id"`
	OrderLineID           string     `json:"order_line_id"`
	AllocationID          string     `json:"allocation_id"`
	InventoryRecordID     string     `json:"inventory_record_id"`
	SKUID                 string     `json:"sku_id"`
	LocationCode          string     `json:"location_code"`
	Zone                  string     `json:"zone"`
	QtyToPick             int        `json:"qty_to_pick"`
	QtyPicked             int        `json:"qty_picked"`
	QtyShort              int        `json:"qty_short"`
	ShortReason           string     `json:"short_reason,omitempty"`
	PickSequence          int        `json:"pick_sequence"`
	Priority              int        `json:"priority"`
	Status                string     `json:"status"`
	AssignedTo            string     `json:"assigned_to,omitempty"`
	ReallocatedFromTaskID string     `json:"reallocated_from_task_id,omitempty"`
	StartedAt             *time.Time `json:"started_at,omitempty"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
}

// CompletePickingResponse resultado de completar una tarea, con el intento de reasignación.
type CompletePickingResponse struct {
	Task           TaskResponse  `json:"task"`
	QtyShort       int           `json:"qty_short"`
	Reallocated    bool          `json:"reallocated"`
	ReallocatedQty int           `json:"reallocated_qty"`
	NewTask        *TaskResponse `json:"new_task,omitempty"`
	WaveStatus     string        `json:"wave_status"`
	WaveCompleted  bool          `json:"wave_completed"`
}
