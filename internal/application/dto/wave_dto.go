package dto

import "time"

// CreateWaveRequest body para POST /api/waves.
type CreateWaveRequest struct {
	WarehouseID string   `json:"warehouse_id" validate:"required"`
	Name        string   `json:"name" validate:"max=120"`
	OrderIDs    []string `json:"order_ids" validate:"required,min=1,dive,required"`
}

// WaveResponse salida de una ola.
type WaveResponse struct {
	ID             string     `json:"id"`
	Code           string     `json:"code"`
	WarehouseID    string     `json:"warehouse_id"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	TotalOrders    int        `json:"total_orders"`
	TotalLines     int        `json:"total_lines"`
	TotalUnits     int        `json:"total_units"`
	PickedUnits    int        `json:"picked_units"`
	TotalTasks     int        `json:"total_tasks"`
	CompletedTasks int        `json:"completed_tasks"`
	Progress       float64    `json:"progress_pct"`
	OrderIDs       []string   `json:"order_ids,omitempty"`
	CancelReason   string     `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ReleasedAt     *time.Time `json:"released_at,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// WaveTaskListResponse tareas de una ola en orden de recorrido.
type WaveTaskListResponse struct {
	WaveID string         `json:"wave_id"`
	Items  []TaskResponse `json:"items"`
	Total  int            `json:"total"`
}
