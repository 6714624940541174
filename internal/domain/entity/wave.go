package entity

import "time"

// Estados de la ola.
const (
	WaveStatusPending    = "PENDING"
	WaveStatusReleased   = "RELEASED"
	WaveStatusInProgress = "IN_PROGRESS"
	WaveStatusCompleted  = "COMPLETED"
	WaveStatusCancelled  = "CANCELLED"
)

// Wave lote de órdenes liberado a piso en conjunto.
// Los contadores de tareas se recalculan desde pick_tasks en cada actualización de progreso.
type Wave struct {
	ID             string
	Code           string
	WarehouseID    string
	Name           string
	Status         string
	TotalOrders    int
	TotalLines     int
	TotalUnits     int
	PickedUnits    int
	TotalTasks     int
	CompletedTasks int
	CancelReason   string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ReleasedAt     *time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
}

// WaveMembership relación muchos a muchos orden-ola.
type WaveMembership struct {
	WaveID  string
	OrderID string
	AddedAt time.Time
}

// IsActive olas que retienen a sus órdenes.
func (w *Wave) IsActive() bool {
	return IsActiveWaveStatus(w.Status)
}

// IsActiveWaveStatus PENDING, RELEASED o IN_PROGRESS.
func IsActiveWaveStatus(status string) bool {
	switch status {
	case WaveStatusPending, WaveStatusReleased, WaveStatusInProgress:
		return true
	}
	return false
}

// IsCancellable la cancelación solo está definida en PENDING o RELEASED.
func (w *Wave) IsCancellable() bool {
	return w.Status == WaveStatusPending || w.Status == WaveStatusReleased
}

// Progress porcentaje de tareas terminadas (0-100).
func (w *Wave) Progress() float64 {
	if w.TotalTasks == 0 {
		return 0
	}
	return float64(w.CompletedTasks) / float64(w.TotalTasks) * 100
}
