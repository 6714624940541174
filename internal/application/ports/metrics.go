package ports

// Metrics contadores de negocio del motor de fulfillment.
type Metrics interface {
	AllocationCreated(rule string, qty int)
	AllocationReleased(reason string, qty int)
	WaveReleased(tasks int)
	WaveCompleted()
	TaskCompleted(status string, picked int)
	ShortPick(reason string, qty int)
	Reallocation(outcome string)
}

// NoopMetrics implementación vacía para tests y cuando las métricas están deshabilitadas.
type NoopMetrics struct{}

func (NoopMetrics) AllocationCreated(string, int) {}
func (NoopMetrics) AllocationReleased(string, int) {}
func (NoopMetrics) WaveReleased(int) {}
func (NoopMetrics) WaveCompleted() {}
func (NoopMetrics) TaskCompleted(string, int) {}
func (NoopMetrics) ShortPick(string, int) {}
func (NoopMetrics) Reallocation(string) {}
