package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/Fulfillment-api/internal/application/ports"
)

const namespace = "fulfillment"

var _ ports.Metrics = (*Recorder)(nil)

// Recorder contadores de negocio sobre un registry propio.
type Recorder struct {
	registry *prometheus.Registry

	allocations    *prometheus.CounterVec
	allocatedUnits *prometheus.CounterVec
	releases       *prometheus.CounterVec
	releasedUnits  *prometheus.CounterVec
	wavesReleased  prometheus.Counter
	wavesCompleted prometheus.Counter
	tasksPerWave   prometheus.Histogram
	tasksCompleted *prometheus.CounterVec
	pickedUnits    prometheus.Counter
	shortUnits     *prometheus.CounterVec
	reallocations  *prometheus.CounterVec
}

// New registra los colectores de negocio y los estándar de Go/proceso.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: reg,
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "allocations_created_total",
			Help: "Reservas creadas por regla de asignación.",
		}, []string{"rule"}),
		allocatedUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "allocated_units_total",
			Help: "Unidades reservadas por regla de asignación.",
		}, []string{"rule"}),
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "allocations_released_total",
			Help: "Reservas liberadas por motivo.",
		}, []string{"reason"}),
		releasedUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "released_units_total",
			Help: "Unidades devueltas a disponible por motivo.",
		}, []string{"reason"}),
		wavesReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "waves_released_total", Help: "Olas liberadas a piso.",
		}),
		wavesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "waves_completed_total", Help: "Olas completadas.",
		}),
		tasksPerWave: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "wave_tasks",
			Help:    "Tareas generadas al liberar una ola.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		tasksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "pick_tasks_completed_total",
			Help: "Tareas cerradas por estado final (COMPLETED, SHORT_PICK).",
		}, []string{"status"}),
		pickedUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "picked_units_total", Help: "Unidades pickeadas.",
		}),
		shortUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "short_units_total",
			Help: "Unidades faltantes por motivo.",
		}, []string{"reason"}),
		reallocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "reallocations_total",
			Help: "Resultado de la reasignación tras un faltante.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.allocations, r.allocatedUnits, r.releases, r.releasedUnits,
		r.wavesReleased, r.wavesCompleted, r.tasksPerWave, r.tasksCompleted,
		r.pickedUnits, r.shortUnits, r.reallocations)
	return r
}

// Registry para exponer en /metrics.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) AllocationCreated(rule string, qty int) {
	r.allocations.WithLabelValues(rule).Inc()
	r.allocatedUnits.WithLabelValues(rule).Add(float64(qty))
}

func (r *Recorder) AllocationReleased(reason string, qty int) {
	r.releases.WithLabelValues(reason).Inc()
	r.releasedUnits.WithLabelValues(reason).Add(float64(qty))
}

func (r *Recorder) WaveReleased(tasks int) {
	r.wavesReleased.Inc()
	r.tasksPerWave.Observe(float64(tasks))
}

func (r *Recorder) WaveCompleted() { r.wavesCompleted.Inc() }

func (r *Recorder) TaskCompleted(status string, picked int) {
	r.tasksCompleted.WithLabelValues(status).Inc()
	r.pickedUnits.Add(float64(picked))
}

func (r *Recorder) ShortPick(reason string, qty int) {
	r.shortUnits.WithLabelValues(reason).Add(float64(qty))
}

func (r *Recorder) Reallocation(outcome string) {
	r.reallocations.WithLabelValues(outcome).Inc()
}
