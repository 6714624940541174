package picking

import (
	"sort"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
)

// Prioridades de tarea (1 = más urgente).
const (
	TaskPriorityUrgent       = 1
	TaskPriorityHigh         = 3
	TaskPriorityDefault      = 5
	TaskPriorityReallocation = 1
)

// PriorityForOrder mapea la prioridad de la orden a prioridad de tarea.
func PriorityForOrder(orderPriority string) int {
	switch orderPriority {
	case entity.OrderPriorityUrgent:
		return TaskPriorityUrgent
	case entity.OrderPriorityHigh:
		return TaskPriorityHigh
	default:
		return TaskPriorityDefault
	}
}

// Sequence ordena las tareas por jerarquía de ubicación (zona, pasillo, rack, nivel)
// y asigna pick_sequence 1..N. Es una heurística de recorrido determinista, no
// un cálculo de distancia mínima.
func Sequence(tasks []*entity.PickTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return lessLocation(tasks[i], tasks[j])
	})
	for i, t := range tasks {
		t.PickSequence = i + 1
	}
}

func lessLocation(a, b *entity.PickTask) bool {
	la, lb := a.Location, b.Location
	if la.Zone != lb.Zone {
		return la.Zone < lb.Zone
	}
	if la.Aisle != lb.Aisle {
		return la.Aisle < lb.Aisle
	}
	if la.Rack != lb.Rack {
		return la.Rack < lb.Rack
	}
	if la.Level != lb.Level {
		return la.Level < lb.Level
	}
	if la.Code != lb.Code {
		return la.Code < lb.Code
	}
	return a.Code < b.Code
}

// NextSequence posición al final del recorrido: max(pick_sequence)+1.
func NextSequence(tasks []*entity.PickTask) int {
	maxSeq := 0
	for _, t := range tasks {
		if t.PickSequence > maxSeq {
			maxSeq = t.PickSequence
		}
	}
	return maxSeq + 1
}
