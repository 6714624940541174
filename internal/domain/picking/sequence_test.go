package picking_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
	"github.com/jhoicas/Fulfillment-api/internal/domain/picking"
)

func task(code, zone, aisle string, rack, level int) *entity.PickTask {
	return &entity.PickTask{
		Code:     code,
		Location: entity.Location{Code: fmt.Sprintf("%s-%s-R%02d-L%02d", zone, aisle, rack, level), Zone: zone, Aisle: aisle, Rack: rack, Level: level},
	}
}

func TestPriorityForOrder(t *testing.T) {
	assert.Equal(t, 1, picking.PriorityForOrder(entity.OrderPriorityUrgent))
	assert.Equal(t, 3, picking.PriorityForOrder(entity.OrderPriorityHigh))
	assert.Equal(t, 5, picking.PriorityForOrder(entity.OrderPriorityNormal))
	assert.Equal(t, 5, picking.PriorityForOrder(""))
}

func TestSequence_OrdenaPorJerarquiaDeUbicacion(t *testing.T) {
	tasks := []*entity.PickTask{
		task("t1", "B", "01", 1, 1),
		task("t2", "A", "02", 1, 1),
		task("t3", "A", "01", 3, 1),
		task("t4", "A", "01", 1, 2),
		task("t5", "A", "01", 1, 1),
	}
	picking.Sequence(tasks)

	got := make([]string, 0, len(tasks))
	for _, tk := range tasks {
		got = append(got, tk.Code)
	}
	assert.Equal(t, []string{"t5", "t4", "t3", "t2", "t1"}, got)
	for i, tk := range tasks {
		assert.Equal(t, i+1, tk.PickSequence)
	}
}

func TestNextSequence(t *testing.T) {
	assert.Equal(t, 1, picking.NextSequence(nil))
	tasks := []*entity.PickTask{{PickSequence: 4}, {PickSequence: 9}, {PickSequence: 2}}
	assert.Equal(t, 10, picking.NextSequence(tasks))
}

func TestSequence_Propiedades(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(t, "n")
		tasks := make([]*entity.PickTask, 0, n)
		for i := 0; i < n; i++ {
			tasks = append(tasks, task(fmt.Sprintf("PT-%03d", i),
				rapid.SampledFrom([]string{"A", "B", "C"}).Draw(t, "zone"),
				rapid.SampledFrom([]string{"01", "02", "03"}).Draw(t, "aisle"),
				rapid.IntRange(1, 5).Draw(t, "rack"),
				rapid.IntRange(1, 4).Draw(t, "level")))
		}
		picking.Sequence(tasks)
		for i := range tasks {
			if tasks[i].PickSequence != i+1 {
				t.Fatalf("secuencia no contigua en %d", i)
			}
			if i > 0 {
				a, b := tasks[i-1].Location, tasks[i].Location
				if a.Zone > b.Zone || (a.Zone == b.Zone && a.Aisle > b.Aisle) {
					t.Fatalf("orden de zona/pasillo violado en %d", i)
				}
			}
		}
	})
}
