package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Fulfillment-api/internal/infrastructure/metrics"
)

func TestRecorder_ContadoresDeNegocio(t *testing.T) {
	r := metrics.New()

	r.AllocationCreated("FIFO", 60)
	r.AllocationCreated("FIFO", 40)
	r.AllocationReleased("SHORT_PICK", 15)
	r.TaskCompleted("SHORT_PICK", 45)
	r.ShortPick("OUT_OF_STOCK", 15)
	r.Reallocation("reallocated")
	r.WaveReleased(3)
	r.WaveCompleted()

	count, err := testutil.GatherAndCount(r.Registry(),
		"fulfillment_allocations_created_total", "fulfillment_reallocations_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(r.Registry(), "fulfillment_short_units_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}
