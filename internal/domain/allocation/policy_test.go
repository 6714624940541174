package allocation_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/jhoicas/Fulfillment-api/internal/domain/allocation"
	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
)

var base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func rec(id string, onHand int, receivedDay int, expiryDay *int) *entity.InventoryRecord {
	r := &entity.InventoryRecord{
		ID:           id,
		OnHandQty:    onHand,
		HealthStatus: entity.HealthHealthy,
		ReceivedAt:   base.AddDate(0, 0, receivedDay),
	}
	if expiryDay != nil {
		e := base.AddDate(0, 0, *expiryDay)
		r.ExpiryDate = &e
	}
	return r
}

func day(d int) *int { return &d }

func ids(list []*entity.InventoryRecord) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.ID)
	}
	return out
}

func TestOrderCandidates_FIFO_MasAntiguoPrimero(t *testing.T) {
	records := []*entity.InventoryRecord{rec("b", 10, 5, nil), rec("a", 10, 1, nil), rec("c", 10, 9, nil)}
	assert.Equal(t, []string{"a", "b", "c"}, ids(allocation.OrderCandidates(entity.AllocationRuleFIFO, records)))
}

func TestOrderCandidates_LIFO_MasRecientePrimero(t *testing.T) {
	records := []*entity.InventoryRecord{rec("b", 10, 5, nil), rec("a", 10, 1, nil), rec("c", 10, 9, nil)}
	assert.Equal(t, []string{"c", "b", "a"}, ids(allocation.OrderCandidates(entity.AllocationRuleLIFO, records)))
}

func TestOrderCandidates_FEFO_ExcluyeSinVencimiento(t *testing.T) {
	records := []*entity.InventoryRecord{
		rec("late", 10, 1, day(90)),
		rec("none", 10, 0, nil),
		rec("soon", 10, 8, day(30)),
	}
	assert.Equal(t, []string{"soon", "late"}, ids(allocation.OrderCandidates(entity.AllocationRuleFEFO, records)))
}

func TestOrderCandidates_ExcluyeNoSanosYSinDisponible(t *testing.T) {
	held := rec("held", 10, 1, nil)
	held.HoldQty = 10
	quarantined := rec("q", 10, 2, nil)
	quarantined.HealthStatus = entity.HealthQuarantine
	full := rec("full", 10, 3, nil)
	full.AllocatedQty = 6
	full.DamagedQty = 4
	ok := rec("ok", 10, 4, nil)

	got := allocation.OrderCandidates(entity.AllocationRuleFIFO, []*entity.InventoryRecord{held, quarantined, full, ok})
	assert.Equal(t, []string{"ok"}, ids(got))
}

// Ejemplo: línea de 100 FIFO, A(60, antiguo) y B(80, nuevo) → A:60 + B:40.
func TestPlan_EjemploFIFO_AyB(t *testing.T) {
	a := rec("A", 60, 1, nil)
	b := rec("B", 80, 2, nil)

	picks := allocation.Plan(entity.AllocationRuleFIFO, 100, []*entity.InventoryRecord{b, a})
	require.Len(t, picks, 2)
	assert.Equal(t, "A", picks[0].Record.ID)
	assert.Equal(t, 60, picks[0].Qty)
	assert.Equal(t, "B", picks[1].Record.ID)
	assert.Equal(t, 40, picks[1].Qty)
	assert.Equal(t, 100, allocation.Total(picks))
}

func TestPlan_DemandaCeroNoReserva(t *testing.T) {
	assert.Empty(t, allocation.Plan(entity.AllocationRuleFIFO, 0, []*entity.InventoryRecord{rec("a", 5, 1, nil)}))
}

func TestPlan_SinCandidatosDejaFaltante(t *testing.T) {
	picks := allocation.Plan(entity.AllocationRuleFEFO, 10, []*entity.InventoryRecord{rec("a", 50, 1, nil)})
	assert.Empty(t, picks)
}

func genRecords(t *rapid.T) []*entity.InventoryRecord {
	n := rapid.IntRange(0, 12).Draw(t, "n")
	out := make([]*entity.InventoryRecord, 0, n)
	for i := 0; i < n; i++ {
		var exp *int
		if rapid.Bool().Draw(t, fmt.Sprintf("hasExpiry%d", i)) {
			exp = day(rapid.IntRange(0, 365).Draw(t, fmt.Sprintf("expiry%d", i)))
		}
		r := rec(fmt.Sprintf("r%02d", i), rapid.IntRange(0, 50).Draw(t, fmt.Sprintf("onHand%d", i)),
			rapid.IntRange(0, 365).Draw(t, fmt.Sprintf("received%d", i)), exp)
		r.AllocatedQty = rapid.IntRange(0, r.OnHandQty).Draw(t, fmt.Sprintf("alloc%d", i))
		if rapid.IntRange(0, 9).Draw(t, fmt.Sprintf("health%d", i)) == 0 {
			r.HealthStatus = entity.HealthDamaged
		}
		out = append(out, r)
	}
	return out
}

func TestPlan_Propiedades(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rule := rapid.SampledFrom([]string{entity.AllocationRuleFIFO, entity.AllocationRuleFEFO, entity.AllocationRuleLIFO}).Draw(t, "rule")
		demand := rapid.IntRange(0, 300).Draw(t, "demand")
		records := genRecords(t)

		picks := allocation.Plan(rule, demand, records)
		total := allocation.Total(picks)
		if total > demand {
			t.Fatalf("reserva %d excede la demanda %d", total, demand)
		}

		eligible := allocation.OrderCandidates(rule, records)
		supply := 0
		for _, r := range eligible {
			supply += r.Available()
		}
		if total != min(demand, supply) {
			t.Fatalf("first-fit debe reservar min(demanda, oferta): got %d want %d", total, min(demand, supply))
		}

		for i, p := range picks {
			if p.Qty <= 0 || p.Qty > p.Record.Available() {
				t.Fatalf("cantidad fuera de rango en %s: %d", p.Record.ID, p.Qty)
			}
			// el orden del plan respeta el orden de la regla: prefijo de los candidatos
			if eligible[i].ID != p.Record.ID {
				t.Fatalf("el plan no sigue el orden de la regla en la posición %d", i)
			}
		}

		if len(picks) > 0 {
			first := picks[0].Record
			for _, r := range eligible {
				switch rule {
				case entity.AllocationRuleFIFO:
					if r.ReceivedAt.Before(first.ReceivedAt) {
						t.Fatalf("FIFO no tomó el registro más antiguo")
					}
				case entity.AllocationRuleLIFO:
					if r.ReceivedAt.After(first.ReceivedAt) {
						t.Fatalf("LIFO no tomó el registro más reciente")
					}
				case entity.AllocationRuleFEFO:
					if r.ExpiryDate.Before(*first.ExpiryDate) {
						t.Fatalf("FEFO no tomó el vencimiento más próximo")
					}
				}
			}
			if rule == entity.AllocationRuleFEFO {
				for _, p := range picks {
					if p.Record.ExpiryDate == nil {
						t.Fatalf("FEFO reservó un registro sin vencimiento")
					}
				}
			}
		}
	})
}
