package allocation

import (
	"sort"

	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
)

// Pick porción a reservar de un registro candidato.
type Pick struct {
	Record *entity.InventoryRecord
	Qty    int
}

// OrderCandidates filtra y ordena los registros según la regla (servicio de dominio).
//   - FIFO: received_at ascendente
//   - FEFO: vencimiento ascendente, excluye registros sin vencimiento
//   - LIFO: received_at descendente
//
// Solo quedan registros sanos con disponible > 0. El desempate es por ID para
// que el resultado sea determinista.
func OrderCandidates(rule string, records []*entity.InventoryRecord) []*entity.InventoryRecord {
	out := make([]*entity.InventoryRecord, 0, len(records))
	for _, r := range records {
		if !r.IsAllocatable() {
			continue
		}
		if rule == entity.AllocationRuleFEFO && r.ExpiryDate == nil {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch rule {
		case entity.AllocationRuleFEFO:
			if !a.ExpiryDate.Equal(*b.ExpiryDate) {
				return a.ExpiryDate.Before(*b.ExpiryDate)
			}
		case entity.AllocationRuleLIFO:
			if !a.ReceivedAt.Equal(b.ReceivedAt) {
				return a.ReceivedAt.After(b.ReceivedAt)
			}
		default:
			if !a.ReceivedAt.Equal(b.ReceivedAt) {
				return a.ReceivedAt.Before(b.ReceivedAt)
			}
		}
		return a.ID < b.ID
	})
	return out
}

// FirstFit recorre los candidatos ya ordenados y toma min(restante, disponible)
// de cada uno hasta cubrir la demanda o agotar candidatos. No optimiza número
// de reservas ni recorrido.
func FirstFit(demand int, ordered []*entity.InventoryRecord) []Pick {
	var picks []Pick
	remaining := demand
	for _, r := range ordered {
		if remaining <= 0 {
			break
		}
		avail := r.Available()
		if avail <= 0 {
			continue
		}
		qty := min(remaining, avail)
		picks = append(picks, Pick{Record: r, Qty: qty})
		remaining -= qty
	}
	return picks
}

// Plan combina OrderCandidates y FirstFit.
func Plan(rule string, demand int, records []*entity.InventoryRecord) []Pick {
	if demand <= 0 {
		return nil
	}
	return FirstFit(demand, OrderCandidates(rule, records))
}

// Total suma las cantidades de un plan.
func Total(picks []Pick) int {
	total := 0
	for _, p := range picks {
		total += p.Qty
	}
	return total
}
