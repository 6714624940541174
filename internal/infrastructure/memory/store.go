// Package memory implementa los repositorios y el TxRunner sobre mapas en memoria.
// Las unidades de trabajo se serializan bajo un único mutex (equivalente a bloquear
// todas las filas) y un error restaura la foto tomada al inicio.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Fulfillment-api/internal/application/ports"
	"github.com/jhoicas/Fulfillment-api/internal/domain/entity"
)

var _ ports.TxRunner = (*Store)(nil)

// Store estado completo del servicio en memoria.
type Store struct {
	mu   sync.Mutex
	data *state
}

type state struct {
	orders      map[string]*entity.Order
	lines       map[string]*entity.OrderLine
	records     map[string]*entity.InventoryRecord
	allocations map[string]*entity.Allocation
	waves       map[string]*entity.Wave
	members     map[string][]*entity.WaveMembership // por wave_id
	tasks       map[string]*entity.PickTask
	movements   []*entity.InventoryMovement
	// orden de inserción para listados deterministas
	allocOrder []string
	taskOrder  []string
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

func newState() *state {
	return &state{
		orders:      map[string]*entity.Order{},
		lines:       map[string]*entity.OrderLine{},
		records:     map[string]*entity.InventoryRecord{},
		allocations: map[string]*entity.Allocation{},
		waves:       map[string]*entity.Wave{},
		members:     map[string][]*entity.WaveMembership{},
		tasks:       map[string]*entity.PickTask{},
	}
}

// Run ejecuta fn con repositorios sobre el estado; cualquier error lo revierte.
func (s *Store) Run(ctx context.Context, fn func(repos ports.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(s.repositories()); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) repositories() ports.Repositories {
	return ports.Repositories{
		Orders:      &orderRepo{s: s},
		Inventory:   &inventoryRepo{s: s},
		Allocations: &allocationRepo{s: s},
		Waves:       &waveRepo{s: s},
		Tasks:       &taskRepo{s: s},
		Movements:   &movementRepo{s: s},
	}
}

// SeedOrder inserta (o reemplaza) una orden con sus líneas. La captura de órdenes
// vive fuera del servicio; esto alimenta el backend en memoria y los tests.
func (s *Store) SeedOrder(o *entity.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cloneOrder(o)
	for _, l := range c.Lines {
		s.data.lines[l.ID] = l
	}
	c.Lines = nil
	s.data.orders[c.ID] = c
}

// SeedInventoryRecord inserta (o reemplaza) un registro de inventario.
func (s *Store) SeedInventoryRecord(r *entity.InventoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *r
	s.data.records[r.ID] = &c
}

// Movements copia del ledger de movimientos.
func (s *Store) Movements() []entity.InventoryMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.InventoryMovement, len(s.data.movements))
	for i, m := range s.data.movements {
		out[i] = *m
	}
	return out
}

// Sequences implementa ports.SequenceGenerator con un contador por prefijo.
// Como una secuencia de BD, los códigos entregados no se devuelven en un rollback.
type Sequences struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewSequences generador de códigos en memoria.
func NewSequences() *Sequences {
	return &Sequences{counters: map[string]int64{}}
}

func (g *Sequences) Next(_ context.Context, prefix string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters[prefix]++
	return fmt.Sprintf("%s-%06d", prefix, g.counters[prefix]), nil
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.orders {
		o := *v
		c.orders[k] = &o
	}
	for k, v := range st.lines {
		l := *v
		c.lines[k] = &l
	}
	for k, v := range st.records {
		r := *v
		c.records[k] = &r
	}
	for k, v := range st.allocations {
		a := *v
		c.allocations[k] = &a
	}
	for k, v := range st.waves {
		w := *v
		c.waves[k] = &w
	}
	for k, v := range st.members {
		list := make([]*entity.WaveMembership, len(v))
		for i, m := range v {
			mc := *m
			list[i] = &mc
		}
		c.members[k] = list
	}
	for k, v := range st.tasks {
		t := *v
		c.tasks[k] = &t
	}
	c.movements = append(c.movements, st.movements...)
	c.allocOrder = append(c.allocOrder, st.allocOrder...)
	c.taskOrder = append(c.taskOrder, st.taskOrder...)
	return c
}

func cloneOrder(o *entity.Order) *entity.Order {
	c := *o
	c.Lines = make([]*entity.OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		lc := *l
		c.Lines[i] = &lc
	}
	return &c
}
