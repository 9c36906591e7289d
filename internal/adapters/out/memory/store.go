// Package memory keeps the plant state in process memory. It backs the
// simulate command and the controller tests and behaves like the PostgreSQL
// adapter: writes made inside a unit of work become visible on Commit only.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"batchplant/internal/adapters/out/seed"
	"batchplant/internal/core/domain/model/client"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/core/domain/model/recipe"
	"batchplant/internal/core/domain/model/run"
	"batchplant/internal/core/domain/model/vehicle"
	"batchplant/internal/core/ports"
	"batchplant/internal/pkg/errs"
)

// Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	orders   map[kernel.UUID]*order.Order
	runs     map[kernel.UUID][]*run.Run
	vehicles map[kernel.UUID]*vehicle.Vehicle
	recipes  map[kernel.UUID]*recipe.Recipe
	clients  map[kernel.UUID]*client.Client
}

func NewStore() *Store {
	return &Store{
		orders:   make(map[kernel.UUID]*order.Order),
		runs:     make(map[kernel.UUID][]*run.Run),
		vehicles: make(map[kernel.UUID]*vehicle.Vehicle),
		recipes:  make(map[kernel.UUID]*recipe.Recipe),
		clients:  make(map[kernel.UUID]*client.Client),
	}
}

// NewSeededStore returns a store holding the default master data.
func NewSeededStore() (*Store, error) {
	data, err := seed.Default()
	if err != nil {
		return nil, err
	}
	s := NewStore()
	s.Load(data)
	return s, nil
}

// Load adds or replaces master data records.
func (s *Store) Load(data seed.Data) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range data.Vehicles {
		s.vehicles[v.ID()] = v
	}
	for _, r := range data.Recipes {
		s.recipes[r.ID()] = r
	}
	for _, c := range data.Clients {
		s.clients[c.ID()] = c
	}
}

// UnitOfWorkFactory returns a factory whose units of work share this store.
func (s *Store) UnitOfWorkFactory() *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: s}
}

func (s *Store) Vehicles() ports.VehicleDirectory {
	return directory[*vehicle.Vehicle]{store: s, records: func() map[kernel.UUID]*vehicle.Vehicle { return s.vehicles }, param: "vehicleID"}
}

func (s *Store) Recipes() ports.RecipeDirectory {
	return directory[*recipe.Recipe]{store: s, records: func() map[kernel.UUID]*recipe.Recipe { return s.recipes }, param: "recipeID"}
}

func (s *Store) Clients() ports.ClientDirectory {
	return directory[*client.Client]{store: s, records: func() map[kernel.UUID]*client.Client { return s.clients }, param: "clientID"}
}

// clone copies an order so callers never share ledger state with the store.
func clone(o *order.Order) (*order.Order, error) {
	return order.RestoreOrder(o.ID(), o.ClientID(), o.RecipeID(), o.TotalVolume(), o.Status(), o.CreatedAt(), o.Rows())
}

func (s *Store) getOrder(id kernel.UUID) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("orderID", id)
	}
	return clone(o)
}

func (s *Store) hasOrder(id kernel.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.orders[id]
	return ok
}

func (s *Store) listOrders(keep func(*order.Order) bool, less func(a, b *order.Order) int) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if !keep(o) {
			continue
		}
		c, err := clone(o)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	slices.SortFunc(out, less)
	return out, nil
}

func (s *Store) listRuns(orderID kernel.UUID) []*run.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.runs[orderID])
	slices.SortFunc(out, func(a, b *run.Run) int { return cmp.Compare(a.Seq(), b.Seq()) })
	if out == nil {
		out = make([]*run.Run, 0)
	}
	return out
}

type named interface {
	Name() string
}

type directory[T named] struct {
	store   *Store
	records func() map[kernel.UUID]T
	param   string
}

func (d directory[T]) Get(_ context.Context, id kernel.UUID) (T, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	rec, ok := d.records()[id]
	if !ok {
		var zero T
		return zero, errs.NewObjectNotFoundError(d.param, id)
	}
	return rec, nil
}

func (d directory[T]) List(_ context.Context) ([]T, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	out := make([]T, 0, len(d.records()))
	for _, rec := range d.records() {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(a.Name(), b.Name()) })
	return out, nil
}
