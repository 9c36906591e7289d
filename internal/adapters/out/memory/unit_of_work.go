package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/core/domain/model/run"
	"batchplant/internal/core/ports"
	"batchplant/internal/pkg/errs"
)

// ErrNoTransaction is returned by Commit and Rollback without a prior Begin.
var ErrNoTransaction = errors.New("no active transaction")

type UnitOfWorkFactory struct {
	store *Store
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

type stagedOrder struct {
	order *order.Order
	isNew bool
}

// UnitOfWork stages writes until Commit. Outside a transaction every write is
// applied immediately, which mirrors the PostgreSQL adapter.
type UnitOfWork struct {
	store  *Store
	active bool
	orders []stagedOrder
	runs   []*run.Run
}

func (uow *UnitOfWork) Begin(_ context.Context) error {
	uow.active = true
	return nil
}

// Commit applies staged writes atomically. Nothing is written when any of
// them would violate a uniqueness or existence rule.
func (uow *UnitOfWork) Commit(_ context.Context) error {
	if !uow.active {
		return ErrNoTransaction
	}
	err := uow.store.apply(uow.orders, uow.runs)
	uow.reset()
	return err
}

func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if !uow.active {
		return ErrNoTransaction
	}
	uow.reset()
	return nil
}

func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	return orderRepository{uow: uow}
}

func (uow *UnitOfWork) RunRepository() ports.RunRepository {
	return runRepository{uow: uow}
}

func (uow *UnitOfWork) reset() {
	uow.active = false
	uow.orders = nil
	uow.runs = nil
}

func (uow *UnitOfWork) stageOrder(o *order.Order, isNew bool) error {
	c, err := clone(o)
	if err != nil {
		return err
	}
	staged := []stagedOrder{{order: c, isNew: isNew}}
	if !uow.active {
		return uow.store.apply(staged, nil)
	}
	uow.orders = append(uow.orders, staged...)
	return nil
}

func (uow *UnitOfWork) stageRun(r *run.Run) error {
	if !uow.active {
		return uow.store.apply(nil, []*run.Run{r})
	}
	uow.runs = append(uow.runs, r)
	return nil
}

func (s *Store) apply(orders []stagedOrder, runs []*run.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := make(map[kernel.UUID]bool)
	for _, st := range orders {
		_, exists := s.orders[st.order.ID()]
		exists = exists || added[st.order.ID()]
		switch {
		case st.isNew && exists:
			return errs.NewConflictErrorWithCause(fmt.Sprintf("order %s", st.order.ID()), errors.New("duplicate id"))
		case !st.isNew && !exists:
			return errs.NewObjectNotFoundError("orderID", st.order.ID())
		}
		added[st.order.ID()] = true
	}
	seqs := make(map[kernel.UUID]map[int]bool)
	for _, r := range runs {
		taken, ok := seqs[r.OrderID()]
		if !ok {
			taken = make(map[int]bool)
			for _, existing := range s.runs[r.OrderID()] {
				taken[existing.Seq()] = true
			}
			seqs[r.OrderID()] = taken
		}
		if taken[r.Seq()] {
			return errs.NewConflictErrorWithCause(fmt.Sprintf("run %d of order %s", r.Seq(), r.OrderID()),
				errors.New("duplicate run sequence"))
		}
		taken[r.Seq()] = true
	}

	for _, st := range orders {
		s.orders[st.order.ID()] = st.order
	}
	for _, r := range runs {
		s.runs[r.OrderID()] = append(s.runs[r.OrderID()], r)
	}
	return nil
}

type orderRepository struct {
	uow *UnitOfWork
}

func (r orderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.stageOrder(aggregate, true)
}

func (r orderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if !r.uow.store.hasOrder(aggregate.ID()) && !r.uow.staged(aggregate.ID()) {
		return errs.NewObjectNotFoundError("orderID", aggregate.ID())
	}
	return r.uow.stageOrder(aggregate, false)
}

func (r orderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	return r.uow.store.getOrder(id)
}

func (r orderRepository) List(_ context.Context, limit int) ([]*order.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	out, err := r.uow.store.listOrders(
		func(*order.Order) bool { return true },
		func(a, b *order.Order) int { return b.CreatedAt().Compare(a.CreatedAt()) },
	)
	if err != nil {
		return nil, err
	}
	return out[:min(limit, len(out))], nil
}

func (r orderRepository) ListByStatus(_ context.Context, statuses ...order.Status) ([]*order.Order, error) {
	want := make(map[order.Status]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	return r.uow.store.listOrders(
		func(o *order.Order) bool { return want[o.Status()] },
		func(a, b *order.Order) int { return cmp.Compare(a.CreatedAt().UnixNano(), b.CreatedAt().UnixNano()) },
	)
}

func (uow *UnitOfWork) staged(id kernel.UUID) bool {
	for _, st := range uow.orders {
		if st.order.ID().IsEqual(id) {
			return true
		}
	}
	return false
}

type runRepository struct {
	uow *UnitOfWork
}

func (r runRepository) Add(_ context.Context, aggregate *run.Run) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.stageRun(aggregate)
}

func (r runRepository) ListByOrder(_ context.Context, orderID kernel.UUID) ([]*run.Run, error) {
	return r.uow.store.listRuns(orderID), nil
}
