package production_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"batchplant/internal/adapters/out/memory"
	"batchplant/internal/adapters/out/meter"
	"batchplant/internal/adapters/out/seed"
	"batchplant/internal/core/application/production"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/core/ports"

	"github.com/stretchr/testify/require"
)

const testDischarge = 5 * time.Millisecond

// recorder captures events and metrics.
type recorder struct {
	mu          sync.Mutex
	events      []ports.ProductionEvent
	started     int
	completed   int
	requeued    int
	runs        int
	transitions map[string]int
}

func newRecorder() *recorder {
	return &recorder{transitions: make(map[string]int)}
}

func (r *recorder) Publish(_ context.Context, e ports.ProductionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) RowStarted()                { r.mu.Lock(); r.started++; r.mu.Unlock() }
func (r *recorder) RowCompleted(time.Duration) { r.mu.Lock(); r.completed++; r.mu.Unlock() }
func (r *recorder) RowRequeued()               { r.mu.Lock(); r.requeued++; r.mu.Unlock() }
func (r *recorder) RunLogged()                 { r.mu.Lock(); r.runs++; r.mu.Unlock() }
func (r *recorder) StatusChanged(to string)    { r.mu.Lock(); r.transitions[to]++; r.mu.Unlock() }

func (r *recorder) count(typ ports.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

type fixture struct {
	ctl   *production.Controller
	store *memory.Store
	rec   *recorder
	data  seed.Data
}

func newFixture(t *testing.T, tune func(*production.Config)) fixture {
	t.Helper()
	return newFixtureWithUoW(t, tune, nil)
}

// newFixtureWithUoW lets a test wrap the store's unit of work factory.
func newFixtureWithUoW(
	t *testing.T,
	tune func(*production.Config),
	wrap func(ports.UnitOfWorkFactory) ports.UnitOfWorkFactory,
) fixture {
	t.Helper()

	store, err := memory.NewSeededStore()
	require.NoError(t, err)
	data, err := seed.Default()
	require.NoError(t, err)
	m, err := meter.NewSimulated(0, nil)
	require.NoError(t, err)

	cfg := production.DefaultConfig()
	cfg.DischargeDuration = testDischarge
	if tune != nil {
		tune(&cfg)
	}

	var uow ports.UnitOfWorkFactory = store.UnitOfWorkFactory()
	if wrap != nil {
		uow = wrap(uow)
	}

	rec := newRecorder()
	ctl, err := production.NewController(cfg, production.Dependencies{
		UnitOfWork: uow,
		Vehicles:   store.Vehicles(),
		Recipes:    store.Recipes(),
		Clients:    store.Clients(),
		Meter:      m,
		Events:     rec,
		Metrics:    rec,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = ctl.Shutdown(ctx)
	})

	return fixture{ctl: ctl, store: store, rec: rec, data: data}
}

// placeRunning places an order of m3 cubic metres and resumes it.
func (f fixture) placeRunning(t *testing.T, m3 float64) *order.Order {
	t.Helper()
	ctx := context.Background()
	vol, err := kernel.VolumeFromCubicMetres(m3)
	require.NoError(t, err)
	o, err := f.ctl.PlaceOrder(ctx, seed.ClientID, seed.RecipeID, vol)
	require.NoError(t, err)
	_, err = f.ctl.Resume(ctx, o.ID())
	require.NoError(t, err)
	return o
}

func (f fixture) order(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()
	o, err := f.ctl.Order(context.Background(), id)
	require.NoError(t, err)
	return o
}

func (f fixture) truck(i int) kernel.UUID {
	return f.data.Vehicles[i].ID()
}

func runningRows(o *order.Order) int {
	n := 0
	for _, r := range o.Rows() {
		if r.IsRunning() {
			n++
		}
	}
	return n
}

var errCommitRefused = errors.New("commit refused")

// refusingUoWFactory hands out units of work whose Commit fails while refuse
// is set.
type refusingUoWFactory struct {
	ports.UnitOfWorkFactory
	refuse *atomic.Bool
}

func (f refusingUoWFactory) Create() ports.UnitOfWork {
	return refusingUoW{UnitOfWork: f.UnitOfWorkFactory.Create(), refuse: f.refuse}
}

type refusingUoW struct {
	ports.UnitOfWork
	refuse *atomic.Bool
}

func (u refusingUoW) Commit(ctx context.Context) error {
	if u.refuse.Load() {
		return errCommitRefused
	}
	return u.UnitOfWork.Commit(ctx)
}
