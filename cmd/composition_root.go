package cmd

import (
	"log/slog"

	httpin "batchplant/internal/adapters/in/http"
	"batchplant/internal/adapters/out/events"
	"batchplant/internal/adapters/out/memory"
	"batchplant/internal/adapters/out/meter"
	"batchplant/internal/adapters/out/postgres"
	"batchplant/internal/adapters/out/postgres/masterdata"
	"batchplant/internal/adapters/out/prom"
	"batchplant/internal/core/application/production"
	"batchplant/internal/core/application/usecases/queries"
	"batchplant/internal/core/ports"
	"batchplant/internal/jobs"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// CompositionRoot wires the adapters of one process. gormDB is nil for the
// in-memory plant used by simulate.
type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory ports.UnitOfWorkFactory
	vehicles   ports.VehicleDirectory
	recipes    ports.RecipeDirectory
	clients    ports.ClientDirectory
	logger     *slog.Logger
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	return CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		vehicles:   masterdata.NewGormVehicleDirectory(gormDB),
		recipes:    masterdata.NewGormRecipeDirectory(gormDB),
		clients:    masterdata.NewGormClientDirectory(gormDB),
		logger:     logger,
	}
}

// NewMemoryCompositionRoot wires a plant kept entirely in memory.
func NewMemoryCompositionRoot(cfg Config, store *memory.Store, logger *slog.Logger) CompositionRoot {
	return CompositionRoot{
		cfg:        cfg,
		uowFactory: store.UnitOfWorkFactory(),
		vehicles:   store.Vehicles(),
		recipes:    store.Recipes(),
		clients:    store.Clients(),
		logger:     logger,
	}
}

func (c *CompositionRoot) CreateProductionController(
	publisher ports.EventPublisher,
	metrics ports.ProductionMetrics,
) (*production.Controller, error) {
	pc, err := c.cfg.ProductionConfig()
	if err != nil {
		return nil, err
	}
	m, err := meter.NewSimulated(c.cfg.TolerancePct, nil)
	if err != nil {
		return nil, err
	}
	return production.NewController(pc, production.Dependencies{
		UnitOfWork: c.uowFactory,
		Vehicles:   c.vehicles,
		Recipes:    c.recipes,
		Clients:    c.clients,
		Meter:      m,
		Events:     publisher,
		Metrics:    metrics,
		Logger:     c.logger,
	})
}

// CreateEventPublisher returns the Redis publisher when an address is
// configured, fanned out with extra publishers.
func (c *CompositionRoot) CreateEventPublisher(extra ...ports.EventPublisher) (ports.EventPublisher, func() error) {
	publishers := events.Fanout(extra)
	cleanup := func() error { return nil }
	if c.cfg.Redis.Addr != "" {
		client := events.NewRedisClient(c.cfg.Redis.Addr, c.cfg.Redis.Password, c.cfg.Redis.DB)
		publishers = append(publishers, events.NewRedisPublisher(client, c.cfg.Redis.Channel))
		cleanup = client.Close
	}
	if len(publishers) == 0 {
		return events.Discard{}, cleanup
	}
	return publishers, cleanup
}

func (c *CompositionRoot) CreateMetricsRecorder(reg prometheus.Registerer) (*prom.Recorder, error) {
	return prom.NewRecorder(reg)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() httpin.OrderLister {
	if c.gormDB == nil {
		return nil
	}
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetRunsByOrderQueryHandler() httpin.RunLister {
	if c.gormDB == nil {
		return nil
	}
	return queries.NewGetRunsByOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateServer(ctl *production.Controller) *httpin.Server {
	return httpin.NewServer(ctl, c.vehicles, c.recipes, c.clients,
		c.CreateListOrdersQueryHandler(), c.CreateGetRunsByOrderQueryHandler(), c.logger)
}

func (c *CompositionRoot) CreateJobManager(ctl *production.Controller) *jobs.JobManager {
	return jobs.NewJobManager(ctl, c.cfg.ReconcileSchedule, c.logger)
}
