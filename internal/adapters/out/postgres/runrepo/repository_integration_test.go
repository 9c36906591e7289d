package runrepo_test

import (
	"context"
	"testing"
	"time"

	"batchplant/internal/adapters/out/postgres/runrepo"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/run"
	"batchplant/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

type RunRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *runrepo.GormRunRepository
	tracker    *MockAggregateTracker
}

func (suite *RunRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&runrepo.RunDTO{}))
}

func (suite *RunRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE runs").Error)
	suite.tracker = new(MockAggregateTracker)
	suite.repository = runrepo.NewGormRunRepository(suite.db, suite.tracker)
}

func (suite *RunRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *RunRepositoryIntegrationTestSuite) newRun(orderID kernel.UUID, seq, start, end int) *run.Run {
	volume := kernel.Volume(end-start+1) * kernel.CubicMetre
	r, err := run.NewRun(kernel.NewUUID(), orderID, seq, kernel.NewUUID(), start, end, volume,
		run.DefaultNote(seq, start, end), testNow)
	suite.Require().NoError(err)
	return r
}

func (suite *RunRepositoryIntegrationTestSuite) TestAddAndListByOrder() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	second := suite.newRun(orderID, 2, 16, 30)
	first := suite.newRun(orderID, 1, 1, 15)
	other := suite.newRun(kernel.NewUUID(), 1, 1, 15)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Times(3)

	for _, r := range []*run.Run{second, first, other} {
		suite.Require().NoError(suite.repository.Add(ctx, r))
	}
	got, err := suite.repository.ListByOrder(ctx, orderID)

	suite.Require().NoError(err)
	suite.Require().Len(got, 2)
	suite.True(got[0].ID().IsEqual(first.ID()))
	suite.Equal(1, got[0].StartSeq())
	suite.Equal(15, got[0].EndSeq())
	suite.Equal(15*kernel.CubicMetre, got[0].Volume())
	suite.Equal("Auto-log: Batch-1 (1..15)", got[0].Note())
	suite.True(got[0].VehicleID().IsEqual(first.VehicleID()))
	suite.True(got[0].CreatedAt().Equal(testNow))
	suite.True(got[1].ID().IsEqual(second.ID()))
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *RunRepositoryIntegrationTestSuite) TestAdd_DuplicateSequence_ReturnsConflict() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Once()
	suite.Require().NoError(suite.repository.Add(ctx, suite.newRun(orderID, 1, 1, 15)))

	err := suite.repository.Add(ctx, suite.newRun(orderID, 1, 16, 30))

	suite.Require().ErrorIs(err, errs.ErrConflict)
}

func (suite *RunRepositoryIntegrationTestSuite) TestListByOrder_Empty() {
	got, err := suite.repository.ListByOrder(context.Background(), kernel.NewUUID())

	suite.Require().NoError(err)
	suite.Empty(got)
}

func TestRunRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(RunRepositoryIntegrationTestSuite))
}
