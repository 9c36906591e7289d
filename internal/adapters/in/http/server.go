// Package http is the operator control surface of the plant, served with echo.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"batchplant/internal/core/application/production"
	"batchplant/internal/core/application/usecases/commands"
	"batchplant/internal/core/application/usecases/queries"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"
	"batchplant/internal/core/domain/model/run"
	"batchplant/internal/core/domain/services"
	"batchplant/internal/core/ports"

	"github.com/labstack/echo/v4"
)

// Production is the part of the production controller the API drives.
type Production interface {
	PlaceOrder(ctx context.Context, clientID, recipeID kernel.UUID, volume kernel.Volume) (*order.Order, error)
	Order(ctx context.Context, orderID kernel.UUID) (*order.Order, error)
	Progress(ctx context.Context, orderID kernel.UUID) (production.Progress, error)
	Summary(ctx context.Context, orderID kernel.UUID) (order.Summary, error)
	ChangeStatus(ctx context.Context, orderID kernel.UUID, action commands.StatusAction) (commands.ChangeOrderStatusResult, error)
	StartNextRow(ctx context.Context, orderID kernel.UUID) (*production.Discharge, error)
	MarkRowDone(ctx context.Context, orderID kernel.UUID, seq int) (order.Row, error)
	CancelDischarge(ctx context.Context, orderID kernel.UUID) error
	AutoRun(ctx context.Context, orderID kernel.UUID, maxRows int) (production.LoopResult, error)
	RunBatch(ctx context.Context, orderID kernel.UUID, batchNo int, vehicleID *kernel.UUID) (production.LoopResult, error)
	SelectVehicle(ctx context.Context, orderID kernel.UUID, batchNo int, vehicleID kernel.UUID) error
	LogRun(ctx context.Context, orderID kernel.UUID, start, end int, vehicleID *kernel.UUID, note string) (services.Assignment, error)
	RunsForOrder(ctx context.Context, orderID kernel.UUID) ([]*run.Run, error)
}

// OrderLister and RunLister are the read models behind the list endpoints.
type (
	OrderLister interface {
		Handle(ctx context.Context, query queries.ListOrdersQuery) ([]queries.ListOrdersQueryResponse, error)
	}
	RunLister interface {
		Handle(ctx context.Context, query queries.GetRunsByOrderQuery) ([]queries.GetRunsByOrderQueryResponse, error)
	}
)

// Server handles the HTTP requests of the control surface.
type Server struct {
	production Production
	vehicles   ports.VehicleDirectory
	recipes    ports.RecipeDirectory
	clients    ports.ClientDirectory

	// Read models. Without them runs are read through the controller and
	// the order list is unavailable.
	listOrders OrderLister
	listRuns   RunLister

	logger *slog.Logger
}

func NewServer(
	production Production,
	vehicles ports.VehicleDirectory,
	recipes ports.RecipeDirectory,
	clients ports.ClientDirectory,
	listOrders OrderLister,
	listRuns RunLister,
	logger *slog.Logger,
) *Server {
	return &Server{
		production: production,
		vehicles:   vehicles,
		recipes:    recipes,
		clients:    clients,
		listOrders: listOrders,
		listRuns:   listRuns,
		logger:     logger.With("component", "http_server"),
	}
}

// Register mounts the API under /api/v1.
func (s *Server) Register(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.GET("/vehicles", s.GetVehicles)
	g.GET("/recipes", s.GetRecipes)
	g.GET("/clients", s.GetClients)

	g.POST("/orders", s.PlaceOrder)
	g.GET("/orders", s.ListOrders)
	g.GET("/orders/:id", s.GetOrder)
	g.GET("/orders/:id/progress", s.GetProgress)
	g.GET("/orders/:id/summary", s.GetSummary)

	g.POST("/orders/:id/pause", s.changeStatus(commands.ActionPause))
	g.POST("/orders/:id/resume", s.changeStatus(commands.ActionResume))
	g.POST("/orders/:id/stop", s.changeStatus(commands.ActionStop))

	g.POST("/orders/:id/rows/next", s.StartNextRow)
	g.POST("/orders/:id/rows/:seq/done", s.MarkRowDone)
	g.DELETE("/orders/:id/discharge", s.CancelDischarge)
	g.POST("/orders/:id/auto-run", s.AutoRun)

	g.POST("/orders/:id/batches/:batch/run", s.RunBatch)
	g.PUT("/orders/:id/batches/:batch/vehicle", s.SelectVehicle)

	g.GET("/orders/:id/runs", s.GetRuns)
	g.POST("/orders/:id/runs", s.LogRun)
}

// PlaceOrder handles POST /api/v1/orders.
func (s *Server) PlaceOrder(ctx echo.Context) error {
	var req PlaceOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	clientID, err := kernel.UUIDFromBytes(req.ClientID[:])
	if err != nil {
		return badRequest(ctx, "Invalid client_id")
	}
	recipeID, err := kernel.UUIDFromBytes(req.RecipeID[:])
	if err != nil {
		return badRequest(ctx, "Invalid recipe_id")
	}
	volume, err := kernel.VolumeFromCubicMetres(req.VolumeM3)
	if err != nil {
		return s.fail(ctx, err)
	}

	o, err := s.production.PlaceOrder(ctx.Request().Context(), clientID, recipeID, volume)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, toOrder(o))
}

// ListOrders handles GET /api/v1/orders?limit=N, newest first.
func (s *Server) ListOrders(ctx echo.Context) error {
	if s.listOrders == nil {
		return ctx.JSON(http.StatusNotImplemented, Error{Code: http.StatusNotImplemented, Message: "order listing is not available"})
	}

	limit := 0
	if raw := ctx.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(ctx, "Invalid limit")
		}
		limit = n
	}
	query, err := queries.NewListOrdersQuery(limit)
	if err != nil {
		return s.fail(ctx, err)
	}

	orders, err := s.listOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]OrderListItem, len(orders))
	for i, o := range orders {
		response[i] = OrderListItem{
			ID:         o.ID.Bytes(),
			ClientName: o.ClientName,
			RecipeName: o.RecipeName,
			TotalM3:    o.TotalVolume.CubicMetres(),
			Status:     o.Status.String(),
			DoneCount:  o.DoneCount,
			TotalCount: o.TotalCount,
			CreatedAt:  o.CreatedAt,
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetOrder handles GET /api/v1/orders/:id with the full row ledger.
func (s *Server) GetOrder(ctx echo.Context) error {
	id, ok := orderID(ctx)
	if !ok {
		return badRequest(ctx, "Invalid order id")
	}
	o, err := s.production.Order(ctx.Request().Context(), id)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toOrder(o))
}

func (s *Server) GetProgress(ctx echo.Context) error {
	id, ok := orderID(ctx)
	if !ok {
		return badRequest(ctx, "Invalid order id")
	}
	p, err := s.production.Progress(ctx.Request().Context(), id)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toProgress(p))
}

func (s *Server) GetSummary(ctx echo.Context) error {
	id, ok := orderID(ctx)
	if !ok {
		return badRequest(ctx, "Invalid order id")
	}
	sum, err := s.production.Summary(ctx.Request().Context(), id)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toSummary(sum))
}

func (s *Server) changeStatus(action commands.StatusAction) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, ok := orderID(ctx)
		if !ok {
			return badRequest(ctx, "Invalid order id")
		}
		res, err := s.production.ChangeStatus(ctx.Request().Context(), id, action)
		if err != nil {
			return s.fail(ctx, err)
		}
		return ctx.JSON(http.StatusOK, StatusChange{
			From:        res.From.String(),
			To:          res.To.String(),
			RequeuedSeq: res.RequeuedSeq,
		})
	}
}

// StartNextRow handles POST /api/v1/orders/:id/rows/next. The row completes
// in the background, so the response is 202.
func (s *Server) StartNextRow(ctx echo.Context) error {
	id, ok := orderID(ctx)
	if !ok {
		return badRequest(ctx, "Invalid order id")
	}
	d, err := s.production.StartNextRow(ctx.Request().Context(), id)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusAccepted, Discharge{
		OrderID:   d.OrderID().Bytes(),
		Seq:       d.Seq(),
		StartedAt: d.StartedAt(),
	})
}

func (s *Server) MarkRowDone(ctx echo.Context) error {
	id, ok := orderID(ctx)
	if !ok {
		return badRequest(ctx, "Invalid order id")
	}
	seq, err := strconv.Atoi(ctx.Param("seq"))
	if err != nil {
		return badRequest(ctx, "Invalid row seq")
	}
	row, err := s.production.MarkRowDone(ctx.Request().Context(), id, seq)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toRow(row))
}

func (s *Server) CancelDischarge(ctx echo.Context) error {
	id, ok := orderID(ctx)
	if !ok {
		return badRequest(ctx, "Invalid order id")
	}
	if err := s.production.CancelDischarge(ctx.Request().Context(), id); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// AutoRun handles POST /api/v1/orders/:id/auto-run. The request returns when
// the loop stops; rows completed before an error are reported with it.
func (s *Server) AutoRun(ctx echo.Context) error {
	id, ok := orderID(ctx)
	if !ok {
		return badRequest(ctx, "Invalid order id")
	}
	var req AutoRunRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	res, err := s.production.AutoRun(ctx.Request().Context(), id, req.MaxRows)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toLoopResult(res))
}

func (s *Server) RunBatch(ctx echo.Context) error {
	id, ok := orderID(ctx)
	if !ok {
		return badRequest(ctx, "Invalid order id")
	}
	batchNo, err := strconv.Atoi(ctx.Param("batch"))
	if err != nil {
		return badRequest(ctx, "Invalid batch number")
	}
	var req RunBatchRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	vehicleID, err := optionalUUID(req.VehicleID)
	if err != nil {
		return badRequest(ctx, "Invalid vehicle_id")
	}

	res, err := s.production.RunBatch(ctx.Request().Context(), id, batchNo, vehicleID)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toLoopResult(res))
}

func (s *Server) SelectVehicle(ctx echo.Context) error {
	id, ok := orderID(ctx)
	if !ok {
		return badRequest(ctx, "Invalid order id")
	}
	batchNo, err := strconv.Atoi(ctx.Param("batch"))
	if err != nil {
		return badRequest(ctx, "Invalid batch number")
	}
	var req SelectVehicleRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	vehicleID, err := kernel.UUIDFromBytes(req.VehicleID[:])
	if err != nil {
		return badRequest(ctx, "Invalid vehicle_id")
	}

	if err = s.production.SelectVehicle(ctx.Request().Context(), id, batchNo, vehicleID); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// LogRun handles POST /api/v1/orders/:id/runs. Repeating a logged run
// answers 200 with the existing run instead of 201.
func (s *Server) LogRun(ctx echo.Context) error {
	id, ok := orderID(ctx)
	if !ok {
		return badRequest(ctx, "Invalid order id")
	}
	var req LogRunRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	vehicleID, err := optionalUUID(req.VehicleID)
	if err != nil {
		return badRequest(ctx, "Invalid vehicle_id")
	}

	a, err := s.production.LogRun(ctx.Request().Context(), id, req.StartSeq, req.EndSeq, vehicleID, req.Note)
	if err != nil {
		return s.fail(ctx, err)
	}
	code := http.StatusOK
	if a.Created {
		code = http.StatusCreated
	}
	return ctx.JSON(code, toRun(a.Run))
}

// GetRuns handles GET /api/v1/orders/:id/runs in run order.
func (s *Server) GetRuns(ctx echo.Context) error {
	id, ok := orderID(ctx)
	if !ok {
		return badRequest(ctx, "Invalid order id")
	}
	reqCtx := ctx.Request().Context()

	if s.listRuns == nil {
		runs, err := s.production.RunsForOrder(reqCtx, id)
		if err != nil {
			return s.fail(ctx, err)
		}
		response := make([]Run, len(runs))
		for i, r := range runs {
			response[i] = *toRun(r)
		}
		return ctx.JSON(http.StatusOK, response)
	}

	if _, err := s.production.Order(reqCtx, id); err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetRunsByOrderQuery(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	runs, err := s.listRuns.Handle(reqCtx, query)
	if err != nil {
		return s.fail(ctx, err)
	}
	response := make([]Run, len(runs))
	for i, r := range runs {
		response[i] = Run{
			ID:          r.ID.Bytes(),
			Seq:         r.Seq,
			VehicleID:   r.VehicleID.Bytes(),
			VehicleName: r.VehicleName,
			StartSeq:    r.StartSeq,
			EndSeq:      r.EndSeq,
			VolumeM3:    r.Volume.CubicMetres(),
			Note:        r.Note,
			CreatedAt:   r.CreatedAt,
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

func (s *Server) GetVehicles(ctx echo.Context) error {
	vehicles, err := s.vehicles.List(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}
	response := make([]MasterRecord, len(vehicles))
	for i, v := range vehicles {
		response[i] = MasterRecord{ID: v.ID().Bytes(), Name: v.Name()}
	}
	return ctx.JSON(http.StatusOK, response)
}

func (s *Server) GetRecipes(ctx echo.Context) error {
	recipes, err := s.recipes.List(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}
	response := make([]MasterRecord, len(recipes))
	for i, r := range recipes {
		response[i] = MasterRecord{ID: r.ID().Bytes(), Name: r.Name()}
	}
	return ctx.JSON(http.StatusOK, response)
}

func (s *Server) GetClients(ctx echo.Context) error {
	clients, err := s.clients.List(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}
	response := make([]MasterRecord, len(clients))
	for i, c := range clients {
		response[i] = MasterRecord{ID: c.ID().Bytes(), Name: c.Name()}
	}
	return ctx.JSON(http.StatusOK, response)
}

func orderID(ctx echo.Context) (kernel.UUID, bool) {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	return id, err == nil
}
