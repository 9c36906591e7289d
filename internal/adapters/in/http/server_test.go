package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpin "batchplant/internal/adapters/in/http"
	"batchplant/internal/adapters/out/memory"
	"batchplant/internal/adapters/out/meter"
	"batchplant/internal/adapters/out/seed"
	"batchplant/internal/core/application/production"
	"batchplant/internal/core/application/usecases/queries"
	"batchplant/internal/core/domain/model/kernel"
	"batchplant/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderLister struct {
	got   queries.ListOrdersQuery
	items []queries.ListOrdersQueryResponse
}

func (s *stubOrderLister) Handle(_ context.Context, q queries.ListOrdersQuery) ([]queries.ListOrdersQueryResponse, error) {
	s.got = q
	return s.items, nil
}

type api struct {
	e      *echo.Echo
	ctl    *production.Controller
	lister *stubOrderLister
}

func newAPI(t *testing.T) api {
	t.Helper()

	store, err := memory.NewSeededStore()
	require.NoError(t, err)
	m, err := meter.NewSimulated(0, nil)
	require.NoError(t, err)
	cfg := production.DefaultConfig()
	cfg.DischargeDuration = time.Millisecond
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctl, err := production.NewController(cfg, production.Dependencies{
		UnitOfWork: store.UnitOfWorkFactory(),
		Vehicles:   store.Vehicles(),
		Recipes:    store.Recipes(),
		Clients:    store.Clients(),
		Meter:      m,
		Logger:     logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = ctl.Shutdown(ctx)
	})

	lister := &stubOrderLister{}
	server := httpin.NewServer(ctl, store.Vehicles(), store.Recipes(), store.Clients(), lister, nil, logger)
	e := echo.New()
	server.Register(e)
	return api{e: e, ctl: ctl, lister: lister}
}

func (a api) do(t *testing.T, method, path, body string, out any) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func (a api) placeOrder(t *testing.T, m3 float64) httpin.Order {
	t.Helper()
	var o httpin.Order
	body := fmt.Sprintf(`{"client_id":%q,"recipe_id":%q,"volume_m3":%v}`, seed.ClientID, seed.RecipeID, m3)
	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/v1/orders", body, &o))
	return o
}

func TestServer_PlaceOrder(t *testing.T) {
	a := newAPI(t)

	o := a.placeOrder(t, 2.5)

	assert.Equal(t, "draft", o.Status)
	assert.Equal(t, 3, o.TotalCount)
	require.Len(t, o.Rows, 3)
	assert.InDelta(t, 0.5, o.Rows[2].PlannedM3, 1e-9)
	assert.Equal(t, "pending", o.Rows[0].State)
}

func TestServer_PlaceOrderRejectsBadInput(t *testing.T) {
	a := newAPI(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"volume_m3":`, http.StatusBadRequest},
		{"zero volume", fmt.Sprintf(`{"client_id":%q,"recipe_id":%q,"volume_m3":0}`, seed.ClientID, seed.RecipeID), http.StatusBadRequest},
		{"unknown client", fmt.Sprintf(`{"client_id":%q,"recipe_id":%q,"volume_m3":3}`, kernel.NewUUID(), seed.RecipeID), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e httpin.Error
			code := a.do(t, http.MethodPost, "/api/v1/orders", tt.body, &e)
			assert.Equal(t, tt.want, code)
			assert.Equal(t, tt.want, e.Code)
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestServer_ProductionFlow(t *testing.T) {
	a := newAPI(t)
	o := a.placeOrder(t, 17)
	base := "/api/v1/orders/" + o.ID.String()

	var change httpin.StatusChange
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, base+"/resume", "", &change))
	assert.Equal(t, "draft", change.From)
	assert.Equal(t, "running", change.To)

	var res httpin.LoopResult
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, base+"/auto-run", `{"max_rows":0}`, &res))
	assert.Equal(t, "nothing_pending", res.Reason)
	assert.Len(t, res.Completed, 17)

	var p httpin.Progress
	require.Equal(t, http.StatusOK, a.do(t, http.MethodGet, base+"/progress", "", &p))
	assert.Equal(t, "done", p.Status)
	assert.Equal(t, 17, p.DoneCount)
	require.Len(t, p.Batches, 2)
	assert.Equal(t, 16, p.Batches[1].StartSeq)

	var runs []httpin.Run
	require.Equal(t, http.StatusOK, a.do(t, http.MethodGet, base+"/runs", "", &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, 15, runs[0].EndSeq)
	assert.InDelta(t, 2.0, runs[1].VolumeM3, 1e-9)

	var again httpin.Run
	body := fmt.Sprintf(`{"start_seq":1,"end_seq":15,"vehicle_id":%q}`, runs[0].VehicleID)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, base+"/runs", body, &again))
	assert.Equal(t, runs[0].ID, again.ID)

	var batch httpin.LoopResult
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, base+"/batches/2/run", "", &batch))
	assert.Equal(t, "batch_done", batch.Reason)
	require.NotNil(t, batch.Run)
	assert.Equal(t, runs[1].ID, batch.Run.ID)

	var sum httpin.Summary
	require.Equal(t, http.StatusOK, a.do(t, http.MethodGet, base+"/summary", "", &sum))
	assert.InDelta(t, 17.0, sum.ProducedM3, 1e-9)
	assert.InDelta(t, 0, sum.RemainingM3, 1e-9)
	assert.InDelta(t, 17*350.0, sum.SetTotals["cement"], 1e-6)

	var e httpin.Error
	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodPost, base+"/rows/next", "", &e))
	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodPost, base+"/pause", "", &e))
}

func TestServer_StepByStep(t *testing.T) {
	a := newAPI(t)
	o := a.placeOrder(t, 3)
	base := "/api/v1/orders/" + o.ID.String()

	var e httpin.Error
	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodPost, base+"/rows/next", "", &e))
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, base+"/resume", "", nil))

	var d httpin.Discharge
	require.Equal(t, http.StatusAccepted, a.do(t, http.MethodPost, base+"/rows/next", "", &d))
	assert.Equal(t, 1, d.Seq)

	id, err := kernel.UUIDFromString(o.ID.String())
	require.NoError(t, err)
	if active, ok := a.ctl.ActiveDischarge(id); ok {
		require.NoError(t, active.Wait(context.Background()))
	}

	var got httpin.Order
	require.Equal(t, http.StatusOK, a.do(t, http.MethodGet, base, "", &got))
	assert.Equal(t, "done", got.Rows[0].State)
	assert.InDelta(t, 350, got.Rows[0].Actual["cement"], 1e-9)

	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodPost, base+"/rows/1/done", "", &e))
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodDelete, base+"/discharge", "", &e))
	assert.Equal(t, http.StatusUnprocessableEntity, a.do(t, http.MethodPost, base+"/runs", `{"start_seq":1,"end_seq":3}`, &e))
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, base+"/runs", `{"start_seq":1,"end_seq":2}`, &e))
}

func TestServer_SelectVehicle(t *testing.T) {
	a := newAPI(t)
	o := a.placeOrder(t, 3)
	base := "/api/v1/orders/" + o.ID.String()
	truck := "6a1f3c2e-0b7d-4c59-9e1a-5d2f8b3c4a13"

	code := a.do(t, http.MethodPut, base+"/batches/1/vehicle", fmt.Sprintf(`{"vehicle_id":%q}`, truck), nil)
	require.Equal(t, http.StatusNoContent, code)

	var p httpin.Progress
	require.Equal(t, http.StatusOK, a.do(t, http.MethodGet, base+"/progress", "", &p))
	require.NotNil(t, p.SelectedVehicle)
	assert.Equal(t, truck, p.SelectedVehicle.String())

	var e httpin.Error
	code = a.do(t, http.MethodPut, base+"/batches/2/vehicle", fmt.Sprintf(`{"vehicle_id":%q}`, truck), &e)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPut, base+"/batches/x/vehicle", `{}`, &e))
}

func TestServer_ListOrders(t *testing.T) {
	a := newAPI(t)
	a.lister.items = []queries.ListOrdersQueryResponse{{
		ID:          kernel.NewUUID(),
		ClientName:  "ABC Builders",
		RecipeName:  "M25 DEFAULT",
		TotalVolume: 32 * kernel.CubicMetre,
		Status:      order.Running,
		DoneCount:   4,
		TotalCount:  32,
		CreatedAt:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}}

	var items []httpin.OrderListItem
	require.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/api/v1/orders?limit=10", "", &items))
	require.Len(t, items, 1)
	assert.Equal(t, "running", items[0].Status)
	assert.InDelta(t, 32.0, items[0].TotalM3, 1e-9)
	assert.Equal(t, 10, a.lister.got.Limit())

	var e httpin.Error
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/v1/orders?limit=many", "", &e))
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/v1/orders?limit=501", "", &e))
}

func TestServer_MasterData(t *testing.T) {
	a := newAPI(t)

	var vehicles []httpin.MasterRecord
	require.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/api/v1/vehicles", "", &vehicles))
	require.Len(t, vehicles, 3)
	assert.Equal(t, "Truck-01", vehicles[0].Name)

	var recipes []httpin.MasterRecord
	require.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/api/v1/recipes", "", &recipes))
	assert.Equal(t, "M25 DEFAULT", recipes[0].Name)
}

func TestServer_UnknownAndMalformedOrder(t *testing.T) {
	a := newAPI(t)

	var e httpin.Error
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/v1/orders/not-a-uuid", "", &e))
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/v1/orders/"+kernel.NewUUID().String()+"/progress", "", &e))
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/v1/orders/"+kernel.NewUUID().String()+"/runs", "", &e))
}
