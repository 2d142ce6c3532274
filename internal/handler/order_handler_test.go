package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cafeorders/internal/catalog"
	"cafeorders/internal/domain/model"
	"cafeorders/internal/handler"
	repo "cafeorders/internal/repository"
	"cafeorders/internal/usecase"
	"cafeorders/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type HandlerOrderRepoMock struct{ mock.Mock }

func (m *HandlerOrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *HandlerOrderRepoMock) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

func (m *HandlerOrderRepoMock) Create(ctx context.Context, order model.Order) (model.Order, error) {
	args := m.Called(ctx, order)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *HandlerOrderRepoMock) Update(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *HandlerOrderRepoMock) Delete(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *HandlerOrderRepoMock) ExistsActive(ctx context.Context, tableNumber int, excludeID int64) (bool, error) {
	args := m.Called(ctx, tableNumber, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *HandlerOrderRepoMock) ListPaidBetween(ctx context.Context, from time.Time, to time.Time) ([]model.Order, error) {
	args := m.Called(ctx, from, to)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

type handlerTxRepos struct{ orders repo.OrderRepository }

func (s *handlerTxRepos) Orders() repo.OrderRepository { return s.orders }

type handlerTxManager struct{ orders repo.OrderRepository }

func (m *handlerTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(&handlerTxRepos{orders: m.orders})
}

type handlerClock struct{ now time.Time }

func (c *handlerClock) Now() time.Time { return c.now }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// 実物のusecase/validatorをモックrepoの上に組んだechoを返す
func newTestServer(orders repo.OrderRepository, now time.Time) *echo.Echo {
	dishes := catalog.NewStaticProvider([]model.Dish{
		{ID: 1, Name: "Pizza", Price: dec("15.00")},
		{ID: 2, Name: "Coffee", Price: dec("10.50")},
	})
	clock := &handlerClock{now: now}

	orderUC := usecase.NewOrderUsecase(&handlerTxManager{orders: orders}, dishes, clock)
	revenueUC := usecase.NewRevenueUsecase(orders, dishes, clock)
	orderV := validator.NewOrderValidator(orders, dishes)

	e := echo.New()
	handler.NewRevenueHandler(revenueUC).RegisterRoutes(e)
	handler.NewOrderHandler(orderUC, orderV).RegisterRoutes(e)
	handler.NewFormHandler(orderUC, revenueUC, orderV).RegisterRoutes(e)
	return e
}

func doJSON(e *echo.Echo, method string, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestOrderHandler_Create(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	orders := new(HandlerOrderRepoMock)
	orders.On("ExistsActive", mock.Anything, 5, int64(0)).Return(false, nil)
	orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.TableNumber == 5 && o.TotalPrice.Equal(dec("25.50"))
	})).Return(model.Order{
		ID:          1,
		TableNumber: 5,
		DishIDs:     model.DishIDList{1, 2},
		TotalPrice:  dec("25.50"),
		Status:      model.OrderStatusWaiting,
		CreatedAt:   now,
	}, nil)

	e := newTestServer(orders, now)
	rec := doJSON(e, http.MethodPost, "/orders", `{"table_number": 5, "dish_ids": [1, 2]}`)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var out usecase.OrderOutput
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.TotalPrice.Equal(dec("25.50")))
	assert.Equal(t, "Pizza - 15.00, Coffee - 10.50", out.DishNames)

	orders.AssertExpectations(t)
}

func TestOrderHandler_Create_UnknownDishRejected(t *testing.T) {
	orders := new(HandlerOrderRepoMock)
	orders.On("ExistsActive", mock.Anything, 5, int64(0)).Return(false, nil)

	e := newTestServer(orders, time.Now())
	rec := doJSON(e, http.MethodPost, "/orders", `{"table_number": 5, "dish_ids": [1, 999]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "999")
	// 注文は作られない
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderHandler_Create_DuplicateActiveTable(t *testing.T) {
	orders := new(HandlerOrderRepoMock)
	orders.On("ExistsActive", mock.Anything, 5, int64(0)).Return(true, nil)

	e := newTestServer(orders, time.Now())
	rec := doJSON(e, http.MethodPost, "/orders", `{"table_number": 5, "dish_ids": [1]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "active order")
}

func TestOrderHandler_Create_NonPositiveTable(t *testing.T) {
	e := newTestServer(new(HandlerOrderRepoMock), time.Now())
	rec := doJSON(e, http.MethodPost, "/orders", `{"table_number": -1, "dish_ids": []}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "table_number must be positive")
}

func TestOrderHandler_List_WithFilters(t *testing.T) {
	orders := new(HandlerOrderRepoMock)

	table := 5
	orders.On("List", mock.Anything, repo.OrderListFilter{TableNumber: &table, Status: "paid"}).
		Return([]model.Order{
			{ID: 1, TableNumber: 5, DishIDs: model.DishIDList{2}, TotalPrice: dec("10.50"), Status: model.OrderStatusPaid},
		}, nil)

	e := newTestServer(orders, time.Now())
	rec := doJSON(e, http.MethodGet, "/orders?table_number=5&status=paid", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var out []usecase.OrderOutput
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 1, len(out))
	assert.Equal(t, "Coffee - 10.50", out[0].DishNames)

	orders.AssertExpectations(t)
}

func TestOrderHandler_Detail_NotFound(t *testing.T) {
	orders := new(HandlerOrderRepoMock)
	orders.On("FindByID", mock.Anything, int64(99)).Return(model.Order{}, repo.ErrNotFound)

	e := newTestServer(orders, time.Now())
	rec := doJSON(e, http.MethodGet, "/orders/99", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderHandler_Update_PartialBody(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	orders := new(HandlerOrderRepoMock)
	orders.On("FindByID", mock.Anything, int64(1)).Return(model.Order{
		ID:          1,
		TableNumber: 5,
		DishIDs:     model.DishIDList{1, 2},
		TotalPrice:  dec("25.50"),
		Status:      model.OrderStatusWaiting,
	}, nil)
	orders.On("ExistsActive", mock.Anything, 5, int64(1)).Return(false, nil)
	orders.On("Update", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.TotalPrice.Equal(dec("10.50"))
	})).Return(nil)

	e := newTestServer(orders, now)
	rec := doJSON(e, http.MethodPut, "/orders/1", `{"dish_ids": [2]}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var out usecase.OrderOutput
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.TotalPrice.Equal(dec("10.50")))

	orders.AssertExpectations(t)
}

func TestOrderHandler_Delete_NotFound(t *testing.T) {
	orders := new(HandlerOrderRepoMock)
	orders.On("Delete", mock.Anything, int64(99)).Return(repo.ErrNotFound)

	e := newTestServer(orders, time.Now())
	rec := doJSON(e, http.MethodDelete, "/orders/99", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRevenueHandler_Report(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	orders := new(HandlerOrderRepoMock)
	wantStart := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)
	paid := time.Date(2025, 3, 2, 13, 0, 0, 0, time.UTC)
	orders.On("ListPaidBetween", mock.Anything, wantStart, wantEnd).Return([]model.Order{
		{ID: 1, TableNumber: 5, DishIDs: model.DishIDList{1}, TotalPrice: dec("15.00"), Status: model.OrderStatusPaid, PaidAt: &paid},
	}, nil)

	e := newTestServer(orders, now)
	rec := doJSON(e, http.MethodGet, "/orders/revenue?start_date=2025-03-01&end_date=2025-03-10", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var out usecase.RevenueOutput
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.TotalRevenue.Equal(dec("15.00")))
	assert.Equal(t, 1, len(out.Orders))

	orders.AssertExpectations(t)
}

func TestRevenueHandler_InvertedRange(t *testing.T) {
	e := newTestServer(new(HandlerOrderRepoMock), time.Now())
	rec := doJSON(e, http.MethodGet, "/orders/revenue?start_date=2025-03-10&end_date=2025-03-01", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "start must be before end")
}

func TestFormHandler_CreateRedirects(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	orders := new(HandlerOrderRepoMock)
	orders.On("ExistsActive", mock.Anything, 5, int64(0)).Return(false, nil)
	orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.TableNumber == 5 && o.TotalPrice.Equal(dec("25.50"))
	})).Return(model.Order{ID: 1, TableNumber: 5, Status: model.OrderStatusWaiting}, nil)

	e := newTestServer(orders, now)

	form := "table_number=5&dish_ids=1&dish_ids=2&status=waiting"
	req := httptest.NewRequest(http.MethodPost, "/web/orders", strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/web/orders", rec.Header().Get(echo.HeaderLocation))

	orders.AssertExpectations(t)
}

func TestFormHandler_CreateRejectsUnknownDish(t *testing.T) {
	orders := new(HandlerOrderRepoMock)
	orders.On("ExistsActive", mock.Anything, 5, int64(0)).Return(false, nil)

	e := newTestServer(orders, time.Now())

	form := "table_number=5&dish_ids=999"
	req := httptest.NewRequest(http.MethodPost, "/web/orders", strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "999")
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
