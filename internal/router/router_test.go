package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/pricing"
	"github.com/iliyamo/restaurant-pos/internal/repository/memstore"
	"github.com/iliyamo/restaurant-pos/internal/service"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

const secret = "router-test-secret"

type api struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) *api {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memstore.New()
	catalog := memstore.SeedDemo(store, now)
	svc := service.New(store, catalog, pricing.NewEngine(decimal.RequireFromString("0.13")), zap.NewNop(),
		service.WithClock(func() time.Time { return now }))
	pinHash, err := utils.HashPIN("2468", bcrypt.MinCost)
	require.NoError(t, err)

	e := echo.New()
	Register(e, Handlers{
		Health:   &handler.HealthHandler{Svc: svc},
		Catalog:  &handler.CatalogHandler{Svc: svc},
		Orders:   handler.NewOrderHandler(svc, pinHash),
		Tables:   &handler.TableHandler{Svc: svc},
		Payments: &handler.PaymentHandler{Svc: svc},
	}, Options{JWTSecret: secret, Logger: zap.NewNop()})
	return &api{t: t, e: e}
}

func token(t *testing.T, id uint64, role model.Role) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, id, string(role), 10)
	require.NoError(t, err)
	return tok.Token
}

func (a *api) do(method, path, tok string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func TestHealthAndAuth(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/menu", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/menu", token(t, 1, "GUEST"), nil).Code)

	rec = a.do(http.MethodGet, "/v1/menu", token(t, 1, model.RoleKitchen), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	menu := decode[struct {
		Items []model.MenuItem `json:"items"`
	}](t, rec)
	assert.Len(t, menu.Items, 7)

	rec = a.do(http.MethodGet, "/v1/promotions/active", token(t, 1, model.RoleStaff), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	promos := decode[struct {
		Promotions []model.Promotion `json:"promotions"`
	}](t, rec)
	require.Len(t, promos.Promotions, 1)
	assert.Equal(t, "Burger Combo", promos.Promotions[0].Name)
}

func TestOrderFlowOverHTTP(t *testing.T) {
	a := newAPI(t)
	staff := token(t, 11, model.RoleStaff)
	kitchen := token(t, 21, model.RoleKitchen)
	tableID := uint64(1)

	create := map[string]any{
		"order_type": "DINE_IN",
		"table_id":   tableID,
		"items": []map[string]any{
			{"menu_item_id": 1, "quantity": 1, "promotion_id": 1},
			{"menu_item_id": 2, "quantity": 1, "promotion_id": 1},
			{"menu_item_id": 5, "quantity": 1},
		},
	}
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/v1/orders", kitchen, create).Code)

	rec := a.do(http.MethodPost, "/v1/orders", staff, create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[service.OrderDetail](t, rec)
	assert.Equal(t, int64(1598), order.SubtotalCents)
	assert.Equal(t, int64(299), order.BundleSavingsCents)
	assert.Equal(t, int64(1468), order.TotalAmountCents)
	assert.Equal(t, model.OrderCreated, order.Status)
	path := "/v1/orders/" + itoa(order.ID)

	rec = a.do(http.MethodPost, path+"/ready", kitchen, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.OrderReady, decode[service.OrderDetail](t, rec).Status)

	discount := map[string]any{"type": "PERCENTAGE", "value": "10", "reason": "regular"}
	rec = a.do(http.MethodPost, path+"/discount", staff, discount)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Unauthorized", decode[errorBody](t, rec).Error)

	rec = a.do(http.MethodPost, path+"/discount", staff, discount, handler.HeaderManagerPIN, "2468")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(1321), decode[service.OrderDetail](t, rec).TotalAmountCents)

	rec = a.do(http.MethodGet, path+"/quote?tip_cents=200", kitchen, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	q := decode[pricing.Quote](t, rec)
	assert.Equal(t, int64(1521), q.GrandTotalCents)

	rec = a.do(http.MethodPost, path+"/payment", staff, map[string]any{"amount": "13.21", "method": "CARD"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	receipt := decode[service.Receipt](t, rec)
	assert.Equal(t, model.OrderPaid, receipt.Order.Status)

	rec = a.do(http.MethodPost, path+"/payment", staff, map[string]any{"amount_cents": 1321, "method": "CARD"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "AlreadyPaid", decode[errorBody](t, rec).Error)

	rec = a.do(http.MethodGet, "/v1/tables/"+itoa(tableID), kitchen, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.TableVacant, decode[model.TableView](t, rec).Status)
}

func TestTablesOverHTTP(t *testing.T) {
	a := newAPI(t)
	staff := token(t, 11, model.RoleStaff)

	rec := a.do(http.MethodPost, "/v1/tables/merge", staff, map[string]any{"table_ids": []uint64{1, 2, 3}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[model.TableView](t, rec)
	assert.Equal(t, 12, view.EffectiveCapacity)
	assert.Len(t, view.Satellites, 2)

	rec = a.do(http.MethodPost, "/v1/tables/merge", staff, map[string]any{"table_ids": []uint64{4, 2}})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "AlreadyMerged", decode[errorBody](t, rec).Error)

	rec = a.do(http.MethodPost, "/v1/tables/1/unmerge", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decode[model.TableView](t, rec).EffectiveCapacity)

	rec = a.do(http.MethodPatch, "/v1/tables/4/status", staff, map[string]any{"status": "RESERVED"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.TableReserved, decode[model.TableView](t, rec).Status)

	rec = a.do(http.MethodGet, "/v1/tables/99", staff, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.do(http.MethodGet, "/v1/tables/abc", staff, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodGet, "/v1/tables", token(t, 3, model.RoleKitchen), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Tables []model.TableView `json:"tables"`
	}](t, rec)
	assert.Len(t, list.Tables, 8)
}

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }
