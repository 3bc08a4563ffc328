package http_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cadmeko-api/internal/application/auth"
	"github.com/jhoicas/cadmeko-api/internal/application/dto"
	"github.com/jhoicas/cadmeko-api/internal/application/inventory"
	"github.com/jhoicas/cadmeko-api/internal/application/orders"
	"github.com/jhoicas/cadmeko-api/internal/application/reports"
	"github.com/jhoicas/cadmeko-api/internal/application/usecase"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
	apphttp "github.com/jhoicas/cadmeko-api/internal/interfaces/http"
	"github.com/jhoicas/cadmeko-api/internal/testutil/memdb"
	"github.com/jhoicas/cadmeko-api/pkg/clock"
	"github.com/jhoicas/cadmeko-api/pkg/logger"
)

type stubPDF struct{}

func (stubPDF) RenderStockReport(context.Context, *dto.StockReportResponse) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

type apiFixture struct {
	app    *fiber.App
	store  *memdb.Store
	authUC *auth.AuthUseCase
	admin  string // header Authorization
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memdb.New()
	clk := clock.NewFake(time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC))
	log := logger.Nop()
	tx := memdb.NewTxRunner(store)
	stockRepo := memdb.NewStockRepository(store)
	productRepo := memdb.NewProductRepository(store)
	clientRepo := memdb.NewClientRepository(store)

	authUC := auth.NewAuthUseCase(memdb.NewUserRepository(store),
		auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer}, clk, log)
	ledger := inventory.NewLedgerUseCase(tx, stockRepo, memdb.NewMovementRepository(store), productRepo, clk, log)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    authUC,
		ProductUC: usecase.NewProductUseCase(productRepo, clk),
		ClientUC:  usecase.NewClientUseCase(clientRepo, clk),
		Ledger:    ledger,
		OrderUC:   orders.NewOrderUseCase(tx, ledger, memdb.NewOrderRepository(store), clientRepo, clk, log),
		ReportUC:  reports.NewReportUseCase(stockRepo, memdb.NewReportRepository(store), stubPDF{}, clk, 10, log),
		Clock:     clk,
		JWTSecret: testJWTSecret,
	})

	_, err := authUC.BootstrapAdmin(context.Background(), "admin", "motdepasse")
	require.NoError(t, err)
	f := &apiFixture{app: app, store: store, authUC: authUC}
	f.admin = f.login(t, "admin", "motdepasse")
	return f
}

func (f *apiFixture) login(t *testing.T, login, password string) string {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Login: login, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return "Bearer " + out.Token
}

// userWithRole crea una cuenta vía API y devuelve su header Authorization.
func (f *apiFixture) userWithRole(t *testing.T, login, role string) string {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/api/users", f.admin, dto.CreateUserRequest{
		Login: login, Password: "password1", PasswordConfirm: "password1", Role: role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return f.login(t, login, "password1")
}

func (f *apiFixture) do(t *testing.T, method, path, authz string, in any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, body
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func (f *apiFixture) seedProduct(t *testing.T, code string, qty int64) string {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/api/products", f.admin, dto.CreateProductRequest{
		Code: code, Name: "Produit " + code, Form: "comprimé", Dosage: "500 mg", ExpiryDate: "2028-01-31",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	p := decode[dto.ProductResponse](t, body)
	if qty > 0 {
		resp, body = f.do(t, http.MethodPost, "/api/stock/movements", f.admin, dto.RecordMovementRequest{
			ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: qty,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}
	return p.ID
}

func (f *apiFixture) seedClient(t *testing.T) string {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/api/clients", f.admin, dto.CreateClientRequest{Name: "Pharmacie du Centre"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decode[dto.ClientResponse](t, body).ID
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	return decode[dto.ErrorResponse](t, body).Code
}

func TestLogin(t *testing.T) {
	f := newAPI(t)

	resp, body := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Login: "admin", Password: "mauvais"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_FAILURE", errorCode(t, body))

	resp, body = f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Login: "admin"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, body))

	resp, body = f.do(t, http.MethodGet, "/api/me", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[dto.IdentityResponse](t, body)
	assert.Equal(t, "admin", me.Login)
	assert.Equal(t, entity.RoleAdmin, me.Role)
}

func TestStock_MovimientosYSaldo(t *testing.T) {
	f := newAPI(t)
	pid := f.seedProduct(t, "PARA500", 10)

	resp, body := f.do(t, http.MethodPost, "/api/stock/movements", f.admin, dto.RecordMovementRequest{
		ProductID: pid, Type: entity.MovementTypeOUT, Quantity: 11,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, body))

	resp, body = f.do(t, http.MethodPost, "/api/stock/movements", f.admin, dto.RecordMovementRequest{
		ProductID: pid, Type: entity.MovementTypeADJUSTMENT, Quantity: 3, Negative: true, Note: "casse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	mov := decode[dto.MovementResponse](t, body)
	assert.Equal(t, int64(-3), mov.Quantity)

	resp, body = f.do(t, http.MethodGet, "/api/stock/"+pid+"/balance", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(7), decode[dto.BalanceResponse](t, body).Quantity)

	resp, body = f.do(t, http.MethodGet, "/api/stock/"+pid+"/movements?from=2026-10-18&to=2026-10-18", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Len(t, decode[dto.MovementListResponse](t, body).Items, 2)

	resp, _ = f.do(t, http.MethodGet, "/api/stock/"+pid+"/movements?from=18/10/2026", f.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = f.do(t, http.MethodGet, "/api/stock", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.StockLevelResponse](t, body), 1)
}

func TestStock_SinRegistroYFalloDePersistencia(t *testing.T) {
	f := newAPI(t)
	pid := f.seedProduct(t, "AMOX", 0)

	resp, body := f.do(t, http.MethodPost, "/api/stock/movements", f.admin, dto.RecordMovementRequest{
		ProductID: pid, Type: entity.MovementTypeOUT, Quantity: 1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_STOCK_RECORD", errorCode(t, body))

	f.store.Fail("movement.create", assert.AnError)
	resp, body = f.do(t, http.MethodPost, "/api/stock/movements", f.admin, dto.RecordMovementRequest{
		ProductID: pid, Type: entity.MovementTypeIN, Quantity: 1,
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, body)
	assert.Equal(t, "PERSISTENCE_ERROR", out.Code)
	assert.Contains(t, out.Message, assert.AnError.Error(), "el mensaje del fallo se expone tal cual")
}

func TestOrders_FlujoCompleto(t *testing.T) {
	f := newAPI(t)
	clerk := f.userWithRole(t, "saisie", entity.RoleClerk)
	pid := f.seedProduct(t, "IBU400", 10)
	cid := f.seedClient(t)

	resp, body := f.do(t, http.MethodPost, "/api/orders", clerk, dto.CreateOrderRequest{ClientID: cid})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	order := decode[dto.OrderResponse](t, body)
	assert.Equal(t, "CMD-20261018-001", order.Code)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, string(entity.OrderStateOpen), order.State)

	resp, body = f.do(t, http.MethodPost, "/api/orders/"+order.ID+"/lines", clerk, dto.AddLineRequest{ProductID: pid, Quantity: 4})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = f.do(t, http.MethodPost, "/api/orders/"+order.ID+"/lines", clerk, dto.AddLineRequest{ProductID: pid, Quantity: 7})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, body))

	resp, body = f.do(t, http.MethodGet, "/api/stock/"+pid+"/balance", clerk, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "el saldo es visible para la captura de pedidos")
	assert.Equal(t, int64(6), decode[dto.BalanceResponse](t, body).Quantity)

	resp, body = f.do(t, http.MethodPost, "/api/orders/"+order.ID+"/finalize", clerk, dto.FinalizeOrderRequest{Status: entity.OrderStatusDelivered})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))

	resp, body = f.do(t, http.MethodPost, "/api/orders/"+order.ID+"/finalize", clerk, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, string(entity.OrderStateFinalized), decode[dto.OrderResponse](t, body).State)

	resp, body = f.do(t, http.MethodPost, "/api/orders/"+order.ID+"/finalize", f.admin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ORDER_NOT_OPEN", errorCode(t, body))

	resp, body = f.do(t, http.MethodGet, "/api/orders/"+order.ID, clerk, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[dto.OrderResponse](t, body)
	require.Len(t, detail.Lines, 1)
	assert.Equal(t, int64(4), detail.Lines[0].QuantityRequested)
	assert.Equal(t, "Pharmacie du Centre", detail.ClientName)

	resp, body = f.do(t, http.MethodGet, "/api/orders?limit=500", clerk, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.OrderListResponse](t, body)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 100, list.Page.Limit, "limit acotado")
}

func TestRBAC_PorGrupo(t *testing.T) {
	f := newAPI(t)
	clerk := f.userWithRole(t, "saisie", entity.RoleClerk)
	pharma := f.userWithRole(t, "pharma", entity.RolePharmacist)

	cases := []struct {
		method, path, authz string
		want                int
	}{
		{http.MethodGet, "/api/products", clerk, http.StatusForbidden},
		{http.MethodGet, "/api/products", pharma, http.StatusOK},
		{http.MethodGet, "/api/stock", clerk, http.StatusForbidden},
		{http.MethodGet, "/api/reports/stock", clerk, http.StatusForbidden},
		{http.MethodGet, "/api/dashboard", clerk, http.StatusOK},
		{http.MethodGet, "/api/products.csv", clerk, http.StatusForbidden},
		{http.MethodGet, "/api/products.csv", pharma, http.StatusOK},
		{http.MethodGet, "/api/users", pharma, http.StatusForbidden},
		{http.MethodGet, "/api/users", f.admin, http.StatusOK},
		{http.MethodGet, "/api/clients", clerk, http.StatusOK},
		{http.MethodGet, "/api/orders", "", http.StatusUnauthorized},
	}
	for _, c := range cases {
		resp, body := f.do(t, c.method, c.path, c.authz, nil)
		assert.Equal(t, c.want, resp.StatusCode, "%s %s: %s", c.method, c.path, body)
	}
}

func TestUsers_Administracion(t *testing.T) {
	f := newAPI(t)
	resp, body := f.do(t, http.MethodPost, "/api/users", f.admin, dto.CreateUserRequest{
		Login: "marie", Password: "password1", PasswordConfirm: "password1", Role: entity.RoleClerk,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	user := decode[dto.UserResponse](t, body)

	resp, _ = f.do(t, http.MethodPost, "/api/users", f.admin, dto.CreateUserRequest{
		Login: "marie", Password: "password1", PasswordConfirm: "password1", Role: entity.RoleClerk,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = f.do(t, http.MethodPut, "/api/users/"+user.ID+"/role", f.admin, dto.UpdateRoleRequest{Role: entity.RoleManager})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, entity.RoleManager, decode[dto.UserResponse](t, body).Role)

	resp, _ = f.do(t, http.MethodPut, "/api/users/"+user.ID+"/password", f.admin, dto.ResetPasswordRequest{Password: "nouveau-pass"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	f.login(t, "marie", "nouveau-pass")

	resp, _ = f.do(t, http.MethodDelete, "/api/users/"+user.ID, f.admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = f.do(t, http.MethodDelete, "/api/users/"+user.ID, f.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReports(t *testing.T) {
	f := newAPI(t)
	pid := f.seedProduct(t, "PARA500", 3)
	f.seedProduct(t, "AMOX", 30)
	cid := f.seedClient(t)

	resp, body := f.do(t, http.MethodPost, "/api/orders", f.admin, dto.CreateOrderRequest{ClientID: cid})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decode[dto.OrderResponse](t, body)
	resp, _ = f.do(t, http.MethodPost, "/api/orders/"+order.ID+"/lines", f.admin, dto.AddLineRequest{ProductID: pid, Quantity: 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = f.do(t, http.MethodGet, "/api/reports/stock?threshold=5", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	stock := decode[dto.StockReportResponse](t, body)
	assert.Len(t, stock.Items, 2)
	require.Len(t, stock.LowStock, 1)
	assert.Equal(t, int64(1), stock.LowStock[0].Quantity)

	resp, body = f.do(t, http.MethodGet, "/api/reports/stock?threshold=51", f.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
	resp, body = f.do(t, http.MethodGet, "/api/reports/stock?threshold=-1", f.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
	assert.Equal(t, "VALIDATION", errorCode(t, body))
	resp, body = f.do(t, http.MethodGet, "/api/reports/stock.pdf?threshold=abc", f.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = f.do(t, http.MethodGet, "/api/reports/stock", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, int64(10), decode[dto.StockReportResponse](t, body).Threshold, "umbral configurado")

	resp, body = f.do(t, http.MethodGet, "/api/reports/stock.csv", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "etat_stock.csv")
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)

	resp, body = f.do(t, http.MethodGet, "/api/reports/stock.pdf", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4 stub", string(body))

	resp, body = f.do(t, http.MethodGet, "/api/reports/orders", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	period := decode[dto.OrdersReportResponse](t, body)
	require.Len(t, period.Lines, 1)
	assert.Equal(t, "CMD-20261018-001", period.Lines[0].OrderCode)

	resp, _ = f.do(t, http.MethodGet, "/api/reports/orders?from=2026-10-19&to=2026-10-18", f.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = f.do(t, http.MethodGet, "/api/reports/orders.csv?from=2026-10-18", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "18/10/2026")

	resp, body = f.do(t, http.MethodGet, "/api/dashboard", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dash := decode[dto.DashboardResponse](t, body)
	assert.Equal(t, int64(2), dash.Products)
	assert.Equal(t, int64(1), dash.Orders)
	assert.Len(t, dash.RecentOrders, 1)
}

func TestProducts_ExportCSV(t *testing.T) {
	f := newAPI(t)
	f.seedProduct(t, "PARA500", 0)
	f.seedProduct(t, "AMOX", 0)

	resp, body := f.do(t, http.MethodGet, "/api/products.csv", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "produits.csv")

	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "date_peremption", records[0][4])
	codes := []string{records[1][0], records[2][0]}
	assert.ElementsMatch(t, []string{"PARA500", "AMOX"}, codes)
	assert.Equal(t, "31/01/2028", records[1][4])
}

func TestIDsMalFormados(t *testing.T) {
	f := newAPI(t)
	pid := f.seedProduct(t, "PARA500", 5)
	cid := f.seedClient(t)
	resp, body := f.do(t, http.MethodPost, "/api/orders", f.admin, dto.CreateOrderRequest{ClientID: cid})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	order := decode[dto.OrderResponse](t, body)
	unknown := "0b7f6a52-9c1e-4d3a-8f2b-5e6d7c8a9b10"

	cases := []struct {
		method, path string
		in           any
		want         int
		code         string
	}{
		{http.MethodGet, "/api/products/abc", nil, http.StatusBadRequest, "VALIDATION"},
		{http.MethodGet, "/api/products/" + unknown, nil, http.StatusNotFound, "NOT_FOUND"},
		{http.MethodGet, "/api/clients/abc", nil, http.StatusBadRequest, "VALIDATION"},
		{http.MethodGet, "/api/stock/abc/balance", nil, http.StatusBadRequest, "VALIDATION"},
		{http.MethodGet, "/api/stock/" + unknown + "/movements", nil, http.StatusNotFound, "NOT_FOUND"},
		{http.MethodPost, "/api/stock/movements", dto.RecordMovementRequest{ProductID: "abc", Type: entity.MovementTypeIN, Quantity: 1}, http.StatusBadRequest, "VALIDATION"},
		{http.MethodGet, "/api/orders/abc", nil, http.StatusBadRequest, "VALIDATION"},
		{http.MethodGet, "/api/orders/" + unknown, nil, http.StatusNotFound, "NOT_FOUND"},
		{http.MethodPost, "/api/orders/abc/lines", dto.AddLineRequest{ProductID: pid, Quantity: 1}, http.StatusBadRequest, "VALIDATION"},
		{http.MethodPost, "/api/orders/" + order.ID + "/lines", dto.AddLineRequest{ProductID: "abc", Quantity: 1}, http.StatusBadRequest, "VALIDATION"},
		{http.MethodPost, "/api/orders", dto.CreateOrderRequest{ClientID: "abc"}, http.StatusBadRequest, "VALIDATION"},
		{http.MethodPut, "/api/users/abc/role", dto.UpdateRoleRequest{Role: entity.RoleManager}, http.StatusBadRequest, "VALIDATION"},
		{http.MethodDelete, "/api/users/" + unknown, nil, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, c := range cases {
		resp, body := f.do(t, c.method, c.path, f.admin, c.in)
		assert.Equal(t, c.want, resp.StatusCode, "%s %s: %s", c.method, c.path, body)
		assert.Equal(t, c.code, errorCode(t, body), "%s %s", c.method, c.path)
	}
}
