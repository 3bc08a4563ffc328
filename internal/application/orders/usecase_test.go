package orders_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cadmeko-api/internal/application/inventory"
	"github.com/jhoicas/cadmeko-api/internal/application/orders"
	"github.com/jhoicas/cadmeko-api/internal/domain"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
	"github.com/jhoicas/cadmeko-api/internal/testutil/memdb"
	"github.com/jhoicas/cadmeko-api/pkg/clock"
	"github.com/jhoicas/cadmeko-api/pkg/logger"
)

var (
	admin      = entity.Identity{UserID: "u-admin", Login: "admin", Role: entity.RoleAdmin}
	pharmacist = entity.Identity{UserID: "u-pharma", Login: "pharma", Role: entity.RolePharmacist}
	clerk      = entity.Identity{UserID: "u-clerk", Login: "saisie", Role: entity.RoleClerk}
)

// id deriva un UUID estable a partir de un nombre legible.
func id(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

type fixture struct {
	store  *memdb.Store
	clock  *clock.Fake
	ledger *inventory.LedgerUseCase
	uc     *orders.OrderUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memdb.New()
	clk := clock.NewFake(time.Date(2026, 10, 18, 10, 30, 0, 0, time.UTC))
	tx := memdb.NewTxRunner(store)
	ledger := inventory.NewLedgerUseCase(tx,
		memdb.NewStockRepository(store), memdb.NewMovementRepository(store), memdb.NewProductRepository(store),
		clk, logger.Nop())
	uc := orders.NewOrderUseCase(tx, ledger,
		memdb.NewOrderRepository(store), memdb.NewClientRepository(store), clk, logger.Nop())

	ctx := context.Background()
	require.NoError(t, memdb.NewClientRepository(store).Create(ctx, &entity.Client{
		ID: id("cli-1"), Name: "Pharmacie du Centre", CreatedAt: clk.Now(),
	}))
	return &fixture{store: store, clock: clk, ledger: ledger, uc: uc}
}

// stocked crea el producto y, si qty > 0, registra una entrada inicial.
func (f *fixture) stocked(t *testing.T, name string, qty int64) {
	t.Helper()
	ctx := context.Background()
	now := f.clock.Now()
	require.NoError(t, memdb.NewProductRepository(f.store).Create(ctx, &entity.Product{
		ID: id(name), Code: "C-" + name, Name: "Produit " + name,
		ExpiryDate: now.AddDate(2, 0, 0), UnitPrice: decimal.NewFromInt(100), CreatedAt: now, UpdatedAt: now,
	}))
	if qty > 0 {
		_, err := f.ledger.RecordMovement(ctx, admin, inventory.MovementInputDTO{
			ProductID: id(name), Type: entity.MovementTypeIN, Quantity: qty,
		})
		require.NoError(t, err)
	}
}

func (f *fixture) balance(t *testing.T, product string) int64 {
	t.Helper()
	b, err := f.ledger.GetBalance(context.Background(), admin, id(product))
	require.NoError(t, err)
	return b
}

func (f *fixture) open(t *testing.T, who entity.Identity) *entity.Order {
	t.Helper()
	o, err := f.uc.CreateOrder(context.Background(), who, entity.OrderDraft{ClientID: id("cli-1")})
	require.NoError(t, err)
	return o
}

func TestFormatOrderCode(t *testing.T) {
	day := time.Date(2026, 3, 7, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "CMD-20260307-001", orders.FormatOrderCode(day, 1))
	assert.Equal(t, "CMD-20260307-042", orders.FormatOrderCode(day, 42))
	assert.Equal(t, "CMD-20260307-1000", orders.FormatOrderCode(day, 1000))
}

func TestCreateOrder_CodigosDelDia(t *testing.T) {
	f := newFixture(t)

	first := f.open(t, clerk)
	second := f.open(t, pharmacist)
	assert.Equal(t, "CMD-20261018-001", first.Code)
	assert.Equal(t, "CMD-20261018-002", second.Code)
	assert.NotEqual(t, first.ID, second.ID)

	assert.Equal(t, entity.OrderStatusPending, first.Status)
	assert.Equal(t, entity.OrderStateOpen, first.State())
	assert.Equal(t, "Pharmacie du Centre", first.ClientName)
	assert.Equal(t, clerk.UserID, first.CreatedBy)

	f.clock.Advance(24 * time.Hour)
	next := f.open(t, clerk)
	assert.Equal(t, "CMD-20261019-001", next.Code, "la secuencia reinicia cada día")
}

func TestCreateOrder_ClienteInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.CreateOrder(context.Background(), clerk, entity.OrderDraft{ClientID: id("nadie")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.CreateOrder(context.Background(), clerk, entity.OrderDraft{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.CreateOrder(context.Background(), clerk, entity.OrderDraft{ClientID: "cli-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreateOrder(context.Background(), entity.Identity{}, entity.OrderDraft{ClientID: id("cli-1")})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAddLine_ReservaStockEnElMomento(t *testing.T) {
	f := newFixture(t)
	f.stocked(t, "productX", 10)
	order := f.open(t, clerk)

	line, err := f.uc.AddLine(context.Background(), clerk, order.ID, id("productX"), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), line.QuantityRequested)
	assert.Equal(t, int64(0), line.QuantityDelivered)
	assert.Equal(t, int64(6), f.balance(t, "productX"))

	_, err = f.uc.AddLine(context.Background(), clerk, order.ID, id("productX"), 10)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(6), f.balance(t, "productX"), "el saldo no cambia tras el rechazo")

	lines := f.store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(4), lines[0].QuantityRequested)

	movs := f.store.Movements()
	require.Len(t, movs, 2, "entrada inicial + reserva")
	assert.Equal(t, int64(-4), movs[1].Quantity)
	assert.Equal(t, entity.MovementTypeOUT, movs[1].Type)
	assert.Equal(t, order.ID, movs[1].OrderID)
	assert.Contains(t, movs[1].Note, order.Code)
}

func TestAddLine_ProductoSinStock(t *testing.T) {
	f := newFixture(t)
	f.stocked(t, "vacío", 0)
	order := f.open(t, clerk)

	_, err := f.uc.AddLine(context.Background(), clerk, order.ID, id("vacío"), 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, f.store.Lines())
	assert.Empty(t, f.store.Movements())
}

func TestAddLine_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.stocked(t, "p", 5)
	order := f.open(t, clerk)
	ctx := context.Background()

	_, err := f.uc.AddLine(ctx, clerk, order.ID, id("p"), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.AddLine(ctx, clerk, id("no-existe"), id("p"), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.AddLine(ctx, clerk, order.ID, id("no-existe"), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.AddLine(ctx, clerk, "abc", id("p"), 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "id de pedido sin formato UUID")
	_, err = f.uc.AddLine(ctx, clerk, order.ID, "abc", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "id de producto sin formato UUID")
	assert.Empty(t, f.store.Lines())
	assert.Equal(t, int64(5), f.balance(t, "p"))
}

func TestAddLine_FalloAlGuardarLineaDeshaceLaReserva(t *testing.T) {
	f := newFixture(t)
	f.stocked(t, "p", 5)
	order := f.open(t, clerk)

	f.store.Fail("order.addline", errors.New("deadlock detected"))
	_, err := f.uc.AddLine(context.Background(), clerk, order.ID, id("p"), 2)
	require.ErrorIs(t, err, domain.ErrPersistence)
	f.store.ClearFaults()

	assert.Equal(t, int64(5), f.balance(t, "p"))
	assert.Len(t, f.store.Movements(), 1)
	assert.Empty(t, f.store.Lines())
}

func TestFinalize_SoloUnaVez(t *testing.T) {
	f := newFixture(t)
	f.stocked(t, "p", 5)
	order := f.open(t, pharmacist)

	done, err := f.uc.Finalize(context.Background(), pharmacist, order.ID, entity.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, done.Status)
	assert.Equal(t, entity.OrderStateFinalized, done.State())
	require.NotNil(t, done.FinalizedAt)

	_, err = f.uc.Finalize(context.Background(), pharmacist, order.ID, entity.OrderStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrOrderNotOpen)

	_, err = f.uc.AddLine(context.Background(), pharmacist, order.ID, id("p"), 1)
	assert.ErrorIs(t, err, domain.ErrOrderNotOpen)
	assert.Equal(t, int64(5), f.balance(t, "p"))

	got, _, err := f.uc.GetOrder(context.Background(), pharmacist, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, got.Status)
}

func TestFinalize_AgenteDeCapturaSoloEnEspera(t *testing.T) {
	f := newFixture(t)
	order := f.open(t, clerk)

	_, err := f.uc.Finalize(context.Background(), clerk, order.ID, entity.OrderStatusDelivered)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	got, _, err := f.uc.GetOrder(context.Background(), clerk, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStateOpen, got.State(), "el rechazo no cierra el pedido")

	done, err := f.uc.Finalize(context.Background(), clerk, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, done.Status)
	assert.Equal(t, entity.OrderStateFinalized, done.State())
}

func TestFinalize_EstadoInvalido(t *testing.T) {
	f := newFixture(t)
	order := f.open(t, admin)
	_, err := f.uc.Finalize(context.Background(), admin, order.ID, "SHIPPED")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFinalize_AnularNoDevuelveStock(t *testing.T) {
	f := newFixture(t)
	f.stocked(t, "p", 10)
	order := f.open(t, pharmacist)
	_, err := f.uc.AddLine(context.Background(), pharmacist, order.ID, id("p"), 3)
	require.NoError(t, err)

	_, err = f.uc.Finalize(context.Background(), pharmacist, order.ID, entity.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, int64(7), f.balance(t, "p"))
}

func TestGetOrderYListOrders(t *testing.T) {
	f := newFixture(t)
	f.stocked(t, "a", 10)
	f.stocked(t, "b", 10)
	first := f.open(t, clerk)
	_, err := f.uc.AddLine(context.Background(), clerk, first.ID, id("a"), 1)
	require.NoError(t, err)
	_, err = f.uc.AddLine(context.Background(), clerk, first.ID, id("b"), 2)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	second := f.open(t, clerk)

	order, lines, err := f.uc.GetOrder(context.Background(), clerk, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Code, order.Code)
	require.Len(t, lines, 2)
	assert.Equal(t, "Produit a", lines[0].ProductName)

	list, err := f.uc.ListOrders(context.Background(), clerk, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "más reciente primero")
	assert.Equal(t, "Pharmacie du Centre", list[0].ClientName)

	_, _, err = f.uc.GetOrder(context.Background(), clerk, id("no-existe"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = f.uc.GetOrder(context.Background(), clerk, "no-existe")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.Finalize(context.Background(), admin, "no-existe", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
