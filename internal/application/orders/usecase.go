package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/cadmeko-api/internal/application/auth"
	"github.com/jhoicas/cadmeko-api/internal/application/inventory"
	"github.com/jhoicas/cadmeko-api/internal/domain"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
	"github.com/jhoicas/cadmeko-api/internal/domain/repository"
	"github.com/jhoicas/cadmeko-api/pkg/clock"
	"github.com/jhoicas/cadmeko-api/pkg/logger"
)

const (
	orderCodePrefix = "CMD"
	orderCodeDay    = "20060102"
)

// FormatOrderCode arma el código legible del pedido: CMD-YYYYMMDD-NNN.
func FormatOrderCode(day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", orderCodePrefix, day.Format(orderCodeDay), seq)
}

// OrderUseCase flujo de pedidos: Draft -> Open -> Finalized.
type OrderUseCase struct {
	txRunner   TxRunner
	ledger     StockLedger
	orderRepo  repository.OrderRepository
	clientRepo repository.ClientRepository
	clock      clock.Clock
	log        *logger.Logger
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(
	txRunner TxRunner,
	ledger StockLedger,
	orderRepo repository.OrderRepository,
	clientRepo repository.ClientRepository,
	clk clock.Clock,
	log *logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		txRunner:   txRunner,
		ledger:     ledger,
		orderRepo:  orderRepo,
		clientRepo: clientRepo,
		clock:      clk,
		log:        log.Component("orders"),
	}
}

// CreateOrder persiste el borrador como pedido abierto (PENDING) con el siguiente código del día.
// El conteo del día y la inserción ocurren bajo el mismo lock transaccional.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, identity entity.Identity, draft entity.OrderDraft) (*entity.Order, error) {
	if err := auth.Require(identity, auth.OrderRoles...); err != nil {
		return nil, err
	}
	if !entity.ValidID(draft.ClientID) {
		return nil, domain.ErrInvalidInput
	}
	client, err := uc.clientRepo.GetByID(ctx, draft.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.clock.Now()
	order := &entity.Order{
		ID:        uuid.New().String(),
		Date:      now,
		Status:    entity.OrderStatusPending,
		ClientID:  client.ID,
		CreatedBy: identity.UserID,
		CreatedAt: now,
	}
	err = uc.txRunner.RunOrder(ctx, func(
		_ repository.StockMovementRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		seq, err := orderRepo.NextDailySequence(ctx, now)
		if err != nil {
			return err
		}
		order.Code = FormatOrderCode(now, seq)
		return orderRepo.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	order.ClientName = client.Name
	uc.log.Info().Str("order_id", order.ID).Str("code", order.Code).
		Str("client_id", client.ID).Str("by", identity.Login).Msg("pedido creado")
	return order, nil
}

// AddLine agrega una línea al pedido abierto y descuenta la cantidad del stock en la misma tx.
// Cantidad mayor al saldo: ErrInsufficientStock, sin línea ni movimiento.
func (uc *OrderUseCase) AddLine(ctx context.Context, identity entity.Identity, orderID, productID string, quantity int64) (*entity.OrderLine, error) {
	if err := auth.Require(identity, auth.OrderRoles...); err != nil {
		return nil, err
	}
	if !entity.ValidID(orderID) || !entity.ValidID(productID) {
		return nil, domain.ErrInvalidInput
	}
	delta, err := inventory.SignedDelta(entity.MovementTypeOUT, quantity, false)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	var (
		line    *entity.OrderLine
		code    string
		balance int64
	)
	err = uc.txRunner.RunOrder(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		order, err := orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.State() != entity.OrderStateOpen {
			return domain.ErrOrderNotOpen
		}
		code = order.Code
		_, balance, err = uc.ledger.ApplyInTx(ctx, movRepo, stockRepo, productRepo, inventory.Entry{
			ProductID: productID,
			Type:      entity.MovementTypeOUT,
			Delta:     delta,
			Note:      "Pedido " + order.Code,
			OrderID:   order.ID,
			UserID:    identity.UserID,
			Date:      now,
		})
		if errors.Is(err, domain.ErrUnknownStockRecord) {
			// sin fila de stock el saldo es 0: cualquier cantidad pedida es insuficiente
			return domain.ErrInsufficientStock
		}
		if err != nil {
			return err
		}
		line = &entity.OrderLine{
			ID:                uuid.New().String(),
			OrderID:           order.ID,
			ProductID:         productID,
			QuantityRequested: quantity,
			QuantityDelivered: 0,
		}
		return orderRepo.AddLine(ctx, line)
	})
	if err != nil {
		uc.log.Debug().Str("order_id", orderID).Str("product_id", productID).
			Int64("quantity", quantity).Err(err).Msg("línea rechazada")
		return nil, err
	}
	uc.log.Info().Str("order_id", orderID).Str("code", code).Str("product_id", productID).
		Int64("quantity", quantity).Int64("balance", balance).Str("by", identity.Login).Msg("línea agregada")
	return line, nil
}

// Finalize cierra el pedido con el estado indicado (vacío = PENDING). Solo una vez por pedido.
// El agente de captura solo puede dejarlo en PENDING. Anular no devuelve el stock reservado.
func (uc *OrderUseCase) Finalize(ctx context.Context, identity entity.Identity, orderID, status string) (*entity.Order, error) {
	if err := auth.Require(identity, auth.OrderRoles...); err != nil {
		return nil, err
	}
	if !entity.ValidID(orderID) {
		return nil, domain.ErrInvalidInput
	}
	if status == "" {
		status = entity.OrderStatusPending
	}
	if !entity.IsValidOrderStatus(status) {
		return nil, domain.ErrInvalidInput
	}
	if status != entity.OrderStatusPending && !auth.Authorize(identity, auth.FinalizeAnyStatusRoles...) {
		return nil, domain.ErrForbidden
	}

	var order *entity.Order
	err := uc.txRunner.RunOrder(ctx, func(
		_ repository.StockMovementRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		var err error
		order, err = orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.State() != entity.OrderStateOpen {
			return domain.ErrOrderNotOpen
		}
		finalizedAt := uc.clock.Now()
		order.Status = status
		order.FinalizedAt = &finalizedAt
		return orderRepo.Finalize(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", order.ID).Str("code", order.Code).Str("status", status).
		Str("by", identity.Login).Msg("pedido finalizado")
	return order, nil
}

// GetOrder devuelve el pedido con sus líneas.
func (uc *OrderUseCase) GetOrder(ctx context.Context, identity entity.Identity, orderID string) (*entity.Order, []*entity.OrderLine, error) {
	if err := auth.Require(identity, auth.OrderRoles...); err != nil {
		return nil, nil, err
	}
	if !entity.ValidID(orderID) {
		return nil, nil, domain.ErrInvalidInput
	}
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, domain.ErrNotFound
	}
	lines, err := uc.orderRepo.ListLines(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}
	return order, lines, nil
}

// ListOrders historial de pedidos, del más reciente al más antiguo.
func (uc *OrderUseCase) ListOrders(ctx context.Context, identity entity.Identity, limit, offset int) ([]*entity.Order, error) {
	if err := auth.Require(identity, auth.OrderRoles...); err != nil {
		return nil, err
	}
	return uc.orderRepo.List(ctx, limit, offset)
}
