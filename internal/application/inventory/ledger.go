package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/cadmeko-api/internal/application/auth"
	"github.com/jhoicas/cadmeko-api/internal/domain"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
	"github.com/jhoicas/cadmeko-api/internal/domain/repository"
	"github.com/jhoicas/cadmeko-api/pkg/clock"
	"github.com/jhoicas/cadmeko-api/pkg/logger"
)

// maxMovementQuantity cota superior de una cantidad individual; evita desbordar int64 al sumar.
const maxMovementQuantity int64 = 1_000_000_000

// LedgerUseCase es el libro de stock: única vía de escritura sobre la tabla stock.
// Cada movimiento bloquea la fila del producto (SELECT FOR UPDATE) y luego la de stock,
// de modo que la verificación del saldo y la escritura ocurren en la misma transacción.
type LedgerUseCase struct {
	txRunner    TxRunner
	stockRepo   repository.StockRepository
	movRepo     repository.StockMovementRepository
	productRepo repository.ProductRepository
	clock       clock.Clock
	log         *logger.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	clk clock.Clock,
	log *logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:    txRunner,
		stockRepo:   stockRepo,
		movRepo:     movRepo,
		productRepo: productRepo,
		clock:       clk,
		log:         log.Component("stock_ledger"),
	}
}

// MovementInputDTO entrada para registrar un movimiento.
// Quantity es siempre positiva; el signo sale del tipo (IN +, OUT −) o de Negative para ADJUSTMENT.
type MovementInputDTO struct {
	ProductID string
	Type      string
	Quantity  int64
	Negative  bool
	Note      string
}

// Entry movimiento ya validado, con delta firmado, listo para aplicarse en una tx abierta.
type Entry struct {
	ProductID string
	Type      string
	Delta     int64
	Note      string
	OrderID   string
	UserID    string
	Date      time.Time
}

// SignedDelta calcula el delta con signo según el tipo de movimiento.
func SignedDelta(movementType string, quantity int64, negative bool) (int64, error) {
	if quantity <= 0 || quantity > maxMovementQuantity {
		return 0, domain.ErrInvalidInput
	}
	switch movementType {
	case entity.MovementTypeIN:
		return quantity, nil
	case entity.MovementTypeOUT:
		return -quantity, nil
	case entity.MovementTypeADJUSTMENT:
		if negative {
			return -quantity, nil
		}
		return quantity, nil
	}
	return 0, domain.ErrInvalidInput
}

// RecordMovement valida la entrada y aplica el movimiento en su propia transacción.
// Si el saldo resultante fuera negativo devuelve ErrInsufficientStock y no escribe nada.
func (uc *LedgerUseCase) RecordMovement(ctx context.Context, identity entity.Identity, input MovementInputDTO) (*entity.StockMovement, error) {
	if err := auth.Require(identity, auth.StockRoles...); err != nil {
		return nil, err
	}
	if !entity.ValidID(input.ProductID) {
		return nil, domain.ErrInvalidInput
	}
	delta, err := SignedDelta(input.Type, input.Quantity, input.Negative)
	if err != nil {
		return nil, err
	}
	entry := Entry{
		ProductID: input.ProductID,
		Type:      input.Type,
		Delta:     delta,
		Note:      input.Note,
		UserID:    identity.UserID,
		Date:      uc.clock.Now(),
	}

	var (
		mov     *entity.StockMovement
		balance int64
	)
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		mov, balance, err = uc.ApplyInTx(ctx, movRepo, stockRepo, productRepo, entry)
		return err
	})
	if err != nil {
		ev := uc.log.Error()
		if IsStockConflict(err) || errors.Is(err, domain.ErrNotFound) {
			ev = uc.log.Debug()
		}
		ev.Str("product_id", input.ProductID).Str("type", input.Type).
			Int64("delta", delta).Err(err).Msg("movimiento rechazado")
		return nil, err
	}
	uc.log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", mov.ProductID).
		Str("type", mov.Type).
		Int64("delta", mov.Quantity).
		Int64("balance", balance).
		Str("by", identity.Login).
		Msg("movimiento registrado")
	return mov, nil
}

// ApplyInTx aplica un movimiento usando los repositorios de una transacción ya abierta por el caller.
// Orden de bloqueo: producto y luego stock. Devuelve el movimiento creado y el nuevo saldo.
//   - producto inexistente: ErrNotFound
//   - sin fila de stock y delta negativo: ErrUnknownStockRecord
//   - saldo candidato < 0: ErrInsufficientStock
func (uc *LedgerUseCase) ApplyInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	entry Entry,
) (*entity.StockMovement, int64, error) {
	if entry.Delta == 0 || !entity.IsValidMovementType(entry.Type) {
		return nil, 0, domain.ErrInvalidInput
	}
	product, err := productRepo.GetForUpdate(ctx, entry.ProductID)
	if err != nil {
		return nil, 0, err
	}
	if product == nil {
		return nil, 0, domain.ErrNotFound
	}
	stock, err := stockRepo.GetForUpdate(ctx, entry.ProductID)
	if err != nil {
		return nil, 0, err
	}
	if stock == nil {
		if entry.Delta < 0 {
			return nil, 0, domain.ErrUnknownStockRecord
		}
		stock = &entity.Stock{ProductID: entry.ProductID}
	}
	candidate := stock.Quantity + entry.Delta
	if candidate < 0 {
		return nil, 0, domain.ErrInsufficientStock
	}

	now := entry.Date
	if now.IsZero() {
		now = uc.clock.Now()
	}
	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: entry.ProductID,
		Date:      now,
		Type:      entry.Type,
		Quantity:  entry.Delta,
		Note:      entry.Note,
		OrderID:   entry.OrderID,
		CreatedBy: entry.UserID,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, 0, err
	}
	stock.Quantity = candidate
	stock.UpdatedAt = now
	if err := stockRepo.Upsert(ctx, stock); err != nil {
		return nil, 0, err
	}
	return mov, candidate, nil
}

// GetBalance devuelve la existencia actual; 0 si el producto nunca tuvo movimientos.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, identity entity.Identity, productID string) (int64, error) {
	if err := auth.Require(identity, auth.OrderRoles...); err != nil {
		return 0, err
	}
	if !entity.ValidID(productID) {
		return 0, domain.ErrInvalidInput
	}
	stock, err := uc.stockRepo.Get(ctx, productID)
	if err != nil {
		return 0, err
	}
	if stock == nil {
		return 0, nil
	}
	return stock.Quantity, nil
}

// ListStock devuelve todos los productos con su existencia (0 si nunca tuvieron movimientos).
func (uc *LedgerUseCase) ListStock(ctx context.Context, identity entity.Identity) ([]*entity.StockLevel, error) {
	if err := auth.Require(identity, auth.StockRoles...); err != nil {
		return nil, err
	}
	return uc.stockRepo.ListLevels(ctx)
}

// ListMovements devuelve el diario de un producto, del más reciente al más antiguo.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, identity entity.Identity, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if err := auth.Require(identity, auth.StockRoles...); err != nil {
		return nil, err
	}
	if !entity.ValidID(productID) {
		return nil, domain.ErrInvalidInput
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return uc.movRepo.ListByProduct(ctx, productID, from, to, limit, offset)
}

// IsStockConflict indica si err es un rechazo de negocio del libro (saldo insuficiente o sin registro).
func IsStockConflict(err error) bool {
	return errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrUnknownStockRecord)
}
