package orders

import (
	"context"

	"github.com/jhoicas/cadmeko-api/internal/application/inventory"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
	"github.com/jhoicas/cadmeko-api/internal/domain/repository"
)

// TxRunner ejecuta una función en una transacción con los repos de pedidos y de stock.
// Rollback ante cualquier error devuelto por fn.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// StockLedger es la parte del libro de stock que usa el flujo de pedidos
// para reservar cantidades dentro de su propia transacción.
type StockLedger interface {
	ApplyInTx(
		ctx context.Context,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		entry inventory.Entry,
	) (*entity.StockMovement, int64, error)
}
