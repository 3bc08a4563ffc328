package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del diario de movimientos.
// Solo inserción y lectura: el diario es de solo-agregar.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
}
