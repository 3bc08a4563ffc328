package repository

import (
	"context"

	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar la existencia por producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve (nil, nil) si el producto aún no tiene fila en stock.
	Get(ctx context.Context, productID string) (*entity.Stock, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID string) (*entity.Stock, error)
	Upsert(ctx context.Context, stock *entity.Stock) error
	// ListLevels devuelve todos los productos con su cantidad (0 si no hay fila).
	ListLevels(ctx context.Context) ([]*entity.StockLevel, error)
}
