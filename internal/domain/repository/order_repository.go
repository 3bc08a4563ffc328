package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para pedidos y sus líneas.
type OrderRepository interface {
	// NextDailySequence toma un lock transaccional por día y devuelve
	// la cantidad de pedidos ya creados ese día más uno.
	NextDailySequence(ctx context.Context, day time.Time) (int, error)
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate bloquea la fila del pedido hasta el fin de la tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	// Finalize persiste el estado final y finalized_at.
	Finalize(ctx context.Context, order *entity.Order) error
	AddLine(ctx context.Context, line *entity.OrderLine) error
	ListLines(ctx context.Context, orderID string) ([]*entity.OrderLine, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Order, error)
}
