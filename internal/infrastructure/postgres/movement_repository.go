package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
	"github.com/jhoicas/cadmeko-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo diario de movimientos sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create agrega un movimiento al diario.
func (r *MovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO mouvement_stock (id_mvt, id_produit, date_mvt, type_mvt, quantite, description, id_commande, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.Date, m.Type, m.Quantity, m.Note, nullable(m.OrderID), nullable(m.CreatedBy),
	)
	return wrap("insert mouvement_stock", err)
}

// ListByProduct lista movimientos de un producto en un rango de fechas, más recientes primero.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id_mvt, id_produit, date_mvt, type_mvt, quantite, description, id_commande, created_by
		FROM mouvement_stock WHERE id_produit = $1`
	args := []any{productID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND date_mvt >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date_mvt <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY date_mvt DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list mouvement_stock", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var orderID, createdBy *string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Date, &m.Type, &m.Quantity, &m.Note, &orderID, &createdBy); err != nil {
			return nil, wrap("scan mouvement_stock", err)
		}
		m.OrderID = deref(orderID)
		m.CreatedBy = deref(createdBy)
		list = append(list, &m)
	}
	return list, wrap("list mouvement_stock", rows.Err())
}
