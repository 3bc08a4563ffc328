package postgres

import (
	"context"

	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
	"github.com/jhoicas/cadmeko-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto; (nil, nil) si no tiene fila.
func (r *StockRepo) Get(ctx context.Context, productID string) (*entity.Stock, error) {
	return r.get(ctx, "get stock", `SELECT id_produit, quantite, maj FROM stock WHERE id_produit = $1`, productID)
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.Stock, error) {
	return r.get(ctx, "lock stock", `SELECT id_produit, quantite, maj FROM stock WHERE id_produit = $1 FOR UPDATE`, productID)
}

func (r *StockRepo) get(ctx context.Context, op, query, productID string) (*entity.Stock, error) {
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, productID).Scan(&s.ProductID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrap(op, err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad en stock del producto.
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.Stock) error {
	query := `
		INSERT INTO stock (id_produit, quantite, maj)
		VALUES ($1, $2, $3)
		ON CONFLICT (id_produit)
		DO UPDATE SET quantite = EXCLUDED.quantite, maj = EXCLUDED.maj`
	_, err := r.q.Exec(ctx, query, stock.ProductID, stock.Quantity, stock.UpdatedAt)
	return wrap("upsert stock", err)
}

// ListLevels todos los productos con su existencia (0 si no hay fila), por nombre.
func (r *StockRepo) ListLevels(ctx context.Context) ([]*entity.StockLevel, error) {
	query := `
		SELECT p.id_produit, p.code_produit, p.nom_produit, p.forme, p.dosage, p.prix_unitaire,
		       COALESCE(s.quantite, 0), s.maj
		FROM produit p
		LEFT JOIN stock s ON s.id_produit = p.id_produit
		ORDER BY p.nom_produit`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, wrap("list stock", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		var l entity.StockLevel
		if err := rows.Scan(&l.ProductID, &l.ProductCode, &l.ProductName, &l.Form, &l.Dosage, &l.UnitPrice,
			&l.Quantity, &l.UpdatedAt); err != nil {
			return nil, wrap("scan stock", err)
		}
		list = append(list, &l)
	}
	return list, wrap("list stock", rows.Err())
}
