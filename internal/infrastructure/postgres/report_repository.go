package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/cadmeko-api/internal/domain"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
	"github.com/jhoicas/cadmeko-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

var countQueries = map[repository.CountTarget]string{
	repository.CountProducts:  `SELECT COUNT(*) FROM produit`,
	repository.CountStockRows: `SELECT COUNT(*) FROM stock`,
	repository.CountClients:   `SELECT COUNT(*) FROM client`,
	repository.CountSuppliers: `SELECT COUNT(*) FROM fournisseur`,
	repository.CountOrders:    `SELECT COUNT(*) FROM commande`,
}

// ReportRepo consultas de solo lectura para reportes y dashboard.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// Count cuenta las filas de la tabla indicada.
func (r *ReportRepo) Count(ctx context.Context, target repository.CountTarget) (int64, error) {
	query, ok := countQueries[target]
	if !ok {
		return 0, domain.ErrInvalidInput
	}
	var n int64
	if err := r.q.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, wrap("count "+string(target), err)
	}
	return n, nil
}

// RecentOrders últimos pedidos con nombre de cliente.
func (r *ReportRepo) RecentOrders(ctx context.Context, limit int) ([]*entity.Order, error) {
	return NewOrderRepository(r.q).List(ctx, limit, 0)
}

// OrderLinesBetween líneas de pedidos con fecha en [from, to], más recientes primero.
func (r *ReportRepo) OrderLinesBetween(ctx context.Context, from, to time.Time) ([]repository.OrderReportRow, error) {
	const query = `
	SELECT c.code_commande, c.date_commande, cl.nom_client, p.nom_produit, d.quantite_dmd
	FROM commande c
	JOIN client          cl ON cl.id_client  = c.id_client
	JOIN commande_detail d  ON d.id_commande = c.id_commande
	JOIN produit         p  ON p.id_produit  = d.id_produit
	WHERE c.date_commande BETWEEN $1 AND $2
	ORDER BY c.date_commande DESC, c.code_commande`

	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, wrap("report commandes", err)
	}
	defer rows.Close()
	var list []repository.OrderReportRow
	for rows.Next() {
		var row repository.OrderReportRow
		if err := rows.Scan(&row.OrderCode, &row.OrderDate, &row.ClientName, &row.ProductName, &row.QuantityRequested); err != nil {
			return nil, wrap("scan report commandes", err)
		}
		list = append(list, row)
	}
	return list, wrap("report commandes", rows.Err())
}
