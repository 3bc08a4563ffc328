package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/cadmeko-api/internal/domain"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
	"github.com/jhoicas/cadmeko-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// orderCodeLockNamespace primer argumento de pg_advisory_xact_lock para los códigos de pedido.
const orderCodeLockNamespace = 7301

const orderSelect = `
	SELECT c.id_commande, c.code_commande, c.date_commande, c.statut, c.id_client,
	       COALESCE(cl.nom_client, ''), c.created_by, c.created_at, c.finalized_at
	FROM commande c
	LEFT JOIN client cl ON cl.id_client = c.id_client`

// OrderRepo pedidos y líneas sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// NextDailySequence toma un advisory lock transaccional para el día y cuenta los pedidos del día.
// Solo tiene efecto dentro de una tx: el lock se libera en Commit/Rollback.
func (r *OrderRepo) NextDailySequence(ctx context.Context, day time.Time) (int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	dayKey := start.Year()*10000 + int(start.Month())*100 + start.Day()

	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, orderCodeLockNamespace, dayKey); err != nil {
		return 0, wrap("lock order code", err)
	}
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM commande WHERE date_commande >= $1 AND date_commande < $2`, start, end,
	).Scan(&n)
	if err != nil {
		return 0, wrap("count commande", err)
	}
	return n + 1, nil
}

// Create persiste el pedido. Código repetido: ErrDuplicate.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO commande (id_commande, code_commande, date_commande, statut, id_client, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, o.ID, o.Code, o.Date, o.Status, o.ClientID, nullable(o.CreatedBy), o.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert commande", err)
	}
	return nil
}

// GetByID obtiene un pedido con el nombre del cliente.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.getOne(ctx, "get commande", orderSelect+` WHERE c.id_commande = $1`, id)
}

// GetForUpdate bloquea la fila del pedido (solo la de commande).
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.getOne(ctx, "lock commande", orderSelect+` WHERE c.id_commande = $1 FOR UPDATE OF c`, id)
}

func (r *OrderRepo) getOne(ctx context.Context, op, query, id string) (*entity.Order, error) {
	var o entity.Order
	var createdBy *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.Code, &o.Date, &o.Status, &o.ClientID, &o.ClientName, &createdBy, &o.CreatedAt, &o.FinalizedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrap(op, err)
	}
	o.CreatedBy = deref(createdBy)
	return &o, nil
}

// Finalize persiste estado y fecha de finalización; solo si el pedido seguía abierto.
func (r *OrderRepo) Finalize(ctx context.Context, o *entity.Order) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE commande SET statut = $2, finalized_at = $3 WHERE id_commande = $1 AND finalized_at IS NULL`,
		o.ID, o.Status, o.FinalizedAt,
	)
	if err != nil {
		return wrap("finalize commande", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotOpen
	}
	return nil
}

// AddLine persiste una línea de pedido.
func (r *OrderRepo) AddLine(ctx context.Context, l *entity.OrderLine) error {
	query := `
		INSERT INTO commande_detail (id_detail, id_commande, id_produit, quantite_dmd, quantite_livr)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, l.ID, l.OrderID, l.ProductID, l.QuantityRequested, l.QuantityDelivered)
	return wrap("insert commande_detail", err)
}

// ListLines líneas del pedido con el nombre del producto.
func (r *OrderRepo) ListLines(ctx context.Context, orderID string) ([]*entity.OrderLine, error) {
	query := `
		SELECT d.id_detail, d.id_commande, d.id_produit, p.nom_produit, d.quantite_dmd, d.quantite_livr
		FROM commande_detail d
		JOIN produit p ON p.id_produit = d.id_produit
		WHERE d.id_commande = $1
		ORDER BY p.nom_produit`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, wrap("list commande_detail", err)
	}
	defer rows.Close()
	var list []*entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.QuantityRequested, &l.QuantityDelivered); err != nil {
			return nil, wrap("scan commande_detail", err)
		}
		list = append(list, &l)
	}
	return list, wrap("list commande_detail", rows.Err())
}

// List historial de pedidos, más recientes primero.
func (r *OrderRepo) List(ctx context.Context, limit, offset int) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, orderSelect+` ORDER BY c.date_commande DESC, c.code_commande DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, wrap("list commande", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		var createdBy *string
		if err := rows.Scan(&o.ID, &o.Code, &o.Date, &o.Status, &o.ClientID, &o.ClientName, &createdBy, &o.CreatedAt, &o.FinalizedAt); err != nil {
			return nil, wrap("scan commande", err)
		}
		o.CreatedBy = deref(createdBy)
		list = append(list, &o)
	}
	return list, wrap("list commande", rows.Err())
}
