// Package memdb implementa los puertos de repository en memoria para tests.
// TxRunner serializa las transacciones (equivalente a los locks de fila) y
// restaura el estado previo cuando el callback falla, igual que un ROLLBACK.
package memdb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/cadmeko-api/internal/domain"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
	"github.com/jhoicas/cadmeko-api/internal/domain/repository"
)

// Store estado compartido por todos los repos en memoria.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	products  map[string]entity.Product
	stock     map[string]entity.Stock
	movements []entity.StockMovement
	orders    map[string]entity.Order
	lines     []entity.OrderLine
	clients   map[string]entity.Client
	suppliers int64
	users     map[string]entity.User

	faults map[string]error
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		products: map[string]entity.Product{},
		stock:    map[string]entity.Stock{},
		orders:   map[string]entity.Order{},
		clients:  map[string]entity.Client{},
		users:    map[string]entity.User{},
		faults:   map[string]error{},
	}
}

// Fail hace que la operación op devuelva un PersistenceError con err.
// Operaciones: product.create, stock.upsert, movement.create, order.create, order.addline,
// order.finalize, order.sequence, client.create, user.create, user.update, user.get.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// ClearFaults elimina los fallos inyectados.
func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = map[string]error{}
}

// fault debe llamarse con mu tomado.
func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		return domain.NewPersistenceError(op, err)
	}
	return nil
}

// SetSuppliers fija el número de proveedores (solo se cuentan en el dashboard).
func (s *Store) SetSuppliers(n int64) {
	s.mu.Lock()
	s.suppliers = n
	s.mu.Unlock()
}

// Movements devuelve una copia del diario completo en orden de inserción.
func (s *Store) Movements() []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.StockMovement, len(s.movements))
	copy(out, s.movements)
	return out
}

// Lines devuelve una copia de todas las líneas de pedido.
func (s *Store) Lines() []entity.OrderLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.OrderLine, len(s.lines))
	copy(out, s.lines)
	return out
}

type snapshot struct {
	products  map[string]entity.Product
	stock     map[string]entity.Stock
	movements []entity.StockMovement
	orders    map[string]entity.Order
	lines     []entity.OrderLine
	clients   map[string]entity.Client
	users     map[string]entity.User
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		products:  make(map[string]entity.Product, len(s.products)),
		stock:     make(map[string]entity.Stock, len(s.stock)),
		movements: append([]entity.StockMovement(nil), s.movements...),
		orders:    make(map[string]entity.Order, len(s.orders)),
		lines:     append([]entity.OrderLine(nil), s.lines...),
		clients:   make(map[string]entity.Client, len(s.clients)),
		users:     make(map[string]entity.User, len(s.users)),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.stock {
		snap.stock[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	for k, v := range s.clients {
		snap.clients[k] = v
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.stock = snap.stock
	s.movements = snap.movements
	s.orders = snap.orders
	s.lines = snap.lines
	s.clients = snap.clients
	s.users = snap.users
}

// ── TxRunner ────────────────────────────────────────────────────────────────

// TxRunner ejecuta callbacks con semántica de transacción sobre el Store.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner { return &TxRunner{s: s} }

func (r *TxRunner) run(fn func() error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	snap := r.s.snapshot()
	if err := fn(); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

// Run igual que postgres.TxRunner.Run.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.run(func() error {
		return fn(&MovementRepo{r.s}, &StockRepo{r.s}, &ProductRepo{r.s})
	})
}

// RunOrder igual que postgres.TxRunner.RunOrder.
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) error) error {
	return r.run(func() error {
		return fn(&MovementRepo{r.s}, &StockRepo{r.s}, &ProductRepo{r.s}, &OrderRepo{r.s})
	})
}

// ── Products ────────────────────────────────────────────────────────────────

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria.
type ProductRepo struct{ s *Store }

// NewProductRepository construye el repo.
func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s} }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("product.create"); err != nil {
		return err
	}
	for _, existing := range r.s.products {
		if existing.Code == p.Code {
			return domain.ErrDuplicate
		}
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.Code == code {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	list := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		p := p
		list = append(list, &p)
	}
	r.s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

// ── Stock ───────────────────────────────────────────────────────────────────

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo stock en memoria.
type StockRepo struct{ s *Store }

// NewStockRepository construye el repo.
func NewStockRepository(s *Store) *StockRepo { return &StockRepo{s} }

func (r *StockRepo) Get(_ context.Context, productID string) (*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stock[productID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.Stock, error) {
	return r.Get(ctx, productID)
}

func (r *StockRepo) Upsert(_ context.Context, st *entity.Stock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("stock.upsert"); err != nil {
		return err
	}
	if st.Quantity < 0 {
		// CHECK (quantite >= 0) de la tabla
		return domain.NewPersistenceError("stock.upsert", errCheckViolation)
	}
	r.s.stock[st.ProductID] = *st
	return nil
}

func (r *StockRepo) ListLevels(_ context.Context) ([]*entity.StockLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.StockLevel, 0, len(r.s.products))
	for _, p := range r.s.products {
		lvl := &entity.StockLevel{
			ProductID: p.ID, ProductCode: p.Code, ProductName: p.Name, Form: p.Form, Dosage: p.Dosage,
			UnitPrice: p.UnitPrice,
		}
		if st, ok := r.s.stock[p.ID]; ok {
			lvl.Quantity = st.Quantity
			at := st.UpdatedAt
			lvl.UpdatedAt = &at
		}
		out = append(out, lvl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

// ── Movements ───────────────────────────────────────────────────────────────

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo diario de movimientos en memoria.
type MovementRepo struct{ s *Store }

// NewMovementRepository construye el repo.
func NewMovementRepository(s *Store) *MovementRepo { return &MovementRepo{s} }

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("movement.create"); err != nil {
		return err
	}
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *MovementRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	var list []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if m.ProductID != productID {
			continue
		}
		if from != nil && m.Date.Before(*from) {
			continue
		}
		if to != nil && m.Date.After(*to) {
			continue
		}
		list = append(list, &m)
	}
	r.s.mu.Unlock()
	return page(list, limit, offset), nil
}

// ── Orders ──────────────────────────────────────────────────────────────────

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo pedidos en memoria.
type OrderRepo struct{ s *Store }

// NewOrderRepository construye el repo.
func NewOrderRepository(s *Store) *OrderRepo { return &OrderRepo{s} }

func (r *OrderRepo) NextDailySequence(_ context.Context, day time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("order.sequence"); err != nil {
		return 0, err
	}
	n := 0
	y, m, d := day.Date()
	for _, o := range r.s.orders {
		oy, om, od := o.Date.Date()
		if oy == y && om == m && od == d {
			n++
		}
	}
	return n + 1, nil
}

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("order.create"); err != nil {
		return err
	}
	for _, existing := range r.s.orders {
		if existing.Code == o.Code {
			return domain.ErrDuplicate
		}
	}
	stored := *o
	stored.ClientName = ""
	r.s.orders[o.ID] = stored
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	o.ClientName = r.s.clients[o.ClientID].Name
	return &o, nil
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) Finalize(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("order.finalize"); err != nil {
		return err
	}
	stored, ok := r.s.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = o.Status
	stored.FinalizedAt = o.FinalizedAt
	r.s.orders[o.ID] = stored
	return nil
}

func (r *OrderRepo) AddLine(_ context.Context, l *entity.OrderLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("order.addline"); err != nil {
		return err
	}
	stored := *l
	stored.ProductName = ""
	r.s.lines = append(r.s.lines, stored)
	return nil
}

func (r *OrderRepo) ListLines(_ context.Context, orderID string) ([]*entity.OrderLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.OrderLine
	for _, l := range r.s.lines {
		if l.OrderID != orderID {
			continue
		}
		l := l
		l.ProductName = r.s.products[l.ProductID].Name
		out = append(out, &l)
	}
	return out, nil
}

func (r *OrderRepo) List(_ context.Context, limit, offset int) ([]*entity.Order, error) {
	r.s.mu.Lock()
	list := make([]*entity.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		o := o
		o.ClientName = r.s.clients[o.ClientID].Name
		list = append(list, &o)
	}
	r.s.mu.Unlock()
	sortOrdersDesc(list)
	return page(list, limit, offset), nil
}

func sortOrdersDesc(list []*entity.Order) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].Code > list[j].Code
	})
}

// ── Clients ─────────────────────────────────────────────────────────────────

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo clientes en memoria.
type ClientRepo struct{ s *Store }

// NewClientRepository construye el repo.
func NewClientRepository(s *Store) *ClientRepo { return &ClientRepo{s} }

func (r *ClientRepo) Create(_ context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("client.create"); err != nil {
		return err
	}
	r.s.clients[c.ID] = *c
	return nil
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *ClientRepo) List(_ context.Context, limit, offset int) ([]*entity.Client, error) {
	r.s.mu.Lock()
	list := make([]*entity.Client, 0, len(r.s.clients))
	for _, c := range r.s.clients {
		c := c
		list = append(list, &c)
	}
	r.s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

// ── Users ───────────────────────────────────────────────────────────────────

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

// NewUserRepository construye el repo.
func NewUserRepository(s *Store) *UserRepo { return &UserRepo{s} }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("user.create"); err != nil {
		return err
	}
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Login, u.Login) {
			return domain.ErrDuplicate
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("user.get"); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByLogin(_ context.Context, login string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("user.get"); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Login, login) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) List(_ context.Context) ([]*entity.User, error) {
	r.s.mu.Lock()
	list := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u := u
		list = append(list, &u)
	}
	r.s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Login < list[j].Login })
	return list, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("user.update"); err != nil {
		return err
	}
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

// ── Reports ─────────────────────────────────────────────────────────────────

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de reporte en memoria.
type ReportRepo struct{ s *Store }

// NewReportRepository construye el repo.
func NewReportRepository(s *Store) *ReportRepo { return &ReportRepo{s} }

func (r *ReportRepo) Count(_ context.Context, target repository.CountTarget) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	switch target {
	case repository.CountProducts:
		return int64(len(r.s.products)), nil
	case repository.CountStockRows:
		return int64(len(r.s.stock)), nil
	case repository.CountClients:
		return int64(len(r.s.clients)), nil
	case repository.CountSuppliers:
		return r.s.suppliers, nil
	case repository.CountOrders:
		return int64(len(r.s.orders)), nil
	}
	return 0, domain.ErrInvalidInput
}

func (r *ReportRepo) RecentOrders(ctx context.Context, limit int) ([]*entity.Order, error) {
	return (&OrderRepo{r.s}).List(ctx, limit, 0)
}

func (r *ReportRepo) OrderLinesBetween(_ context.Context, from, to time.Time) ([]repository.OrderReportRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []repository.OrderReportRow
	for _, l := range r.s.lines {
		o := r.s.orders[l.OrderID]
		if o.Date.Before(from) || o.Date.After(to) {
			continue
		}
		rows = append(rows, repository.OrderReportRow{
			OrderCode:         o.Code,
			OrderDate:         o.Date,
			ClientName:        r.s.clients[o.ClientID].Name,
			ProductName:       r.s.products[l.ProductID].Name,
			QuantityRequested: l.QuantityRequested,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].OrderDate.After(rows[j].OrderDate) })
	return rows, nil
}

// ── helpers ─────────────────────────────────────────────────────────────────

type checkViolation struct{}

func (checkViolation) Error() string { return "violates check constraint stock_quantite_check" }

var errCheckViolation error = checkViolation{}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
