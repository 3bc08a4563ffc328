package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
)

// CountTarget identifica la tabla a contar en el dashboard.
type CountTarget string

const (
	CountProducts  CountTarget = "products"
	CountStockRows CountTarget = "stock"
	CountClients   CountTarget = "clients"
	CountSuppliers CountTarget = "suppliers"
	CountOrders    CountTarget = "orders"
)

// OrderReportRow fila cruda del reporte de pedidos (pedido x línea).
type OrderReportRow struct {
	OrderCode         string
	OrderDate         time.Time
	ClientName        string
	ProductName       string
	QuantityRequested int64
}

// ReportRepository consultas de solo lectura para reportes y dashboard.
type ReportRepository interface {
	Count(ctx context.Context, target CountTarget) (int64, error)
	RecentOrders(ctx context.Context, limit int) ([]*entity.Order, error)
	OrderLinesBetween(ctx context.Context, from, to time.Time) ([]OrderReportRow, error)
}
