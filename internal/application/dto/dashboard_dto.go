package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardResponse respuesta de GET /api/dashboard: contadores y últimos pedidos.
type DashboardResponse struct {
	Products     int64           `json:"products"`
	StockRows    int64           `json:"stock_rows"`
	Clients      int64           `json:"clients"`
	Suppliers    int64           `json:"suppliers"`
	Orders       int64           `json:"orders"`
	RecentOrders []OrderResponse `json:"recent_orders"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// StockReportResponse reporte de stock ordenado por cantidad ascendente.
type StockReportResponse struct {
	Threshold   int64                `json:"threshold"`
	Items       []StockLevelResponse `json:"items"`
	LowStock    []StockLevelResponse `json:"low_stock"`
	TotalValue  decimal.Decimal      `json:"total_value"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// OrderReportLine fila del reporte de pedidos (pedido x producto).
type OrderReportLine struct {
	OrderCode         string    `json:"order_code"`
	OrderDate         time.Time `json:"order_date"`
	ClientName        string    `json:"client_name"`
	ProductName       string    `json:"product_name"`
	QuantityRequested int64     `json:"quantity_requested"`
}

// TopProduct producto más pedido en el período.
type TopProduct struct {
	ProductName    string `json:"product_name"`
	TotalRequested int64  `json:"total_requested"`
}

// OrdersReportResponse reporte de pedidos entre dos fechas.
type OrdersReportResponse struct {
	From        time.Time         `json:"from"`
	To          time.Time         `json:"to"`
	Lines       []OrderReportLine `json:"lines"`
	TopProducts []TopProduct      `json:"top_products"`
}
