package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/stock/movements.
// Quantity siempre positiva; Negative solo aplica a ADJUSTMENT.
type RecordMovementRequest struct {
	ProductID string `json:"product_id"`
	Type      string `json:"type"`
	Quantity  int64  `json:"quantity"`
	Negative  bool   `json:"negative,omitempty"`
	Note      string `json:"note,omitempty"`
}

// MovementResponse entrada del diario de stock.
type MovementResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Date      time.Time `json:"date"`
	Type      string    `json:"type"`
	Quantity  int64     `json:"quantity"` // con signo
	Note      string    `json:"note,omitempty"`
	OrderID   string    `json:"order_id,omitempty"`
	CreatedBy string    `json:"created_by,omitempty"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// BalanceResponse existencia actual de un producto.
type BalanceResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// StockLevelResponse fila del estado actual del stock.
type StockLevelResponse struct {
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Form        string          `json:"form"`
	Dosage      string          `json:"dosage"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}
