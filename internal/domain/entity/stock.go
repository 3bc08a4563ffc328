package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock es la existencia actual de un producto (una fila por producto, tabla stock).
// Invariante: Quantity >= 0 después de cada operación confirmada.
// Se crea con el primer movimiento y solo lo modifica el libro de stock.
type Stock struct {
	ProductID string
	Quantity  int64
	UpdatedAt time.Time
}

// StockLevel es la vista de stock por producto, con 0 cuando aún no hay fila en stock.
type StockLevel struct {
	ProductID   string
	ProductCode string
	ProductName string
	Form        string
	Dosage      string
	UnitPrice   decimal.Decimal
	Quantity    int64
	UpdatedAt   *time.Time // nil si el producto nunca tuvo movimientos
}
