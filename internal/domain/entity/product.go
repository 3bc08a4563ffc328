package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un medicamento del catálogo (tabla produit).
// Una vez referenciado por stock o pedidos solo cambia por edición administrativa.
type Product struct {
	ID         string
	Code       string // código único
	Name       string
	Form       string // comprimido, cápsula, jarabe...
	Dosage     string // ej. 500 mg
	ExpiryDate time.Time
	UnitPrice  decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
