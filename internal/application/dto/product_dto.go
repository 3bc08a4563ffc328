package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto del catálogo.
// ExpiryDate en formato YYYY-MM-DD.
type CreateProductRequest struct {
	Code       string          `json:"code" validate:"required,min=1,max=50"`
	Name       string          `json:"name" validate:"required,min=1,max=200"`
	Form       string          `json:"form"`
	Dosage     string          `json:"dosage"`
	ExpiryDate string          `json:"expiry_date" validate:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Form       string          `json:"form"`
	Dosage     string          `json:"dosage"`
	ExpiryDate string          `json:"expiry_date"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CreateClientRequest entrada para crear un cliente.
type CreateClientRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ClientResponse salida de un cliente.
type ClientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// ClientListResponse lista paginada de clientes.
type ClientListResponse struct {
	Items []ClientResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
