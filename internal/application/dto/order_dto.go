package dto

import "time"

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	ClientID string `json:"client_id" validate:"required"`
}

// AddLineRequest body para POST /api/orders/:id/lines.
type AddLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,min=1"`
}

// FinalizeOrderRequest body para POST /api/orders/:id/finalize. Status vacío = PENDING.
type FinalizeOrderRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=PENDING DELIVERED CANCELLED"`
}

// OrderLineResponse línea de pedido.
type OrderLineResponse struct {
	ID                string `json:"id"`
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name,omitempty"`
	QuantityRequested int64  `json:"quantity_requested"`
	QuantityDelivered int64  `json:"quantity_delivered"`
}

// OrderResponse pedido con sus líneas (Lines solo en el detalle).
type OrderResponse struct {
	ID          string              `json:"id"`
	Code        string              `json:"code"`
	Date        time.Time           `json:"date"`
	Status      string              `json:"status"`
	State       string              `json:"state"`
	ClientID    string              `json:"client_id"`
	ClientName  string              `json:"client_name,omitempty"`
	CreatedBy   string              `json:"created_by,omitempty"`
	FinalizedAt *time.Time          `json:"finalized_at,omitempty"`
	Lines       []OrderLineResponse `json:"lines,omitempty"`
}

// OrderListResponse historial paginado de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
