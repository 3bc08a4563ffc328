package entity

import "time"

// Estados persistidos de un pedido (columna statut).
const (
	OrderStatusPending   = "PENDING"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// IsValidOrderStatus indica si s es un estado de pedido conocido.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Estados del flujo de trabajo. Draft nunca se persiste.
type OrderState string

const (
	OrderStateDraft     OrderState = "draft"
	OrderStateOpen      OrderState = "open"
	OrderStateFinalized OrderState = "finalized"
)

// OrderDraft es un pedido con cliente elegido, todavía sin guardar.
type OrderDraft struct {
	ClientID string
}

// Order representa un pedido de cliente (tabla commande).
type Order struct {
	ID          string
	Code        string // CMD-YYYYMMDD-NNN
	Date        time.Time
	Status      string
	ClientID    string
	ClientName  string // solo lectura (JOIN client)
	CreatedBy   string
	CreatedAt   time.Time
	FinalizedAt *time.Time
}

// State deriva el estado del flujo: abierto mientras no se haya finalizado.
func (o *Order) State() OrderState {
	if o.FinalizedAt != nil {
		return OrderStateFinalized
	}
	return OrderStateOpen
}

// OrderLine es una línea de pedido (tabla commande_detail).
// La cantidad pedida se descuenta del stock al crear la línea.
type OrderLine struct {
	ID                string
	OrderID           string
	ProductID         string
	ProductName       string // solo lectura (JOIN produit)
	QuantityRequested int64
	QuantityDelivered int64
}
