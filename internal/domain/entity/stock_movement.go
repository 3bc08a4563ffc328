package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeIN         = "IN"         // entrada
	MovementTypeOUT        = "OUT"        // salida
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste, signo indicado por quien lo registra
)

// IsValidMovementType indica si t es un tipo de movimiento conocido.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeIN, MovementTypeOUT, MovementTypeADJUSTMENT:
		return true
	}
	return false
}

// StockMovement es una entrada inmutable del diario de stock (tabla mouvement_stock).
// Nunca se actualiza ni se borra.
type StockMovement struct {
	ID        string
	ProductID string
	Date      time.Time
	Type      string
	Quantity  int64  // delta con signo: positivo entrada, negativo salida
	Note      string
	OrderID   string // vacío salvo para las reservas hechas por un pedido
	CreatedBy string // UserID
}
