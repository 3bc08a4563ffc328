package entity

import "time"

// Client representa un cliente (farmacia, centro de salud) que hace pedidos.
type Client struct {
	ID        string
	Name      string
	Phone     string
	Address   string
	CreatedAt time.Time
}
