package entity

import "github.com/google/uuid"

// ValidID indica si id es un UUID canónico (8-4-4-4-12). Todas las columnas id_* son UUID.
func ValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
