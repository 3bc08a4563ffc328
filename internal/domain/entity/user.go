package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"      // Administrateur
	RoleManager    = "manager"    // Gestionnaire
	RolePharmacist = "pharmacist" // Pharmacien
	RoleClerk      = "clerk"      // Agent de saisie
)

// IsValidRole indica si r es un rol conocido.
func IsValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleManager, RolePharmacist, RoleClerk:
		return true
	}
	return false
}

// User representa una cuenta del sistema (tabla utilisateur).
type User struct {
	ID           string
	Login        string
	PasswordHash string // bcrypt
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity es el usuario autenticado que acompaña a cada operación.
type Identity struct {
	UserID string
	Login  string
	Role   string
}

// IsZero indica que no hay sesión.
func (i Identity) IsZero() bool {
	return i.UserID == "" && i.Role == ""
}
