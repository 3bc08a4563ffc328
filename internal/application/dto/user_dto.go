package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Login           string `json:"login" validate:"required,min=3,max=50"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	Role            string `json:"role" validate:"required,oneof=admin manager pharmacist clerk"`
}

// UpdateRoleRequest body para PUT /api/users/:id/role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// ResetPasswordRequest body para PUT /api/users/:id/password.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// IdentityResponse identidad autenticada.
type IdentityResponse struct {
	UserID string `json:"user_id"`
	Login  string `json:"login"`
	Role   string `json:"role"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token    string           `json:"token"`
	Identity IdentityResponse `json:"identity"`
}
