package auth

import (
	"github.com/jhoicas/cadmeko-api/internal/domain"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
)

// Políticas de acceso por área funcional.
var (
	// CatalogRoles pueden crear y consultar productos.
	CatalogRoles = []string{entity.RoleAdmin, entity.RoleManager, entity.RolePharmacist}
	// StockRoles pueden registrar movimientos y ver el estado del stock.
	StockRoles = []string{entity.RoleAdmin, entity.RoleManager, entity.RolePharmacist}
	// ReportRoles pueden ver los reportes.
	ReportRoles = []string{entity.RoleAdmin, entity.RoleManager, entity.RolePharmacist}
	// DashboardRoles ven el tablero de inicio: toda sesión iniciada.
	DashboardRoles = []string{entity.RoleAdmin, entity.RoleManager, entity.RolePharmacist, entity.RoleClerk}
	// OrderRoles pueden crear pedidos y agregar líneas (incluye agente de captura).
	OrderRoles = []string{entity.RoleAdmin, entity.RoleManager, entity.RolePharmacist, entity.RoleClerk}
	// FinalizeAnyStatusRoles pueden finalizar un pedido como entregado o anulado.
	// El resto solo puede dejarlo en espera.
	FinalizeAnyStatusRoles = []string{entity.RoleAdmin, entity.RoleManager, entity.RolePharmacist}
	// UserAdminRoles administran cuentas.
	UserAdminRoles = []string{entity.RoleAdmin}
)

// Authorize indica si la identidad tiene alguno de los roles permitidos.
func Authorize(id entity.Identity, allowedRoles ...string) bool {
	if id.IsZero() {
		return false
	}
	for _, r := range allowedRoles {
		if id.Role == r {
			return true
		}
	}
	return false
}

// Require devuelve ErrUnauthenticated sin sesión y ErrForbidden si el rol no está permitido.
func Require(id entity.Identity, allowedRoles ...string) error {
	if id.IsZero() {
		return domain.ErrUnauthenticated
	}
	if !Authorize(id, allowedRoles...) {
		return domain.ErrForbidden
	}
	return nil
}
