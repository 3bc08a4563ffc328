package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cadmeko-api/internal/application/reports"
)

// DashboardHandler maneja el resumen de la página de inicio.
type DashboardHandler struct {
	uc *reports.ReportUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *reports.ReportUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen del dashboard
// @Description  Contadores de productos, stock, clientes, proveedores y pedidos, más los últimos 5 pedidos.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.Dashboard(c.UserContext(), GetIdentity(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
