package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cadmeko-api/internal/application/dto"
	"github.com/jhoicas/cadmeko-api/internal/application/inventory"
	"github.com/jhoicas/cadmeko-api/internal/application/reports"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
)

// InventoryHandler maneja el libro de stock: movimientos, saldos y diario (protegido).
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  IN suma, OUT resta, ADJUSTMENT usa negative para el signo. quantity siempre > 0.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "product_id, type, quantity, negative, note"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mov, err := h.ledger.RecordMovement(c.UserContext(), GetIdentity(c), inventory.MovementInputDTO{
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Negative:  in.Negative,
		Note:      in.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// GetBalance godoc
// @Summary      Existencia actual de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.BalanceResponse
// @Router       /api/stock/{productId}/balance [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	productID := c.Params("productId")
	qty, err := h.ledger.GetBalance(c.UserContext(), GetIdentity(c), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.BalanceResponse{ProductID: productID, Quantity: qty})
}

// ListStock godoc
// @Summary      Estado actual del stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockLevelResponse
// @Router       /api/stock [get]
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	levels, err := h.ledger.ListStock(c.UserContext(), GetIdentity(c))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, reports.ToStockLevelResponse(l))
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Diario de movimientos de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        from       query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to         query  string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Param        limit      query  int     false  "Límite"  default(20)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	from, ok := queryDate(c, "from")
	if !ok {
		return badRequest(c, "VALIDATION", "from debe tener formato YYYY-MM-DD")
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return badRequest(c, "VALIDATION", "to debe tener formato YYYY-MM-DD")
	}
	if to != nil {
		end := to.AddDate(0, 0, 1).Add(-1)
		to = &end
	}
	limit, offset := pageParams(c)
	list, err := h.ledger.ListMovements(c.UserContext(), GetIdentity(c), c.Params("productId"), from, to, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return c.JSON(dto.MovementListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}})
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Date:      m.Date,
		Type:      m.Type,
		Quantity:  m.Quantity,
		Note:      m.Note,
		OrderID:   m.OrderID,
		CreatedBy: m.CreatedBy,
	}
}
