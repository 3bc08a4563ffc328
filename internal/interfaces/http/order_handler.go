package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cadmeko-api/internal/application/dto"
	"github.com/jhoicas/cadmeko-api/internal/application/orders"
	"github.com/jhoicas/cadmeko-api/internal/application/reports"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
)

// OrderHandler flujo de pedidos: creación, líneas, finalización e historial.
type OrderHandler struct {
	uc *orders.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Abrir un pedido para un cliente
// @Description  Genera el código CMD-YYYYMMDD-NNN del día. El pedido queda abierto (PENDING).
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "client_id"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	order, err := h.uc.CreateOrder(c.UserContext(), GetIdentity(c), entity.OrderDraft{ClientID: in.ClientID})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reports.ToOrderResponse(order, nil))
}

// AddLine godoc
// @Summary      Agregar línea a un pedido abierto
// @Description  Reserva la cantidad pedida: registra una salida de stock en la misma transacción.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del pedido"
// @Param        body  body  dto.AddLineRequest  true  "product_id, quantity"
// @Success      201   {object}  dto.OrderLineResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines [post]
func (h *OrderHandler) AddLine(c *fiber.Ctx) error {
	var in dto.AddLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	line, err := h.uc.AddLine(c.UserContext(), GetIdentity(c), c.Params("id"), in.ProductID, in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OrderLineResponse{
		ID:                line.ID,
		ProductID:         line.ProductID,
		ProductName:       line.ProductName,
		QuantityRequested: line.QuantityRequested,
		QuantityDelivered: line.QuantityDelivered,
	})
}

// Finalize godoc
// @Summary      Finalizar un pedido
// @Description  status PENDING (por defecto), DELIVERED o CANCELLED. El agente de captura solo puede dejarlo en PENDING.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true   "ID del pedido"
// @Param        body  body  dto.FinalizeOrderRequest  false  "status"
// @Success      200   {object}  dto.OrderResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/finalize [post]
func (h *OrderHandler) Finalize(c *fiber.Ctx) error {
	var in dto.FinalizeOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	order, err := h.uc.Finalize(c.UserContext(), GetIdentity(c), c.Params("id"), in.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reports.ToOrderResponse(order, nil))
}

// GetByID godoc
// @Summary      Detalle de un pedido con sus líneas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	order, lines, err := h.uc.GetOrder(c.UserContext(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reports.ToOrderResponse(order, lines))
}

// List godoc
// @Summary      Historial de pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	list, err := h.uc.ListOrders(c.UserContext(), GetIdentity(c), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, reports.ToOrderResponse(o, nil))
	}
	return c.JSON(dto.OrderListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}})
}
