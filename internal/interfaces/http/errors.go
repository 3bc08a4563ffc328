package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cadmeko-api/internal/application/dto"
	"github.com/jhoicas/cadmeko-api/internal/domain"
)

// LocalError guarda el error de negocio o infraestructura para que RequestLogger lo registre.
const LocalError = "handler_error"

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// El orden importa: PersistenceError se evalúa al final porque puede envolver otros errores.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrAuthFailure, fiber.StatusUnauthorized, "AUTH_FAILURE", "identificadores incorrectos"},
	{domain.ErrUnauthenticated, fiber.StatusUnauthorized, "UNAUTHENTICATED", "sesión no iniciada o expirada"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso no autorizado para este rol"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "el recurso ya existe"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente para este producto"},
	{domain.ErrUnknownStockRecord, fiber.StatusConflict, "UNKNOWN_STOCK_RECORD", "el producto no tiene registro de stock"},
	{domain.ErrOrderNotOpen, fiber.StatusConflict, "ORDER_NOT_OPEN", "el pedido ya fue finalizado"},
}

// respondError traduce un error de la capa de aplicación a status, código y mensaje.
// Los fallos de persistencia exponen el mensaje original; cualquier otro error es 500.
func respondError(c *fiber.Ctx, err error) error {
	c.Locals(LocalError, err)
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.message})
		}
	}
	if errors.Is(err, domain.ErrPersistence) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "PERSISTENCE_ERROR", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}

// ErrorHandler responde con dto.ErrorResponse los errores que llegan a Fiber sin pasar por
// un handler (rutas inexistentes, panics recuperados, body demasiado grande).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
	}
	return respondError(c, err)
}
