package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/cadmeko-api/pkg/logger"
)

// RequestLogger registra una línea por petición: método, ruta, status, latencia y login.
// Las respuestas 5xx se registran como error con el error original del handler.
func RequestLogger(log *logger.Logger) fiber.Handler {
	l := log.Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			// el ErrorHandler de Fiber todavía no escribió la respuesta
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()

		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = l.Error()
		case status >= fiber.StatusBadRequest:
			ev = l.Debug()
		default:
			ev = l.Info()
		}
		if err, ok := c.Locals(LocalError).(error); ok {
			ev = ev.Err(err)
		}
		if login := GetIdentity(c).Login; login != "" {
			ev = ev.Str("login", login)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return nil
	}
}
