package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cadmeko-api/internal/application/dto"
)

const dateLayout = "2006-01-02"

// pageParams lee limit/offset del query string con los límites de la API.
func pageParams(c *fiber.Ctx) (limit, offset int) {
	p := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultPageLimit), Offset: c.QueryInt("offset", 0)}
	p.Normalize()
	return p.Limit, p.Offset
}

// queryDate parsea un parámetro YYYY-MM-DD opcional; nil si está vacío.
func queryDate(c *fiber.Ctx, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// queryThreshold lee ?threshold=; ausente devuelve def. Un valor no entero da ok=false.
// El rango lo valida el caso de uso.
func queryThreshold(c *fiber.Ctx, def int64) (int64, bool) {
	raw := strings.TrimSpace(c.Query("threshold"))
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
