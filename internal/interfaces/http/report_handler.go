package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cadmeko-api/internal/application/reports"
	"github.com/jhoicas/cadmeko-api/pkg/clock"
)

// ordersReportDefaultFrom inicio del período cuando no se indica from.
var ordersReportDefaultFrom = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// ReportHandler reportes de stock y de pedidos (JSON, CSV y PDF).
type ReportHandler struct {
	uc    *reports.ReportUseCase
	clock clock.Clock
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.ReportUseCase, clk clock.Clock) *ReportHandler {
	return &ReportHandler{uc: uc, clock: clk}
}

// Stock godoc
// @Summary      Reporte de stock
// @Description  Productos por cantidad ascendente y subconjunto con stock bajo (cantidad <= threshold).
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  int  false  "Umbral de stock bajo (0-50). Por defecto el configurado."
// @Success      200  {object}  dto.StockReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/stock [get]
func (h *ReportHandler) Stock(c *fiber.Ctx) error {
	threshold, ok := queryThreshold(c, h.uc.DefaultThreshold())
	if !ok {
		return badRequest(c, "VALIDATION", "threshold debe ser un entero")
	}
	out, err := h.uc.StockReport(c.UserContext(), GetIdentity(c), threshold)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// StockCSV godoc
// @Summary      Reporte de stock en CSV
// @Tags         reports
// @Security     Bearer
// @Produce      text/csv
// @Success      200  {file}  file
// @Router       /api/reports/stock.csv [get]
func (h *ReportHandler) StockCSV(c *fiber.Ctx) error {
	threshold, ok := queryThreshold(c, h.uc.DefaultThreshold())
	if !ok {
		return badRequest(c, "VALIDATION", "threshold debe ser un entero")
	}
	out, err := h.uc.StockReport(c.UserContext(), GetIdentity(c), threshold)
	if err != nil {
		return respondError(c, err)
	}
	var buf bytes.Buffer
	if err := reports.WriteStockCSV(&buf, out); err != nil {
		return respondError(c, err)
	}
	return sendFile(c, "text/csv; charset=utf-8", "etat_stock.csv", buf.Bytes())
}

// StockPDF godoc
// @Summary      Reporte de stock en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  file
// @Router       /api/reports/stock.pdf [get]
func (h *ReportHandler) StockPDF(c *fiber.Ctx) error {
	threshold, ok := queryThreshold(c, h.uc.DefaultThreshold())
	if !ok {
		return badRequest(c, "VALIDATION", "threshold debe ser un entero")
	}
	pdf, err := h.uc.StockReportPDF(c.UserContext(), GetIdentity(c), threshold)
	if err != nil {
		return respondError(c, err)
	}
	name := fmt.Sprintf("etat_stock_%s.pdf", h.clock.Now().Format("20060102"))
	return sendFile(c, "application/pdf", name, pdf)
}

// Orders godoc
// @Summary      Reporte de pedidos por período
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Desde (YYYY-MM-DD), por defecto 2024-01-01"
// @Param        to    query  string  false  "Hasta (YYYY-MM-DD), por defecto hoy"
// @Success      200  {object}  dto.OrdersReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/orders [get]
func (h *ReportHandler) Orders(c *fiber.Ctx) error {
	from, to, ok := h.period(c)
	if !ok {
		return badRequest(c, "VALIDATION", "from y to deben tener formato YYYY-MM-DD")
	}
	out, err := h.uc.OrdersReport(c.UserContext(), GetIdentity(c), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// OrdersCSV godoc
// @Summary      Reporte de pedidos en CSV
// @Tags         reports
// @Security     Bearer
// @Produce      text/csv
// @Param        from  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to    query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200  {file}  file
// @Router       /api/reports/orders.csv [get]
func (h *ReportHandler) OrdersCSV(c *fiber.Ctx) error {
	from, to, ok := h.period(c)
	if !ok {
		return badRequest(c, "VALIDATION", "from y to deben tener formato YYYY-MM-DD")
	}
	out, err := h.uc.OrdersReport(c.UserContext(), GetIdentity(c), from, to)
	if err != nil {
		return respondError(c, err)
	}
	var buf bytes.Buffer
	if err := reports.WriteOrdersCSV(&buf, out); err != nil {
		return respondError(c, err)
	}
	return sendFile(c, "text/csv; charset=utf-8", "rapport_commandes.csv", buf.Bytes())
}

func (h *ReportHandler) period(c *fiber.Ctx) (from, to time.Time, ok bool) {
	f, ok := queryDate(c, "from")
	if !ok {
		return from, to, false
	}
	t, ok := queryDate(c, "to")
	if !ok {
		return from, to, false
	}
	from, to = ordersReportDefaultFrom, h.clock.Now()
	if f != nil {
		from = *f
	}
	if t != nil {
		to = *t
	}
	return from, to, true
}

func sendFile(c *fiber.Ctx, contentType, filename string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(body)
}
