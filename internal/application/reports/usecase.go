// Package reports contiene las vistas de solo lectura: reporte de stock,
// reporte de pedidos por período y el resumen del dashboard.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/cadmeko-api/internal/application/auth"
	"github.com/jhoicas/cadmeko-api/internal/application/dto"
	"github.com/jhoicas/cadmeko-api/internal/domain"
	"github.com/jhoicas/cadmeko-api/internal/domain/entity"
	"github.com/jhoicas/cadmeko-api/internal/domain/repository"
	"github.com/jhoicas/cadmeko-api/pkg/clock"
	"github.com/jhoicas/cadmeko-api/pkg/logger"
)

const (
	dashboardRecentOrders = 5
	// MaxThreshold límite superior del umbral de stock bajo.
	MaxThreshold int64 = 50
)

// ReportUseCase arma los reportes a partir de consultas read-only.
type ReportUseCase struct {
	stockRepo        repository.StockRepository
	reportRepo       repository.ReportRepository
	pdf              StockPDFRenderer
	clock            clock.Clock
	defaultThreshold int64
	log              *logger.Logger
}

// NewReportUseCase construye el caso de uso. pdf puede ser nil si no se exporta PDF.
func NewReportUseCase(
	stockRepo repository.StockRepository,
	reportRepo repository.ReportRepository,
	pdf StockPDFRenderer,
	clk clock.Clock,
	defaultThreshold int64,
	log *logger.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		stockRepo:        stockRepo,
		reportRepo:       reportRepo,
		pdf:              pdf,
		clock:            clk,
		defaultThreshold: defaultThreshold,
		log:              log.Component("reports"),
	}
}

// DefaultThreshold umbral de stock bajo configurado, para cuando el caller no indica uno.
func (uc *ReportUseCase) DefaultThreshold() int64 {
	return uc.defaultThreshold
}

// StockReport lista los productos por cantidad ascendente y separa los de stock bajo
// (cantidad <= threshold). threshold fuera de 0..MaxThreshold es ErrInvalidInput.
func (uc *ReportUseCase) StockReport(ctx context.Context, identity entity.Identity, threshold int64) (*dto.StockReportResponse, error) {
	if err := auth.Require(identity, auth.ReportRoles...); err != nil {
		return nil, err
	}
	if threshold < 0 || threshold > MaxThreshold {
		return nil, domain.ErrInvalidInput
	}
	levels, err := uc.stockRepo.ListLevels(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].Quantity < levels[j].Quantity })

	report := &dto.StockReportResponse{
		Threshold:   threshold,
		Items:       make([]dto.StockLevelResponse, 0, len(levels)),
		LowStock:    []dto.StockLevelResponse{},
		TotalValue:  decimal.Zero,
		GeneratedAt: uc.clock.Now(),
	}
	for _, l := range levels {
		item := ToStockLevelResponse(l)
		report.Items = append(report.Items, item)
		if l.Quantity <= threshold {
			report.LowStock = append(report.LowStock, item)
		}
		report.TotalValue = report.TotalValue.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return report, nil
}

// StockReportPDF renderiza el reporte de stock en PDF.
func (uc *ReportUseCase) StockReportPDF(ctx context.Context, identity entity.Identity, threshold int64) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("reports: exportación PDF no configurada")
	}
	report, err := uc.StockReport(ctx, identity, threshold)
	if err != nil {
		return nil, err
	}
	return uc.pdf.RenderStockReport(ctx, report)
}

// OrdersReport devuelve las líneas de pedidos creados entre from y to (inclusive, por día)
// y los productos más pedidos del período.
func (uc *ReportUseCase) OrdersReport(ctx context.Context, identity entity.Identity, from, to time.Time) (*dto.OrdersReportResponse, error) {
	if err := auth.Require(identity, auth.ReportRoles...); err != nil {
		return nil, err
	}
	from = startOfDay(from)
	to = startOfDay(to).Add(24*time.Hour - time.Nanosecond)
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	rows, err := uc.reportRepo.OrderLinesBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	resp := &dto.OrdersReportResponse{
		From:        from,
		To:          to,
		Lines:       make([]dto.OrderReportLine, 0, len(rows)),
		TopProducts: []dto.TopProduct{},
	}
	totals := map[string]int64{}
	for _, r := range rows {
		resp.Lines = append(resp.Lines, dto.OrderReportLine{
			OrderCode:         r.OrderCode,
			OrderDate:         r.OrderDate,
			ClientName:        r.ClientName,
			ProductName:       r.ProductName,
			QuantityRequested: r.QuantityRequested,
		})
		totals[r.ProductName] += r.QuantityRequested
	}
	for name, total := range totals {
		resp.TopProducts = append(resp.TopProducts, dto.TopProduct{ProductName: name, TotalRequested: total})
	}
	sort.Slice(resp.TopProducts, func(i, j int) bool {
		a, b := resp.TopProducts[i], resp.TopProducts[j]
		if a.TotalRequested != b.TotalRequested {
			return a.TotalRequested > b.TotalRequested
		}
		return a.ProductName < b.ProductName
	})
	return resp, nil
}

// Dashboard contadores generales y últimos pedidos. Las consultas corren en paralelo.
func (uc *ReportUseCase) Dashboard(ctx context.Context, identity entity.Identity) (*dto.DashboardResponse, error) {
	if err := auth.Require(identity, auth.DashboardRoles...); err != nil {
		return nil, err
	}
	resp := &dto.DashboardResponse{GeneratedAt: uc.clock.Now()}
	g, gctx := errgroup.WithContext(ctx)

	counters := []struct {
		target repository.CountTarget
		dst    *int64
	}{
		{repository.CountProducts, &resp.Products},
		{repository.CountStockRows, &resp.StockRows},
		{repository.CountClients, &resp.Clients},
		{repository.CountSuppliers, &resp.Suppliers},
		{repository.CountOrders, &resp.Orders},
	}
	for _, c := range counters {
		c := c
		g.Go(func() error {
			n, err := uc.reportRepo.Count(gctx, c.target)
			if err != nil {
				return fmt.Errorf("dashboard: contar %s: %w", c.target, err)
			}
			*c.dst = n
			return nil
		})
	}

	var recent []*entity.Order
	g.Go(func() error {
		var err error
		recent, err = uc.reportRepo.RecentOrders(gctx, dashboardRecentOrders)
		if err != nil {
			return fmt.Errorf("dashboard: últimos pedidos: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		uc.log.Error().Err(err).Msg("dashboard")
		return nil, err
	}

	resp.RecentOrders = make([]dto.OrderResponse, 0, len(recent))
	for _, o := range recent {
		resp.RecentOrders = append(resp.RecentOrders, ToOrderResponse(o, nil))
	}
	return resp, nil
}

// ToStockLevelResponse convierte la vista de stock en su DTO.
func ToStockLevelResponse(l *entity.StockLevel) dto.StockLevelResponse {
	return dto.StockLevelResponse{
		ProductID:   l.ProductID,
		ProductCode: l.ProductCode,
		ProductName: l.ProductName,
		Form:        l.Form,
		Dosage:      l.Dosage,
		UnitPrice:   l.UnitPrice,
		Quantity:    l.Quantity,
		UpdatedAt:   l.UpdatedAt,
	}
}

// ToOrderResponse convierte un pedido (y sus líneas, si las hay) en su DTO.
func ToOrderResponse(o *entity.Order, lines []*entity.OrderLine) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:          o.ID,
		Code:        o.Code,
		Date:        o.Date,
		Status:      o.Status,
		State:       string(o.State()),
		ClientID:    o.ClientID,
		ClientName:  o.ClientName,
		CreatedBy:   o.CreatedBy,
		FinalizedAt: o.FinalizedAt,
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			ID:                l.ID,
			ProductID:         l.ProductID,
			ProductName:       l.ProductName,
			QuantityRequested: l.QuantityRequested,
			QuantityDelivered: l.QuantityDelivered,
		})
	}
	return resp
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
