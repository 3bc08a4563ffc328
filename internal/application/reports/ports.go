package reports

import (
	"context"

	"github.com/jhoicas/cadmeko-api/internal/application/dto"
)

// StockPDFRenderer genera la versión imprimible del reporte de stock.
type StockPDFRenderer interface {
	RenderStockReport(ctx context.Context, report *dto.StockReportResponse) ([]byte, error)
}
