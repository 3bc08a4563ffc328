// Package pdf genera la versión imprimible del reporte de stock.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre de la app     │  Fecha de generación         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Código | Producto | Forma | Dosis | Cant | Valor     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  STOCK BAJO: productos con cantidad <= umbral                │
//	│  TOTAL: valor del inventario                                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/cadmeko-api/internal/application/dto"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 110, Blue: 80}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

// StockReportRenderer implementa reports.StockPDFRenderer usando Maroto v2.
type StockReportRenderer struct {
	title    string
	currency string
	printer  *message.Printer
}

// NewStockReportRenderer construye el renderer. locale es un tag BCP 47 (fr, fr-CD, en...).
func NewStockReportRenderer(title, currency, locale string) *StockReportRenderer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.French
	}
	return &StockReportRenderer{title: title, currency: currency, printer: message.NewPrinter(tag)}
}

// RenderStockReport genera el PDF y devuelve sus bytes.
func (r *StockReportRenderer) RenderStockReport(_ context.Context, report *dto.StockReportResponse) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("État du stock", true).
		WithAuthor(r.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(r.headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, it := range report.Items {
		m.AddRows(r.itemRow(it, false))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Produits avec stock faible (seuil %d) : %d", report.Threshold, len(report.LowStock)), props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorAlert, Top: 2,
		}),
	)))
	for _, it := range report.LowStock {
		m.AddRows(r.itemRow(it, true))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(r.totalRow(report.TotalValue))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// FormatAmount formatea un monto con separadores del locale y la moneda configurada.
// Ej. fr: 1234567.5 -> "1 234 567,50 CDF".
func (r *StockReportRenderer) FormatAmount(v decimal.Decimal) string {
	return r.printer.Sprintf("%.2f %s", v.InexactFloat64(), r.currency)
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (r *StockReportRenderer) headerRow(report *dto.StockReportResponse) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(r.title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("État actuel du stock", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Généré le "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
			text.New(r.printer.Sprintf("%d produits", len(report.Items)), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Code", 2, align.Left),
		h("Produit", 4, align.Left),
		h("Forme", 2, align.Left),
		h("Dosage", 1, align.Left),
		h("Qté", 1, align.Right),
		h("Valeur", 2, align.Right),
	)
}

func (r *StockReportRenderer) itemRow(it dto.StockLevelResponse, alert bool) core.Row {
	color := &props.Color{}
	if alert {
		color = colorAlert
	}
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1, Color: color}))
	}
	value := it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
	return row.New(6).Add(
		cell(it.ProductCode, 2, align.Left),
		cell(it.ProductName, 4, align.Left),
		cell(it.Form, 2, align.Left),
		cell(it.Dosage, 1, align.Left),
		cell(r.printer.Sprintf("%d", it.Quantity), 1, align.Right),
		cell(r.FormatAmount(value), 2, align.Right),
	)
}

func (r *StockReportRenderer) totalRow(total decimal.Decimal) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("Valeur totale :", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(3).Add(text.New(r.FormatAmount(total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}
