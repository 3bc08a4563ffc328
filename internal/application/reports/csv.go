package reports

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/jhoicas/cadmeko-api/internal/application/dto"
)

const csvDateLayout = "02/01/2006"

// WriteStockCSV escribe el reporte de stock (todas las filas) en CSV.
func WriteStockCSV(w io.Writer, report *dto.StockReportResponse) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"code", "produit", "forme", "dosage", "quantite"}); err != nil {
		return err
	}
	for _, it := range report.Items {
		rec := []string{it.ProductCode, it.ProductName, it.Form, it.Dosage, strconv.FormatInt(it.Quantity, 10)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProductsCSV escribe el catálogo en CSV; la caducidad (YYYY-MM-DD) sale en dd/mm/aaaa.
func WriteProductsCSV(w io.Writer, products []dto.ProductResponse) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"code", "nom", "forme", "dosage", "date_peremption", "prix_unitaire"}); err != nil {
		return err
	}
	for _, p := range products {
		expiry := p.ExpiryDate
		if t, err := time.Parse("2006-01-02", p.ExpiryDate); err == nil {
			expiry = t.Format(csvDateLayout)
		}
		rec := []string{p.Code, p.Name, p.Form, p.Dosage, expiry, p.UnitPrice.StringFixed(2)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOrdersCSV escribe las líneas del reporte de pedidos en CSV, fechas en dd/mm/aaaa.
func WriteOrdersCSV(w io.Writer, report *dto.OrdersReportResponse) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Code", "Date", "Client", "Produit", "Quantité demandée"}); err != nil {
		return err
	}
	for _, l := range report.Lines {
		rec := []string{
			l.OrderCode,
			l.OrderDate.Format(csvDateLayout),
			l.ClientName,
			l.ProductName,
			strconv.FormatInt(l.QuantityRequested, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
