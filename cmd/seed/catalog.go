package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/cadmeko-api/internal/application/dto"
	"github.com/jhoicas/cadmeko-api/internal/application/usecase"
)

const catalogDateLayout = "02/01/2006"

// catalogReader envuelve r con el decodificador del encoding indicado (utf-8 o latin1).
func catalogReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	}
	return nil, fmt.Errorf("encoding no soportado: %q", encoding)
}

// parseCatalog lee filas code;name;form;dosage;dd/mm/aaaa;price. Una primera fila que empiece
// por "code" se toma como encabezado. El precio acepta coma o punto decimal; vacío = 0.
func parseCatalog(r io.Reader) ([]dto.CreateProductRequest, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = 6
	cr.TrimLeadingSpace = true

	var out []dto.CreateProductRequest
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "code") {
			continue
		}
		expiry, err := time.Parse(catalogDateLayout, strings.TrimSpace(rec[4]))
		if err != nil {
			return nil, fmt.Errorf("línea %d: fecha de caducidad %q: %w", line, rec[4], err)
		}
		price := decimal.Zero
		if raw := strings.TrimSpace(rec[5]); raw != "" {
			price, err = decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
			if err != nil {
				return nil, fmt.Errorf("línea %d: precio %q: %w", line, rec[5], err)
			}
		}
		out = append(out, dto.CreateProductRequest{
			Code:       strings.TrimSpace(rec[0]),
			Name:       strings.TrimSpace(rec[1]),
			Form:       strings.TrimSpace(rec[2]),
			Dosage:     strings.TrimSpace(rec[3]),
			ExpiryDate: expiry.Format(usecase.DateLayout),
			UnitPrice:  price,
		})
	}
	return out, nil
}
