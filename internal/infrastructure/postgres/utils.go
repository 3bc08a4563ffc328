package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/cadmeko-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// wrap convierte un error del driver en PersistenceError; nil sigue siendo nil.
// Un valor mal formado para la columna (22P02, ej. UUID inválido) es error del cliente.
func wrap(op string, err error) error {
	if isInvalidTextRepresentation(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
	}
	return domain.NewPersistenceError(op, err)
}

// isInvalidTextRepresentation verifica invalid_text_representation (22P02).
func isInvalidTextRepresentation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// isNoRows indica fila inexistente (los Get* devuelven nil, nil).
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// nullable devuelve nil para strings vacíos (columnas UUID opcionales).
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
