package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cadmeko-api/internal/domain"
	"github.com/jhoicas/cadmeko-api/internal/domain/repository"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23514"}), "check_violation no es duplicado")
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
}

func TestWrap_PersistenceError(t *testing.T) {
	assert.NoError(t, wrap("op", nil))

	pgErr := &pgconn.PgError{Code: "23514", Message: "violates check constraint"}
	err := wrap("upsert stock", pgErr)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	var got *pgconn.PgError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "23514", got.Code)
	assert.Contains(t, err.Error(), "upsert stock")
}

func TestWrap_UUIDMalFormadoEsEntradaInvalida(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}
	err := wrap("get produit", pgErr)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotErrorIs(t, err, domain.ErrPersistence, "no es un fallo de infraestructura")
	assert.Contains(t, err.Error(), "get produit")
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, isNoRows(pgx.ErrNoRows))
	assert.True(t, isNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
	assert.False(t, isNoRows(errors.New("otro")))
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	require.NotNil(t, nullable("x"))
	assert.Equal(t, "x", deref(nullable("x")))
	assert.Equal(t, "", deref(nil))
}

func TestMigrations_Embebidas(t *testing.T) {
	script, err := migrationsFS.ReadFile("migrations/001_init.sql")
	require.NoError(t, err)
	sql := string(script)

	for _, table := range []string{"produit", "stock", "mouvement_stock", "commande", "commande_detail", "client", "fournisseur", "utilisateur"} {
		assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS "+table+" (", "falta la tabla %s", table)
	}
	assert.Contains(t, sql, "CHECK (quantite >= 0)", "el stock nunca puede quedar negativo")
	assert.Contains(t, sql, "code_commande  VARCHAR(30)  NOT NULL UNIQUE")
	assert.Contains(t, sql, "BEFORE UPDATE OR DELETE ON mouvement_stock")
}

func TestCountQueries_CubrenTodosLosTargets(t *testing.T) {
	assert.Len(t, countQueries, 5)
	assert.Contains(t, countQueries, repository.CountSuppliers)
}
