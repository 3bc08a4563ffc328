package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cadmeko-api/internal/domain"
)

type driverErr struct{ code string }

func (e *driverErr) Error() string { return "driver: " + e.code }

func TestPersistenceError_IsYAs(t *testing.T) {
	cause := &driverErr{code: "08006"}
	err := fmt.Errorf("crear pedido: %w", domain.NewPersistenceError("insert commande", cause))

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)

	var de *driverErr
	require.True(t, errors.As(err, &de), "el error del driver debe seguir accesible")
	assert.Equal(t, "08006", de.code)
	assert.Contains(t, err.Error(), "insert commande")
	assert.Contains(t, err.Error(), "driver: 08006", "el mensaje original se expone tal cual")
}

func TestNewPersistenceError_Nil(t *testing.T) {
	assert.NoError(t, domain.NewPersistenceError("op", nil))
}

func TestErroresDeNegocio_MensajesDistintos(t *testing.T) {
	all := []error{
		domain.ErrNotFound, domain.ErrInvalidInput, domain.ErrDuplicate, domain.ErrAuthFailure,
		domain.ErrUnauthenticated, domain.ErrForbidden, domain.ErrInsufficientStock,
		domain.ErrUnknownStockRecord, domain.ErrOrderNotOpen, domain.ErrPersistence,
	}
	seen := map[string]bool{}
	for _, e := range all {
		assert.False(t, seen[e.Error()], "mensaje repetido: %s", e.Error())
		seen[e.Error()] = true
	}
}
