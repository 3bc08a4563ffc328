package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrAuthFailure        = errors.New("identificadores incorrectos")
	ErrUnauthenticated    = errors.New("sesión no iniciada o expirada")
	ErrForbidden          = errors.New("acceso no autorizado para este rol")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrUnknownStockRecord = errors.New("stock inexistente para este producto")
	ErrOrderNotOpen       = errors.New("el pedido ya fue finalizado")
	ErrPersistence        = errors.New("error de persistencia")
)

// PersistenceError envuelve un fallo de infraestructura (conexión, constraint, commit).
// errors.Is(err, ErrPersistence) es verdadero y el error del driver sigue accesible con errors.As.
type PersistenceError struct {
	Op  string
	Err error
}

// NewPersistenceError construye el error; devuelve nil si err es nil.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return ErrPersistence.Error() + ": " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrPersistence).
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
