// Package clock abstrae la hora actual para que los casos de uso que dependen
// del día calendario (códigos de pedido, fechas de movimiento) sean testeables.
package clock

import (
	"sync"
	"time"
)

// Clock devuelve la hora actual. Producción inyecta Real(); los tests, Fake.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Real devuelve el reloj del sistema.
func Real() Clock { return realClock{} }

// Fake es un reloj manual. Seguro para uso concurrente.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake crea un reloj fijo en t.
func NewFake(t time.Time) *Fake {
	return &Fake{now: t}
}

// Now devuelve la hora fijada.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance mueve el reloj d hacia adelante.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Set fija el reloj en t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}
