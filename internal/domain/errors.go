package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrHasSalesHistory   = errors.New("el producto tiene historial de ventas")
	ErrEmptySale         = errors.New("la venta debe tener al menos un ítem")
)

// Error error de dominio con un mensaje para el operador.
// errors.Is compara contra Kind (uno de los sentinels de arriba).
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string { return e.Detail }

func (e *Error) Unwrap() error { return e.Kind }

// Errorf construye un *Error de la clase kind con el mensaje formateado.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
