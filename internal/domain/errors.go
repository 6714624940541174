package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidState        = errors.New("estado no permite la operación")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrUnauthorized        = errors.New("no autorizado")
)
