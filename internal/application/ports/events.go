package ports

import (
	"context"
	"time"
)

// Tipos de evento que observan los colaboradores externos (p. ej. facturación).
const (
	EventOrderAllocated = "fulfillment.order.allocated"
	EventOrderCancelled = "fulfillment.order.cancelled"
	EventOrderPicked    = "fulfillment.order.picked"
	EventWaveReleased   = "fulfillment.wave.released"
	EventWaveCompleted  = "fulfillment.wave.completed"
	EventWaveCancelled  = "fulfillment.wave.cancelled"
	EventPickShort      = "fulfillment.pick.short"
)

// Event hecho de dominio publicado después del Commit.
type Event struct {
	Type        string         `json:"type"`
	Subject     string         `json:"subject"`
	WarehouseID string         `json:"warehouse_id,omitempty"`
	Actor       string         `json:"actor,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Data        map[string]any `json:"data,omitempty"`
}

// EventPublisher puerto de salida hacia el bus de eventos. La publicación es
// best-effort: un fallo se registra pero no revierte la operación ya confirmada.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NoopPublisher descarta los eventos (bus deshabilitado).
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }
