package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"

	"github.com/jhoicas/Fulfillment-api/internal/application/ports"
	"github.com/jhoicas/Fulfillment-api/pkg/config"
	"github.com/jhoicas/Fulfillment-api/pkg/logger"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// MessageWriter lo que el publicador necesita de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher publica eventos de dominio en un tópico, clave = subject (orden/ola/tarea)
// para conservar el orden por entidad. Un breaker corta el envío si el bus está caído.
type Publisher struct {
	w       MessageWriter
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger
}

// NewWriter writer síncrono hacia el tópico configurado.
func NewWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
}

// NewPublisher envuelve w con un circuit breaker.
func NewPublisher(w MessageWriter, log *logger.Logger) *Publisher {
	log = log.Named("kafka")
	settings := gobreaker.Settings{
		Name:        "kafka-publisher",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("cambio de estado del circuit breaker")
		},
	}
	return &Publisher{w: w, breaker: gobreaker.NewCircuitBreaker(settings), log: log}
}

// Publish serializa y escribe los eventos en un solo lote.
func (p *Publisher) Publish(ctx context.Context, events ...ports.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", e.Type, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.Subject),
			Value: data,
			Time:  e.OccurredAt,
			Headers: []kafka.Header{
				{Key: "event-type", Value: []byte(e.Type)},
				{Key: "content-type", Value: []byte("application/json")},
			},
		})
	}
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.w.WriteMessages(ctx, msgs...)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("bus de eventos no disponible: %w", err)
	}
	if err != nil {
		return fmt.Errorf("publish %d events: %w", len(msgs), err)
	}
	return nil
}

// Close cierra el writer subyacente.
func (p *Publisher) Close() error {
	return p.w.Close()
}
