package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Fulfillment-api/internal/application/ports"
	"github.com/jhoicas/Fulfillment-api/internal/infrastructure/kafka"
	"github.com/jhoicas/Fulfillment-api/pkg/logger"
)

type fakeWriter struct {
	msgs  []segkafka.Message
	err   error
	calls int
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...segkafka.Message) error {
	w.calls++
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestPublish_ClavePorSubject(t *testing.T) {
	w := &fakeWriter{}
	p := kafka.NewPublisher(w, logger.Nop())

	err := p.Publish(context.Background(),
		ports.Event{Type: ports.EventWaveReleased, Subject: "wave-1", OccurredAt: time.Now()},
		ports.Event{Type: ports.EventPickShort, Subject: "task-9", Data: map[string]any{"qty_short": 15}},
	)
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "wave-1", string(w.msgs[0].Key))
	assert.Equal(t, ports.EventPickShort, string(w.msgs[1].Headers[0].Value))

	var got ports.Event
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &got))
	assert.Equal(t, "task-9", got.Subject)
	assert.EqualValues(t, 15, got.Data["qty_short"])
}

func TestPublish_SinEventosNoEscribe(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, kafka.NewPublisher(w, logger.Nop()).Publish(context.Background()))
	assert.Zero(t, w.calls)
}

func TestPublish_BreakerAbreTrasFallosConsecutivos(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	p := kafka.NewPublisher(w, logger.Nop())
	ev := ports.Event{Type: ports.EventOrderPicked, Subject: "O1"}

	for i := 0; i < 5; i++ {
		assert.Error(t, p.Publish(context.Background(), ev))
	}
	err := p.Publish(context.Background(), ev)
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, w.calls, "con el breaker abierto no se intenta escribir")
}
