package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"repbep/internal/app"
	"repbep/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type ackRecorder struct {
	mu    sync.Mutex
	acks  int
	nacks int
}

func (a *ackRecorder) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *ackRecorder) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestConsumeAcksHandledAndDropsBroken(t *testing.T) {
	acker := &ackRecorder{}
	var handled []string
	w := &ExchangeWorker{
		log: zaptest.NewLogger(t),
		handle: func(ctx context.Context, event app.ExchangeEvent) error {
			if event.ConversationID == "bad" {
				return errors.New("rejected")
			}
			handled = append(handled, event.ConversationID)
			return nil
		},
	}

	good, err := json.Marshal(app.ExchangeEvent{ConversationID: "c1"})
	require.NoError(t, err)
	bad, err := json.Marshal(app.ExchangeEvent{ConversationID: "bad"})
	require.NoError(t, err)

	deliveries := make(chan amqp.Delivery, 3)
	deliveries <- amqp.Delivery{Acknowledger: acker, Body: good}
	deliveries <- amqp.Delivery{Acknowledger: acker, Body: []byte("{not json")}
	deliveries <- amqp.Delivery{Acknowledger: acker, Body: bad}
	close(deliveries)

	w.consume(context.Background(), deliveries)

	assert.Equal(t, []string{"c1"}, handled)
	assert.Equal(t, 1, acker.acks)
	assert.Equal(t, 2, acker.nacks)
}

func TestConsumeStopsOnCancel(t *testing.T) {
	w := &ExchangeWorker{log: zap.NewNop(), handle: func(context.Context, app.ExchangeEvent) error { return nil }}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.consume(ctx, make(chan amqp.Delivery))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consume did not return after cancel")
	}
}

func TestAuditHandlerLogsFallbackAsWarning(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handle := AuditHandler(zap.New(core))

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	project := "p1"
	require.NoError(t, handle(context.Background(), app.ExchangeEvent{
		ConversationID:   "c1",
		ProjectID:        &project,
		UserMessage:      model.Message{Content: "hi", Timestamp: at},
		AssistantMessage: model.Message{Content: "sorry", Timestamp: at.Add(time.Second)},
		Fallback:         true,
	}))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "c1", fields["conversation_id"])
	assert.Equal(t, "p1", fields["project_id"])
	assert.Equal(t, time.Second, fields["turnaround"])
}
