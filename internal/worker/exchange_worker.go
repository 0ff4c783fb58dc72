package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"repbep/internal/app"
)

// ExchangeHandler processes one completed exchange. A returned error drops the delivery.
type ExchangeHandler func(ctx context.Context, event app.ExchangeEvent) error

// ExchangeWorker consumes the events ExchangePublisher emits.
type ExchangeWorker struct {
	conn      *amqp.Connection
	queueName string
	handle    ExchangeHandler
	log       *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewExchangeWorker(conn *amqp.Connection, queueName string, handle ExchangeHandler, log *zap.Logger) *ExchangeWorker {
	return &ExchangeWorker{
		conn:      conn,
		queueName: queueName,
		handle:    handle,
		log:       log.With(zap.String("module", "exchange_worker"), zap.String("queue", queueName)),
	}
}

func (w *ExchangeWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	ch, err := w.conn.Channel()
	if err != nil {
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()
		w.consume(workerCtx, deliveries)
	}()

	w.log.Info("exchange worker started")
	return nil
}

func (w *ExchangeWorker) consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}

			var event app.ExchangeEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				w.log.Warn("decode exchange event failed", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}

			if err := w.handle(ctx, event); err != nil {
				w.log.Warn("handle exchange event failed",
					zap.String("conversation_id", event.ConversationID),
					zap.Error(err),
				)
				_ = d.Nack(false, false)
				continue
			}

			_ = d.Ack(false)
		}
	}
}

func (w *ExchangeWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

// AuditHandler writes one structured log line per exchange.
func AuditHandler(log *zap.Logger) ExchangeHandler {
	log = log.With(zap.String("module", "exchange_audit"))
	return func(ctx context.Context, event app.ExchangeEvent) error {
		fields := []zap.Field{
			zap.String("conversation_id", event.ConversationID),
			zap.String("user_id", event.UserID),
			zap.Int("user_chars", len([]rune(event.UserMessage.Content))),
			zap.Int("assistant_chars", len([]rune(event.AssistantMessage.Content))),
			zap.Duration("turnaround", event.AssistantMessage.Timestamp.Sub(event.UserMessage.Timestamp)),
			zap.Bool("fallback", event.Fallback),
		}
		if event.ProjectID != nil {
			fields = append(fields, zap.String("project_id", *event.ProjectID))
		}
		if event.Fallback {
			log.Warn("exchange completed with fallback", fields...)
			return nil
		}
		log.Info("exchange completed", fields...)
		return nil
	}
}
