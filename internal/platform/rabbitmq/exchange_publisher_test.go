package rabbitmq

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repbep/internal/app"
	"repbep/internal/model"
)

// testConnection dials RABBITMQ_TEST_URL. Tests are skipped when the variable is unset.
func testConnection(t *testing.T) *amqp.Connection {
	t.Helper()
	url := os.Getenv("RABBITMQ_TEST_URL")
	if url == "" {
		t.Skip("RABBITMQ_TEST_URL not set")
	}
	conn, err := New(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestExchangePublisherRoundTrip(t *testing.T) {
	conn := testConnection(t)
	queue := "repbep.test." + uuid.NewString()

	publisher, err := NewExchangePublisher(conn, queue)
	require.NoError(t, err)
	t.Cleanup(func() {
		ch, err := conn.Channel()
		if err != nil {
			return
		}
		_, _ = ch.QueueDelete(queue, false, false, false)
		_ = ch.Close()
	})

	projectID := "p1"
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	event := app.ExchangeEvent{
		ConversationID:   "c1",
		UserID:           "u1",
		ProjectID:        &projectID,
		UserMessage:      model.Message{ID: "m1", Role: model.RoleUser, Content: "hi", Timestamp: at},
		AssistantMessage: model.Message{ID: "m2", Role: model.RoleAssistant, Content: "hello", Timestamp: at.Add(time.Millisecond)},
		Fallback:         true,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, publisher.PublishExchange(ctx, event))

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	var delivery amqp.Delivery
	require.Eventually(t, func() bool {
		d, ok, err := ch.Get(queue, true)
		if err != nil || !ok {
			return false
		}
		delivery = d
		return true
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, "application/json", delivery.ContentType)
	assert.Equal(t, "chat.exchange.completed", delivery.Type)
	assert.Equal(t, amqp.Persistent, delivery.DeliveryMode)

	var got app.ExchangeEvent
	require.NoError(t, json.Unmarshal(delivery.Body, &got))
	assert.Equal(t, "c1", got.ConversationID)
	assert.Equal(t, "u1", got.UserID)
	require.NotNil(t, got.ProjectID)
	assert.Equal(t, "p1", *got.ProjectID)
	assert.True(t, got.Fallback)
	assert.Equal(t, "hi", got.UserMessage.Content)
	assert.Equal(t, model.RoleAssistant, got.AssistantMessage.Role)
	assert.True(t, got.AssistantMessage.Timestamp.Equal(event.AssistantMessage.Timestamp))
}
