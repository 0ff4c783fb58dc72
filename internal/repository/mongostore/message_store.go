package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"repbep/internal/model"
)

type messageDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	ConversationID primitive.ObjectID `bson:"conversationId"`
	Role           string             `bson:"role"`
	Content        string             `bson:"content"`
	Timestamp      time.Time          `bson:"timestamp"`
}

type MessageStore struct {
	coll *mongo.Collection
}

func NewMessageStore(db *mongo.Database) *MessageStore {
	return &MessageStore{coll: db.Collection(messagesCollection)}
}

func (s *MessageStore) Create(ctx context.Context, message *model.Message) error {
	conversationOID, err := mustParseID("conversation", message.ConversationID)
	if err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	doc := messageDoc{
		ID:             primitive.NewObjectID(),
		ConversationID: conversationOID,
		Role:           message.Role,
		Content:        message.Content,
		Timestamp:      message.Timestamp,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	message.ID = doc.ID.Hex()
	return nil
}

// ListByConversationID sorts on timestamp and breaks ties on _id, which grows with insertion.
func (s *MessageStore) ListByConversationID(ctx context.Context, conversationID string, limit int) ([]model.Message, error) {
	conversationOID, ok := parseID(conversationID)
	if !ok {
		return []model.Message{}, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := s.coll.Find(ctx, bson.M{"conversationId": conversationOID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode messages failed: %w", err)
	}

	messages := make([]model.Message, 0, len(docs))
	for _, d := range docs {
		messages = append(messages, model.Message{
			ID:             d.ID.Hex(),
			ConversationID: d.ConversationID.Hex(),
			Role:           d.Role,
			Content:        d.Content,
			Timestamp:      d.Timestamp.UTC(),
		})
	}
	return messages, nil
}
