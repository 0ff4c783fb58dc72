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

type conversationDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	UserID       primitive.ObjectID `bson:"userId"`
	ProjectID    any                `bson:"projectId"`
	Title        string             `bson:"title"`
	SessionID    string             `bson:"sessionId"`
	CreatedAt    time.Time          `bson:"createdAt"`
	LastModified time.Time          `bson:"lastModified"`
}

func (d *conversationDoc) toModel() model.Conversation {
	return model.Conversation{
		ID:           d.ID.Hex(),
		UserID:       d.UserID.Hex(),
		ProjectID:    projectRefString(d.ProjectID),
		Title:        d.Title,
		SessionID:    d.SessionID,
		CreatedAt:    d.CreatedAt.UTC(),
		LastModified: d.LastModified.UTC(),
	}
}

type ConversationStore struct {
	coll *mongo.Collection
}

func NewConversationStore(db *mongo.Database) *ConversationStore {
	return &ConversationStore{coll: db.Collection(conversationsCollection)}
}

func (s *ConversationStore) Create(ctx context.Context, conversation *model.Conversation) error {
	userOID, err := mustParseID("user", conversation.UserID)
	if err != nil {
		return fmt.Errorf("create conversation failed: %w", err)
	}
	doc := conversationDoc{
		ID:           primitive.NewObjectID(),
		UserID:       userOID,
		Title:        conversation.Title,
		SessionID:    conversation.SessionID,
		CreatedAt:    conversation.CreatedAt,
		LastModified: conversation.LastModified,
	}
	if conversation.ProjectID != nil {
		doc.ProjectID = projectRef(*conversation.ProjectID)
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create conversation failed: %w", err)
	}
	conversation.ID = doc.ID.Hex()
	return nil
}

func (s *ConversationStore) GetByIDAndUserID(ctx context.Context, id, userID string) (*model.Conversation, error) {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return nil, nil
	}
	var doc conversationDoc
	found, err := findOne(ctx, s.coll, filter, &doc)
	if err != nil {
		return nil, fmt.Errorf("get conversation failed: %w", err)
	}
	if !found {
		return nil, nil
	}
	conversation := doc.toModel()
	return &conversation, nil
}

func (s *ConversationStore) ListByUserID(ctx context.Context, userID string, projectID *string, limit int) ([]model.Conversation, error) {
	userOID, ok := parseID(userID)
	if !ok {
		return []model.Conversation{}, nil
	}
	filter := bson.M{"userId": userOID}
	if projectID != nil {
		filter["projectId"] = projectRef(*projectID)
	}
	opts := options.Find().SetSort(bson.D{{Key: "lastModified", Value: -1}}).SetLimit(int64(limit))

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}
	var docs []conversationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode conversations failed: %w", err)
	}

	conversations := make([]model.Conversation, 0, len(docs))
	for i := range docs {
		conversations = append(conversations, docs[i].toModel())
	}
	return conversations, nil
}

func (s *ConversationStore) Touch(ctx context.Context, id string, at time.Time) error {
	oid, ok := parseID(id)
	if !ok {
		return nil
	}
	if _, err := s.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"lastModified": at}}); err != nil {
		return fmt.Errorf("touch conversation failed: %w", err)
	}
	return nil
}

func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return nil
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete conversation failed: %w", err)
	}
	return nil
}
