// Package mongostore keeps users, projects, conversations and messages in MongoDB
// collections laid out the way the original Python backend wrote them: camelCase
// fields and ObjectID references. Ids are exposed as hex strings; a malformed id
// matches nothing.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection         = "users"
	projectsCollection      = "projects"
	conversationsCollection = "conversations"
	messagesCollection      = "messages"
)

// EnsureIndexes creates the lookup and uniqueness indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		projectsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		conversationsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "lastModified", Value: -1}}},
			{Keys: bson.D{{Key: "sessionId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		messagesCollection: {
			{Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s failed: %w", name, err)
		}
	}
	return nil
}

func parseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func mustParseID(kind, id string) (primitive.ObjectID, error) {
	oid, ok := parseID(id)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("invalid %s id %q", kind, id)
	}
	return oid, nil
}

// projectRef stores project ids as ObjectIDs when they look like one. Chat accepts
// unchecked project ids, so anything else is kept as a plain string.
func projectRef(id string) any {
	if oid, ok := parseID(id); ok {
		return oid
	}
	return id
}

func projectRefString(v any) *string {
	var s string
	switch ref := v.(type) {
	case primitive.ObjectID:
		s = ref.Hex()
	case string:
		s = ref
	default:
		return nil
	}
	return &s
}

func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, out any) (bool, error) {
	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
