package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/datatypes"

	"repbep/internal/model"
)

type projectDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	UserID       primitive.ObjectID `bson:"userId"`
	Name         string             `bson:"name"`
	Description  string             `bson:"description"`
	Status       string             `bson:"status"`
	Tech         []string           `bson:"tech"`
	Color        string             `bson:"color"`
	CreatedAt    time.Time          `bson:"createdAt"`
	LastModified time.Time          `bson:"lastModified"`
}

func (d *projectDoc) toModel() *model.Project {
	tech := d.Tech
	if tech == nil {
		tech = []string{}
	}
	return &model.Project{
		ID:           d.ID.Hex(),
		UserID:       d.UserID.Hex(),
		Name:         d.Name,
		Description:  d.Description,
		Status:       d.Status,
		Tech:         datatypes.JSONSlice[string](tech),
		Color:        d.Color,
		CreatedAt:    d.CreatedAt.UTC(),
		LastModified: d.LastModified.UTC(),
	}
}

type ProjectStore struct {
	coll *mongo.Collection
}

func NewProjectStore(db *mongo.Database) *ProjectStore {
	return &ProjectStore{coll: db.Collection(projectsCollection)}
}

func (s *ProjectStore) Create(ctx context.Context, project *model.Project) error {
	userOID, err := mustParseID("user", project.UserID)
	if err != nil {
		return fmt.Errorf("create project failed: %w", err)
	}
	doc := projectDoc{
		ID:           primitive.NewObjectID(),
		UserID:       userOID,
		Name:         project.Name,
		Description:  project.Description,
		Status:       project.Status,
		Tech:         []string(project.Tech),
		Color:        project.Color,
		CreatedAt:    project.CreatedAt,
		LastModified: project.LastModified,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create project failed: %w", err)
	}
	project.ID = doc.ID.Hex()
	return nil
}

func (s *ProjectStore) ListByUserID(ctx context.Context, userID string, limit int) ([]model.Project, error) {
	userOID, ok := parseID(userID)
	if !ok {
		return []model.Project{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, bson.M{"userId": userOID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects failed: %w", err)
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects failed: %w", err)
	}

	projects := make([]model.Project, 0, len(docs))
	for i := range docs {
		projects = append(projects, *docs[i].toModel())
	}
	return projects, nil
}

// ownedFilter returns false when either id is malformed, so callers report not found.
func ownedFilter(id, userID string) (bson.M, bool) {
	oid, ok := parseID(id)
	if !ok {
		return nil, false
	}
	userOID, ok := parseID(userID)
	if !ok {
		return nil, false
	}
	return bson.M{"_id": oid, "userId": userOID}, true
}

func (s *ProjectStore) GetByIDAndUserID(ctx context.Context, id, userID string) (*model.Project, error) {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return nil, nil
	}
	var doc projectDoc
	found, err := findOne(ctx, s.coll, filter, &doc)
	if err != nil {
		return nil, fmt.Errorf("get project failed: %w", err)
	}
	if !found {
		return nil, nil
	}
	return doc.toModel(), nil
}

func (s *ProjectStore) Update(ctx context.Context, id, userID string, update model.ProjectUpdate, at time.Time) (*model.Project, error) {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return nil, nil
	}
	set := bson.M{"lastModified": at}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.Tech != nil {
		set["tech"] = *update.Tech
	}
	if update.Color != nil {
		set["color"] = *update.Color
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc projectDoc
	err := s.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update project failed: %w", err)
	}
	return doc.toModel(), nil
}

func (s *ProjectStore) DeleteByIDAndUserID(ctx context.Context, id, userID string) (bool, error) {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return false, nil
	}
	res, err := s.coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("delete project failed: %w", err)
	}
	return res.DeletedCount > 0, nil
}
