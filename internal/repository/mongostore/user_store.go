package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"repbep/internal/model"
)

type userDoc struct {
	ID                primitive.ObjectID      `bson:"_id"`
	Email             string                  `bson:"email"`
	PasswordHash      string                  `bson:"password"`
	DisplayName       string                  `bson:"displayName"`
	Avatar            string                  `bson:"avatar"`
	Bio               string                  `bson:"bio"`
	Theme             string                  `bson:"theme"`
	ColorScheme       string                  `bson:"colorScheme"`
	SocialLinks       model.SocialLinks       `bson:"socialLinks"`
	WorkspaceSettings model.WorkspaceSettings `bson:"workspaceSettings"`
	CreatedAt         time.Time               `bson:"createdAt"`
}

func (d *userDoc) toModel() *model.User {
	return &model.User{
		ID:                d.ID.Hex(),
		Email:             d.Email,
		PasswordHash:      d.PasswordHash,
		DisplayName:       d.DisplayName,
		Avatar:            d.Avatar,
		Bio:               d.Bio,
		Theme:             d.Theme,
		ColorScheme:       d.ColorScheme,
		SocialLinks:       d.SocialLinks,
		WorkspaceSettings: d.WorkspaceSettings,
		CreatedAt:         d.CreatedAt.UTC(),
	}
}

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	doc := userDoc{
		ID:                primitive.NewObjectID(),
		Email:             user.Email,
		PasswordHash:      user.PasswordHash,
		DisplayName:       user.DisplayName,
		Avatar:            user.Avatar,
		Bio:               user.Bio,
		Theme:             user.Theme,
		ColorScheme:       user.ColorScheme,
		SocialLinks:       user.SocialLinks,
		WorkspaceSettings: user.WorkspaceSettings,
		CreatedAt:         user.CreatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.get(ctx, bson.M{"email": email})
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	return s.get(ctx, bson.M{"_id": oid})
}

func (s *UserStore) UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (bool, error) {
	oid, ok := parseID(id)
	if !ok {
		return false, nil
	}
	set := bson.M{}
	if update.DisplayName != nil {
		set["displayName"] = *update.DisplayName
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.Avatar != nil {
		set["avatar"] = *update.Avatar
	}
	if update.Theme != nil {
		set["theme"] = *update.Theme
	}
	if update.ColorScheme != nil {
		set["colorScheme"] = *update.ColorScheme
	}
	if update.SocialLinks != nil {
		set["socialLinks"] = *update.SocialLinks
	}
	if update.WorkspaceSettings != nil {
		set["workspaceSettings"] = *update.WorkspaceSettings
	}
	if len(set) == 0 {
		user, err := s.GetByID(ctx, id)
		return user != nil, err
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("update user profile failed: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (s *UserStore) get(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	found, err := findOne(ctx, s.coll, filter, &doc)
	if err != nil {
		return nil, fmt.Errorf("query user failed: %w", err)
	}
	if !found {
		return nil, nil
	}
	return doc.toModel(), nil
}
