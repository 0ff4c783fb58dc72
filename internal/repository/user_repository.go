package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"repbep/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

// UpdateProfile applies the set fields and reports whether the user exists.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (bool, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil || user == nil {
		return false, err
	}
	update.Apply(user)
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return false, fmt.Errorf("update user profile failed: %w", err)
	}
	return true, nil
}
