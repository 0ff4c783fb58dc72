package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"repbep/internal/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("create project failed: %w", err)
	}
	return nil
}

func (r *ProjectRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]model.Project, error) {
	projects := []model.Project{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Limit(limit).
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects failed: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepository) GetByIDAndUserID(ctx context.Context, id, userID string) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project failed: %w", err)
	}
	return &project, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id, userID string, update model.ProjectUpdate, at time.Time) (*model.Project, error) {
	project, err := r.GetByIDAndUserID(ctx, id, userID)
	if err != nil || project == nil {
		return nil, err
	}
	update.Apply(project)
	project.LastModified = at
	if err := r.db.WithContext(ctx).Save(project).Error; err != nil {
		return nil, fmt.Errorf("update project failed: %w", err)
	}
	return project, nil
}

func (r *ProjectRepository) DeleteByIDAndUserID(ctx context.Context, id, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Project{})
	if res.Error != nil {
		return false, fmt.Errorf("delete project failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
