package app

import (
	"context"
	"strings"
	"time"

	"gorm.io/datatypes"

	"repbep/internal/model"
)

const maxListedProjects = 1000

type ProjectService struct {
	projectRepo ProjectStore
	now         func() time.Time
}

type CreateProjectInput struct {
	UserID      string
	Name        string
	Description string
	Tech        []string
	Color       string
}

func NewProjectService(projectRepo ProjectStore) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		now:         func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *ProjectService) List(ctx context.Context, userID string) ([]model.Project, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.projectRepo.ListByUserID(ctx, userID, maxListedProjects)
}

func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*model.Project, error) {
	name := strings.TrimSpace(input.Name)
	if input.UserID == "" || name == "" {
		return nil, ErrInvalidInput
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = "emerald"
	}
	tech := input.Tech
	if tech == nil {
		tech = []string{}
	}

	now := s.now()
	project := &model.Project{
		UserID:       input.UserID,
		Name:         name,
		Description:  input.Description,
		Status:       model.ProjectStatusActive,
		Tech:         datatypes.JSONSlice[string](tech),
		Color:        color,
		CreatedAt:    now,
		LastModified: now,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Update applies the set fields and bumps lastModified; an empty update returns the
// project unchanged.
func (s *ProjectService) Update(ctx context.Context, userID, projectID string, update model.ProjectUpdate) (*model.Project, error) {
	if userID == "" || projectID == "" {
		return nil, ErrInvalidInput
	}

	if update.Empty() {
		project, err := s.projectRepo.GetByIDAndUserID(ctx, projectID, userID)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, ErrProjectNotFound
		}
		return project, nil
	}

	project, err := s.projectRepo.Update(ctx, projectID, userID, update, s.now())
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) error {
	if userID == "" || projectID == "" {
		return ErrInvalidInput
	}
	deleted, err := s.projectRepo.DeleteByIDAndUserID(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrProjectNotFound
	}
	return nil
}
