package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const ProjectStatusActive = "active"

type Project struct {
	ID           string                      `gorm:"primaryKey;size:36" json:"id"`
	UserID       string                      `gorm:"size:36;not null;index" json:"-"`
	Name         string                      `gorm:"size:255;not null" json:"name"`
	Description  string                      `gorm:"type:text" json:"description"`
	Status       string                      `gorm:"size:32;not null" json:"status"`
	Tech         datatypes.JSONSlice[string] `json:"tech"`
	Color        string                      `gorm:"size:32" json:"color"`
	CreatedAt    time.Time                   `json:"createdAt"`
	LastModified time.Time                   `json:"lastModified"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type ProjectUpdate struct {
	Name        *string
	Description *string
	Status      *string
	Tech        *[]string
	Color       *string
}

func (p ProjectUpdate) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Status == nil && p.Tech == nil && p.Color == nil
}

func (p ProjectUpdate) Apply(project *Project) {
	if p.Name != nil {
		project.Name = *p.Name
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
	if p.Status != nil {
		project.Status = *p.Status
	}
	if p.Tech != nil {
		project.Tech = datatypes.JSONSlice[string](*p.Tech)
	}
	if p.Color != nil {
		project.Color = *p.Color
	}
}
