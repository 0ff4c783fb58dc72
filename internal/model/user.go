package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SocialLinks struct {
	GitHub   string `json:"github" bson:"github"`
	Twitter  string `json:"twitter" bson:"twitter"`
	LinkedIn string `json:"linkedin" bson:"linkedin"`
}

type WorkspaceSettings struct {
	AutoSave       bool `json:"autoSave" bson:"autoSave"`
	CodeCompletion bool `json:"codeCompletion" bson:"codeCompletion"`
	Notifications  bool `json:"notifications" bson:"notifications"`
}

type User struct {
	ID                string            `gorm:"primaryKey;size:36" json:"id"`
	Email             string            `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash      string            `gorm:"size:255;not null" json:"-"`
	DisplayName       string            `gorm:"size:128;not null" json:"displayName"`
	Avatar            string            `gorm:"size:512" json:"avatar"`
	Bio               string            `gorm:"type:text" json:"bio"`
	Theme             string            `gorm:"size:32" json:"theme"`
	ColorScheme       string            `gorm:"size:32" json:"colorScheme"`
	SocialLinks       SocialLinks       `gorm:"serializer:json" json:"socialLinks"`
	WorkspaceSettings WorkspaceSettings `gorm:"serializer:json" json:"workspaceSettings"`
	CreatedAt         time.Time         `json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// ProfileUpdate holds the optional fields of a profile edit; nil fields are left alone.
type ProfileUpdate struct {
	DisplayName       *string
	Bio               *string
	Avatar            *string
	Theme             *string
	ColorScheme       *string
	SocialLinks       *SocialLinks
	WorkspaceSettings *WorkspaceSettings
}

func (p ProfileUpdate) Empty() bool {
	return p.DisplayName == nil && p.Bio == nil && p.Avatar == nil && p.Theme == nil &&
		p.ColorScheme == nil && p.SocialLinks == nil && p.WorkspaceSettings == nil
}

// Apply copies the set fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Theme != nil {
		u.Theme = *p.Theme
	}
	if p.ColorScheme != nil {
		u.ColorScheme = *p.ColorScheme
	}
	if p.SocialLinks != nil {
		u.SocialLinks = *p.SocialLinks
	}
	if p.WorkspaceSettings != nil {
		u.WorkspaceSettings = *p.WorkspaceSettings
	}
}
