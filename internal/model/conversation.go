package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a persisted chat thread. SessionID keys the in-process history
// cache and is assigned once at creation.
type Conversation struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"size:36;not null;index:idx_conversation_owner,priority:1" json:"-"`
	ProjectID    *string   `gorm:"size:64;index" json:"projectId,omitempty"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	SessionID    string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `gorm:"index:idx_conversation_owner,priority:2" json:"-"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
