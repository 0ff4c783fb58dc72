package repository

import (
	"fmt"

	"gorm.io/gorm"

	"repbep/internal/model"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Project{}, &model.Conversation{}, &model.Message{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}
