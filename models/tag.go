package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag labels blog posts; names are globally unique.
type Tag struct {
	ID   string `gorm:"primaryKey;size:36" json:"id"`
	Name string `gorm:"uniqueIndex;size:64;not null" json:"name"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
