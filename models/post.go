package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlogPost represents a published or draft article on the blog.
type BlogPost struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Slug      string    `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Excerpt   string    `gorm:"size:512" json:"excerpt"`
	Published bool      `gorm:"index;default:false" json:"published"`
	AuthorID  string    `gorm:"size:64" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Tags      []Tag     `gorm:"many2many:blog_post_tags;" json:"tags"`
}

// BeforeCreate assigns a uuid primary key when none was provided.
func (p *BlogPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
