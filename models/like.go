package models

import "time"

// Like records one anonymous like on a post. AnonymousID is derived from the
// caller identity and the post id; the unique (post_id, anonymous_id) index is
// what makes the toggle idempotent under concurrent requests. The ID keeps the
// "<anonymousID>-<unix millis>" shape for compatibility with existing rows.
type Like struct {
	ID          string    `gorm:"primaryKey;size:255" json:"id"`
	PostID      string    `gorm:"size:36;not null;index:idx_likes_post_anon,unique" json:"post_id"`
	AnonymousID string    `gorm:"size:191;not null;index:idx_likes_post_anon,unique" json:"-"`
	UserID      *string   `gorm:"size:36" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}
