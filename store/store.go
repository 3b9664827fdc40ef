package store

import (
	"context"
	"errors"

	"github.com/ziyuwang/portfolio-api/models"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateLike is returned when a like for the same
	// (post, anonymous identity) pair already exists.
	ErrDuplicateLike = errors.New("like already exists")
)

// PostSummary is a published post annotated with its engagement counts.
type PostSummary struct {
	models.BlogPost
	CommentCount int64 `json:"comment_count"`
	LikeCount    int64 `json:"like_count"`
}

// Gateway defines the persistence contract for posts, tags, comments and
// likes. The GORM implementation backs production; the in-memory one backs
// tests.
type Gateway interface {
	FindPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	ListPublishedPosts(ctx context.Context, tag string, limit int) ([]PostSummary, error)
	// CreatePost persists the post and associates it with the named tags,
	// creating any tag that does not exist yet.
	CreatePost(ctx context.Context, post *models.BlogPost, tagNames []string) (*models.BlogPost, error)
	ListTags(ctx context.Context) ([]models.Tag, error)

	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error)

	FindLike(ctx context.Context, postID, anonymousID string) (*models.Like, error)
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, id string) error
	CountLikes(ctx context.Context, postID string) (int64, error)
}
