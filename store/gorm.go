package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ziyuwang/portfolio-api/models"
)

// GormGateway implements Gateway on top of a GORM connection.
type GormGateway struct {
	db *gorm.DB
}

// NewGormGateway wraps an initialized GORM handle.
func NewGormGateway(db *gorm.DB) *GormGateway {
	return &GormGateway{db: db}
}

func (g *GormGateway) FindPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := g.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (g *GormGateway) ListPublishedPosts(ctx context.Context, tag string, limit int) ([]PostSummary, error) {
	query := g.db.WithContext(ctx).Model(&models.BlogPost{}).
		Select("blog_posts.*").
		Preload("Tags").
		Where("published = ?", true).
		Order("blog_posts.created_at DESC")
	if tag != "" {
		query = query.
			Joins("JOIN blog_post_tags ON blog_post_tags.blog_post_id = blog_posts.id").
			Joins("JOIN tags ON tags.id = blog_post_tags.tag_id").
			Where("tags.name = ?", tag)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var posts []models.BlogPost
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}

	summaries := make([]PostSummary, 0, len(posts))
	if len(posts) == 0 {
		return summaries, nil
	}

	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	commentCounts, err := g.countByPost(ctx, &models.Comment{}, ids)
	if err != nil {
		return nil, err
	}
	likeCounts, err := g.countByPost(ctx, &models.Like{}, ids)
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		summaries = append(summaries, PostSummary{
			BlogPost:     p,
			CommentCount: commentCounts[p.ID],
			LikeCount:    likeCounts[p.ID],
		})
	}
	return summaries, nil
}

// countByPost returns per-post row counts for the given model in one query.
func (g *GormGateway) countByPost(ctx context.Context, model interface{}, postIDs []string) (map[string]int64, error) {
	type row struct {
		PostID string
		Total  int64
	}
	var rows []row
	err := g.db.WithContext(ctx).Model(model).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.PostID] = r.Total
	}
	return counts, nil
}

func (g *GormGateway) CreatePost(ctx context.Context, post *models.BlogPost, tagNames []string) (*models.BlogPost, error) {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags := make([]models.Tag, 0, len(tagNames))
		for _, name := range tagNames {
			var tag models.Tag
			if err := tx.Where("name = ?", name).FirstOrCreate(&tag, models.Tag{Name: name}).Error; err != nil {
				return err
			}
			tags = append(tags, tag)
		}
		post.Tags = tags
		return tx.Create(post).Error
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (g *GormGateway) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := g.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (g *GormGateway) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := g.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (g *GormGateway) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if err := g.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (g *GormGateway) FindLike(ctx context.Context, postID, anonymousID string) (*models.Like, error) {
	var like models.Like
	err := g.db.WithContext(ctx).
		Where("post_id = ? AND anonymous_id = ?", postID, anonymousID).
		First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &like, nil
}

func (g *GormGateway) CreateLike(ctx context.Context, like *models.Like) error {
	err := g.db.WithContext(ctx).Create(like).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateLike
	}
	return err
}

func (g *GormGateway) DeleteLike(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Delete(&models.Like{}, "id = ?", id).Error
}

func (g *GormGateway) CountLikes(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
