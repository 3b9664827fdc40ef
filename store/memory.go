package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ziyuwang/portfolio-api/models"
)

// MemoryGateway implements Gateway with in-process maps. It exists for tests
// and local development without a database.
type MemoryGateway struct {
	mu       sync.RWMutex
	posts    map[string]*models.BlogPost // by id
	bySlug   map[string]string           // slug -> post id
	tags     map[string]*models.Tag      // by name
	comments map[string][]*models.Comment
	likes    map[string]*models.Like // by like id
	likeKeys map[string]string       // postID+"\x00"+anonymousID -> like id
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		posts:    make(map[string]*models.BlogPost),
		bySlug:   make(map[string]string),
		tags:     make(map[string]*models.Tag),
		comments: make(map[string][]*models.Comment),
		likes:    make(map[string]*models.Like),
		likeKeys: make(map[string]string),
	}
}

func likeKey(postID, anonymousID string) string {
	return postID + "\x00" + anonymousID
}

func (m *MemoryGateway) FindPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	post := *m.posts[id]
	return &post, nil
}

func (m *MemoryGateway) ListPublishedPosts(ctx context.Context, tag string, limit int) ([]PostSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]*models.BlogPost, 0, len(m.posts))
	for _, p := range m.posts {
		if !p.Published {
			continue
		}
		if tag != "" && !hasTag(p, tag) {
			continue
		}
		matches = append(matches, p)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}

	summaries := make([]PostSummary, 0, len(matches))
	for _, p := range matches {
		summaries = append(summaries, PostSummary{
			BlogPost:     *p,
			CommentCount: int64(len(m.comments[p.ID])),
			LikeCount:    m.countLikesLocked(p.ID),
		})
	}
	return summaries, nil
}

func hasTag(p *models.BlogPost, name string) bool {
	for _, t := range p.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

func (m *MemoryGateway) CreatePost(ctx context.Context, post *models.BlogPost, tagNames []string) (*models.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	tags := make([]models.Tag, 0, len(tagNames))
	for _, name := range tagNames {
		t, ok := m.tags[name]
		if !ok {
			t = &models.Tag{ID: uuid.NewString(), Name: name}
			m.tags[name] = t
		}
		tags = append(tags, *t)
	}
	post.Tags = tags

	m.posts[post.ID] = post
	m.bySlug[post.Slug] = post.ID
	return post, nil
}

func (m *MemoryGateway) ListTags(ctx context.Context) ([]models.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tags := make([]models.Tag, 0, len(m.tags))
	for _, t := range m.tags {
		tags = append(tags, *t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (m *MemoryGateway) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.comments[postID]
	out := make([]models.Comment, 0, len(list))
	for _, c := range list {
		out = append(out, *c)
	}
	// Newest first.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryGateway) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	stored := *comment
	m.comments[comment.PostID] = append(m.comments[comment.PostID], &stored)
	return comment, nil
}

func (m *MemoryGateway) FindLike(ctx context.Context, postID, anonymousID string) (*models.Like, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.likeKeys[likeKey(postID, anonymousID)]
	if !ok {
		return nil, ErrNotFound
	}
	like := *m.likes[id]
	return &like, nil
}

func (m *MemoryGateway) CreateLike(ctx context.Context, like *models.Like) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := likeKey(like.PostID, like.AnonymousID)
	if _, exists := m.likeKeys[key]; exists {
		return ErrDuplicateLike
	}
	like.CreatedAt = time.Now()
	stored := *like
	m.likes[like.ID] = &stored
	m.likeKeys[key] = like.ID
	return nil
}

func (m *MemoryGateway) DeleteLike(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	like, ok := m.likes[id]
	if !ok {
		return nil
	}
	delete(m.likes, id)
	delete(m.likeKeys, likeKey(like.PostID, like.AnonymousID))
	return nil
}

func (m *MemoryGateway) CountLikes(ctx context.Context, postID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.countLikesLocked(postID), nil
}

func (m *MemoryGateway) countLikesLocked(postID string) int64 {
	var n int64
	for _, l := range m.likes {
		if l.PostID == postID {
			n++
		}
	}
	return n
}
