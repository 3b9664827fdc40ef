package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziyuwang/portfolio-api/models"
)

func newTestGateway(t *testing.T) (*MemoryGateway, *models.BlogPost) {
	t.Helper()
	gw := NewMemoryGateway()
	post, err := gw.CreatePost(context.Background(), &models.BlogPost{
		Title:     "Hello World",
		Slug:      "hello-world",
		Content:   "first post",
		Published: true,
	}, []string{"go"})
	require.NoError(t, err)
	return gw, post
}

func TestFindPostBySlug(t *testing.T) {
	gw, post := newTestGateway(t)
	ctx := context.Background()

	found, err := gw.FindPostBySlug(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, post.ID, found.ID)

	_, err = gw.FindPostBySlug(ctx, "no-such-post")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPublishedPostsFiltersAndOrders(t *testing.T) {
	gw, first := newTestGateway(t)
	ctx := context.Background()

	time.Sleep(time.Millisecond)
	second, err := gw.CreatePost(ctx, &models.BlogPost{
		Title: "Second", Slug: "second", Content: "x", Published: true,
	}, []string{"go", "web"})
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = gw.CreatePost(ctx, &models.BlogPost{
		Title: "Draft", Slug: "draft", Content: "x", Published: false,
	}, []string{"go"})
	require.NoError(t, err)

	posts, err := gw.ListPublishedPosts(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, posts, 2, "drafts must not be listed")
	assert.Equal(t, second.ID, posts[0].ID, "newest first")
	assert.Equal(t, first.ID, posts[1].ID)

	posts, err = gw.ListPublishedPosts(ctx, "web", 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, second.ID, posts[0].ID)

	posts, err = gw.ListPublishedPosts(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, second.ID, posts[0].ID)
}

func TestListTagsSorted(t *testing.T) {
	gw, _ := newTestGateway(t)
	ctx := context.Background()

	_, err := gw.CreatePost(ctx, &models.BlogPost{
		Title: "Second", Slug: "second", Content: "x", Published: true,
	}, []string{"web", "api"})
	require.NoError(t, err)

	tags, err := gw.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "api", tags[0].Name)
	assert.Equal(t, "go", tags[1].Name)
	assert.Equal(t, "web", tags[2].Name)
}

func TestCommentsNewestFirst(t *testing.T) {
	gw, post := newTestGateway(t)
	ctx := context.Background()

	_, err := gw.CreateComment(ctx, &models.Comment{PostID: post.ID, Name: "a", Content: "older"})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = gw.CreateComment(ctx, &models.Comment{PostID: post.ID, Name: "b", Content: "newer"})
	require.NoError(t, err)

	comments, err := gw.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "newer", comments[0].Content)
	assert.Equal(t, "older", comments[1].Content)
}

func TestLikeUniquenessPerIdentity(t *testing.T) {
	gw, post := newTestGateway(t)
	ctx := context.Background()
	anonID := "anonymous-1.2.3.4-" + post.ID

	require.NoError(t, gw.CreateLike(ctx, &models.Like{ID: anonID + "-1", PostID: post.ID, AnonymousID: anonID}))

	err := gw.CreateLike(ctx, &models.Like{ID: anonID + "-2", PostID: post.ID, AnonymousID: anonID})
	assert.ErrorIs(t, err, ErrDuplicateLike)

	count, err := gw.CountLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	like, err := gw.FindLike(ctx, post.ID, anonID)
	require.NoError(t, err)
	require.NoError(t, gw.DeleteLike(ctx, like.ID))

	_, err = gw.FindLike(ctx, post.ID, anonID)
	assert.ErrorIs(t, err, ErrNotFound)

	count, err = gw.CountLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
