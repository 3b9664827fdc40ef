package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziyuwang/portfolio-api/config"
	"github.com/ziyuwang/portfolio-api/models"
	"github.com/ziyuwang/portfolio-api/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.MemoryGateway) {
	t.Helper()
	config.SetForTesting(config.AppConfig{
		AppPort:             "8080",
		GinMode:             "test",
		GinPath:             filepath.Join(t.TempDir(), "gin.log"),
		AllowedOrigins:      []string{"*"},
		RedisHost:           "127.0.0.1",
		RedisPort:           1, // nothing listens here; cache and redis limiter stay cold
		RateLimitPerMinute:  100000,
		RateWindowMinutes:   60,
		CommentMaxPerWindow: 20,
		LikeMaxPerWindow:    50,
		PostMaxPerWindow:    10,
		RateLimitBackend:    "memory",
		DefaultAuthorID:     "placeholder-user-id",
		LogLevel:            "error",
	})
	gw := store.NewMemoryGateway()
	return SetupRouter(nil, gw), gw
}

func seedPost(t *testing.T, gw *store.MemoryGateway, slug string, tags ...string) *models.BlogPost {
	t.Helper()
	time.Sleep(time.Millisecond) // keep creation timestamps distinct for ordering checks
	post, err := gw.CreatePost(context.Background(), &models.BlogPost{
		Title:     "Post " + slug,
		Slug:      slug,
		Content:   "content",
		Published: true,
	}, tags)
	require.NoError(t, err)
	return post
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func perform(r *gin.Engine, method, path, identity string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if identity != "" {
		req.Header.Set("X-Forwarded-For", identity)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := perform(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCommentsUnknownSlugIs404(t *testing.T) {
	r, _ := newTestRouter(t)

	w := perform(r, http.MethodGet, "/api/posts/no-such-post/comments", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(r, http.MethodPost, "/api/posts/no-such-post/comments", "1.2.3.4",
		gin.H{"name": "a", "content": "b"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(r, http.MethodGet, "/api/posts/no-such-post/likes", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(r, http.MethodPost, "/api/posts/no-such-post/likes", "1.2.3.4", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCommentValidation(t *testing.T) {
	r, gw := newTestRouter(t)
	post := seedPost(t, gw, "hello-world")

	for _, body := range []gin.H{
		{"name": "", "content": "something"},
		{"name": "someone", "content": ""},
	} {
		w := perform(r, http.MethodPost, "/api/posts/hello-world/comments", "1.2.3.4", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	comments, err := gw.ListComments(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments, "rejected submissions must not persist anything")
}

func TestCreateAndListComments(t *testing.T) {
	r, gw := newTestRouter(t)
	seedPost(t, gw, "hello-world")

	w := perform(r, http.MethodPost, "/api/posts/hello-world/comments", "1.2.3.4",
		gin.H{"name": "ada", "email": "secret@example.com", "content": "older"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "secret@example.com")

	w = perform(r, http.MethodPost, "/api/posts/hello-world/comments", "1.2.3.4",
		gin.H{"name": "bob", "content": "newer"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = perform(r, http.MethodGet, "/api/posts/hello-world/comments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Comments []models.Comment `json:"comments"`
	}
	decodeData(t, w, &data)
	require.Len(t, data.Comments, 2)
	assert.Equal(t, "newer", data.Comments[0].Content)
	assert.Equal(t, "older", data.Comments[1].Content)
	assert.NotContains(t, w.Body.String(), "secret@example.com")
}

func TestCommentRateLimit(t *testing.T) {
	r, gw := newTestRouter(t)
	seedPost(t, gw, "hello-world")

	for i := 0; i < 20; i++ {
		w := perform(r, http.MethodPost, "/api/posts/hello-world/comments", "9.9.9.9",
			gin.H{"name": "spammer", "content": fmt.Sprintf("comment %d", i)})
		require.Equal(t, http.StatusCreated, w.Code, "request %d should be admitted", i+1)
	}

	w := perform(r, http.MethodPost, "/api/posts/hello-world/comments", "9.9.9.9",
		gin.H{"name": "spammer", "content": "one too many"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// A different identity is unaffected.
	w = perform(r, http.MethodPost, "/api/posts/hello-world/comments", "8.8.8.8",
		gin.H{"name": "someone else", "content": "fine"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

type likeResult struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

func TestLikeToggleScenario(t *testing.T) {
	r, gw := newTestRouter(t)
	seedPost(t, gw, "hello-world")

	var res likeResult

	w := perform(r, http.MethodPost, "/api/posts/hello-world/likes", "1.1.1.1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &res)
	assert.True(t, res.Liked)
	assert.EqualValues(t, 1, res.Count)

	w = perform(r, http.MethodPost, "/api/posts/hello-world/likes", "1.1.1.1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &res)
	assert.False(t, res.Liked)
	assert.EqualValues(t, 0, res.Count)

	w = perform(r, http.MethodPost, "/api/posts/hello-world/likes", "2.2.2.2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &res)
	assert.True(t, res.Liked)
	assert.EqualValues(t, 1, res.Count)

	var count struct {
		Count int64 `json:"count"`
	}
	w = perform(r, http.MethodGet, "/api/posts/hello-world/likes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &count)
	assert.EqualValues(t, 1, count.Count)
}

func TestListPostsTagFilter(t *testing.T) {
	r, gw := newTestRouter(t)
	seedPost(t, gw, "a-go-post", "go")
	seedPost(t, gw, "a-web-post", "web")
	seedPost(t, gw, "another-go-post", "go")

	w := perform(r, http.MethodGet, "/api/posts?tag=go", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Posts []store.PostSummary `json:"posts"`
		Tags  []models.Tag        `json:"tags"`
	}
	decodeData(t, w, &data)
	require.Len(t, data.Posts, 2)
	assert.Equal(t, "another-go-post", data.Posts[0].Slug, "newest first")
	assert.Equal(t, "a-go-post", data.Posts[1].Slug)
	require.Len(t, data.Tags, 2)
}

func TestCreatePost(t *testing.T) {
	r, _ := newTestRouter(t)

	w := perform(r, http.MethodPost, "/api/posts", "1.2.3.4", gin.H{
		"title":     "My First Post",
		"content":   "Some content here",
		"published": true,
		"tags":      []string{"go", "web"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var data struct {
		Post models.BlogPost `json:"post"`
	}
	decodeData(t, w, &data)
	assert.Regexp(t, `^my-first-post-\d{4}$`, data.Post.Slug)
	assert.Equal(t, "placeholder-user-id", data.Post.AuthorID)
	assert.Equal(t, "Some content here", data.Post.Excerpt)
	assert.Len(t, data.Post.Tags, 2)

	w = perform(r, http.MethodPost, "/api/posts", "1.2.3.4", gin.H{"title": "", "content": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePostRateLimit(t *testing.T) {
	r, _ := newTestRouter(t)

	for i := 0; i < 10; i++ {
		w := perform(r, http.MethodPost, "/api/posts", "7.7.7.7", gin.H{
			"title":   fmt.Sprintf("Post %d", i),
			"content": "content",
		})
		require.Equal(t, http.StatusCreated, w.Code, "request %d should be admitted", i+1)
	}

	w := perform(r, http.MethodPost, "/api/posts", "7.7.7.7", gin.H{
		"title":   "Post 10",
		"content": "content",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
