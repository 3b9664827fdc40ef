package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ziyuwang/portfolio-api/config"
	"github.com/ziyuwang/portfolio-api/models"
	"github.com/ziyuwang/portfolio-api/ratelimit"
	"github.com/ziyuwang/portfolio-api/store"
	"github.com/ziyuwang/portfolio-api/utils"
)

// PostController serves the published post listing and post creation.
type PostController struct {
	store       store.Gateway
	postLimiter *ratelimit.Limiter
}

// NewPostController creates a new PostController instance.
func NewPostController(gw store.Gateway, postLimiter *ratelimit.Limiter) *PostController {
	return &PostController{store: gw, postLimiter: postLimiter}
}

// ListPosts returns published posts with their tags and engagement counts,
// plus the full set of known tags for the filter UI.
func (p *PostController) ListPosts(ctx *gin.Context) {
	tag := ctx.Query("tag")
	limit := 0
	if v, err := strconv.Atoi(ctx.Query("limit")); err == nil && v > 0 {
		limit = v
	}

	cacheKey := fmt.Sprintf("cache:posts:list:tag=%s:limit=%d", tag, limit)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, err := p.store.ListPublishedPosts(ctx.Request.Context(), tag, limit)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list posts")
		return
	}
	tags, err := p.store.ListTags(ctx.Request.Context())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list tags")
		return
	}

	payload := gin.H{"posts": posts, "tags": tags}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// CreatePost creates a new blog post. There is no authentication; posts are
// attributed to the configured placeholder author unless the request names
// one, and creation is rate limited per caller identity.
func (p *PostController) CreatePost(ctx *gin.Context) {
	if !p.postLimiter.Allow(ctx.Request.Context(), clientIdentity(ctx)) {
		utils.Error(ctx, http.StatusTooManyRequests, 42904, "rate limit exceeded, please try again later")
		return
	}

	var req struct {
		Title     string   `json:"title"`
		Content   string   `json:"content"`
		Excerpt   string   `json:"excerpt"`
		Published bool     `json:"published"`
		Tags      []string `json:"tags"`
		AuthorID  string   `json:"author_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	if req.Title == "" || req.Content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title and content are required")
		return
	}

	content := utils.Sanitize(req.Content)
	excerpt := req.Excerpt
	if excerpt == "" {
		excerpt = utils.Excerpt(content, 150)
	}
	authorID := req.AuthorID
	if authorID == "" {
		authorID = config.Get().DefaultAuthorID
	}

	post := &models.BlogPost{
		Title:     utils.Sanitize(req.Title),
		Slug:      utils.Slugify(req.Title),
		Content:   content,
		Excerpt:   excerpt,
		Published: req.Published,
		AuthorID:  authorID,
	}
	post, err := p.store.CreatePost(ctx.Request.Context(), post, req.Tags)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to create post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")

	utils.Created(ctx, gin.H{"post": post})
}
