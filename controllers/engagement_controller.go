package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ziyuwang/portfolio-api/models"
	"github.com/ziyuwang/portfolio-api/ratelimit"
	"github.com/ziyuwang/portfolio-api/store"
	"github.com/ziyuwang/portfolio-api/utils"
)

// EngagementController serves anonymous comments and like toggling on posts.
type EngagementController struct {
	store          store.Gateway
	commentLimiter *ratelimit.Limiter
	likeLimiter    *ratelimit.Limiter
}

// NewEngagementController creates a new EngagementController instance.
func NewEngagementController(gw store.Gateway, commentLimiter, likeLimiter *ratelimit.Limiter) *EngagementController {
	return &EngagementController{store: gw, commentLimiter: commentLimiter, likeLimiter: likeLimiter}
}

// clientIdentity returns the first value of the X-Forwarded-For header, or
// "unknown" when absent. The value is caller-supplied and spoofable; it is
// only used to approximate per-visitor throttling, never for authorization.
func clientIdentity(ctx *gin.Context) string {
	v := ctx.GetHeader("X-Forwarded-For")
	if v == "" {
		return "unknown"
	}
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// resolvePost loads the post addressed by the :slug path param, writing the
// error response itself when the lookup fails.
func (e *EngagementController) resolvePost(ctx *gin.Context) (*models.BlogPost, bool) {
	slug := ctx.Param("slug")
	post, err := e.store.FindPostBySlug(ctx.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to load post")
		}
		return nil, false
	}
	return post, true
}

// ListComments returns all comments for a post, newest first.
func (e *EngagementController) ListComments(ctx *gin.Context) {
	post, ok := e.resolvePost(ctx)
	if !ok {
		return
	}

	comments, err := e.store.ListComments(ctx.Request.Context(), post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to list comments")
		return
	}
	utils.Success(ctx, gin.H{"comments": comments})
}

// CreateComment adds an anonymous comment to a post.
func (e *EngagementController) CreateComment(ctx *gin.Context) {
	post, ok := e.resolvePost(ctx)
	if !ok {
		return
	}

	if !e.commentLimiter.Allow(ctx.Request.Context(), clientIdentity(ctx)) {
		utils.Error(ctx, http.StatusTooManyRequests, 42902, "rate limit exceeded, please try again later")
		return
	}

	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Content string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}
	// Presence check on the raw fields, no trimming.
	if req.Name == "" || req.Content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40011, "name and content are required")
		return
	}

	comment := &models.Comment{
		PostID:  post.ID,
		Name:    utils.Sanitize(req.Name),
		Email:   req.Email,
		Content: utils.Sanitize(req.Content),
	}
	comment, err := e.store.CreateComment(ctx.Request.Context(), comment)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to create comment")
		return
	}

	// Comment counts are embedded in the cached post lists.
	utils.InvalidateByPrefix("cache:posts:list:")

	utils.Created(ctx, gin.H{"comment": comment})
}

// GetLikes returns the current like count for a post.
func (e *EngagementController) GetLikes(ctx *gin.Context) {
	post, ok := e.resolvePost(ctx)
	if !ok {
		return
	}

	count, err := e.store.CountLikes(ctx.Request.Context(), post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to count likes")
		return
	}
	utils.Success(ctx, gin.H{"count": count})
}

// ToggleLike flips the like state for the caller on a post and returns the
// new state with the updated count.
func (e *EngagementController) ToggleLike(ctx *gin.Context) {
	post, ok := e.resolvePost(ctx)
	if !ok {
		return
	}

	identity := clientIdentity(ctx)
	if !e.likeLimiter.Allow(ctx.Request.Context(), identity) {
		utils.Error(ctx, http.StatusTooManyRequests, 42903, "rate limit exceeded, please try again later")
		return
	}

	anonymousID := "anonymous-" + identity + "-" + post.ID

	liked := false
	existing, err := e.store.FindLike(ctx.Request.Context(), post.ID, anonymousID)
	switch {
	case err == nil:
		if err := e.store.DeleteLike(ctx.Request.Context(), existing.ID); err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to toggle like")
			return
		}
	case errors.Is(err, store.ErrNotFound):
		like := &models.Like{
			ID:          anonymousID + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10),
			PostID:      post.ID,
			AnonymousID: anonymousID,
		}
		err := e.store.CreateLike(ctx.Request.Context(), like)
		// A concurrent toggle may have inserted the same pair first; the
		// unique index refuses the second insert and the state is "liked".
		if err != nil && !errors.Is(err, store.ErrDuplicateLike) {
			utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to toggle like")
			return
		}
		liked = true
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to toggle like")
		return
	}

	count, err := e.store.CountLikes(ctx.Request.Context(), post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to count likes")
		return
	}

	// Like counts are embedded in the cached post lists.
	utils.InvalidateByPrefix("cache:posts:list:")

	utils.Success(ctx, gin.H{"liked": liked, "count": count})
}
