package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ziyuwang/portfolio-api/config"
	"github.com/ziyuwang/portfolio-api/controllers"
	"github.com/ziyuwang/portfolio-api/middleware"
	"github.com/ziyuwang/portfolio-api/ratelimit"
	"github.com/ziyuwang/portfolio-api/store"
	"github.com/ziyuwang/portfolio-api/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, gateway store.Gateway) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file, separate from the app log
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	if db != nil {
		// Record page views after each request
		r.Use(middleware.PageViewRecorder(db))
	}

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	window := time.Duration(cfg.RateWindowMinutes) * time.Minute
	commentLimiter := ratelimit.New(limiterStore(cfg, "comment"), window, cfg.CommentMaxPerWindow, utils.Sugar)
	likeLimiter := ratelimit.New(limiterStore(cfg, "like"), window, cfg.LikeMaxPerWindow, utils.Sugar)
	postLimiter := ratelimit.New(limiterStore(cfg, "post"), window, cfg.PostMaxPerWindow, utils.Sugar)

	postController := controllers.NewPostController(gateway, postLimiter)
	engagementController := controllers.NewEngagementController(gateway, commentLimiter, likeLimiter)

	api := r.Group("/api")
	api.Use(middleware.GlobalRateLimit())

	api.GET("/posts", postController.ListPosts)
	api.POST("/posts", postController.CreatePost)
	api.GET("/posts/:slug/comments", engagementController.ListComments)
	api.POST("/posts/:slug/comments", engagementController.CreateComment)
	api.GET("/posts/:slug/likes", engagementController.GetLikes)
	api.POST("/posts/:slug/likes", engagementController.ToggleLike)

	if db != nil {
		statsController := controllers.NewStatsController(db)
		api.GET("/stats", statsController.GetStats)
	}

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}

// limiterStore picks the window store per configuration: one store per
// operation so each bucket counts independently.
func limiterStore(cfg config.AppConfig, op string) ratelimit.Store {
	if cfg.RateLimitBackend == "redis" {
		return ratelimit.NewRedisStore(utils.GetRedis(), "ratelimit:"+op+":")
	}
	return ratelimit.NewMemoryStore()
}
