package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ziyuwang/portfolio-api/models"
	"github.com/ziyuwang/portfolio-api/utils"
)

// StatsController provides site statistics such as content counts and today's views.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the site.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var postCount int64
	var commentCount int64
	var likeCount int64
	var todayViews int64

	// Fall back to 0 instead of failing the whole endpoint.
	if err := s.db.Model(&models.BlogPost{}).Where("published = ?", true).Count(&postCount).Error; err != nil {
		postCount = 0
	}
	if err := s.db.Model(&models.Comment{}).Count(&commentCount).Error; err != nil {
		commentCount = 0
	}
	if err := s.db.Model(&models.Like{}).Count(&likeCount).Error; err != nil {
		likeCount = 0
	}

	// Use string date equality to avoid timezone/type mismatches with the DATE column.
	today := time.Now().In(time.Local).Format("2006-01-02")
	if err := s.db.Model(&models.PageView{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&todayViews).Error; err != nil {
		todayViews = 0
	}

	utils.Success(ctx, gin.H{
		"post_count":    postCount,
		"comment_count": commentCount,
		"like_count":    likeCount,
		"today_views":   todayViews,
	})
}
