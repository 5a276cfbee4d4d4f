package app

import (
	"flagdojo_backend/internal/config"
	"flagdojo_backend/internal/middleware"
	"flagdojo_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	api := router.Group("/api")
	api.Use(middleware.RequestID())

	// 1. 公共路由（无需登录）
	{
		api.POST("/register", c.auth.Register)
		api.POST("/login", c.auth.Login)
		api.GET("/leaderboard", c.scoreboard.Leaderboard)

		// 题目列表允许游客浏览，登录用户额外看到解题状态
		api.GET("/challenges", middleware.TryAuthMiddleware(cfg), c.challenge.List)
	}

	// 2. 需要授权的路由
	authGroup := api.Group("")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.Profile)
		authGroup.GET("/challenges/:slug", c.challenge.Detail)
		authGroup.POST("/submit", c.submission.Submit)
		authGroup.GET("/dashboard", c.scoreboard.Dashboard)
	}

	// 3. 管理员路由
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		adminGroup.GET("/stats", c.admin.Stats)
		adminGroup.GET("/users", c.admin.ListUsers)
		adminGroup.GET("/challenges", c.admin.ListChallenges)
		adminGroup.POST("/challenges/:id/toggle", c.admin.ToggleChallenge)
		adminGroup.POST("/reset", c.admin.ResetProgress)
	}
}
