package controller

import (
	"flagdojo_backend/internal/service"
	"flagdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ScoreboardController struct {
	Scoreboard *service.ScoreboardService
}

func NewScoreboardController(scoreboard *service.ScoreboardService) *ScoreboardController {
	return &ScoreboardController{Scoreboard: scoreboard}
}

// Leaderboard godoc
// @Summary 排行榜
// @Description 分数是解题集合的派生聚合，带 30 秒缓存
// @Tags 榜单
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/leaderboard [get]
func (c *ScoreboardController) Leaderboard(ctx *gin.Context) {
	entries, err := c.Scoreboard.Leaderboard(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// Dashboard godoc
// @Summary 个人进度面板
// @Tags 榜单
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/dashboard [get]
func (c *ScoreboardController) Dashboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.Scoreboard.Dashboard(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}
