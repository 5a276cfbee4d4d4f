package controller

import (
	"errors"
	"net/http"
	"strconv"

	"flagdojo_backend/internal/service"
	"flagdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// PluginFailure 是启动阶段被隔离的插件失败的对外形式
type PluginFailure struct {
	Plugin string `json:"plugin"`
	Error  string `json:"error"`
}

type AdminController struct {
	Admin      *service.AdminService
	Scoreboard *service.ScoreboardService

	// 启动时由装配层填入，进程生命周期内不变
	LoadFailures []PluginFailure
}

func NewAdminController(admin *service.AdminService, scoreboard *service.ScoreboardService) *AdminController {
	return &AdminController{
		Admin:      admin,
		Scoreboard: scoreboard,
	}
}

// Stats godoc
// @Summary 平台统计
// @Tags 管理
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/stats [get]
func (c *AdminController) Stats(ctx *gin.Context) {
	stats, err := c.Admin.Stats()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	failures := c.LoadFailures
	if failures == nil {
		failures = []PluginFailure{}
	}
	util.Success(ctx, gin.H{
		"platform":     stats,
		"loadFailures": failures,
	})
}

// ListUsers godoc
// @Summary 用户及其解题统计
// @Tags 管理
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	users, err := c.Admin.ListUsers()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

// ListChallenges godoc
// @Summary 题目及其提交统计（含下架题目）
// @Tags 管理
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/challenges [get]
func (c *AdminController) ListChallenges(ctx *gin.Context) {
	challenges, err := c.Admin.ListChallenges()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, challenges)
}

// ToggleChallenge godoc
// @Summary 翻转题目激活状态
// @Tags 管理
// @Produce json
// @Param id path int true "题目 ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/challenges/{id}/toggle [post]
func (c *AdminController) ToggleChallenge(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid challenge id")
		return
	}

	ch, err := c.Admin.ToggleChallenge(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrChallengeNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	// 上下架影响派生分数，榜单缓存立即失效
	c.Scoreboard.Invalidate(ctx.Request.Context())

	util.Success(ctx, gin.H{
		"id":       ch.ID,
		"slug":     ch.Slug,
		"isActive": ch.IsActive,
	})
}

// ResetProgress godoc
// @Summary 批量清空提交与解题记录
// @Description 不带参数全量清空；user / challenge 查询参数限定范围
// @Tags 管理
// @Produce json
// @Param user query string false "用户名"
// @Param challenge query string false "题目标识"
// @Success 200 {object} util.Response "返回删除行数"
// @Failure 404 {object} util.Response
// @Router /api/admin/progress [delete]
func (c *AdminController) ResetProgress(ctx *gin.Context) {
	username := ctx.Query("user")
	slug := ctx.Query("challenge")
	if username != "" && slug != "" {
		util.BadRequest(ctx, "specify at most one of user and challenge")
		return
	}

	result, err := c.Admin.ResetProgress(username, slug)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrUserNotFound):
			util.Error(ctx, http.StatusNotFound, "User not found")
		case errors.Is(err, util.ErrChallengeNotFound):
			util.Error(ctx, http.StatusNotFound, "Challenge not found")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	c.Scoreboard.Invalidate(ctx.Request.Context())
	util.Success(ctx, result)
}
