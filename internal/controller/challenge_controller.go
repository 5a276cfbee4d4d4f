package controller

import (
	"errors"

	"flagdojo_backend/internal/service"
	"flagdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChallengeController struct {
	Catalog *service.CatalogService
}

func NewChallengeController(catalog *service.CatalogService) *ChallengeController {
	return &ChallengeController{Catalog: catalog}
}

// List godoc
// @Summary 激活题目列表
// @Description 按 (display_order, id) 排序，登录用户附带解题状态
// @Tags 题目
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/challenges [get]
func (c *ChallengeController) List(ctx *gin.Context) {
	var userID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		userID = claims.UserID
	}

	challenges, err := c.Catalog.ListActive(userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, challenges)
}

// Detail godoc
// @Summary 题目详情
// @Tags 题目
// @Produce json
// @Param slug path string true "题目标识"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/challenges/{slug} [get]
func (c *ChallengeController) Detail(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.Catalog.Detail(claims.UserID, ctx.Param("slug"))
	if err != nil {
		if errors.Is(err, util.ErrChallengeNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, detail)
}
