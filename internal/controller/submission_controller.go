package controller

import (
	"errors"
	"net/http"

	"flagdojo_backend/internal/middleware"
	"flagdojo_backend/internal/service"
	"flagdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	Submissions *service.SubmissionService
	Scoreboard  *service.ScoreboardService
}

func NewSubmissionController(submissions *service.SubmissionService, scoreboard *service.ScoreboardService) *SubmissionController {
	return &SubmissionController{
		Submissions: submissions,
		Scoreboard:  scoreboard,
	}
}

type SubmitRequest struct {
	ChallengeSlug string `json:"challenge_slug"`
	Flag          string `json:"flag"`
}

type SubmitResponse struct {
	Success    bool   `json:"success"`
	Correct    bool   `json:"correct"`
	FirstSolve bool   `json:"first_solve"`
	Message    string `json:"message"`
	Points     int    `json:"points"`
}

// Submit godoc
// @Summary 提交 flag
// @Description 每次提交都会被记入审计账本；同一题只有第一次正确提交计分
// @Tags 提交
// @Accept json
// @Produce json
// @Param body body SubmitRequest true "提交内容"
// @Success 200 {object} SubmitResponse
// @Failure 400 {object} util.Response "缺少题目标识或 flag"
// @Failure 404 {object} util.Response "题目不存在或已下架"
// @Router /api/submit [post]
func (c *SubmissionController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Missing challenge slug or flag")
		return
	}

	result, err := c.Submissions.Submit(
		claims.UserID,
		req.ChallengeSlug,
		req.Flag,
		ctx.ClientIP(),
		middleware.GetRequestID(ctx),
	)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidRequest):
			util.BadRequest(ctx, "Missing challenge slug or flag")
		case errors.Is(err, util.ErrChallengeNotFound):
			util.Error(ctx, http.StatusNotFound, "Challenge not found")
		case errors.Is(err, util.ErrPersistence):
			util.LogInternalError(ctx, err)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	if result.FirstSolve {
		c.Scoreboard.Invalidate(ctx.Request.Context())
	}

	ctx.JSON(http.StatusOK, SubmitResponse{
		Success:    true,
		Correct:    result.Correct,
		FirstSolve: result.FirstSolve,
		Message:    result.Message,
		Points:     result.Points,
	})
}
