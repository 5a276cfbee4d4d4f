package service

import (
	"errors"
	"fmt"
	"strings"

	"flagdojo_backend/internal/challenge"
	"flagdojo_backend/internal/model"
	"flagdojo_backend/internal/util"
	"flagdojo_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// CatalogStore 解析激活状态的目录条目
type CatalogStore interface {
	FindActiveBySlug(slug string) (*model.Challenge, error)
}

// SolveReader 回答"该用户是否已解出该题"
type SolveReader interface {
	HasSolved(userID, challengeID uint) (bool, error)
}

// LedgerAppender 原子地追加提交记录及可选的解题记录
type LedgerAppender interface {
	Append(sub *model.Submission, solve *model.Solve) (bool, error)
}

// InstanceResolver 按 slug 解析存活的插件实例
type InstanceResolver interface {
	Get(slug string) (challenge.Challenge, bool)
}

// SubmitResult 是提交的五种互斥结果之一的载体：
// 未找到 / 参数缺失 / 错误 / 已解出 / 首次解出。
// 前两种以错误值返回，后三种落在字段组合上。
type SubmitResult struct {
	Correct    bool   `json:"correct"`
	FirstSolve bool   `json:"firstSolve"`
	Message    string `json:"message"`
	Points     int    `json:"points"`
}

// SubmissionService 是提交账本的运行期入口，被任意多个请求
// goroutine 并发调用。
type SubmissionService struct {
	Catalog CatalogStore
	Solves  SolveReader
	Ledger  LedgerAppender
	Plugins InstanceResolver
}

func NewSubmissionService(catalog CatalogStore, solves SolveReader, ledger LedgerAppender, plugins InstanceResolver) *SubmissionService {
	return &SubmissionService{
		Catalog: catalog,
		Solves:  solves,
		Ledger:  ledger,
		Plugins: plugins,
	}
}

// Submit 处理一次 flag 提交。
// 判定在任何写入开始前于内存中完成，调用方中途断开不会留下
// 缺少判定结果的提交行；每次提交 CheckFlag 恰好调用一次，
// 插件代码不被信任为无副作用。
func (s *SubmissionService) Submit(userID uint, slug, flag, ip, requestID string) (*SubmitResult, error) {
	flag = strings.TrimSpace(flag)
	if slug == "" || flag == "" {
		return nil, util.ErrInvalidRequest
	}

	entry, err := s.Catalog.FindActiveBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("%w: %v", util.ErrPersistence, err)
	}

	inst, ok := s.Plugins.Get(slug)
	if !ok {
		// 目录条目激活但插件缺席：同步阶段会下架这类条目，
		// 这里兜底为未找到
		return nil, util.ErrChallengeNotFound
	}

	correct := inst.CheckFlag(flag)

	// 写入前先算好"是否已计分"，并发竞争的最终裁决交给唯一索引
	already, err := s.Solves.HasSolved(userID, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrPersistence, err)
	}

	sub := &model.Submission{
		UserID:        userID,
		ChallengeID:   entry.ID,
		SubmittedFlag: flag,
		IsCorrect:     correct,
		IPAddress:     ip,
		RequestID:     requestID,
	}

	var solve *model.Solve
	if correct && !already {
		solve = &model.Solve{UserID: userID, ChallengeID: entry.ID}
	}

	firstSolve, err := s.Ledger.Append(sub, solve)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrPersistence, err)
	}

	res := &SubmitResult{Correct: correct, FirstSolve: firstSolve}
	switch {
	case firstSolve:
		res.Points = entry.Points
		res.Message = fmt.Sprintf("Congratulations! You solved %q and earned %d points!", entry.Title, entry.Points)
	case correct:
		res.Message = "You have already solved this challenge."
	default:
		res.Message = "Incorrect flag. Try again!"
	}

	monitoring.FlagSubmissions.WithLabelValues(slug, submissionResultLabel(res)).Inc()
	return res, nil
}

func submissionResultLabel(res *SubmitResult) string {
	switch {
	case res.FirstSolve:
		return "first_solve"
	case res.Correct:
		return "already_solved"
	default:
		return "wrong"
	}
}
