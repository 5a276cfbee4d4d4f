package service

import (
	"errors"

	"flagdojo_backend/internal/model"
	"flagdojo_backend/internal/repository"
	"flagdojo_backend/internal/util"

	"gorm.io/gorm"
)

// ChallengeSummary 是题目列表里的单条目，不暴露 flag 和提示
type ChallengeSummary struct {
	ID         uint                      `json:"id"`
	Slug       string                    `json:"slug"`
	Title      string                    `json:"title"`
	Category   string                    `json:"category"`
	Difficulty model.ChallengeDifficulty `json:"difficulty"`
	Points     int                       `json:"points"`
	Summary    string                    `json:"summary"`
	Order      int                       `json:"order"`
	Solved     bool                      `json:"solved"`
}

// ChallengeDetail 是题目详情，含提示与调用者自己最近的提交
type ChallengeDetail struct {
	ChallengeSummary
	Description string             `json:"description"`
	Hints       []string           `json:"hints"`
	SolveCount  int64              `json:"solveCount"`
	Recent      []model.Submission `json:"recentSubmissions"`
}

// CatalogService 提供目录的读侧接口
type CatalogService struct {
	Challenges  *repository.ChallengeRepository
	Solves      *repository.SolveRepository
	Submissions *repository.SubmissionRepository
}

func NewCatalogService(challenges *repository.ChallengeRepository, solves *repository.SolveRepository, submissions *repository.SubmissionRepository) *CatalogService {
	return &CatalogService{
		Challenges:  challenges,
		Solves:      solves,
		Submissions: submissions,
	}
}

// ListActive 返回激活题目及调用者的解题状态，按 (display_order, id) 排序。
// userID 为 0 时（未登录）所有条目都视为未解出。
func (s *CatalogService) ListActive(userID uint) ([]ChallengeSummary, error) {
	chs, err := s.Challenges.ListActive()
	if err != nil {
		return nil, err
	}

	solved := map[uint]bool{}
	if userID != 0 {
		solved, err = s.Solves.SolvedChallengeIDs(userID)
		if err != nil {
			return nil, err
		}
	}

	out := make([]ChallengeSummary, 0, len(chs))
	for _, ch := range chs {
		out = append(out, ChallengeSummary{
			ID:         ch.ID,
			Slug:       ch.Slug,
			Title:      ch.Title,
			Category:   ch.Category,
			Difficulty: ch.Difficulty,
			Points:     ch.Points,
			Summary:    ch.Summary,
			Order:      ch.Order,
			Solved:     solved[ch.ID],
		})
	}
	return out, nil
}

const recentSubmissionLimit = 5

// Detail 返回单个激活题目的详情
func (s *CatalogService) Detail(userID uint, slug string) (*ChallengeDetail, error) {
	ch, err := s.Challenges.FindActiveBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}

	solved, err := s.Solves.HasSolved(userID, ch.ID)
	if err != nil {
		return nil, err
	}

	solveCount, err := s.Solves.CountByChallenge(ch.ID)
	if err != nil {
		return nil, err
	}

	recent, err := s.Submissions.ListRecent(userID, ch.ID, recentSubmissionLimit)
	if err != nil {
		return nil, err
	}

	return &ChallengeDetail{
		ChallengeSummary: ChallengeSummary{
			ID:         ch.ID,
			Slug:       ch.Slug,
			Title:      ch.Title,
			Category:   ch.Category,
			Difficulty: ch.Difficulty,
			Points:     ch.Points,
			Summary:    ch.Summary,
			Order:      ch.Order,
			Solved:     solved,
		},
		Description: ch.Description,
		Hints:       UnmarshalHints(ch.Hints),
		SolveCount:  solveCount,
		Recent:      recent,
	}, nil
}
