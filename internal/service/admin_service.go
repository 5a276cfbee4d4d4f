package service

import (
	"errors"
	"time"

	"flagdojo_backend/internal/model"
	"flagdojo_backend/internal/repository"
	"flagdojo_backend/internal/util"

	"gorm.io/gorm"
)

type PlatformStats struct {
	Users            int64 `json:"users"`
	Challenges       int64 `json:"challenges"`
	ActiveChallenges int64 `json:"activeChallenges"`
	Submissions      int64 `json:"submissions"`
	Solves           int64 `json:"solves"`
}

type UserStats struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	IsAdmin     bool      `json:"isAdmin"`
	CreatedAt   time.Time `json:"createdAt"`
	Score       int       `json:"score"`
	Solves      int64     `json:"solves"`
	Submissions int64     `json:"submissions"`
}

type ChallengeStats struct {
	ID          uint   `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Points      int    `json:"points"`
	IsActive    bool   `json:"isActive"`
	Solves      int64  `json:"solves"`
	Submissions int64  `json:"submissions"`
}

// ResetResult 返回删除行数供外部工具确认
type ResetResult struct {
	Submissions int64 `json:"submissions"`
	Solves      int64 `json:"solves"`
}

// AdminService 承载外部管理工具调用的账本查询与重置操作
type AdminService struct {
	Users       *repository.UserRepository
	Challenges  *repository.ChallengeRepository
	Submissions *repository.SubmissionRepository
	Solves      *repository.SolveRepository
}

func NewAdminService(users *repository.UserRepository, challenges *repository.ChallengeRepository, submissions *repository.SubmissionRepository, solves *repository.SolveRepository) *AdminService {
	return &AdminService{
		Users:       users,
		Challenges:  challenges,
		Submissions: submissions,
		Solves:      solves,
	}
}

func (s *AdminService) Stats() (*PlatformStats, error) {
	stats := &PlatformStats{}
	var err error
	if stats.Users, err = s.Users.Count(); err != nil {
		return nil, err
	}
	if stats.Challenges, err = s.Challenges.Count(); err != nil {
		return nil, err
	}
	if stats.ActiveChallenges, err = s.Challenges.CountActive(); err != nil {
		return nil, err
	}
	if stats.Submissions, err = s.Submissions.Count(); err != nil {
		return nil, err
	}
	if stats.Solves, err = s.Solves.Count(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *AdminService) ListUsers() ([]UserStats, error) {
	users, err := s.Users.ListAll()
	if err != nil {
		return nil, err
	}

	out := make([]UserStats, 0, len(users))
	for _, u := range users {
		score, err := s.Solves.UserScore(u.ID)
		if err != nil {
			return nil, err
		}
		solves, err := s.Solves.CountByUser(u.ID)
		if err != nil {
			return nil, err
		}
		submissions, err := s.Submissions.CountByUser(u.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, UserStats{
			ID:          u.ID,
			Username:    u.Username,
			IsAdmin:     u.IsAdmin,
			CreatedAt:   u.CreatedAt,
			Score:       score,
			Solves:      solves,
			Submissions: submissions,
		})
	}
	return out, nil
}

func (s *AdminService) ListChallenges() ([]ChallengeStats, error) {
	chs, err := s.Challenges.ListAll()
	if err != nil {
		return nil, err
	}

	out := make([]ChallengeStats, 0, len(chs))
	for _, ch := range chs {
		solves, err := s.Solves.CountByChallenge(ch.ID)
		if err != nil {
			return nil, err
		}
		submissions, err := s.Submissions.CountByChallenge(ch.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, ChallengeStats{
			ID:          ch.ID,
			Slug:        ch.Slug,
			Title:       ch.Title,
			Category:    ch.Category,
			Points:      ch.Points,
			IsActive:    ch.IsActive,
			Solves:      solves,
			Submissions: submissions,
		})
	}
	return out, nil
}

// ToggleChallenge 翻转目录条目的激活状态
func (s *AdminService) ToggleChallenge(id uint) (*model.Challenge, error) {
	ch, err := s.Challenges.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}
	return s.Challenges.SetActive(ch.ID, !ch.IsActive)
}

// ResetProgress 批量清空提交与解题记录。
// username、slug 都为空时全量清空；否则只清对应用户或题目。
// 用户账号和题目条目都保留。
func (s *AdminService) ResetProgress(username, slug string) (*ResetResult, error) {
	switch {
	case username != "":
		user, err := s.Users.FindByUsername(username)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrUserNotFound
			}
			return nil, err
		}
		return s.reset(
			func() (int64, error) { return s.Submissions.DeleteByUser(user.ID) },
			func() (int64, error) { return s.Solves.DeleteByUser(user.ID) },
		)
	case slug != "":
		ch, err := s.Challenges.FindBySlug(slug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrChallengeNotFound
			}
			return nil, err
		}
		return s.reset(
			func() (int64, error) { return s.Submissions.DeleteByChallenge(ch.ID) },
			func() (int64, error) { return s.Solves.DeleteByChallenge(ch.ID) },
		)
	default:
		return s.reset(s.Submissions.DeleteAll, s.Solves.DeleteAll)
	}
}

func (s *AdminService) reset(submissions, solves func() (int64, error)) (*ResetResult, error) {
	subCount, err := submissions()
	if err != nil {
		return nil, err
	}
	solveCount, err := solves()
	if err != nil {
		return nil, err
	}
	return &ResetResult{Submissions: subCount, Solves: solveCount}, nil
}
