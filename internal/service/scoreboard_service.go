package service

import (
	"context"
	"encoding/json"
	"time"

	"flagdojo_backend/internal/repository"
	"flagdojo_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	leaderboardCacheKey = "flagdojo:leaderboard"
	leaderboardCacheTTL = 30 * time.Second
)

type LeaderboardEntry struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
	Solved   int64  `json:"solved"`
}

type CategoryProgress struct {
	Category string `json:"category"`
	Solved   int64  `json:"solved"`
	Total    int64  `json:"total"`
}

type Dashboard struct {
	Score           int                               `json:"score"`
	SolvedCount     int64                             `json:"solvedCount"`
	TotalChallenges int64                             `json:"totalChallenges"`
	SubmissionCount int64                             `json:"submissionCount"`
	Solves          []repository.SolveWithChallenge   `json:"solves"`
	Categories      []CategoryProgress                `json:"categoryProgress"`
}

// ScoreboardService 聚合派生的分数视图，排行榜带 redis 短缓存。
// 分数永远是解题集合的聚合，没有任何存储的计数器。
type ScoreboardService struct {
	DB          *gorm.DB
	RDB         *redis.Client
	Challenges  *repository.ChallengeRepository
	Solves      *repository.SolveRepository
	Submissions *repository.SubmissionRepository
}

func NewScoreboardService(db *gorm.DB, rdb *redis.Client, challenges *repository.ChallengeRepository, solves *repository.SolveRepository, submissions *repository.SubmissionRepository) *ScoreboardService {
	return &ScoreboardService{
		DB:          db,
		RDB:         rdb,
		Challenges:  challenges,
		Solves:      solves,
		Submissions: submissions,
	}
}

// Leaderboard 返回按分数倒序的用户榜。计算结果缓存 30 秒，
// 缓存层故障只降级为直查，不影响结果。
func (s *ScoreboardService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	if s.RDB != nil {
		if raw, err := s.RDB.Get(ctx, leaderboardCacheKey).Result(); err == nil {
			var cached []LeaderboardEntry
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	// solved 与 score 口径一致，只数仍激活的题目，
	// 否则下架后会出现有解题数却没有分数的榜面
	var entries []LeaderboardEntry
	err := s.DB.Table("users").
		Select("users.id AS user_id, users.username, " +
			"COALESCE(SUM(CASE WHEN challenges.is_active THEN challenges.points ELSE 0 END), 0) AS score, " +
			"COUNT(CASE WHEN challenges.is_active THEN solves.id END) AS solved").
		Joins("LEFT JOIN solves ON solves.user_id = users.id").
		Joins("LEFT JOIN challenges ON challenges.id = solves.challenge_id").
		Group("users.id, users.username").
		Order("score DESC, solved DESC, users.id ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	if s.RDB != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.RDB.Set(ctx, leaderboardCacheKey, data, leaderboardCacheTTL).Err(); err != nil {
				logger.Log.Warn("leaderboard cache write failed", zap.Error(err))
			}
		}
	}
	return entries, nil
}

// Invalidate 在管理员重置或题目上下架后清掉排行榜缓存
func (s *ScoreboardService) Invalidate(ctx context.Context) {
	if s.RDB == nil {
		return
	}
	if err := s.RDB.Del(ctx, leaderboardCacheKey).Err(); err != nil {
		logger.Log.Warn("leaderboard cache invalidation failed", zap.Error(err))
	}
}

// Dashboard 汇总单个用户的进度
func (s *ScoreboardService) Dashboard(userID uint) (*Dashboard, error) {
	score, err := s.Solves.UserScore(userID)
	if err != nil {
		return nil, err
	}

	solves, err := s.Solves.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	total, err := s.Challenges.CountActive()
	if err != nil {
		return nil, err
	}

	submissionCount, err := s.Submissions.CountByUser(userID)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryProgress(userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Score:           score,
		SolvedCount:     int64(len(solves)),
		TotalChallenges: total,
		SubmissionCount: submissionCount,
		Solves:          solves,
		Categories:      categories,
	}, nil
}

func (s *ScoreboardService) categoryProgress(userID uint) ([]CategoryProgress, error) {
	var totals []struct {
		Category string
		Total    int64
	}
	err := s.DB.Table("challenges").
		Select("category, COUNT(id) AS total").
		Where("is_active = ?", true).
		Group("category").
		Order("category ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	var solved []struct {
		Category string
		Solved   int64
	}
	err = s.DB.Table("solves").
		Select("challenges.category, COUNT(solves.id) AS solved").
		Joins("JOIN challenges ON challenges.id = solves.challenge_id").
		Where("solves.user_id = ? AND challenges.is_active = ?", userID, true).
		Group("challenges.category").
		Scan(&solved).Error
	if err != nil {
		return nil, err
	}

	solvedByCategory := make(map[string]int64, len(solved))
	for _, row := range solved {
		solvedByCategory[row.Category] = row.Solved
	}

	out := make([]CategoryProgress, 0, len(totals))
	for _, row := range totals {
		out = append(out, CategoryProgress{
			Category: row.Category,
			Solved:   solvedByCategory[row.Category],
			Total:    row.Total,
		})
	}
	return out, nil
}
