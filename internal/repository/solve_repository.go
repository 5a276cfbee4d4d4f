package repository

import (
	"time"

	"flagdojo_backend/internal/model"

	"gorm.io/gorm"
)

type SolveRepository struct {
	DB *gorm.DB
}

func NewSolveRepository(db *gorm.DB) *SolveRepository {
	return &SolveRepository{DB: db}
}

func (r *SolveRepository) HasSolved(userID, challengeID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Solve{}).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Count(&count).Error
	return count > 0, err
}

// SolvedChallengeIDs 返回用户已解出的题目 ID 集合
func (r *SolveRepository) SolvedChallengeIDs(userID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.DB.Model(&model.Solve{}).
		Where("user_id = ?", userID).
		Pluck("challenge_id", &ids).Error
	if err != nil {
		return nil, err
	}
	solved := make(map[uint]bool, len(ids))
	for _, id := range ids {
		solved[id] = true
	}
	return solved, nil
}

// SolveWithChallenge 连表查询用的投影
type SolveWithChallenge struct {
	ChallengeID uint      `json:"challengeId"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Points      int       `json:"points"`
	SolvedAt    time.Time `json:"solvedAt"`
}

// ListByUser 返回用户的解题记录及对应题目信息，按时间倒序
func (r *SolveRepository) ListByUser(userID uint) ([]SolveWithChallenge, error) {
	var rows []SolveWithChallenge
	err := r.DB.Table("solves").
		Select("solves.challenge_id, challenges.slug, challenges.title, challenges.category, challenges.points, solves.solved_at").
		Joins("JOIN challenges ON challenges.id = solves.challenge_id").
		Where("solves.user_id = ?", userID).
		Order("solves.solved_at desc").
		Scan(&rows).Error
	return rows, err
}

// UserScore 聚合计算用户总分：对已解出且仍处于激活状态的题目求和。
// 分数从不单独存储，题目分值被修改或下架后自动得到修正。
func (r *SolveRepository) UserScore(userID uint) (int, error) {
	var score int
	err := r.DB.Table("solves").
		Select("COALESCE(SUM(challenges.points), 0)").
		Joins("JOIN challenges ON challenges.id = solves.challenge_id AND challenges.is_active = ?", true).
		Where("solves.user_id = ?", userID).
		Scan(&score).Error
	return score, err
}

func (r *SolveRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Solve{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *SolveRepository) CountByChallenge(challengeID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Solve{}).Where("challenge_id = ?", challengeID).Count(&count).Error
	return count, err
}

func (r *SolveRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Solve{}).Count(&count).Error
	return count, err
}

func (r *SolveRepository) DeleteAll() (int64, error) {
	res := r.DB.Where("1 = 1").Delete(&model.Solve{})
	return res.RowsAffected, res.Error
}

func (r *SolveRepository) DeleteByUser(userID uint) (int64, error) {
	res := r.DB.Where("user_id = ?", userID).Delete(&model.Solve{})
	return res.RowsAffected, res.Error
}

func (r *SolveRepository) DeleteByChallenge(challengeID uint) (int64, error) {
	res := r.DB.Where("challenge_id = ?", challengeID).Delete(&model.Solve{})
	return res.RowsAffected, res.Error
}
