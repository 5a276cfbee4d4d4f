package repository

import (
	"errors"
	"time"

	"flagdojo_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// Append 在一个事务里追加提交记录，并在 solve 非空时尝试插入解题记录。
// 返回值表示 solve 是否真的插入成功：并发竞争中输掉的一方会撞上
// (user_id, challenge_id) 唯一索引，该冲突被翻译成 "已解出" 而不是错误，
// 提交记录本身照常落库。其它任何存储错误回滚整个事务，两行都不会留下。
func (r *SubmissionRepository) Append(sub *model.Submission, solve *model.Solve) (bool, error) {
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}

	firstSolve := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		if solve == nil {
			return nil
		}
		if solve.SolvedAt.IsZero() {
			solve.SolvedAt = sub.SubmittedAt
		}
		if err := tx.Create(solve).Error; err != nil {
			// 唯一索引挡下的重复计分：MySQL 下失败的 INSERT 不会
			// 污染事务，提交记录仍然提交
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil
			}
			return err
		}
		firstSolve = true
		return nil
	})
	return firstSolve, err
}

// ListRecent 返回某用户对某题最近的提交，按时间倒序
func (r *SubmissionRepository) ListRecent(userID, challengeID uint, limit int) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.DB.Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Order("submitted_at desc").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}

func (r *SubmissionRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *SubmissionRepository) CountByChallenge(challengeID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).Where("challenge_id = ?", challengeID).Count(&count).Error
	return count, err
}

func (r *SubmissionRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).Count(&count).Error
	return count, err
}

// DeleteAll 管理员全量清空，返回删除行数供确认
func (r *SubmissionRepository) DeleteAll() (int64, error) {
	res := r.DB.Where("1 = 1").Delete(&model.Submission{})
	return res.RowsAffected, res.Error
}

func (r *SubmissionRepository) DeleteByUser(userID uint) (int64, error) {
	res := r.DB.Where("user_id = ?", userID).Delete(&model.Submission{})
	return res.RowsAffected, res.Error
}

func (r *SubmissionRepository) DeleteByChallenge(challengeID uint) (int64, error) {
	res := r.DB.Where("challenge_id = ?", challengeID).Delete(&model.Submission{})
	return res.RowsAffected, res.Error
}
