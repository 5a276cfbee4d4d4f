package repository

import (
	"flagdojo_backend/internal/model"

	"gorm.io/gorm"
)

type ChallengeRepository struct {
	DB *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: db}
}

func (r *ChallengeRepository) FindByID(id uint) (*model.Challenge, error) {
	var ch model.Challenge
	err := r.DB.First(&ch, id).Error
	return &ch, err
}

func (r *ChallengeRepository) FindBySlug(slug string) (*model.Challenge, error) {
	var ch model.Challenge
	err := r.DB.Where("slug = ?", slug).First(&ch).Error
	return &ch, err
}

// FindActiveBySlug 只解析处于激活状态的目录条目；
// 下架或从未同步过的题目一律视为不存在
func (r *ChallengeRepository) FindActiveBySlug(slug string) (*model.Challenge, error) {
	var ch model.Challenge
	err := r.DB.Where("slug = ? AND is_active = ?", slug, true).First(&ch).Error
	return &ch, err
}

// ListActive 返回激活题目，按 (display_order, id) 排序
func (r *ChallengeRepository) ListActive() ([]model.Challenge, error) {
	var chs []model.Challenge
	err := r.DB.Where("is_active = ?", true).
		Order("display_order asc, id asc").
		Find(&chs).Error
	return chs, err
}

func (r *ChallengeRepository) ListAll() ([]model.Challenge, error) {
	var chs []model.Challenge
	err := r.DB.Order("display_order asc, id asc").Find(&chs).Error
	return chs, err
}

func (r *ChallengeRepository) SetActive(id uint, active bool) (*model.Challenge, error) {
	var ch model.Challenge
	if err := r.DB.First(&ch, id).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&ch).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	ch.IsActive = active
	return &ch, nil
}

func (r *ChallengeRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Challenge{}).Count(&count).Error
	return count, err
}

func (r *ChallengeRepository) CountActive() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Challenge{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
