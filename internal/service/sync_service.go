package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"flagdojo_backend/internal/challenge"
	"flagdojo_backend/internal/model"
	"flagdojo_backend/internal/util"
	"flagdojo_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SyncService 把存活插件声明的元数据同步进持久化目录。
// 启动阶段串行运行一次，在请求服务开始前完成。
type SyncService struct {
	DB *gorm.DB
}

func NewSyncService(db *gorm.DB) *SyncService {
	return &SyncService{DB: db}
}

// Sync 以单个事务完成全部条目的 insert-or-update：
//   - 新 slug 插入，active 默认 true；
//   - 已有 slug 用描述整体覆盖（代理主键与创建时间除外），
//     改过源码重启后目录总是反映最新声明；
//   - 本次启动缺席的插件对应条目自动下架（见 DESIGN.md 的决策）。
//
// 任何失败整体回滚并对启动致命：目录不一致比没有目录更糟。
func (s *SyncService) Sync(challenges []challenge.Challenge) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		live := make([]string, 0, len(challenges))

		for _, ch := range challenges {
			d := ch.Descriptor()
			live = append(live, d.Slug)

			hints, err := marshalHints(d.Hints)
			if err != nil {
				return fmt.Errorf("marshal hints for %s: %w", d.Slug, err)
			}

			var existing model.Challenge
			err = tx.Where("slug = ?", d.Slug).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				entry := model.Challenge{
					Slug:        d.Slug,
					Title:       d.Title,
					Category:    d.Category,
					Difficulty:  model.ChallengeDifficulty(d.Difficulty),
					Points:      d.Points,
					Summary:     d.Summary,
					Description: d.Description,
					Flag:        d.Flag,
					Hints:       hints,
					Order:       d.Order,
					IsActive:    true,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				// 整体覆盖而非合并，ID 和 CreatedAt 保持不变
				updates := map[string]interface{}{
					"title":         d.Title,
					"category":      d.Category,
					"difficulty":    d.Difficulty,
					"points":        d.Points,
					"summary":       d.Summary,
					"description":   d.Description,
					"flag":          d.Flag,
					"hints":         hints,
					"display_order": d.Order,
					"is_active":     true,
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return err
				}
			}
		}

		stale := tx.Model(&model.Challenge{}).Where("is_active = ?", true)
		if len(live) > 0 {
			stale = stale.Where("slug NOT IN ?", live)
		}
		res := stale.Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			logger.Log.Warn("deactivated catalog entries without a live plugin",
				zap.Int64("count", res.RowsAffected))
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrReconciliationFailed, err)
	}
	return nil
}

func marshalHints(hints []string) (string, error) {
	if len(hints) == 0 {
		return "", nil
	}
	data, err := json.Marshal(hints)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UnmarshalHints 把目录里的 JSON 提示串还原为列表
func UnmarshalHints(raw string) []string {
	if raw == "" {
		return nil
	}
	var hints []string
	if err := json.Unmarshal([]byte(raw), &hints); err != nil {
		return nil
	}
	return hints
}
