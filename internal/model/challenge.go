package model

import (
	"time"
)

type ChallengeDifficulty string

const (
	ChallengeDifficultyEasy   ChallengeDifficulty = "easy"
	ChallengeDifficultyMedium ChallengeDifficulty = "medium"
	ChallengeDifficultyHard   ChallengeDifficulty = "hard"
)

// Challenge 是题目目录的持久化条目，由元数据同步组件负责写入。
// 身份以 Slug 为准，ID 与 CreatedAt 一经分配在重启间保持不变。
type Challenge struct {
	ID          uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug        string              `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Title       string              `gorm:"size:200;not null" json:"title"`
	Category    string              `gorm:"size:50;index;not null" json:"category"`
	Difficulty  ChallengeDifficulty `gorm:"type:enum('easy','medium','hard');default:'medium'" json:"difficulty"`
	Points      int                 `gorm:"not null;default:100" json:"points"`
	Summary     string              `gorm:"size:500" json:"summary"`
	Description string              `gorm:"type:text;not null" json:"description"`
	Flag        string              `gorm:"size:255;not null" json:"-"`
	Hints       string              `gorm:"type:text" json:"-"` // JSON 数组
	Order       int                 `gorm:"column:display_order;not null;default:0" json:"order"`
	IsActive    bool                `gorm:"default:true;not null" json:"isActive"`
	CreatedAt   time.Time           `json:"createdAt"`

	Submissions []Submission `gorm:"foreignKey:ChallengeID;constraint:OnDelete:CASCADE" json:"-"`
	Solves      []Solve      `gorm:"foreignKey:ChallengeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Challenge) TableName() string {
	return "challenges"
}
