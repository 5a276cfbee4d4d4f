package model

import (
	"time"
)

// Solve 记录一次被计分的解题。
// (user_id, challenge_id) 的唯一索引在存储层保证同一用户同一题至多计分一次，
// 多进程共用一个库时并发提交也不会产生重复记录。
type Solve struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"uniqueIndex:uniq_user_challenge_solve;not null" json:"userId"`
	ChallengeID uint      `gorm:"uniqueIndex:uniq_user_challenge_solve;not null" json:"challengeId"`
	SolvedAt    time.Time `gorm:"index;not null" json:"solvedAt"`
}

func (Solve) TableName() string {
	return "solves"
}
