package model

import (
	"time"
)

// Submission 是只追加的提交审计记录，除管理员清空外不修改不删除。
type Submission struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"userId"`
	ChallengeID   uint      `gorm:"index;not null" json:"challengeId"`
	SubmittedFlag string    `gorm:"size:255;not null" json:"submittedFlag"`
	IsCorrect     bool      `gorm:"not null" json:"isCorrect"`
	IPAddress     string    `gorm:"size:45" json:"ipAddress"` // IPv4/IPv6 均可容纳
	RequestID     string    `gorm:"size:36" json:"requestId"`
	SubmittedAt   time.Time `gorm:"index;not null" json:"submittedAt"`
}

func (Submission) TableName() string {
	return "submissions"
}
