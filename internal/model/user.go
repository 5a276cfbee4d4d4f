package model

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"size:80;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsAdmin      bool      `gorm:"default:false;not null" json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`

	// 删除用户时级联删除其提交与解题记录
	Submissions []Submission `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Solves      []Solve      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}
