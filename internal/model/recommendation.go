package model

import "time"

// Recommendation 推荐记录：行存在即表示已推荐，取消时物理删除
type Recommendation struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_user_post,priority:1"`
	PostID    uint64 `gorm:"not null;uniqueIndex:uk_user_post,priority:2;index"`
	CreatedAt time.Time
}

func (Recommendation) TableName() string {
	return "recommendations"
}
