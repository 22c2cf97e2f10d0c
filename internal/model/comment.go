package model

import "time"

// 作者本人评论使用的匿名编号
const AuthorAnonymousID = 0

type Comment struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	PostID      uint64    `gorm:"not null;index:idx_post_anon,priority:1;index:idx_post_user,priority:1" json:"post_id"`
	AuthorID    uint64    `gorm:"not null;index:idx_post_user,priority:2;index" json:"-"` // 不对外暴露，前端只看匿名编号
	Content     string    `gorm:"size:500;not null" json:"content"`
	AnonymousID int       `gorm:"not null;default:0;index:idx_post_anon,priority:2" json:"anonymous_id"` // 0=帖子作者，>=1 为同帖内稳定的匿名编号
	IsDeleted   bool      `gorm:"column:is_del;not null;default:false" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}
