package model

import "time"

type Post struct {
	ID                  uint64    `gorm:"primaryKey" json:"id"`
	AuthorID            uint64    `gorm:"not null;index:idx_author_time,priority:1" json:"author_id"`
	Title               string    `gorm:"size:100;not null" json:"title"`
	Content             string    `gorm:"type:text;not null" json:"content"`
	ViewCount           int64     `gorm:"not null;default:0" json:"view_count"`
	RecommendationCount int64     `gorm:"column:recommend_count;not null;default:0;index" json:"recommendation_count"` // 冗余计数，必须等于 recommendations 表中的行数
	IsDeleted           bool      `gorm:"column:is_del;not null;default:false" json:"-"`
	CreatedAt           time.Time `gorm:"index;index:idx_author_time,priority:2" json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}
