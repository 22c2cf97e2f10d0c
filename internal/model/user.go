package model

import "time"

type User struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"column:user_id;uniqueIndex;size:50;not null" json:"user_id"` // 登录ID，注册后不可变
	PasswordHash string    `gorm:"column:password;size:100;not null" json:"-"`
	IsAdmin      bool      `gorm:"column:admin;not null;default:false" json:"is_admin"`
	IsDeleted    bool      `gorm:"column:is_del;not null;default:false" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
