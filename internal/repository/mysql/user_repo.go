package mysql

import (
	"context"

	"Anon_Board/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

// FindByUserID 按登录ID查询未注销的用户
func (r *UserRepository) FindByUserID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND is_del = ?", userID, false).
		First(&user).Error
	return &user, err
}

// FindByUserIDAny 包含已注销用户，注册查重和登录时区分 Disabled 用
func (r *UserRepository) FindByUserIDAny(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	return &user, err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND is_del = ?", id, false).
		Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDelete 注销账号，只打标记，帖子和评论保留
func (r *UserRepository) SoftDelete(ctx context.Context, id uint64) error {
	res := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND is_del = ?", id, false).
		Update("is_del", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
