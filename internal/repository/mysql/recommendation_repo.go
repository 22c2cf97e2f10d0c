package mysql

import (
	"context"
	"errors"

	"Anon_Board/internal/model"

	"gorm.io/gorm"
)

type RecommendationRepository struct {
	DB *gorm.DB
}

// errAlreadyRecommended 用来回滚唯一键冲突的那次尝试
var errAlreadyRecommended = errors.New("already recommended")

// Toggle 推荐/取消推荐，记录行和帖子计数在同一个事务里提交
// liked 为操作后的状态；changed=false 表示并发重复推荐被唯一键挡下，什么都没改
func (r *RecommendationRepository) Toggle(ctx context.Context, userID, postID uint64) (liked bool, changed bool, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := &PostRepository{DB: tx}
		// select for update 锁住帖子，顺便确认帖子还在
		if _, err := posts.FindByIDForUpdate(ctx, postID); err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).
			Delete(&model.Recommendation{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			// 已推荐 -> 取消
			liked, changed = false, true
			return posts.AdjustRecommendationCount(ctx, postID, -1)
		}

		// 唯一(user_id, post_id) 兜底并发重复插入
		if err := tx.Create(&model.Recommendation{UserID: userID, PostID: postID}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyRecommended
			}
			return err
		}
		liked, changed = true, true
		return posts.AdjustRecommendationCount(ctx, postID, +1)
	})
	if errors.Is(err, errAlreadyRecommended) {
		return true, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return liked, changed, nil
}

func (r *RecommendationRepository) IsRecommended(ctx context.Context, userID, postID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.Recommendation{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (r *RecommendationRepository) CountByPost(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.Recommendation{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// DeleteByPost 物理删除帖子的全部推荐记录
func (r *RecommendationRepository) DeleteByPost(ctx context.Context, postID uint64) error {
	return r.DB.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&model.Recommendation{}).Error
}
