package mysql

import (
	"context"
	"errors"

	"Anon_Board/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	DB *gorm.DB
}

func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *CommentRepository) FindByID(ctx context.Context, id uint64) (*model.Comment, error) {
	var c model.Comment
	err := r.DB.WithContext(ctx).First(&c, "id = ? AND is_del = ?", id, false).Error
	return &c, err
}

// SoftDelete 只打删除标记，不回收匿名编号
func (r *CommentRepository) SoftDelete(ctx context.Context, id uint64) error {
	res := r.DB.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ? AND is_del = ?", id, false).
		UpdateColumn("is_del", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByPost 帖子下的评论，按发表顺序
func (r *CommentRepository) ListByPost(ctx context.Context, postID uint64) ([]model.Comment, error) {
	var list []model.Comment
	err := r.DB.WithContext(ctx).
		Where("post_id = ? AND is_del = ?", postID, false).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *CommentRepository) ListByAuthor(ctx context.Context, authorID uint64) ([]model.Comment, error) {
	var list []model.Comment
	err := r.DB.WithContext(ctx).
		Where("author_id = ? AND is_del = ?", authorID, false).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *CommentRepository) CountByAuthor(ctx context.Context, authorID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Comment{}).
		Where("author_id = ? AND is_del = ?", authorID, false).
		Count(&n).Error
	return n, err
}

/*
匿名编号查询：这两个方法不过滤 is_del，
删除评论后同一用户仍拿回原编号，新用户也不会复用空出来的编号
*/

// FirstAnonymousID 用户在该帖子下最早一条非作者评论的匿名编号，ok=false 表示没有
func (r *CommentRepository) FirstAnonymousID(ctx context.Context, postID, authorID uint64) (int, bool, error) {
	var c model.Comment
	err := r.DB.WithContext(ctx).
		Select("id", "anonymous_id").
		Where("post_id = ? AND author_id = ? AND anonymous_id > ?", postID, authorID, model.AuthorAnonymousID).
		Order("created_at ASC, id ASC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return c.AnonymousID, true, nil
}

// MaxAnonymousID 帖子下已分配的最大匿名编号，没有时为 0
func (r *CommentRepository) MaxAnonymousID(ctx context.Context, postID uint64) (int, error) {
	var res struct {
		MaxID int
	}
	err := r.DB.WithContext(ctx).Model(&model.Comment{}).
		Select("COALESCE(MAX(anonymous_id), 0) AS max_id").
		Where("post_id = ? AND anonymous_id > ?", postID, model.AuthorAnonymousID).
		Scan(&res).Error
	return res.MaxID, err
}
