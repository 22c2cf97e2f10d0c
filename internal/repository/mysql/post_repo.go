package mysql

import (
	"context"

	"Anon_Board/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Create(post).Error
}

func (r *PostRepository) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).First(&post, "id = ? AND is_del = ?", id, false).Error
	return &post, err
}

// FindByIDForUpdate 事务内使用，select for update 锁住帖子行
func (r *PostRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&post, "id = ? AND is_del = ?", id, false).Error
	return &post, err
}

// Update 只写标题和正文，计数列只能通过原子表达式修改
func (r *PostRepository) Update(ctx context.Context, post *model.Post) error {
	res := r.DB.WithContext(ctx).Model(&model.Post{}).
		Where("id = ? AND is_del = ?", post.ID, false).
		Updates(map[string]any{
			"title":      post.Title,
			"content":    post.Content,
			"updated_at": post.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementView 浏览数 +1 并读回最新行，同一事务内完成
func (r *PostRepository) IncrementView(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Post{}).
			Where("id = ? AND is_del = ?", id, false).
			UpdateColumn("view_count", gorm.Expr("view_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&post, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// AdjustRecommendationCount 推荐计数增减，防止出现负数
func (r *PostRepository) AdjustRecommendationCount(ctx context.Context, id uint64, delta int64) error {
	return r.DB.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		UpdateColumn("recommend_count",
			gorm.Expr("CASE WHEN recommend_count + ? > 0 THEN recommend_count + ? ELSE 0 END", delta, delta)).
		Error
}

// SoftDeleteCascade 软删帖子及其评论，物理删除推荐记录并把计数归零
// 需要在调用方的事务里执行
func (r *PostRepository) SoftDeleteCascade(ctx context.Context, id uint64) error {
	db := r.DB.WithContext(ctx)
	res := db.Model(&model.Post{}).
		Where("id = ? AND is_del = ?", id, false).
		UpdateColumns(map[string]any{"is_del": true, "recommend_count": 0})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := db.Model(&model.Comment{}).
		Where("post_id = ? AND is_del = ?", id, false).
		UpdateColumn("is_del", true).Error; err != nil {
		return err
	}

	recRepo := &RecommendationRepository{DB: r.DB}
	return recRepo.DeleteByPost(ctx, id)
}

// ListAll 全部帖子，新的在前
func (r *PostRepository) ListAll(ctx context.Context) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.WithContext(ctx).
		Where("is_del = ?", false).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *PostRepository) ListLatest(ctx context.Context, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.WithContext(ctx).
		Where("is_del = ?", false).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ListPopular 推荐数不少于 minCount 的帖子，按推荐数降序
func (r *PostRepository) ListPopular(ctx context.Context, minCount int64, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.WithContext(ctx).
		Where("is_del = ? AND recommend_count >= ?", false, minCount).
		Order("recommend_count DESC, created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID uint64) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.WithContext(ctx).
		Where("author_id = ? AND is_del = ?", authorID, false).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *PostRepository) CountByAuthor(ctx context.Context, authorID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Post{}).
		Where("author_id = ? AND is_del = ?", authorID, false).
		Count(&n).Error
	return n, err
}

// SumRecommendationsByAuthor 作者所有未删除帖子收到的推荐总数
func (r *PostRepository) SumRecommendationsByAuthor(ctx context.Context, authorID uint64) (int64, error) {
	var res struct {
		Total int64
	}
	err := r.DB.WithContext(ctx).Model(&model.Post{}).
		Select("COALESCE(SUM(recommend_count), 0) AS total").
		Where("author_id = ? AND is_del = ?", authorID, false).
		Scan(&res).Error
	return res.Total, err
}
