package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"Anon_Board/internal/repository/mysql"
)

type RecommendationService struct {
	repo   *mysql.RecommendationRepository
	posts  *mysql.PostRepository
	users  *mysql.UserRepository
	locker PostLocker
	log    *zap.Logger
}

func NewRecommendationService(db *gorm.DB, locker PostLocker, log *zap.Logger) *RecommendationService {
	return &RecommendationService{
		repo:   &mysql.RecommendationRepository{DB: db},
		posts:  &mysql.PostRepository{DB: db},
		users:  &mysql.UserRepository{DB: db},
		locker: locker,
		log:    log,
	}
}

// Toggle 推荐/取消推荐，返回操作后的状态
func (s *RecommendationService) Toggle(ctx context.Context, postID uint64, userID string) (bool, error) {
	user, err := findActiveUser(ctx, s.users, userID)
	if err != nil {
		return false, err
	}

	var liked, changed bool
	err = withPostLock(ctx, s.locker, postID, func() error {
		var err error
		liked, changed, err = s.repo.Toggle(ctx, user.ID, postID)
		return err
	})
	if err != nil {
		return false, notFoundAs(err, ErrPostNotFound)
	}
	if !changed {
		// 并发重复推荐被唯一键挡下
		s.log.Warn("duplicate recommendation ignored",
			zap.Uint64("post_id", postID), zap.String("user_id", user.UserID))
	}
	return liked, nil
}

// IsLiked 纯查询；用户或帖子不存在时返回 false
func (s *RecommendationService) IsLiked(ctx context.Context, postID uint64, userID string) (bool, error) {
	user, err := findActiveUser(ctx, s.users, userID)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("find post: %w", err)
	}
	return s.repo.IsRecommended(ctx, user.ID, postID)
}
