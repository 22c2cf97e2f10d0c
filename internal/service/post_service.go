package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"Anon_Board/internal/model"
	"Anon_Board/internal/repository/mysql"
)

const (
	DefaultLatestLimit  = 10
	DefaultPopularMin   = 5
	DefaultPopularLimit = 5
	maxTitleLen         = 100
)

type PostService struct {
	db     *gorm.DB
	repo   *mysql.PostRepository
	users  *mysql.UserRepository
	locker PostLocker
	log    *zap.Logger
}

func NewPostService(db *gorm.DB, locker PostLocker, log *zap.Logger) *PostService {
	return &PostService{
		db:     db,
		repo:   &mysql.PostRepository{DB: db},
		users:  &mysql.UserRepository{DB: db},
		locker: locker,
		log:    log,
	}
}

func validatePost(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return validationf("title required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return validationf("title longer than %d characters", maxTitleLen)
	}
	if strings.TrimSpace(content) == "" {
		return validationf("content required")
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, userID, title, content string) (*model.Post, error) {
	if err := validatePost(title, content); err != nil {
		return nil, err
	}
	user, err := findActiveUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		AuthorID: user.ID,
		Title:    title,
		Content:  content,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.log.Info("post created", zap.Uint64("post_id", post.ID), zap.String("user_id", user.UserID))
	return post, nil
}

// UpdatePost 只有作者可以编辑，计数不受影响
func (s *PostService) UpdatePost(ctx context.Context, postID uint64, userID, title, content string) (*model.Post, error) {
	if err := validatePost(title, content); err != nil {
		return nil, err
	}
	user, err := findActiveUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, notFoundAs(err, ErrPostNotFound)
	}
	if !CanMutate(post.AuthorID, user.ID) {
		return nil, ErrNotOwner
	}

	post.Title = title
	post.Content = content
	post.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, notFoundAs(err, ErrPostNotFound)
	}
	return post, nil
}

// DeletePost 删除帖子：评论一起软删，推荐记录物理删除，全部在一个事务里
func (s *PostService) DeletePost(ctx context.Context, postID uint64, userID string) error {
	user, err := findActiveUser(ctx, s.users, userID)
	if err != nil {
		return err
	}

	err = withPostLock(ctx, s.locker, postID, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			posts := &mysql.PostRepository{DB: tx}
			post, err := posts.FindByIDForUpdate(ctx, postID)
			if err != nil {
				return notFoundAs(err, ErrPostNotFound)
			}
			if !CanMutate(post.AuthorID, user.ID) {
				return ErrNotOwner
			}
			return notFoundAs(posts.SoftDeleteCascade(ctx, postID), ErrPostNotFound)
		})
	})
	if err != nil {
		return err
	}
	s.log.Info("post deleted", zap.Uint64("post_id", postID), zap.String("user_id", user.UserID))
	return nil
}

func (s *PostService) ListPosts(ctx context.Context) ([]model.Post, error) {
	return s.repo.ListAll(ctx)
}

func (s *PostService) ListLatest(ctx context.Context, n int) ([]model.Post, error) {
	if n <= 0 {
		n = DefaultLatestLimit
	}
	return s.repo.ListLatest(ctx, n)
}

// ListPopular 推荐数至少 minCount 的帖子，推荐多的在前
func (s *PostService) ListPopular(ctx context.Context, minCount int64, n int) ([]model.Post, error) {
	if minCount < 0 {
		minCount = 0
	}
	if n <= 0 {
		n = DefaultPopularLimit
	}
	return s.repo.ListPopular(ctx, minCount, n)
}

func (s *PostService) ListByUser(ctx context.Context, userID string) ([]model.Post, error) {
	user, err := findActiveUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByAuthor(ctx, user.ID)
}

// GetPost 只读，不计浏览数（编辑页用）
func (s *PostService) GetPost(ctx context.Context, postID uint64) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, notFoundAs(err, ErrPostNotFound)
	}
	return post, nil
}

// RecordView 浏览数 +1 并返回最新的帖子
func (s *PostService) RecordView(ctx context.Context, postID uint64) (*model.Post, error) {
	var post *model.Post
	err := retryTx(ctx, func() error {
		var err error
		post, err = s.repo.IncrementView(ctx, postID)
		return err
	})
	if err != nil {
		return nil, notFoundAs(err, ErrPostNotFound)
	}
	return post, nil
}
