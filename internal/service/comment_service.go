package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"Anon_Board/internal/model"
	"Anon_Board/internal/repository/mysql"
)

const MaxCommentLength = 500

type CommentService struct {
	db     *gorm.DB
	repo   *mysql.CommentRepository
	posts  *mysql.PostRepository
	users  *mysql.UserRepository
	locker PostLocker
	log    *zap.Logger
}

func NewCommentService(db *gorm.DB, locker PostLocker, log *zap.Logger) *CommentService {
	return &CommentService{
		db:     db,
		repo:   &mysql.CommentRepository{DB: db},
		posts:  &mysql.PostRepository{DB: db},
		users:  &mysql.UserRepository{DB: db},
		locker: locker,
		log:    log,
	}
}

// anonymousIDSource 匿名编号分配需要的两次查询
type anonymousIDSource interface {
	FirstAnonymousID(ctx context.Context, postID, authorID uint64) (int, bool, error)
	MaxAnonymousID(ctx context.Context, postID uint64) (int, error)
}

// resolveAnonymousID 帖子作者固定为 0；其他人沿用在该帖下第一次拿到的编号，
// 第一次评论则取当前最大编号 +1。调用方必须持有帖子锁
func resolveAnonymousID(ctx context.Context, src anonymousIDSource, post *model.Post, commenterID uint64) (int, error) {
	if post.AuthorID == commenterID {
		return model.AuthorAnonymousID, nil
	}
	id, ok, err := src.FirstAnonymousID(ctx, post.ID, commenterID)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}
	maxID, err := src.MaxAnonymousID(ctx, post.ID)
	if err != nil {
		return 0, err
	}
	return maxID + 1, nil
}

func validateComment(content string) error {
	if strings.TrimSpace(content) == "" {
		return validationf("comment content required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return validationf("comment longer than %d characters", MaxCommentLength)
	}
	return nil
}

// CreateComment 发表评论，同一帖子的评论创建串行执行
func (s *CommentService) CreateComment(ctx context.Context, postID uint64, userID, content string) (*model.Comment, error) {
	if err := validateComment(content); err != nil {
		return nil, err
	}
	user, err := findActiveUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	var created *model.Comment
	err = withPostLock(ctx, s.locker, postID, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			posts := &mysql.PostRepository{DB: tx}
			comments := &mysql.CommentRepository{DB: tx}

			post, err := posts.FindByIDForUpdate(ctx, postID)
			if err != nil {
				return notFoundAs(err, ErrPostNotFound)
			}
			anonID, err := resolveAnonymousID(ctx, comments, post, user.ID)
			if err != nil {
				return err
			}

			c := &model.Comment{
				PostID:      postID,
				AuthorID:    user.ID,
				Content:     content,
				AnonymousID: anonID,
			}
			if err := comments.Create(ctx, c); err != nil {
				return err
			}
			created = c
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("comment created",
		zap.Uint64("post_id", postID),
		zap.Uint64("comment_id", created.ID),
		zap.Int("anonymous_id", created.AnonymousID))
	return created, nil
}

// DeleteComment 只有评论作者可以删除，编号不回收
func (s *CommentService) DeleteComment(ctx context.Context, commentID uint64, userID string) error {
	user, err := findActiveUser(ctx, s.users, userID)
	if err != nil {
		return err
	}
	c, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return notFoundAs(err, ErrCommentNotFound)
	}
	if !CanMutate(c.AuthorID, user.ID) {
		return ErrNotOwner
	}
	return notFoundAs(s.repo.SoftDelete(ctx, commentID), ErrCommentNotFound)
}

// ListByPost 帖子下未删除的评论，按发表顺序
func (s *CommentService) ListByPost(ctx context.Context, postID uint64) ([]model.Comment, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, notFoundAs(err, ErrPostNotFound)
	}
	return s.repo.ListByPost(ctx, postID)
}

func (s *CommentService) ListByUser(ctx context.Context, userID string) ([]model.Comment, error) {
	user, err := findActiveUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByAuthor(ctx, user.ID)
}

func (s *CommentService) CountByUser(ctx context.Context, userID string) (int64, error) {
	user, err := findActiveUser(ctx, s.users, userID)
	if err != nil {
		return 0, err
	}
	return s.repo.CountByAuthor(ctx, user.ID)
}
