package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"Anon_Board/internal/model"
	"Anon_Board/internal/pkg"
	"Anon_Board/internal/repository/mysql"
)

const maxUserIDLen = 50

type UserService struct {
	repo     *mysql.UserRepository
	posts    *mysql.PostRepository
	comments *mysql.CommentRepository
	tokens   *pkg.TokenIssuer
	log      *zap.Logger
}

// Credentials 登录校验需要的最少信息
type Credentials struct {
	UserID       string
	PasswordHash string
	IsAdmin      bool
}

// UserStats 个人主页的统计
type UserStats struct {
	PostCount                    int64 `json:"post_count"`
	CommentCount                 int64 `json:"comment_count"`
	TotalRecommendationsReceived int64 `json:"total_recommendations_received"`
}

func NewUserService(db *gorm.DB, tokens *pkg.TokenIssuer, log *zap.Logger) *UserService {
	return &UserService{
		repo:     &mysql.UserRepository{DB: db},
		posts:    &mysql.PostRepository{DB: db},
		comments: &mysql.CommentRepository{DB: db},
		tokens:   tokens,
		log:      log,
	}
}

// Register 注册，已注销的登录ID也不能再用
func (s *UserService) Register(ctx context.Context, userID, password string) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || password == "" {
		return nil, validationf("user id and password are required")
	}
	if utf8.RuneCountInString(userID) > maxUserIDLen {
		return nil, validationf("user id longer than %d characters", maxUserIDLen)
	}

	_, err := s.repo.FindByUserIDAny(ctx, userID)
	if err == nil {
		return nil, ErrUserIDTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user id: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UserID:       userID,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// 并发注册同一个ID由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserIDTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", zap.String("user_id", userID))
	return user, nil
}

// AuthenticateLookup 认证前查找凭据；已注销返回 ErrDisabled 而不是 NotFound
func (s *UserService) AuthenticateLookup(ctx context.Context, userID string) (*Credentials, error) {
	u, err := s.repo.FindByUserIDAny(ctx, strings.TrimSpace(userID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u.IsDeleted {
		return nil, ErrDisabled
	}
	return &Credentials{UserID: u.UserID, PasswordHash: u.PasswordHash, IsAdmin: u.IsAdmin}, nil
}

func (s *UserService) Login(ctx context.Context, userID, password string) (*pkg.Pair, error) {
	cred, err := s.AuthenticateLookup(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.tokens.GeneratePair(cred.UserID)
}

// Refresh 换新 token 前确认账号仍然可用
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	if _, err := s.AuthenticateLookup(ctx, claims.UserID); err != nil {
		return nil, err
	}
	return s.tokens.GeneratePair(claims.UserID)
}

// ChangePassword 登录态修改密码，两次输入不一致时不访问存储
func (s *UserService) ChangePassword(ctx context.Context, userID, current, newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if newPassword == "" {
		return validationf("new password is required")
	}

	user, err := findActiveUser(ctx, s.repo, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return notFoundAs(err, ErrUserNotFound)
	}
	return nil
}

// DeleteAccount 注销账号：软删除用户本身，帖子和评论照常展示
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := findActiveUser(ctx, s.repo, userID)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, user.ID); err != nil {
		return notFoundAs(err, ErrUserNotFound)
	}
	s.log.Info("account deleted", zap.String("user_id", user.UserID))
	return nil
}

func (s *UserService) Stats(ctx context.Context, userID string) (*UserStats, error) {
	user, err := findActiveUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	var st UserStats
	if st.PostCount, err = s.posts.CountByAuthor(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if st.CommentCount, err = s.comments.CountByAuthor(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	if st.TotalRecommendationsReceived, err = s.posts.SumRecommendationsByAuthor(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("sum recommendations: %w", err)
	}
	return &st, nil
}
