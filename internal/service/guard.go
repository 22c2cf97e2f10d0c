package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"Anon_Board/internal/model"
	"Anon_Board/internal/repository/mysql"
)

// CanMutate 只有资源作者本人可以修改或删除，管理员也不例外
func CanMutate(ownerID, requesterID uint64) bool {
	return ownerID == requesterID
}

// findActiveUser 按登录ID找到未注销的用户
func findActiveUser(ctx context.Context, users *mysql.UserRepository, userID string) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserNotFound
	}
	u, err := users.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// notFoundAs 把仓储层的 ErrRecordNotFound 换成具体的业务错误
func notFoundAs(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
