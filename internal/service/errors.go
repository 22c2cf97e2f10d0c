package service

import (
	"errors"
	"fmt"
)

// 错误分类，handler 按这几类映射 HTTP 状态码
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrDisabled   = errors.New("account disabled")
	ErrValidation = errors.New("validation failed")
	ErrBusy       = errors.New("resource busy, retry later")
)

var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrPostNotFound    = fmt.Errorf("post %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)

	ErrUserIDTaken = fmt.Errorf("user id already taken: %w", ErrConflict)
	ErrNotOwner    = fmt.Errorf("only the author may do this: %w", ErrForbidden)

	ErrPasswordMismatch = fmt.Errorf("new password and confirmation differ: %w", ErrValidation)
	ErrWrongPassword    = fmt.Errorf("current password is incorrect: %w", ErrValidation)

	// 登录失败不区分用户不存在和密码错误
	ErrInvalidCredentials = errors.New("invalid user id or password")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
