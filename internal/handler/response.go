package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"Anon_Board/internal/middleware"
	"Anon_Board/internal/service"
)

// writeError 按错误分类映射状态码；未知错误交给日志中间件记录
func writeError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrDisabled), errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrBusy):
		status = http.StatusServiceUnavailable
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
		return
	}
	c.JSON(status, gin.H{"msg": err.Error()})
}

// parseID 解析路径里的数字ID
func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid " + name})
		return 0, false
	}
	return id, true
}

// currentUser 鉴权中间件注入的登录ID
func currentUser(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDKey)
}
