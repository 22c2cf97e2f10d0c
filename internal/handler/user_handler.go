package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"Anon_Board/internal/pkg"
	"Anon_Board/internal/service"
)

type UserHandler struct {
	svc      *service.UserService
	posts    *service.PostService
	comments *service.CommentService
}

// RegisterReq 注册请求体
type RegisterReq struct {
	UserID   string `json:"user_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginReq struct {
	UserID   string `json:"user_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func NewUserHandler(svc *service.UserService, posts *service.PostService, comments *service.CommentService) *UserHandler {
	return &UserHandler{svc: svc, posts: posts, comments: comments}
}

// Register 注册接口
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "user_id": user.UserID})
}

// Login 登录接口
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"AccessToken": token.AccessToken, "RefreshToken": token.RefreshToken})
}

// TokenRefresh 利用refresh来更新access
func (h *UserHandler) TokenRefresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	token, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, pkg.ErrRefreshExpired) || errors.Is(err, pkg.ErrRefreshInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"AccessToken": token.AccessToken, "RefreshToken": token.RefreshToken})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	err := h.svc.ChangePassword(c.Request.Context(), currentUser(c), req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "change password successfully"})
}

// DeleteAccount 注销账号
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.svc.DeleteAccount(c.Request.Context(), currentUser(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "account deleted"})
}

// Stats 我的主页统计
func (h *UserHandler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *UserHandler) MyPosts(c *gin.Context) {
	list, err := h.posts.ListByUser(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *UserHandler) MyComments(c *gin.Context) {
	list, err := h.comments.ListByUser(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
