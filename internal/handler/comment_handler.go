package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Anon_Board/internal/service"
)

type CommentHandler struct {
	svc *service.CommentService
}

type CreateCommentReq struct {
	Content string `json:"content"`
}

func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

func (h *CommentHandler) List(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.ListByPost(c.Request.Context(), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// Create 发表评论，返回分配到的匿名编号
func (h *CommentHandler) Create(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req CreateCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	comment, err := h.svc.CreateComment(c.Request.Context(), postID, currentUser(c), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteComment(c.Request.Context(), commentID, currentUser(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}
