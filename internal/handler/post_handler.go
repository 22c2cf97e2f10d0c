package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"Anon_Board/internal/service"
)

type PostHandler struct {
	svc      *service.PostService
	comments *service.CommentService
}

type PostReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func NewPostHandler(svc *service.PostService, comments *service.CommentService) *PostHandler {
	return &PostHandler{svc: svc, comments: comments}
}

// CreatePost 创建帖子接口
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req PostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), currentUser(c), req.Title, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": post.ID})
}

// UpdatePost 编辑帖子，仅作者
func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req PostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	post, err := h.svc.UpdatePost(c.Request.Context(), postID, currentUser(c), req.Title, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost 删除帖子接口
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeletePost(c.Request.Context(), postID, currentUser(c)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

// Detail 帖子详情：浏览数 +1，附带评论
func (h *PostHandler) Detail(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	post, err := h.svc.RecordView(c.Request.Context(), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	comments, err := h.comments.ListByPost(c.Request.Context(), postID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post, "comments": comments})
}

func (h *PostHandler) List(c *gin.Context) {
	list, err := h.svc.ListPosts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// Latest 最新帖子，默认 10 条
func (h *PostHandler) Latest(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(service.DefaultLatestLimit)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid size"})
		return
	}

	list, err := h.svc.ListLatest(c.Request.Context(), n)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// Popular 热门帖子，默认推荐数 >= 5 的前 5 条
func (h *PostHandler) Popular(c *gin.Context) {
	minCount, err1 := strconv.ParseInt(c.DefaultQuery("min", strconv.Itoa(service.DefaultPopularMin)), 10, 64)
	n, err2 := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(service.DefaultPopularLimit)))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid min/size"})
		return
	}

	list, err := h.svc.ListPopular(c.Request.Context(), minCount, n)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
