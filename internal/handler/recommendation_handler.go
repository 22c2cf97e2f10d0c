package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Anon_Board/internal/service"
)

type RecommendationHandler struct {
	svc *service.RecommendationService
}

func NewRecommendationHandler(svc *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

// Toggle 推荐/取消推荐
func (h *RecommendationHandler) Toggle(c *gin.Context) {
	pid, ok := parseID(c, "id")
	if !ok {
		return
	}
	liked, err := h.svc.Toggle(c.Request.Context(), pid, currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "liked": liked})
}

func (h *RecommendationHandler) IsLiked(c *gin.Context) {
	pid, ok := parseID(c, "id")
	if !ok {
		return
	}
	liked, err := h.svc.IsLiked(c.Request.Context(), pid, currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "liked": liked})
}
