package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Anon_Board/internal/config"
	"Anon_Board/internal/pkg"
	"Anon_Board/internal/repository/mysql"
	"Anon_Board/internal/service"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := mysql.InitDB(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", AutoMigrate: true}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mysql.Close(db) })

	log := zap.NewNop()
	locker := pkg.NewLocalPostLock()
	tokens := pkg.NewTokenIssuer("access", "refresh", time.Minute, time.Hour)
	return InitRouter(Services{
		Users:           service.NewUserService(db, tokens, log),
		Posts:           service.NewPostService(db, locker, log),
		Comments:        service.NewCommentService(db, locker, log),
		Recommendations: service.NewRecommendationService(db, locker, log),
		Tokens:          tokens,
	}, log)
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// signup 注册并登录，返回 access token
func signup(t *testing.T, r *gin.Engine, userID string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/user/register", "", gin.H{"user_id": userID, "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/user/login", "", gin.H{"user_id": userID, "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["AccessToken"].(string)
}

func TestUserEndpoints(t *testing.T) {
	r := setupRouter(t)
	alice := signup(t, r, "alice")

	w := doJSON(r, http.MethodPost, "/api/user/register", "", gin.H{"user_id": "alice", "password": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/api/user/login", "", gin.H{"user_id": "alice", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/change-password", alice, gin.H{
		"current_password": "pw", "new_password": "a", "confirm_password": "b",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/auth/stats", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["post_count"])

	w = doJSON(r, http.MethodGet, "/api/auth/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(r, http.MethodGet, "/api/auth/stats", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/auth/account", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/user/login", "", gin.H{"user_id": "alice", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, decode(t, w)["msg"], "disabled")
}

func TestBoardEndpoints(t *testing.T) {
	r := setupRouter(t)
	alice := signup(t, r, "alice")
	bob := signup(t, r, "bob")

	w := doJSON(r, http.MethodPost, "/api/post/create", "", gin.H{"title": "t", "content": "c"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/post/create", alice, gin.H{"title": "", "content": "c"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/post/create", alice, gin.H{"title": "hello", "content": "world"})
	require.Equal(t, http.StatusCreated, w.Code)
	postID := uint64(decode(t, w)["id"].(float64))
	postPath := fmt.Sprintf("/api/post/%d", postID)

	w = doJSON(r, http.MethodPost, postPath+"/comments", bob, gin.H{"content": "first!"})
	require.Equal(t, http.StatusCreated, w.Code)
	comment := decode(t, w)
	assert.EqualValues(t, 1, comment["anonymous_id"])
	assert.NotContains(t, comment, "author_id")
	commentID := uint64(comment["id"].(float64))

	w = doJSON(r, http.MethodPost, postPath+"/comments", alice, gin.H{"content": "thanks"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["anonymous_id"])

	// 详情：浏览数 +1，带评论
	w = doJSON(r, http.MethodGet, postPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode(t, w)
	assert.EqualValues(t, 1, detail["post"].(map[string]any)["view_count"])
	assert.Len(t, detail["comments"], 2)

	w = doJSON(r, http.MethodPost, postPath+"/recommend", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["liked"])

	w = doJSON(r, http.MethodGet, postPath+"/recommend", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["liked"])

	w = doJSON(r, http.MethodPut, postPath, bob, gin.H{"title": "mine now", "content": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(r, http.MethodDelete, postPath, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/comment/%d", commentID), alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPut, postPath, alice, gin.H{"title": "edited", "content": "x"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "edited", decode(t, w)["title"])

	w = doJSON(r, http.MethodGet, "/api/post/latest", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["list"], 1)

	w = doJSON(r, http.MethodGet, "/api/post/popular?min=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["list"], 1)

	w = doJSON(r, http.MethodGet, "/api/post/popular?min=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodDelete, postPath, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, postPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(r, http.MethodPost, postPath+"/recommend", bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/post/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/auth/comments", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["list"])
}
