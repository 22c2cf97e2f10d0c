package router

import (
	"Anon_Board/internal/handler"
	"Anon_Board/internal/middleware"
	"Anon_Board/internal/pkg"
	"Anon_Board/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services 路由依赖的业务服务
type Services struct {
	Users           *service.UserService
	Posts           *service.PostService
	Comments        *service.CommentService
	Recommendations *service.RecommendationService
	Tokens          *pkg.TokenIssuer
}

func InitRouter(svc Services, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(log), middleware.Recovery(log))

	user := handler.NewUserHandler(svc.Users, svc.Posts, svc.Comments)
	post := handler.NewPostHandler(svc.Posts, svc.Comments)
	comment := handler.NewCommentHandler(svc.Comments)
	rec := handler.NewRecommendationHandler(svc.Recommendations)
	auth := middleware.AuthMiddleware(svc.Tokens)

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", user.TokenRefresh)
	}

	// 登录态接口
	authGroup := r.Group("/api/auth")
	authGroup.Use(auth)
	{
		authGroup.POST("/change-password", user.ChangePassword)
		authGroup.DELETE("/account", user.DeleteAccount)
		authGroup.GET("/stats", user.Stats)
		authGroup.GET("/posts", user.MyPosts)
		authGroup.GET("/comments", user.MyComments)
	}

	// 帖子相关接口，浏览不需要登录
	postGroup := r.Group("/api/post")
	{
		postGroup.GET("/list", post.List)
		postGroup.GET("/latest", post.Latest)
		postGroup.GET("/popular", post.Popular)
		postGroup.GET("/:id", post.Detail)
		postGroup.GET("/:id/comments", comment.List)

		postGroup.POST("/create", auth, post.CreatePost)
		postGroup.PUT("/:id", auth, post.UpdatePost)
		postGroup.DELETE("/:id", auth, post.DeletePost)
		postGroup.POST("/:id/comments", auth, comment.Create)
		postGroup.POST("/:id/recommend", auth, rec.Toggle)
		postGroup.GET("/:id/recommend", auth, rec.IsLiked)
	}

	// 评论相关接口
	commentGroup := r.Group("/api/comment")
	commentGroup.Use(auth)
	{
		commentGroup.DELETE("/:id", comment.Delete)
	}

	return r
}
