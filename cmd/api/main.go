package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"Anon_Board/internal/config"
	"Anon_Board/internal/pkg"
	"Anon_Board/internal/repository/mysql"
	"Anon_Board/internal/repository/redis"
	"Anon_Board/internal/router"
	"Anon_Board/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := pkg.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := mysql.InitDB(cfg.Database, log)
	if err != nil {
		log.Fatal("init database", zap.Error(err))
	}
	defer func() { _ = mysql.Close(db) }()

	locker, err := newPostLocker(cfg, log)
	if err != nil {
		log.Fatal("init post lock", zap.Error(err))
	}
	defer func() { _ = redis.Close() }()

	tokens := pkg.NewTokenIssuer(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	gin.SetMode(cfg.Server.Mode)
	r := router.InitRouter(router.Services{
		Users:           service.NewUserService(db, tokens, log),
		Posts:           service.NewPostService(db, locker, log),
		Comments:        service.NewCommentService(db, locker, log),
		Recommendations: service.NewRecommendationService(db, locker, log),
		Tokens:          tokens,
	}, log)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}
	go func() {
		log.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

// newPostLocker 多实例部署用 Redis 锁，单实例可以配 local
func newPostLocker(cfg *config.Config, log *zap.Logger) (service.PostLocker, error) {
	switch cfg.Lock.Backend {
	case "local":
		log.Info("post lock backend", zap.String("backend", "local"))
		return pkg.NewLocalPostLock(), nil
	default:
		// 连接redis
		if err := redis.Init(cfg.Redis); err != nil {
			return nil, err
		}
		log.Info("post lock backend", zap.String("backend", "redis"), zap.String("addr", cfg.Redis.Addr))
		return redis.NewPostLock(redis.Client, cfg.Lock.TTL, cfg.Lock.Wait), nil
	}
}
