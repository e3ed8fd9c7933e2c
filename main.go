package main

import (
	"context"
	"errors"
	logg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saxenaaman628/redis-farewell-vote/config"
	"github.com/saxenaaman628/redis-farewell-vote/internal/api"
	"github.com/saxenaaman628/redis-farewell-vote/internal/controller"
	"github.com/saxenaaman628/redis-farewell-vote/internal/localstore"
	"github.com/saxenaaman628/redis-farewell-vote/internal/redis"
	redishandler "github.com/saxenaaman628/redis-farewell-vote/internal/redisHandler"
	"github.com/saxenaaman628/redis-farewell-vote/internal/store"
	"github.com/saxenaaman628/redis-farewell-vote/internal/synchronizer"
	"github.com/saxenaaman628/redis-farewell-vote/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		logg.Fatalf("failed to load config: %s", err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		logg.Fatalf("failed to initalize logger: %s", err)
	}
	defer log.Sync()

	remote, err := newRemoteStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open remote store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	local, err := localstore.Open(ctx, cfg.LocalDBPath, log)
	if err != nil {
		log.Fatal("failed to open local store", zap.String("path", cfg.LocalDBPath), zap.Error(err))
	}
	defer local.Close()

	votes := synchronizer.NewVotes(ctx, remote, local, cfg.AggregatePath, log)
	if err := votes.Start(ctx); err != nil {
		log.Fatal("failed to start vote synchronizer", zap.Error(err))
	}
	comments := synchronizer.NewComments(remote, cfg.CommentsPath, log)
	if err := comments.Start(ctx); err != nil {
		log.Fatal("failed to start comment synchronizer", zap.Error(err))
	}

	ctrl := controller.New(votes, remote, controller.Options{
		AggregatePath:  cfg.AggregatePath,
		CommentsPath:   cfg.CommentsPath,
		AvatarMaxBytes: cfg.AvatarMaxBytes,
	}, log)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	api.RegisterRoutes(r, api.New(votes, comments, ctrl, cfg.AvatarMaxBytes, log))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		log.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	log.Info("server graceful stopped")
}

func newRemoteStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.RemoteStore, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using in-memory remote store, votes are not shared between processes")
		return store.NewMemoryStore(), nil
	case config.DriverRedis:
		rdb, err := redis.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		return redishandler.New(rdb, cfg.Redis.KeyPrefix, cfg.StoreTimeout, log), nil
	default:
		return nil, errors.New("unknown store driver " + cfg.StoreDriver)
	}
}
