package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shophub/internal/config"
	"shophub/internal/infra/cache"
	"shophub/internal/infra/db"
	"shophub/internal/logger"
	"shophub/internal/server"
	"shophub/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// .envは任意（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config load failed")
	}
	log := logger.New(cfg.LogLevel)

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.WithError(err).Fatal("db migrate failed")
	}

	e := server.Wire(cfg, server.Deps{
		DB:   gormDB,
		Lock: newCheckoutLock(cfg, log),
		Log:  log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//Server起動
	if err := server.Start(ctx, e, ":"+cfg.Port, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// REDIS_ADDRがあればRedis、無ければ単一プロセス用のメモリロック
func newCheckoutLock(cfg config.Config, log logrus.FieldLogger) usecase.CheckoutLocker {
	if cfg.RedisAddr == "" {
		log.Info("checkout lock: memory")
		return cache.NewMemoryCheckoutLock()
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("redis ping failed")
	}
	log.WithField("addr", cfg.RedisAddr).Info("checkout lock: redis")
	return cache.NewRedisCheckoutLock(client)
}
