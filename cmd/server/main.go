package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/HA5ANT/CHESS-MASTER/engine"
	"github.com/HA5ANT/CHESS-MASTER/internal/adapters"
	"github.com/HA5ANT/CHESS-MASTER/internal/bootstrap"
	gameDelivery "github.com/HA5ANT/CHESS-MASTER/internal/delivery/game"
	"github.com/HA5ANT/CHESS-MASTER/internal/game"
)

func main() {
	cfgPath := flag.String("config", ".env", "config file")
	flag.Parse()

	cfg, err := bootstrap.Setup(*cfgPath)
	if err != nil {
		panic("failed to setup configuration: " + err.Error())
	}
	zlog, err := bootstrap.NewLogger(cfg.LogLevel)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer zlog.Sync()
	logger := zlog.Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	store, closeStore := initStore(ctx, logger, cfg)
	defer closeStore()

	selector := engine.NewSelector(engine.WithLogger(zlog))
	service := game.NewService(store, selector, cfg.EngineConfig(), logger)
	handler := gameDelivery.NewGameHandler(*cfg, logger, service)

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           handler.Router(cfg.IsLocalCors),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// initStore picks Redis when REDIS_URL is set and falls back to memory.
func initStore(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) (game.Store, func()) {
	if cfg.RedisUrl == "" {
		log.Info("using in-memory game store")
		return game.NewMemoryStore(), func() {}
	}
	redisAdapter := adapters.NewAdapterRedis(cfg, log)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	return game.NewRedisStore(redisAdapter.GetClient(), cfg.SessionTTL), func() {
		_ = redisAdapter.Close(ctx)
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
