package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/loca-app/loca-api/internal/api"
	"github.com/loca-app/loca-api/internal/caption"
	"github.com/loca-app/loca-api/internal/config"
	"github.com/loca-app/loca-api/internal/db"
	"github.com/loca-app/loca-api/internal/logger"
	"github.com/loca-app/loca-api/internal/media"
	"github.com/loca-app/loca-api/internal/repository/dao"
)

const shutdownTimeout = 15 * time.Second

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	if err = logger.SetLevel(conf.Log.Level); err != nil {
		return fmt.Errorf("failed to set log level -> %w", err)
	}
	conf.Watch(func(level string) {
		if err := logger.SetLevel(level); err != nil {
			zap.L().Warn("ignoring log level from config", zap.Error(err))
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB -> %w", err)
	}
	defer sqlDB.Close()

	if conf.Database.Seed {
		if err = dao.Seed(gormDB); err != nil {
			return fmt.Errorf("failed to seed database -> %w", err)
		}
	}

	store, err := newStore(ctx, conf.Media)
	if err != nil {
		return fmt.Errorf("failed to initialize media store -> %w", err)
	}

	describer, closeDescriber, err := newDescriber(ctx, conf)
	if err != nil {
		return fmt.Errorf("failed to initialize caption service -> %w", err)
	}
	defer closeDescriber()

	s := api.NewServer(conf, gormDB, api.Collaborators{
		Store:     store,
		Describer: describer,
		Pinger:    sqlDB,
	})
	go s.RunEvents(ctx)

	srv := &http.Server{
		Addr:              ":" + s.Config.API.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}

	return nil
}

func newStore(ctx context.Context, conf *config.MediaConfig) (media.Store, error) {
	if conf.Driver == config.MediaS3 {
		client, err := media.NewS3Client(ctx, conf)
		if err != nil {
			return nil, fmt.Errorf("media.NewS3Client -> %w", err)
		}

		zap.L().Info("storing media in S3", zap.String("bucket", conf.Bucket))
		return media.NewS3Store(client, conf.Bucket), nil
	}

	store, err := media.NewLocalStore(conf.Root)
	if err != nil {
		return nil, fmt.Errorf("media.NewLocalStore -> %w", err)
	}

	zap.L().Info("storing media on disk", zap.String("root", conf.Root))
	return store, nil
}

// newDescriber falls back to a describer that always fails when no API key is
// configured, so uploads store the fallback caption.
func newDescriber(ctx context.Context, conf *config.AppConfig) (caption.Describer, func(), error) {
	noop := func() {}

	if conf.Caption.APIKey == "" {
		zap.L().Warn("caption API key not set, uploads will get the fallback description")
		return caption.Unavailable{}, noop, nil
	}

	gemini, err := caption.NewGeminiDescriber(ctx, conf.Caption.APIKey, conf.Caption.Model, conf.Caption.Prompt)
	if err != nil {
		return nil, noop, fmt.Errorf("caption.NewGeminiDescriber -> %w", err)
	}

	if conf.Redis.Addr == "" {
		return gemini, noop, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err = rdb.Ping(ctx).Err(); err != nil {
		zap.L().Warn("redis unreachable, captions will not be cached", zap.Error(err))
	}

	closeRedis := func() {
		if err := rdb.Close(); err != nil {
			zap.L().Warn("failed to close redis client", zap.Error(err))
		}
	}

	return caption.NewCachedDescriber(gemini, rdb, conf.Redis.CaptionTTL), closeRedis, nil
}
