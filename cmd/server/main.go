package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyceate/moody-sub000/internal/api"
	gql "github.com/hyceate/moody-sub000/internal/api/graphql"
	"github.com/hyceate/moody-sub000/internal/api/handler"
	"github.com/hyceate/moody-sub000/internal/core/ports"
	"github.com/hyceate/moody-sub000/internal/core/service"
	"github.com/hyceate/moody-sub000/internal/infrastructure/cache"
	"github.com/hyceate/moody-sub000/internal/infrastructure/db/memory"
	mongodb "github.com/hyceate/moody-sub000/internal/infrastructure/db/mongo"
	redisdb "github.com/hyceate/moody-sub000/internal/infrastructure/db/redis"
	"github.com/hyceate/moody-sub000/internal/infrastructure/queue"
	"github.com/hyceate/moody-sub000/internal/infrastructure/storage"
	"github.com/hyceate/moody-sub000/internal/pkg/config"
	"github.com/hyceate/moody-sub000/pkg/logger"
)

// @title                       Moody API
// @version                     1.0
// @description                 Pin and board image sharing backend.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{Service: "moody"})
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "moody",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	readiness := map[string]handler.PingFunc{}

	// --- Entity store ---
	var (
		repos  service.Repositories
		locker ports.Locker
	)
	switch cfg.StoreDriver {
	case "memory":
		store := memory.NewStore()
		repos = service.Repositories{
			Users:    store.Users(),
			Boards:   store.Boards(),
			Pins:     store.Pins(),
			Comments: store.Comments(),
			Tx:       store,
		}
		locker = memory.NewLocker()
		log.Warn().Msg("using in-memory store, data is lost on restart")

	default:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		readiness["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }

		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		readiness["redis"] = redisdb.Ping(rdb)

		repos = service.Repositories{
			Users:    mongodb.NewUserRepository(db),
			Boards:   mongodb.NewBoardRepository(db),
			Pins:     mongodb.NewPinRepository(db),
			Comments: mongodb.NewCommentRepository(db),
			Tx:       mongodb.NewTransactor(client, cfg.Mongo.Transactions),
		}
		locker = redisdb.NewLocker(rdb, cfg.Redis.LockTTL, logger.Component("lock"))
	}

	if cfg.UserCache.Size > 0 {
		repos.Users = cache.NewUserCache(repos.Users, cfg.UserCache.Size, cfg.UserCache.TTL, logger.Component("user_cache"))
	}

	// --- Image storage ---
	var (
		images    ports.ImageStore
		staticDir string
	)
	switch cfg.Storage.Driver {
	case "s3":
		s3Store, err := storage.NewS3(ctx, storage.S3Config{
			Bucket:    cfg.Storage.S3Bucket,
			Region:    cfg.Storage.S3Region,
			Endpoint:  cfg.Storage.S3Endpoint,
			AccessKey: cfg.Storage.S3AccessKey,
			SecretKey: cfg.Storage.S3SecretKey,
			PublicURL: cfg.Storage.S3PublicURL,
		})
		if err != nil {
			return err
		}
		images = s3Store
	default:
		local, err := storage.NewLocal(cfg.Storage.Dir, cfg.Storage.PublicURL)
		if err != nil {
			return err
		}
		images = local
		if strings.HasPrefix(cfg.Storage.PublicURL, "/") {
			staticDir = cfg.Storage.Dir
		}
	}

	workersCtx, stopWorkers := context.WithCancel(context.Background())
	var dispatcher *queue.Dispatcher
	if cfg.Workers.ImageDelete > 0 {
		dispatcher = queue.NewDispatcher(cfg.Workers.ImageDelete, images, logger.Component("image_delete"))
		dispatcher.Start(workersCtx)
		images = queue.AsyncStore(images, dispatcher)
	}

	// --- Services ---
	membership := service.NewMembership(repos, locker, logger.Component("membership"))
	cascade := service.NewCascade(repos, images, locker, logger.Component("cascade"))

	authSvc := service.NewAuthService(repos, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"))
	userSvc := service.NewUserService(repos, cascade, images, logger.Component("users"))
	boardSvc := service.NewBoardService(repos, cascade, logger.Component("boards"))
	pinSvc := service.NewPinService(repos, membership, cascade, images, logger.Component("pins"))
	commentSvc := service.NewCommentService(repos, logger.Component("comments"))

	schema, err := gql.NewSchema(gql.Services{
		Auth:     authSvc,
		Users:    userSvc,
		Boards:   boardSvc,
		Pins:     pinSvc,
		Comments: commentSvc,
	}, logger.Component("graphql"))
	if err != nil {
		stopWorkers()
		return err
	}

	e := api.NewRouter(api.Deps{
		Log:            logger.Component("http"),
		JWTSecret:      cfg.JWTSecret,
		Auth:           authSvc,
		Users:          userSvc,
		Schema:         schema,
		Images:         images,
		MaxUploadBytes: cfg.Storage.MaxBytes,
		StaticDir:      staticDir,
		StaticPrefix:   cfg.Storage.PublicURL,
		Readiness:      readiness,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Str("storage", cfg.Storage.Driver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		stopWorkers()
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = e.Shutdown(shutdownCtx)

	stopWorkers()
	if dispatcher != nil {
		dispatcher.Wait()
	}
	if err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
