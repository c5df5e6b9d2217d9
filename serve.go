package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"marketplace-feed/config"
	"marketplace-feed/controller"
	"marketplace-feed/dao"
	"marketplace-feed/db"
	"marketplace-feed/pkg/cache"
	"marketplace-feed/pkg/gemini"
	"marketplace-feed/pkg/oracle"
	"marketplace-feed/pkg/ranking"
	"marketplace-feed/usecase"
)

func openDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	conn, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	log.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("connected to database")
	return conn, nil
}

// newCompleter builds the oracle backend named by cfg. The returned close
// func releases backend resources.
func newCompleter(ctx context.Context, cfg config.OracleConfig) (oracle.Completer, func() error, error) {
	switch cfg.Provider {
	case "gemini":
		c, err := gemini.NewClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		return oracle.NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model), func() error { return nil }, nil
	}
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := openDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	backend, closeBackend, err := newCompleter(ctx, cfg.Oracle)
	if err != nil {
		return fmt.Errorf("oracle: %w", err)
	}
	defer closeBackend()

	// Only ranking answers are cached and coalesced; preference merges are
	// per-user and rarely repeat.
	rankBackend := backend
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			PoolSize: cfg.Cache.PoolSize,
			Prefix:   cfg.Cache.KeyPrefix,
		})
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer func() {
			st := rc.Stats()
			log.Info().Int64("hits", st.Hits).Int64("misses", st.Misses).Msg("oracle cache closed")
			rc.Close()
		}()
		// Unusable answers are not cached, so the next request asks again.
		rankBackend = &oracle.Cached{
			Next:   backend,
			Store:  rc,
			TTL:    cfg.Cache.TTL,
			Accept: func(s string) bool { return ranking.ParseSuggestion(s).Ranked },
		}
		log.Info().Str("addr", cfg.Cache.RedisAddr).Dur("ttl", cfg.Cache.TTL).Msg("oracle cache enabled")
	}
	ranker := oracle.NewRanker(oracle.NewCoalescing(rankBackend), cfg.Oracle.Timeout)
	merger := oracle.NewPreferenceMerger(backend, cfg.Oracle.Timeout)

	// Dependency Injection
	itemRepo := dao.NewItemRepository(conn)
	userRepo := dao.NewUserRepository(conn)
	messageRepo := dao.NewMessageRepository(conn)

	adapter, err := usecase.NewPreferenceAdapter(itemRepo, userRepo, merger, cfg.Adapter.PoolSize,
		usecase.WithTaskTimeout(3*cfg.Oracle.Timeout))
	if err != nil {
		return err
	}

	feedController := controller.NewFeedController(usecase.NewFeedUsecase(itemRepo, userRepo, ranker))
	itemController := controller.NewItemController(usecase.NewItemUsecase(itemRepo))
	chatController := controller.NewChatController(usecase.NewChatUsecase(itemRepo, messageRepo, adapter))
	userController := controller.NewUserController(usecase.NewUserUsecase(userRepo))

	srv := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: controller.NewRouter(controller.RouterConfig{
			AllowedOrigin:  cfg.Server.AllowedOrigin,
			RequestTimeout: cfg.Server.RequestTimeout,
		}, feedController, itemController, chatController, userController),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("oracle", cfg.Oracle.Provider).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		adapter.Release(cfg.Server.ShutdownTimeout)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	adapter.Release(cfg.Server.ShutdownTimeout)
	return nil
}

func migrateCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	conn, err := openDB(c.Context, cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.Migrate(c.Context, conn); err != nil {
		return err
	}
	log.Info().Msg("migration completed")
	return nil
}
