package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/docshare/internal/config"
	"github.com/xxxsen/docshare/internal/db"
	"github.com/xxxsen/docshare/internal/filestore"
	"github.com/xxxsen/docshare/internal/handler"
	"github.com/xxxsen/docshare/internal/job"
	"github.com/xxxsen/docshare/internal/kvstore"
	"github.com/xxxsen/docshare/internal/middleware"
	"github.com/xxxsen/docshare/internal/pkg/jwt"
	"github.com/xxxsen/docshare/internal/repo"
	"github.com/xxxsen/docshare/internal/schedule"
	"github.com/xxxsen/docshare/internal/service"
	"github.com/xxxsen/docshare/internal/throttle"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "docshare",
		Short: "document share link server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run docshare server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")

	var (
		userID string
		ttl    time.Duration
	)
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "mint an owner bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if userID == "" {
				return fmt.Errorf("--user-id is required")
			}
			if ttl <= 0 {
				ttl = time.Duration(cfg.JWTTTLHours) * time.Hour
			}
			signed, err := jwt.GenerateToken(userID, []byte(cfg.JWTSecret), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	tokenCmd.Flags().StringVar(&userID, "user-id", "", "owner user id")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, defaults to jwt_ttl_hours")

	rootCmd.AddCommand(runCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return nil, fmt.Errorf("--config is required")
	}
	return config.Load(path)
}

func openShareStore(cfg *config.Config, shareRepo *repo.ShareRepo) (service.ShareStore, io.Closer, error) {
	switch cfg.ShareStore.Type {
	case "badger":
		store, err := kvstore.Open(cfg.ShareStore.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger share store: %w", err)
		}
		return store, store, nil
	default:
		return shareRepo, nil, nil
	}
}

func runServer(cfg *config.Config) error {
	log := logutil.GetLogger(context.Background())
	log.Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("share_store", cfg.ShareStore.Type),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("throttle", cfg.Throttle.Type),
	)

	sqlDB, err := db.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("migrations: %w", err)
	}
	closers := []io.Closer{sqlDB}

	shares, shareCloser, err := openShareStore(cfg, repo.NewShareRepo(sqlDB))
	if err != nil {
		return closeAll(closers, err)
	}
	if shareCloser != nil {
		closers = append(closers, shareCloser)
	}
	files, err := filestore.New(cfg.FileStore)
	if err != nil {
		return closeAll(closers, fmt.Errorf("init file store: %w", err))
	}
	attempts, err := throttle.New(cfg.Throttle, cfg.Share.LockoutThreshold, time.Duration(cfg.Share.LockoutWindowSeconds)*time.Second)
	if err != nil {
		return closeAll(closers, fmt.Errorf("init throttle: %w", err))
	}
	if c, ok := attempts.(io.Closer); ok {
		closers = append(closers, c)
	}

	accessRepo := repo.NewShareAccessRepo(sqlDB)
	documents := service.NewDocumentCatalog(repo.NewDocumentRepo(sqlDB), files)
	shareService := service.NewShareService(shares, documents, accessRepo, service.ShareOptions{
		PublicBaseURL:  cfg.PublicBaseURL,
		MaxExpiresDays: cfg.Share.MaxExpiresDays,
		MaxPasswordLen: cfg.Share.MaxPasswordLen,
	})
	gate := service.NewGatekeeper(shares, documents, accessRepo, attempts)
	recipients := service.NewRecipientService(gate, documents)

	deps := handler.RouterDeps{
		Shares:    handler.NewShareHandler(shareService),
		Shared:    handler.NewSharedHandler(recipients),
		JWTSecret: []byte(cfg.JWTSecret),
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			middleware.RateLimit(time.Duration(cfg.RateLimitMS)*time.Millisecond),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return closeAll(closers, fmt.Errorf("init web engine: %w", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if cfg.AccessLog.KeepDays > 0 {
		cleanup := job.NewAccessLogCleanupJob(accessRepo, time.Duration(cfg.AccessLog.KeepDays)*24*time.Hour)
		if err := scheduler.AddJob(cleanup, cfg.AccessLog.CleanupCron); err != nil {
			return closeAll(closers, err)
		}
		if next, ok := scheduler.Next(cleanup.Name()); ok {
			log.Info("access log cleanup planned", zap.Int("keep_days", cfg.AccessLog.KeepDays), zap.Time("next_run", next))
		}
	} else {
		log.Info("access log retention disabled, records are kept forever")
	}
	scheduler.Start(ctx)

	go func() {
		log.Info("http server listening", zap.String("addr", addr))
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("server stopping...")
	scheduler.Stop()
	return closeAll(closers, nil)
}

func closeAll(closers []io.Closer, cause error) error {
	var result *multierror.Error
	if cause != nil {
		result = multierror.Append(result, cause)
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
