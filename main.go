package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"patient-portal-server/internal/config"
	"patient-portal-server/internal/logger"
	"patient-portal-server/internal/middleware"
	"patient-portal-server/internal/models"
	"patient-portal-server/internal/routes"
	"patient-portal-server/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "patient-portal-server",
		Short: "Patient portal API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, zlog, err := bootstrap()
			if err != nil {
				return err
			}
			defer zlog.Sync()

			if _, err := openDatabase(cfg, zlog); err != nil {
				return err
			}
			zlog.Info("schema migrated")
			return nil
		},
	}
}

// bootstrap loads .env, the configuration and the logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	// A missing .env is fine, the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Error loading .env file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	zlog, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, zlog, nil
}

func openDatabase(cfg *config.Config, zlog *zap.Logger) (*gorm.DB, error) {
	db, err := models.InitDB(models.DatabaseConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Silent: !cfg.IsDevelopment(),
	})
	if err != nil {
		return nil, err
	}
	if err := models.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	zlog.Info("database ready", zap.String("driver", cfg.Database.Driver))
	return db, nil
}

func runServer() error {
	cfg, zlog, err := bootstrap()
	if err != nil {
		return err
	}
	defer zlog.Sync()

	if err := utils.RegisterValidators(cfg.Password); err != nil {
		return err
	}

	db, err := openDatabase(cfg, zlog)
	if err != nil {
		zlog.Error("database unavailable", zap.Error(err))
		return err
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(zlog), middleware.Logger(zlog))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	deps := routes.NewDependencies(db, cfg, zlog)
	defer deps.Close()
	routes.SetupRoutes(router, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			zlog.Error("server error", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	zlog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
		return err
	}
	zlog.Info("server stopped")
	return nil
}
