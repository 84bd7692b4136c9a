package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cardionova/cardionova/internal/config"
	"github.com/cardionova/cardionova/internal/domain/assessment"
	"github.com/cardionova/cardionova/internal/domain/identity"
	"github.com/cardionova/cardionova/internal/domain/patient"
	"github.com/cardionova/cardionova/internal/platform/auth"
	"github.com/cardionova/cardionova/internal/platform/db"
	"github.com/cardionova/cardionova/internal/platform/insights"
	"github.com/cardionova/cardionova/internal/platform/middleware"
	"github.com/cardionova/cardionova/internal/platform/ml"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cardionova-server",
		Short: "Cardiovascular risk assessment API server",
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
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s)\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "migrations", "migrations directory")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%04d %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "migrations", "migrations directory")

	cmd.AddCommand(upCmd)
	cmd.AddCommand(statusCmd)
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	zlog.Logger = logger

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Model artifacts. The server refuses to start without a working
	// ensemble rather than serving requests it cannot answer.
	registry, err := ml.LoadRegistry(cfg.ModelDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.ModelDir).Msg("failed to load model artifacts")
	}
	logger.Info().Str("dir", cfg.ModelDir).Msg("model artifacts loaded")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	// Predictions fan out to the insight API; bound the whole request instead
	// of each call individually.
	e.Use(middleware.RequestTimeout(time.Duration(cfg.InsightsTimeoutSeconds+15) * time.Second))

	// Services
	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), time.Duration(cfg.TokenTTLHours)*time.Hour)
	insightClient := insights.NewClient(cfg.InsightsAPIKey, cfg.InsightsModel,
		time.Duration(cfg.InsightsTimeoutSeconds)*time.Second)

	identitySvc := identity.NewService(identity.NewRepo(pool), issuer)
	assessmentSvc := assessment.NewService(assessment.NewRepo(pool), registry, insightClient)
	patientSvc := patient.NewService(patient.NewRepo(pool))

	// Public routes
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"msg": "CardioNova API is running"})
	})
	e.GET("/healthz", db.HealthHandler(pool))
	identity.NewHandler(identitySvc).RegisterRoutes(e)

	// Authenticated routes
	authed := e.Group("", auth.Middleware([]byte(cfg.JWTSecret)))
	assessment.NewHandler(assessmentSvc).RegisterRoutes(authed)
	patient.NewHandler(patientSvc).RegisterRoutes(authed)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
