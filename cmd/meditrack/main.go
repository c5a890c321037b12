package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meditrack/clinic/internal/clinic"
	"github.com/meditrack/clinic/internal/config"
	"github.com/meditrack/clinic/internal/domain/directory"
	"github.com/meditrack/clinic/internal/domain/scheduling"
	"github.com/meditrack/clinic/internal/platform/db"
	"github.com/meditrack/clinic/internal/platform/middleware"
	"github.com/meditrack/clinic/internal/platform/telemetry"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "meditrack",
		Short:        "MediTrack clinic engine",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("env-file", ".env", "Environment file loaded before reading configuration")

	root.AddCommand(serveCmd())
	root.AddCommand(triageCmd())
	root.AddCommand(versionCmd())
	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if seed, _ := cmd.Flags().GetBool("seed"); seed {
				cfg.SeedDemoData = true
			}
			return runServer(cfg)
		},
	}
	cmd.Flags().Bool("seed", false, "Load demo doctors and patients on start")
	return cmd
}

func triageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "triage <symptom>...",
		Short: "Show which specialization each symptom points to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printTriage(cmd.OutOrStdout(), args)
			return nil
		},
	}
}

func printTriage(w io.Writer, symptoms []string) {
	for _, s := range symptoms {
		spec, ok := directory.TriageSymptom(s)
		if !ok {
			fmt.Fprintf(w, "%-30s -\n", s)
			continue
		}
		fmt.Fprintf(w, "%-30s %s\n", s, spec.Label())
	}
	labels := make([]string, 0)
	for _, spec := range directory.InferSpecializations(symptoms) {
		labels = append(labels, spec.Label())
	}
	fmt.Fprintf(w, "suggested: %s\n", strings.Join(labels, ", "))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "meditrack", version)
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	var w io.Writer = os.Stdout
	if cfg.IsDev() {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// server bundles what runServer starts and stops.
type server struct {
	echo      *echo.Echo
	clinic    *clinic.Clinic
	snapshots *db.SnapshotWriter
}

// newServer builds the HTTP stack. pool may be nil, in which case the
// database routes are left out.
func newServer(cfg *config.Config, logger zerolog.Logger, metrics *telemetry.Metrics, pool *pgxpool.Pool) *server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.Middleware())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, middleware.RequestIDHeader},
	}))

	c := clinic.New(logger, metrics, clinic.Options{
		TaxRate: cfg.TaxRate,
		Slots: scheduling.SlotDefaults{
			DaysAhead:      cfg.SlotDaysAhead,
			SlotsPerDoctor: cfg.SlotsPerDoctor,
			MaxDoctors:     cfg.SuggestDoctors,
		},
	})

	s := &server{echo: e, clinic: c}
	if pool != nil {
		s.snapshots = db.NewSnapshotWriter(pool, logger)
		e.GET("/health/db", db.HealthHandler(pool))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": version})
	})
	e.GET("/metrics", metrics.Handler())

	apiV1 := e.Group("/api/v1",
		middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			BurstSize:         cfg.RateLimitBurst,
		}),
		middleware.BodyLimit(cfg.BodyLimit),
	)
	c.RegisterRoutes(apiV1, s.snapshots)
	return s
}

func runServer(cfg *config.Config) error {
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx := context.Background()
	var pool *pgxpool.Pool
	if cfg.HasDatabase() {
		p, err := db.Open(ctx, db.Options{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns}, logger)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer p.Close()
		pool = p
	} else {
		logger.Warn().Msg("DATABASE_URL not set, snapshots disabled")
	}

	s := newServer(cfg, logger, telemetry.New(true), pool)
	if cfg.SeedDemoData {
		if _, err := s.clinic.Seed(ctx); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	if s.snapshots != nil {
		if _, err := s.clinic.Snapshot(shutdownCtx, s.snapshots); err != nil {
			logger.Error().Err(err).Msg("final snapshot failed")
		}
	}
	logger.Info().Msg("server stopped")
	return nil
}
