package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pulseward/pulseward/internal/config"
	"github.com/pulseward/pulseward/internal/domain/alerts"
	"github.com/pulseward/pulseward/internal/domain/checkin"
	"github.com/pulseward/pulseward/internal/domain/evaluation"
	"github.com/pulseward/pulseward/internal/domain/patient"
	"github.com/pulseward/pulseward/internal/domain/threshold"
	"github.com/pulseward/pulseward/internal/domain/trend"
	"github.com/pulseward/pulseward/internal/domain/wearable"
	"github.com/pulseward/pulseward/internal/platform/auth"
	"github.com/pulseward/pulseward/internal/platform/db"
	"github.com/pulseward/pulseward/internal/platform/middleware"
	"github.com/pulseward/pulseward/internal/platform/telemetry"
	"github.com/pulseward/pulseward/internal/platform/websocket"
)

// alertSinkAdapter adapts the alert lifecycle service to the checkin.AlertSink
// interface, avoiding circular imports between the checkin and alerts
// packages.
type alertSinkAdapter struct {
	svc *alerts.Service
}

// severityForSignal maps a check-in triage signal onto an alert severity.
func severityForSignal(signal checkin.TriageSignal) alerts.Severity {
	if signal == checkin.SignalRed {
		return alerts.SeverityRed
	}
	return alerts.SeverityAmber
}

// EscalateSymptom implements checkin.AlertSink. Symptom escalations key on
// the reported option so repeated reports fold into the open alert.
func (a *alertSinkAdapter) EscalateSymptom(ctx context.Context, patientID uuid.UUID, signal checkin.TriageSignal, cause, headline, description string) error {
	_, _, err := a.svc.Ingest(ctx, alerts.Candidate{
		PatientID:   patientID,
		Severity:    severityForSignal(signal),
		Source:      alerts.SourceSymptom,
		CauseKey:    "symptom:" + cause,
		Headline:    headline,
		Description: description,
	})
	return err
}

// hubPublisher pushes alert lifecycle events onto the ward dashboard hub and
// records the raised-alert metric.
type hubPublisher struct {
	hub *websocket.Hub
	tp  *telemetry.Provider
}

func (p *hubPublisher) publish(eventType string, a *alerts.Alert) {
	data, err := json.Marshal(a)
	if err != nil {
		return
	}
	event := websocket.Event{
		Type:      eventType,
		PatientID: a.PatientID.String(),
		AlertID:   a.ID.String(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	event.Topic = websocket.TopicAlerts
	p.hub.Broadcast(websocket.TopicAlerts, event)

	patientTopic := websocket.PatientTopic(a.PatientID)
	event.Topic = patientTopic
	p.hub.Broadcast(patientTopic, event)
}

// AlertRaised implements alerts.EventPublisher.
func (p *hubPublisher) AlertRaised(a *alerts.Alert) {
	p.tp.AlertCounter(string(a.Severity), string(a.Source))
	p.publish("alert.raised", a)
}

// AlertResolved implements alerts.EventPublisher.
func (p *hubPublisher) AlertResolved(a *alerts.Alert) {
	p.publish("alert.resolved", a)
}

// metricsBridge adapts the telemetry provider to the per-domain recorder
// interfaces.
type metricsBridge struct {
	tp *telemetry.Provider
}

func (m *metricsBridge) EvaluationCompleted(triageLevel string) {
	m.tp.EvaluationCounter(triageLevel)
}

func (m *metricsBridge) CheckinCompleted(flow string) {
	m.tp.CheckinCounter(flow)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "pulseward-server",
		Short: "Post-discharge cardiac monitoring API server",
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
		Short: "Start the monitoring API server",
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

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

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
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Redis holds live check-in session state.
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid REDIS_URL")
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	logger.Info().Msg("connected to redis")

	// Telemetry
	tp := telemetry.NewProvider(telemetry.Config{
		ServiceName: "pulseward-server",
		Environment: cfg.Env,
	})

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(tp.MetricsMiddleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.DevSigningKey),
		}))
	}

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// WebSocket hub for ward dashboards
	hub := websocket.NewHub()
	wsHandler := websocket.NewHandler(hub)
	wsHandler.RegisterRoutes(e.Group(""))

	// Alert lifecycle
	alertRepo := alerts.NewRepoPG(pool)
	alertSvc := alerts.NewService(alertRepo, &hubPublisher{hub: hub, tp: tp}, logger)
	alertHandler := alerts.NewHandler(alertSvc)
	alertHandler.RegisterRoutes(apiV1)

	// Patient roster
	patientRepo := patient.NewRepoPG(pool)
	patientSvc := patient.NewService(patientRepo)
	patientHandler := patient.NewHandler(patientSvc)
	patientHandler.RegisterRoutes(apiV1)

	// Wearable readings
	readingRepo := wearable.NewReadingRepoPG(pool)
	wearableSvc := wearable.NewService(readingRepo, cfg.TrendWindowDays)
	wearableHandler := wearable.NewHandler(wearableSvc)
	wearableHandler.RegisterRoutes(apiV1)

	// Trend analysis
	trendSvc := trend.NewService(cfg.BaselineDays, logger)
	trendHandler := trend.NewHandler(trendSvc, wearableSvc)
	trendHandler.RegisterRoutes(apiV1)

	// Threshold checks
	overrideRepo := threshold.NewOverrideRepoPG(pool)
	thresholdSvc := threshold.NewService(overrideRepo)
	thresholdHandler := threshold.NewHandler(thresholdSvc)
	thresholdHandler.RegisterRoutes(apiV1)

	// Evaluation pipeline
	evalSvc := evaluation.NewService(wearableSvc, trendSvc, thresholdSvc, alertSvc, logger)
	evalSvc.SetMetrics(&metricsBridge{tp: tp})
	evalHandler := evaluation.NewHandler(evalSvc)
	evalHandler.RegisterRoutes(apiV1)

	// Check-in conversations
	sessionStore := checkin.NewRedisSessionStore(redisClient, cfg.CheckinSessionTTL)
	transcriptRepo := checkin.NewTranscriptRepoPG(pool)
	checkinSvc := checkin.NewService(checkin.NewEngine(), sessionStore, transcriptRepo, &alertSinkAdapter{svc: alertSvc}, logger)
	checkinSvc.SetMetrics(&metricsBridge{tp: tp})
	checkinHandler := checkin.NewHandler(checkinSvc)
	checkinHandler.RegisterRoutes(apiV1)

	// Health and metrics
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", tp.PrometheusHandler())

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
