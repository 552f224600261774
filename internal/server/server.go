/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server bundles the HTTP server and its supporting services.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/movierazzi/internal/api"
	"github.com/friendsincode/movierazzi/internal/audit"
	"github.com/friendsincode/movierazzi/internal/cache"
	"github.com/friendsincode/movierazzi/internal/config"
	"github.com/friendsincode/movierazzi/internal/db"
	"github.com/friendsincode/movierazzi/internal/events"
	"github.com/friendsincode/movierazzi/internal/models"
	"github.com/friendsincode/movierazzi/internal/planner"
	"github.com/friendsincode/movierazzi/internal/preferences"
	"github.com/friendsincode/movierazzi/internal/retrieval"
	"github.com/friendsincode/movierazzi/internal/schedule"
	"github.com/friendsincode/movierazzi/internal/telemetry"
	"github.com/friendsincode/movierazzi/internal/tmdb"
	"github.com/friendsincode/movierazzi/internal/version"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error

	db         *gorm.DB
	cache      *cache.Cache
	bus        *events.Bus
	auditSvc   *audit.Service
	plannerSvc *planner.Service
	api        *api.API
	tracer     *telemetry.TracerProvider

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware("movierazzi-api"))
	router.Use(telemetry.MetricsMiddleware)
	router.Use(middleware.Timeout(60 * time.Second))

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		bus:    events.NewBus(),
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'; base-uri 'self'")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies() error {
	database, err := db.Connect(s.cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(database); err != nil {
		return err
	}
	s.db = database
	s.DeferClose(func() error { return db.Close(database) })

	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisAddr = s.cfg.RedisAddr
	cacheCfg.RedisPassword = s.cfg.RedisPassword
	cacheCfg.RedisDB = s.cfg.RedisDB
	cacheCfg.RuntimeTTL = s.cfg.RuntimeTTL

	cacheSvc, err := cache.New(cacheCfg, s.logger)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	s.cache = cacheSvc
	s.DeferClose(cacheSvc.Close)

	tracer, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
		ServiceName:    "movierazzi",
		ServiceVersion: version.Version,
		OTLPEndpoint:   s.cfg.OTLPEndpoint,
		Enabled:        s.cfg.TracingEnabled,
		SampleRate:     s.cfg.TracingSampleRate,
	}, s.logger)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	s.tracer = tracer
	s.DeferClose(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return tracer.Shutdown(ctx)
	})

	tmdbClient, err := tmdb.NewClient(s.cfg.TMDBBaseURL, s.cfg.TMDBAPIKey, s.cfg.TMDBTimeout, s.logger)
	if err != nil {
		return fmt.Errorf("init tmdb client: %w", err)
	}

	retrievalSvc := retrieval.NewService(tmdbClient, s.cache, s.cfg.MaxCandidates, s.logger)

	s.plannerSvc = planner.NewService(
		s.db,
		preferences.NewAnalyzer(s.logger),
		retrievalSvc,
		schedule.NewGreedy(s.logger),
		s.bus,
		s.logger,
	)

	s.auditSvc = audit.NewService(s.db, s.bus, s.logger)

	s.api = api.New(s.db, []byte(s.cfg.JWTSigningKey), s.cfg.JWTTTL, s.plannerSvc, s.auditSvc, s.bus, s.logger)

	return nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","version":"` + version.Version + `"}`))
	})

	// Metrics go to the dedicated internal listener when configured.
	if s.cfg.MetricsBind == "" {
		s.router.Handle("/metrics", telemetry.Handler())
	}

	s.api.Routes(s.router)
}

func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.auditSvc.Start(ctx)
	}()

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.runScheduleCleanup(ctx)
	}()

	// Internal-only metrics listener, kept off the public port.
	if s.cfg.MetricsBind != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", telemetry.Handler())
		metricsServer := &http.Server{
			Addr:              s.cfg.MetricsBind,
			Handler:           metricsMux,
			ReadHeaderTimeout: 15 * time.Second,
		}

		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			s.logger.Info().Str("addr", s.cfg.MetricsBind).Msg("metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logger.Error().Err(err).Msg("metrics server error")
			}
		}()

		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}
}

// runScheduleCleanup periodically removes schedules older than the retention
// window, items first to keep referential integrity on mysql.
func (s *Server) runScheduleCleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.cfg.CleanupRetain)

			var stale []models.Schedule
			if err := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Find(&stale).Error; err != nil {
				s.logger.Warn().Err(err).Msg("schedule cleanup query failed")
				continue
			}
			if len(stale) == 0 {
				continue
			}

			err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				for _, sched := range stale {
					if err := tx.Where("schedule_id = ?", sched.ID).Delete(&models.ScheduleItem{}).Error; err != nil {
						return err
					}
					if err := tx.Delete(&sched).Error; err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				s.logger.Warn().Err(err).Msg("schedule cleanup failed")
				continue
			}

			s.logger.Info().Int("removed", len(stale)).Time("cutoff", cutoff).Msg("schedule cleanup done")
		}
	}
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel == nil {
		return
	}
	s.bgCancel()
	s.bgWG.Wait()
	s.bgCancel = nil
}

// HTTPServer returns the configured HTTP server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	s.stopBackgroundWorkers()
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}
