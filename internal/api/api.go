/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the HTTP surface of the service.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/movierazzi/internal/audit"
	"github.com/friendsincode/movierazzi/internal/auth"
	"github.com/friendsincode/movierazzi/internal/events"
	"github.com/friendsincode/movierazzi/internal/models"
	"github.com/friendsincode/movierazzi/internal/planner"
	"github.com/friendsincode/movierazzi/internal/schedule"
)

// API exposes HTTP handlers.
type API struct {
	db        *gorm.DB
	jwtSecret []byte
	jwtTTL    time.Duration
	planner   *planner.Service
	auditSvc  *audit.Service
	exporter  *schedule.ExportService
	bus       *events.Bus
	logger    zerolog.Logger
}

// New creates the API router wrapper.
func New(db *gorm.DB, jwtSecret []byte, jwtTTL time.Duration, plannerSvc *planner.Service, auditSvc *audit.Service, bus *events.Bus, logger zerolog.Logger) *API {
	return &API{
		db:        db,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		planner:   plannerSvc,
		auditSvc:  auditSvc,
		exporter:  schedule.NewExportService(db, logger),
		bus:       bus,
		logger:    logger,
	}
}

// Routes mounts API routes on the provided router.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		// Public endpoints (no auth required)
		r.Post("/auth/signup", a.handleSignup)
		r.Post("/auth/login", a.handleLogin)

		r.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware())

			pr.Post("/analyze", a.handleAnalyze)
			pr.Post("/retrieve", a.handleRetrieve)
			pr.Post("/schedule", a.handleSchedule)
			pr.Post("/orchestrate", a.handleOrchestrate)

			pr.Route("/schedules", func(r chi.Router) {
				r.Get("/", a.handleSchedulesList)
				r.Route("/{scheduleID}", func(r chi.Router) {
					r.Get("/", a.handleSchedulesGet)
					r.Delete("/", a.handleSchedulesDelete)
					r.Get("/export.ics", a.handleScheduleExport)
					r.Patch("/items/{itemID}", a.handleScheduleItemUpdate)
				})
			})

			pr.Get("/availability", a.handleAvailabilityGet)
			pr.With(a.requireRoles(models.RoleAdmin)).Get("/audit", a.handleAuditList)
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) authMiddleware() func(http.Handler) http.Handler {
	return auth.Middleware(a.jwtSecret)
}

func (a *API) requireRoles(allowed ...models.RoleName) func(http.Handler) http.Handler {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[string(role)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if _, exists := allowedSet[claims.Role]; !exists {
				writeError(w, http.StatusForbidden, "insufficient_role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// currentUserID returns the authenticated user's id, or "" with a written
// 401 response.
func currentUserID(w http.ResponseWriter, r *http.Request) string {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return ""
	}
	return claims.UserID
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// publishEvent publishes an event enriched with request context.
func (a *API) publishEvent(r *http.Request, eventType events.EventType, data events.Payload) {
	if a.bus == nil {
		return
	}
	payload := events.Payload{
		"ip_address": r.RemoteAddr,
		"user_agent": r.UserAgent(),
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		payload["user_id"] = claims.UserID
	}
	for k, v := range data {
		payload[k] = v
	}
	a.bus.Publish(eventType, payload)
}
