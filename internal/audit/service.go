/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/movierazzi/internal/events"
	"github.com/friendsincode/movierazzi/internal/models"
)

// Service handles audit logging by subscribing to events and storing audit entries.
type Service struct {
	db     *gorm.DB
	bus    *events.Bus
	logger zerolog.Logger
}

// NewService creates a new audit service.
func NewService(db *gorm.DB, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		bus:    bus,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Start subscribes to relevant events and logs them as audit entries.
// Blocks until the context is cancelled.
func (s *Service) Start(ctx context.Context) {
	signup := s.bus.Subscribe(events.EventUserSignup)
	login := s.bus.Subscribe(events.EventUserLogin)
	scheduleCreated := s.bus.Subscribe(events.EventScheduleCreated)
	scheduleDeleted := s.bus.Subscribe(events.EventScheduleDeleted)
	planDegraded := s.bus.Subscribe(events.EventPlanDegraded)

	defer func() {
		s.bus.Unsubscribe(events.EventUserSignup, signup)
		s.bus.Unsubscribe(events.EventUserLogin, login)
		s.bus.Unsubscribe(events.EventScheduleCreated, scheduleCreated)
		s.bus.Unsubscribe(events.EventScheduleDeleted, scheduleDeleted)
		s.bus.Unsubscribe(events.EventPlanDegraded, planDegraded)
	}()

	s.logger.Info().Msg("audit service started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("audit service stopping")
			return
		case payload := <-signup:
			s.logEntry(ctx, string(events.EventUserSignup), payload)
		case payload := <-login:
			s.logEntry(ctx, string(events.EventUserLogin), payload)
		case payload := <-scheduleCreated:
			s.logEntry(ctx, string(events.EventScheduleCreated), payload)
		case payload := <-scheduleDeleted:
			s.logEntry(ctx, string(events.EventScheduleDeleted), payload)
		case payload := <-planDegraded:
			s.logEntry(ctx, string(events.EventPlanDegraded), payload)
		}
	}
}

func (s *Service) logEntry(ctx context.Context, action string, payload events.Payload) {
	userID, _ := payload["user_id"].(string)

	entry := models.AuditLog{
		ID:     uuid.NewString(),
		UserID: userID,
		Action: action,
		Detail: payload,
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to persist audit entry")
	}
}

// Recent returns the latest audit entries for a user, newest first.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []models.AuditLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
