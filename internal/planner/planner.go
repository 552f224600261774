/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package planner orchestrates the full pipeline: preference analysis,
// candidate retrieval, availability parsing, slot packing, and persistence.
package planner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/movierazzi/internal/availability"
	"github.com/friendsincode/movierazzi/internal/events"
	"github.com/friendsincode/movierazzi/internal/models"
	"github.com/friendsincode/movierazzi/internal/preferences"
	"github.com/friendsincode/movierazzi/internal/retrieval"
	"github.com/friendsincode/movierazzi/internal/schedule"
	"github.com/friendsincode/movierazzi/internal/telemetry"
)

// Retriever fetches movie candidates for a preference profile.
type Retriever interface {
	Retrieve(ctx context.Context, profile preferences.Profile) ([]retrieval.RetrievedMovie, error)
}

// Plan is the result of a full orchestration run.
type Plan struct {
	ScheduleID  string                     `json:"schedule_id"`
	Profile     preferences.Profile        `json:"profile"`
	Retrieved   []retrieval.RetrievedMovie `json:"retrieved"`
	Slots       []availability.TimeSlot    `json:"slots"`
	Assignments []schedule.Assignment      `json:"assignments"`
	Unscheduled []schedule.MovieCandidate  `json:"unscheduled,omitempty"`
}

// Service wires the pipeline stages together.
type Service struct {
	db        *gorm.DB
	analyzer  *preferences.Analyzer
	retriever Retriever
	packer    schedule.Packer
	bus       *events.Bus
	logger    zerolog.Logger
}

// NewService creates a planner service. bus may be nil when event fan-out is
// not wanted.
func NewService(db *gorm.DB, analyzer *preferences.Analyzer, retriever Retriever, packer schedule.Packer, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{
		db:        db,
		analyzer:  analyzer,
		retriever: retriever,
		packer:    packer,
		bus:       bus,
		logger:    logger.With().Str("component", "planner").Logger(),
	}
}

// Analyze runs the text-analysis stages without touching TMDB or the
// database.
func (s *Service) Analyze(prefText, availText string) (preferences.Profile, []availability.TimeSlot) {
	return s.analyzer.Analyze(prefText), availability.Parse(availText)
}

// RetrieveCandidates analyzes preference text and fetches matching movie
// candidates, each with its selection reason, without scheduling them.
func (s *Service) RetrieveCandidates(ctx context.Context, prefText string) (preferences.Profile, []retrieval.RetrievedMovie, error) {
	profile := s.analyzer.Analyze(prefText)
	retrieved, err := s.retriever.Retrieve(ctx, profile)
	if err != nil {
		return profile, nil, fmt.Errorf("retrieve candidates: %w", err)
	}
	return profile, retrieved, nil
}

// PackOnly packs an explicit movie list against availability text without
// persisting anything.
func (s *Service) PackOnly(movies []schedule.MovieCandidate, availText string) ([]schedule.Assignment, []schedule.MovieCandidate, error) {
	slots := availability.Parse(availText)
	return s.packer.Pack(movies, slots)
}

// CreatePlan executes the whole pipeline for a user and persists the
// resulting schedule. Candidates that did not fit are returned in
// Plan.Unscheduled and a degradation event is published for them.
func (s *Service) CreatePlan(ctx context.Context, userID, prefText, availText string) (*Plan, error) {
	profile := s.analyzer.Analyze(prefText)

	retrieved, err := s.retriever.Retrieve(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}

	slots := availability.Parse(availText)

	assignments, unscheduled, err := s.packer.Pack(retrieval.Candidates(retrieved), slots)
	if err != nil {
		return nil, err
	}

	sched, err := s.persist(ctx, userID, prefText, availText, slots, assignments)
	if err != nil {
		return nil, fmt.Errorf("persist schedule: %w", err)
	}

	telemetry.PlansCreatedTotal.Inc()
	telemetry.MoviesUnscheduledTotal.Add(float64(len(unscheduled)))

	if s.bus != nil {
		s.bus.Publish(events.EventScheduleCreated, events.Payload{
			"user_id":      userID,
			"schedule_id":  sched.ID,
			"total_movies": sched.TotalMovies,
		})
		if len(unscheduled) > 0 {
			s.bus.Publish(events.EventPlanDegraded, events.Payload{
				"user_id":     userID,
				"schedule_id": sched.ID,
				"unscheduled": len(unscheduled),
			})
		}
	}

	s.logger.Info().
		Str("schedule_id", sched.ID).
		Str("user_id", userID).
		Int("placed", sched.TotalMovies).
		Int("unscheduled", len(unscheduled)).
		Msg("plan created")

	return &Plan{
		ScheduleID:  sched.ID,
		Profile:     profile,
		Retrieved:   retrieved,
		Slots:       slots,
		Assignments: assignments,
		Unscheduled: unscheduled,
	}, nil
}

// persist writes the schedule, its items, and the user's availability rows
// in one transaction. Availability is replaced wholesale.
func (s *Service) persist(ctx context.Context, userID, prefText, availText string, slots []availability.TimeSlot, assignments []schedule.Assignment) (*models.Schedule, error) {
	sched := &models.Schedule{
		ID:               uuid.NewString(),
		UserID:           userID,
		PreferencesText:  prefText,
		AvailabilityText: availText,
	}

	position := 0
	for _, a := range assignments {
		for _, placed := range a.Movies {
			sched.Items = append(sched.Items, models.ScheduleItem{
				ID:             uuid.NewString(),
				ScheduleID:     sched.ID,
				MovieID:        placed.ID,
				Title:          placed.Title,
				RuntimeMinutes: placed.RuntimeMinutes,
				Day:            a.Day,
				StartHour:      a.StartHour,
				Position:       position,
			})
			position++
			sched.TotalMovies++
			sched.TotalMinutes += placed.RuntimeMinutes
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sched).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.AvailabilityRecord{}).Error; err != nil {
			return err
		}
		for _, slot := range slots {
			record := models.AvailabilityRecord{
				ID:               uuid.NewString(),
				UserID:           userID,
				Day:              slot.Day,
				StartHour:        slot.StartHour,
				AvailableMinutes: slot.AvailableMinutes,
				SourceText:       availText,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sched, nil
}
