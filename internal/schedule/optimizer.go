/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package schedule packs candidate movies into parsed availability slots.
// The shipped strategy is a greedy shortest-first pass; it trades
// optimality for predictability and is isolated behind the Packer
// interface so a smarter strategy can replace it later.
package schedule

import (
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/friendsincode/movierazzi/internal/availability"
)

// ErrNoAvailability is returned when the optimizer is invoked with zero
// slots. Callers should pass at least the parser's default slot.
var ErrNoAvailability = errors.New("schedule: no availability slots provided")

// DefaultRuntimeMinutes substitutes for candidates with an unknown runtime.
const DefaultRuntimeMinutes = 120

// minUsefulMinutes is the cutoff below which a slot's leftover capacity is
// not worth scanning for further placements.
const minUsefulMinutes = 30

// MovieCandidate is a movie eligible for placement. The packer treats the
// candidate list as read-only input.
type MovieCandidate struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	RuntimeMinutes int     `json:"runtime_minutes"`
	Genre          string  `json:"genre,omitempty"`
	Rating         float64 `json:"rating,omitempty"`
}

// PlacedMovie is one movie assigned into a slot.
type PlacedMovie struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	RuntimeMinutes int    `json:"runtime_minutes"`
}

// Assignment is the packing result for one slot.
type Assignment struct {
	Day              string        `json:"day"`
	StartHour        int           `json:"start_hour"`
	SlotMinutes      int           `json:"slot_minutes"`
	Movies           []PlacedMovie `json:"movies"`
	TotalUsedMinutes int           `json:"total_used_minutes"`
	RemainingMinutes int           `json:"remaining_minutes"`
}

// Packer assigns movies into slots. Implementations must not mutate the
// movie list and must place each movie at most once.
type Packer interface {
	Pack(movies []MovieCandidate, slots []availability.TimeSlot) ([]Assignment, []MovieCandidate, error)
}

// Greedy packs shortest movies first against a single global sort. Slots
// are filled in the order received, so earlier slots are packed tightly
// before later ones see any candidates.
type Greedy struct {
	logger zerolog.Logger
}

// NewGreedy constructs the greedy packer.
func NewGreedy(logger zerolog.Logger) *Greedy {
	return &Greedy{logger: logger.With().Str("component", "optimizer").Logger()}
}

// Pack implements Packer.
func (g *Greedy) Pack(movies []MovieCandidate, slots []availability.TimeSlot) ([]Assignment, []MovieCandidate, error) {
	if len(slots) == 0 {
		return nil, nil, ErrNoAvailability
	}

	// Work on a copy: the caller's list stays untouched and ties keep
	// their input order under the stable sort.
	sorted := make([]MovieCandidate, len(movies))
	copy(sorted, movies)
	for i := range sorted {
		if sorted[i].RuntimeMinutes <= 0 {
			g.logger.Warn().Str("title", sorted[i].Title).Msg("candidate missing runtime, assuming default")
			sorted[i].RuntimeMinutes = DefaultRuntimeMinutes
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RuntimeMinutes < sorted[j].RuntimeMinutes
	})

	consumed := make([]bool, len(sorted))
	assignments := make([]Assignment, 0, len(slots))

	for _, slot := range slots {
		remaining := slot.AvailableMinutes
		assignment := Assignment{
			Day:         slot.Day,
			StartHour:   slot.StartHour,
			SlotMinutes: slot.AvailableMinutes,
		}

		for i, movie := range sorted {
			if consumed[i] {
				continue
			}
			if movie.RuntimeMinutes > remaining {
				continue
			}
			consumed[i] = true
			remaining -= movie.RuntimeMinutes
			assignment.Movies = append(assignment.Movies, PlacedMovie{
				ID:             movie.ID,
				Title:          movie.Title,
				RuntimeMinutes: movie.RuntimeMinutes,
			})
			assignment.TotalUsedMinutes += movie.RuntimeMinutes
			if remaining < minUsefulMinutes {
				break
			}
		}

		assignment.RemainingMinutes = remaining
		assignments = append(assignments, assignment)
	}

	var unscheduled []MovieCandidate
	for i, movie := range sorted {
		if !consumed[i] {
			unscheduled = append(unscheduled, movie)
		}
	}

	return assignments, unscheduled, nil
}
