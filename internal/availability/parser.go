/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package availability turns free-text descriptions of a user's free time
// into structured time slots. Parsing is heuristic and never fails: input
// that yields nothing degrades to a single default slot.
package availability

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// TimeSlot is one contiguous block of declared free time on a given day.
// Slots are immutable once returned by Parse.
type TimeSlot struct {
	Day              string `json:"day"`
	StartHour        int    `json:"start_hour"`
	AvailableMinutes int    `json:"available_minutes"`
}

// Defaults applied when the text carries no usable information.
const (
	DefaultDay       = "Friday"
	DefaultStartHour = 18
	DefaultMinutes   = 120
)

// weekdays is the day-name lookup table, lowercase, in calendar order.
var weekdays = [...]string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

var (
	clauseSplitRe = regexp.MustCompile(`[,;]|\band\b`)
	mixedRe       = regexp.MustCompile(`(\d+)\s*(?:h|hours?|hrs?)\s*(\d{1,2})\s*(?:m|mins?|minutes?)\b`)
	hoursRe       = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:hours?|hrs?|h)\b`)
	minutesRe     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:minutes?|mins?|m)\b`)
	anchorRe      = regexp.MustCompile(`(?:after|from)\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
)

// Parse converts free text into at least one time slot. It never returns an
// error; malformed or empty input yields the single default slot.
func Parse(text string) []TimeSlot {
	lowered := strings.ToLower(text)

	type candidate struct {
		day       string
		minutes   int
		startHour int
	}

	var candidates []candidate
	for _, clause := range splitClauses(lowered) {
		minutes := extractDuration(clause)
		if minutes <= 0 {
			continue
		}

		startHour, ok := extractAnchorHour(clause)
		if !ok {
			// Anchors behave like days: a clause without one inherits
			// an anchor named anywhere in the input.
			if textHour, textOK := extractAnchorHour(lowered); textOK {
				startHour = textHour
			}
		}

		days := extractDays(clause)
		if len(days) == 0 {
			// Clause named no day; fall back to any day named anywhere
			// in the input.
			days = extractDays(lowered)
		}

		for _, day := range days {
			candidates = append(candidates, candidate{
				day:       day,
				minutes:   roundToFive(minutes),
				startHour: startHour,
			})
		}
	}

	// Merge by day: the longest duration wins, the most recently seen
	// start hour wins.
	merged := make(map[string]*TimeSlot)
	var order []string
	for _, c := range candidates {
		slot, ok := merged[c.day]
		if !ok {
			merged[c.day] = &TimeSlot{Day: c.day, StartHour: c.startHour, AvailableMinutes: c.minutes}
			order = append(order, c.day)
			continue
		}
		if c.minutes > slot.AvailableMinutes {
			slot.AvailableMinutes = c.minutes
		}
		slot.StartHour = c.startHour
	}

	if len(merged) == 0 {
		return []TimeSlot{{Day: DefaultDay, StartHour: DefaultStartHour, AvailableMinutes: DefaultMinutes}}
	}

	slots := make([]TimeSlot, 0, len(merged))
	for _, day := range order {
		slots = append(slots, *merged[day])
	}
	return slots
}

// splitClauses breaks text on commas, semicolons, and the connective "and".
// The split is intentionally rough; over- or under-splitting is tolerated
// by the extraction steps downstream.
func splitClauses(text string) []string {
	parts := clauseSplitRe.Split(text, -1)
	clauses := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			clauses = append(clauses, part)
		}
	}
	return clauses
}

// extractDuration returns the total minutes expressed in the clause, or 0
// when no duration is recognizable. Mixed "Xh Ym" forms are consumed as a
// unit; otherwise hour and minute quantities are summed, fractional hours
// allowed.
func extractDuration(clause string) int {
	if m := mixedRe.FindStringSubmatch(clause); m != nil {
		hours, err := strconv.Atoi(m[1])
		if err != nil {
			return 0
		}
		mins, err := strconv.Atoi(m[2])
		if err != nil {
			return 0
		}
		return hours*60 + mins
	}

	var total float64
	for _, m := range hoursRe.FindAllStringSubmatch(clause, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		total += v * 60
	}
	for _, m := range minutesRe.FindAllStringSubmatch(clause, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		total += v
	}

	if total <= 0 {
		return 0
	}
	return int(total)
}

// extractAnchorHour recognizes "after 8pm" / "from 20:00" phrases and
// returns the 24-hour start hour. The second return reports whether a
// usable anchor was found; absent one, callers get the default hour.
func extractAnchorHour(clause string) (int, bool) {
	m := anchorRe.FindStringSubmatch(clause)
	if m == nil {
		return DefaultStartHour, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 0 || hour > 23 {
		return DefaultStartHour, false
	}
	if m[3] == "pm" && hour < 12 {
		hour += 12
	}
	if m[3] == "am" && hour == 12 {
		hour = 0
	}
	return hour, true
}

// extractDays returns the capitalized weekday names mentioned in the text,
// in calendar order.
func extractDays(text string) []string {
	var found []string
	for _, day := range weekdays {
		if strings.Contains(text, day) {
			found = append(found, capitalize(day))
		}
	}
	return found
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func roundToFive(minutes int) int {
	return int(math.Round(float64(minutes)/5) * 5)
}
