/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/movierazzi/internal/models"
)

// ExportService renders persisted schedules as iCal calendars.
type ExportService struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewExportService creates a new export service.
func NewExportService(db *gorm.DB, logger zerolog.Logger) *ExportService {
	return &ExportService{
		db:     db,
		logger: logger.With().Str("component", "schedule_export").Logger(),
	}
}

// ExportICalResult contains the iCal export data.
type ExportICalResult struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ExportToICal exports one schedule to iCal format. Each item becomes a
// VEVENT on the next occurrence of its weekday after the schedule was
// created; items in the same slot are laid out back to back.
func (s *ExportService) ExportToICal(ctx context.Context, scheduleID string) (*ExportICalResult, error) {
	var sched models.Schedule
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&sched, "id = ?", scheduleID).Error
	if err != nil {
		return nil, fmt.Errorf("schedule not found: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("BEGIN:VCALENDAR\r\n")
	buf.WriteString("VERSION:2.0\r\n")
	buf.WriteString("PRODID:-//Friends Incode//MovieRazzi//EN\r\n")
	buf.WriteString("CALSCALE:GREGORIAN\r\n")
	buf.WriteString("METHOD:PUBLISH\r\n")
	buf.WriteString("X-WR-CALNAME:Movie Schedule\r\n")

	// Slot keyed offsets, so consecutive items in one slot stack.
	slotOffset := make(map[string]int)

	for _, item := range sched.Items {
		day := nextWeekday(sched.CreatedAt, item.Day)
		start := time.Date(day.Year(), day.Month(), day.Day(), item.StartHour, 0, 0, 0, time.UTC)

		slotKey := item.Day + ":" + fmt.Sprint(item.StartHour)
		start = start.Add(time.Duration(slotOffset[slotKey]) * time.Minute)
		slotOffset[slotKey] += item.RuntimeMinutes

		end := start.Add(time.Duration(item.RuntimeMinutes) * time.Minute)

		buf.WriteString("BEGIN:VEVENT\r\n")
		buf.WriteString(fmt.Sprintf("UID:%s@movierazzi\r\n", item.ID))
		buf.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICalTime(sched.CreatedAt.UTC())))
		buf.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICalTime(start)))
		buf.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICalTime(end)))
		buf.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICalText(item.Title)))
		buf.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICalText(
			fmt.Sprintf("Movie night pick (%d min)", item.RuntimeMinutes))))
		buf.WriteString("END:VEVENT\r\n")
	}

	buf.WriteString("END:VCALENDAR\r\n")

	return &ExportICalResult{
		Data:        buf.Bytes(),
		Filename:    fmt.Sprintf("movie-schedule-%s.ics", sched.ID[:8]),
		ContentType: "text/calendar; charset=utf-8",
	}, nil
}

// nextWeekday returns the date of the first occurrence of day strictly
// after from. Unknown day names fall back to the next day.
func nextWeekday(from time.Time, day string) time.Time {
	target, ok := weekdayIndex(day)
	if !ok {
		return from.AddDate(0, 0, 1)
	}

	delta := (target - int(from.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return from.AddDate(0, 0, delta)
}

func weekdayIndex(day string) (int, bool) {
	switch strings.ToLower(day) {
	case "sunday":
		return 0, true
	case "monday":
		return 1, true
	case "tuesday":
		return 2, true
	case "wednesday":
		return 3, true
	case "thursday":
		return 4, true
	case "friday":
		return 5, true
	case "saturday":
		return 6, true
	}
	return 0, false
}

func formatICalTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func escapeICalText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
