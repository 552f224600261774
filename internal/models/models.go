/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// RoleName enumerates the RBAC roles.
type RoleName string

const (
	RoleAdmin  RoleName = "admin"
	RoleViewer RoleName = "viewer"
)

// User represents an authenticated account.
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Password  string    `json:"-"`
	Role      RoleName  `gorm:"type:varchar(16)" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Schedule is one persisted scheduling run for a user.
type Schedule struct {
	ID               string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string `gorm:"type:uuid;index" json:"user_id"`
	PreferencesText  string `gorm:"type:text" json:"preferences_text"`
	AvailabilityText string `gorm:"type:text" json:"availability_text"`
	TotalMovies      int    `json:"total_movies"`
	TotalMinutes     int    `json:"total_minutes"`

	Items []ScheduleItem `gorm:"foreignKey:ScheduleID" json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScheduleItem is one movie placed into a slot of a schedule.
type ScheduleItem struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	ScheduleID     string `gorm:"type:uuid;index" json:"schedule_id"`
	MovieID        int64  `json:"movie_id"`
	Title          string `gorm:"index" json:"title"`
	RuntimeMinutes int    `json:"runtime_minutes"`
	Day            string `gorm:"type:varchar(16)" json:"day"`
	StartHour      int    `json:"start_hour"`
	Position       int    `json:"position"`
	Completed      bool   `gorm:"default:false" json:"completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AvailabilityRecord stores the latest parsed availability slots per user.
// One row per (user, day); replaced wholesale on each new parse.
type AvailabilityRecord struct {
	ID               string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string `gorm:"type:uuid;index" json:"user_id"`
	Day              string `gorm:"type:varchar(16)" json:"day"`
	StartHour        int    `json:"start_hour"`
	AvailableMinutes int    `json:"available_minutes"`
	SourceText       string `gorm:"type:text" json:"source_text"`

	CreatedAt time.Time `json:"created_at"`
}

// AuditLog records security and scheduling relevant actions.
type AuditLog struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"type:uuid;index" json:"user_id"`
	Action    string         `gorm:"type:varchar(64);index" json:"action"`
	Detail    map[string]any `gorm:"type:jsonb;serializer:json" json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
