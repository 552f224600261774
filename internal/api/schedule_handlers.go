/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/friendsincode/movierazzi/internal/auth"
	"github.com/friendsincode/movierazzi/internal/events"
	"github.com/friendsincode/movierazzi/internal/models"
)

func (a *API) handleSchedulesList(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(w, r)
	if userID == "" {
		return
	}

	var schedules []models.Schedule
	err := a.db.WithContext(r.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&schedules).Error
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	writeJSON(w, http.StatusOK, schedules)
}

func (a *API) handleSchedulesGet(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(w, r)
	if userID == "" {
		return
	}

	sched, ok := a.loadSchedule(w, r, userID, true)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, sched)
}

func (a *API) handleSchedulesDelete(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(w, r)
	if userID == "" {
		return
	}

	sched, ok := a.loadSchedule(w, r, userID, false)
	if !ok {
		return
	}

	err := a.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("schedule_id = ?", sched.ID).Delete(&models.ScheduleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(sched).Error
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.publishEvent(r, events.EventScheduleDeleted, events.Payload{"schedule_id": sched.ID})

	w.WriteHeader(http.StatusNoContent)
}

type scheduleItemPatch struct {
	Completed *bool `json:"completed"`
	Position  *int  `json:"position"`
}

func (a *API) handleScheduleItemUpdate(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(w, r)
	if userID == "" {
		return
	}

	sched, ok := a.loadSchedule(w, r, userID, false)
	if !ok {
		return
	}

	var item models.ScheduleItem
	err := a.db.WithContext(r.Context()).
		First(&item, "id = ? AND schedule_id = ?", chi.URLParam(r, "itemID"), sched.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "item_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	var patch scheduleItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	updates := map[string]any{}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}
	if patch.Position != nil {
		if *patch.Position < 0 {
			writeError(w, http.StatusBadRequest, "invalid_position")
			return
		}
		updates["position"] = *patch.Position
	}
	if len(updates) == 0 {
		writeError(w, http.StatusBadRequest, "no_fields")
		return
	}

	if err := a.db.WithContext(r.Context()).Model(&item).Updates(updates).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (a *API) handleScheduleExport(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(w, r)
	if userID == "" {
		return
	}

	sched, ok := a.loadSchedule(w, r, userID, false)
	if !ok {
		return
	}

	result, err := a.exporter.ExportToICal(r.Context(), sched.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export_error")
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

func (a *API) handleAvailabilityGet(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(w, r)
	if userID == "" {
		return
	}

	var records []models.AvailabilityRecord
	err := a.db.WithContext(r.Context()).
		Where("user_id = ?", userID).
		Order("day ASC").
		Find(&records).Error
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (a *API) handleAuditList(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = currentUserID(w, r)
		if userID == "" {
			return
		}
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := a.auditSvc.Recent(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// loadSchedule fetches the schedule in the URL and enforces ownership.
// Admins may access any schedule.
func (a *API) loadSchedule(w http.ResponseWriter, r *http.Request, userID string, withItems bool) (*models.Schedule, bool) {
	query := a.db.WithContext(r.Context())
	if withItems {
		query = query.Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
	}

	var sched models.Schedule
	if err := query.First(&sched, "id = ?", chi.URLParam(r, "scheduleID")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "schedule_not_found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "db_error")
		return nil, false
	}

	if sched.UserID != userID && !a.isAdmin(r) {
		// Hide existence of other users' schedules.
		writeError(w, http.StatusNotFound, "schedule_not_found")
		return nil, false
	}

	return &sched, true
}

func (a *API) isAdmin(r *http.Request) bool {
	claims, ok := auth.ClaimsFromContext(r.Context())
	return ok && claims.Role == string(models.RoleAdmin)
}
