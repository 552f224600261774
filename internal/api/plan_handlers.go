/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/friendsincode/movierazzi/internal/schedule"
)

type analyzeRequest struct {
	PreferencesText  string `json:"preferences_text"`
	AvailabilityText string `json:"availability_text"`
}

type retrieveRequest struct {
	PreferencesText string `json:"preferences_text"`
}

type scheduleRequest struct {
	Movies           []schedule.MovieCandidate `json:"movies"`
	AvailabilityText string                    `json:"availability_text"`
}

type orchestrateRequest struct {
	PreferencesText  string `json:"preferences_text"`
	AvailabilityText string `json:"availability_text"`
}

func (a *API) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	profile, slots := a.planner.Analyze(req.PreferencesText, req.AvailabilityText)

	writeJSON(w, http.StatusOK, map[string]any{
		"profile": profile,
		"slots":   slots,
	})
}

func (a *API) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.PreferencesText == "" {
		writeError(w, http.StatusBadRequest, "preferences_text_required")
		return
	}

	profile, candidates, err := a.planner.RetrieveCandidates(r.Context(), req.PreferencesText)
	if err != nil {
		a.logger.Warn().Err(err).Msg("candidate retrieval failed")
		writeError(w, http.StatusBadGateway, "retrieval_failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"profile":    profile,
		"candidates": candidates,
	})
}

func (a *API) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if len(req.Movies) == 0 {
		writeError(w, http.StatusBadRequest, "movies_required")
		return
	}

	assignments, unscheduled, err := a.planner.PackOnly(req.Movies, req.AvailabilityText)
	if err != nil {
		if errors.Is(err, schedule.ErrNoAvailability) {
			writeError(w, http.StatusUnprocessableEntity, "no_availability")
			return
		}
		writeError(w, http.StatusInternalServerError, "schedule_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"assignments": assignments,
		"unscheduled": unscheduled,
	})
}

func (a *API) handleOrchestrate(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(w, r)
	if userID == "" {
		return
	}

	var req orchestrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.PreferencesText == "" {
		writeError(w, http.StatusBadRequest, "preferences_text_required")
		return
	}

	plan, err := a.planner.CreatePlan(r.Context(), userID, req.PreferencesText, req.AvailabilityText)
	if err != nil {
		if errors.Is(err, schedule.ErrNoAvailability) {
			writeError(w, http.StatusUnprocessableEntity, "no_availability")
			return
		}
		a.logger.Error().Err(err).Str("user_id", userID).Msg("plan creation failed")
		writeError(w, http.StatusBadGateway, "plan_failed")
		return
	}

	writeJSON(w, http.StatusCreated, plan)
}
