/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/friendsincode/movierazzi/internal/auth"
	"github.com/friendsincode/movierazzi/internal/events"
	"github.com/friendsincode/movierazzi/internal/models"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "email_required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password_too_short")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "hash_error")
		return
	}

	user := models.User{
		ID:       uuid.NewString(),
		Email:    req.Email,
		Password: hash,
		Role:     models.RoleViewer,
	}

	// First account becomes the admin.
	var count int64
	if err := a.db.WithContext(r.Context()).Model(&models.User{}).Count(&count).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if count == 0 {
		user.Role = models.RoleAdmin
	}

	if err := a.db.WithContext(r.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE") {
			writeError(w, http.StatusConflict, "email_taken")
			return
		}
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.publishEvent(r, events.EventUserSignup, events.Payload{"user_id": user.ID, "email": user.Email})

	token, err := a.issueToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{Token: token, User: user})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	var user models.User
	err := a.db.WithContext(r.Context()).
		First(&user, "email = ?", strings.ToLower(strings.TrimSpace(req.Email))).Error
	if err != nil || !auth.CheckPassword(user.Password, req.Password) {
		// Same response for unknown email and wrong password.
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	token, err := a.issueToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}

	a.publishEvent(r, events.EventUserLogin, events.Payload{"user_id": user.ID, "email": user.Email})

	writeJSON(w, http.StatusOK, tokenResponse{Token: token, User: user})
}

func (a *API) issueToken(user models.User) (string, error) {
	return auth.Issue(a.jwtSecret, auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}, a.jwtTTL)
}
