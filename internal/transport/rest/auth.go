package rest

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
)

const minPasswordLength = 8

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		UserID int64  `json:"userId"`
		Email  string `json:"email"`
	} `json:"user"`
}

// Register handles POST /auth/register
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, "invalid email")
		return
	}
	if len(req.Password) < minPasswordLength {
		respondError(w, http.StatusBadRequest, "password too short")
		return
	}

	token, user, err := c.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	resp := authResponse{Token: token}
	resp.User.UserID = user.UserID
	resp.User.Email = user.Email
	respondJSON(w, http.StatusCreated, resp)
}

// Login handles POST /auth/login
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := c.service.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	resp := authResponse{Token: token}
	resp.User.UserID = user.UserID
	resp.User.Email = user.Email
	respondJSON(w, http.StatusOK, resp)
}

// Logout handles POST /auth/logout
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := c.service.Logout(r.Context(), token); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return token
}
