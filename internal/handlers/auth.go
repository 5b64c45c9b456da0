package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"gutschein/internal/auth"
	"gutschein/internal/middleware"
)

type loginRequest struct {
	Password string `json:"password"`
}

// Login identifies the location by its password alone; each location has
// its own.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		respondError(w, http.StatusBadRequest, "password is required")
		return
	}
	locations, err := h.locations.List(r.Context())
	if err != nil {
		log.Printf("load locations failed: %v", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	for _, location := range locations {
		if !auth.CheckPassword(location.PasswordHash, req.Password) {
			continue
		}
		token, err := auth.GenerateToken(h.cfg.JWTSecret, location.Name, h.cfg.TokenTTL)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to generate token")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{
			"token":    token,
			"location": location.Name,
		})
		return
	}
	respondError(w, http.StatusUnauthorized, "Falsches Passwort")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	location, ok := middleware.LocationFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	row, err := h.locations.GetByName(r.Context(), location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusUnauthorized, "unknown location")
			return
		}
		log.Printf("load location %s failed: %v", location, err)
		respondError(w, http.StatusInternalServerError, "failed to load location")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"location":  row.Name,
		"updatedAt": row.UpdatedAt,
	})
}
