package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"gutschein/internal/auth"
	"gutschein/internal/validator"
	"gutschein/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

type setPasswordRequest struct {
	Password string `json:"password"`
}

func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	rows, err := h.locations.List(r.Context())
	if err != nil {
		log.Printf("list locations failed: %v", err)
		respondError(w, http.StatusInternalServerError, "unable to load locations")
		return
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": names})
}

// SetLocationPassword replaces the login password of one location.
func (h *Handler) SetLocationPassword(w http.ResponseWriter, r *http.Request) {
	location, err := validator.ValidateLocation(chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req setPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidatePassword(strings.TrimSpace(req.Password)); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to secure password")
		return
	}
	if err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.locations.SetPassword(r.Context(), tx, string(location), hash)
	}); err != nil {
		log.Printf("set password for %s failed: %v", location, err)
		respondError(w, http.StatusInternalServerError, "unable to set password")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"location": string(location)})
}

// WSCoupons streams voucher changes. Browsers cannot set headers on a
// websocket handshake, so the token may come as a query parameter.
func (h *Handler) WSCoupons(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.Location)
}
