package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"gutschein/internal/services"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondSuccess(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, map[string]any{
		"success": true,
		"data":    data,
	})
}

// respondServiceError maps service sentinels to status codes. conflict is
// the message shown when the id is taken.
func respondServiceError(w http.ResponseWriter, err error, action, conflict string) {
	switch {
	case errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrInvalidID),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidLocation),
		errors.Is(err, services.ErrInvalidEmployee),
		errors.Is(err, services.ErrInvalidCouponType),
		errors.Is(err, services.ErrInvalidBatch):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrVoucherNotFound):
		respondError(w, http.StatusNotFound, "Coupon not found")
	case errors.Is(err, services.ErrVoucherIDTaken):
		respondError(w, http.StatusConflict, conflict)
	default:
		log.Printf("%s failed: %v", action, err)
		respondError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
