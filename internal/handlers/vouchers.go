package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"gutschein/internal/middleware"
	"gutschein/internal/models"
	"gutschein/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const (
	msgIDTaken    = "Coupon ID already exists"
	msgNewIDTaken = "The new coupon ID already exists"
)

type createVoucherRequest struct {
	ID         string              `json:"id"`
	CouponType string              `json:"couponType"`
	FirstValue decimal.NullDecimal `json:"firstValue"`
	Employee   string              `json:"employee"`
	Location   string              `json:"location"`
}

type createBatchRequest struct {
	StartID    string              `json:"startId"`
	Count      int                 `json:"count"`
	CouponType string              `json:"couponType"`
	FirstValue decimal.NullDecimal `json:"firstValue"`
	Employee   string              `json:"employee"`
	Location   string              `json:"location"`
}

type legacyVoucherRequest struct {
	ID         string              `json:"id"`
	CouponType string              `json:"couponType"`
	RestValue  decimal.NullDecimal `json:"restValue"`
	CreatedAt  json.RawMessage     `json:"createdAt"`
	Employee   string              `json:"employee"`
	Location   string              `json:"location"`
}

type redeemRequest struct {
	UsedValue decimal.NullDecimal `json:"usedValue"`
	Tip       decimal.NullDecimal `json:"tip"`
	Employee  string              `json:"employee"`
	Location  string              `json:"location"`
	NewID     string              `json:"newId"`
}

// ListVouchers never fails the page; store errors yield an empty list.
func (h *Handler) ListVouchers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	rows, err := h.service.ListVouchers(r.Context(), services.ListFilter{
		Search:   query.Get("search"),
		Active:   parseFlag(query.Get("active")),
		Type:     query.Get("type"),
		Location: query.Get("location"),
		Limit:    parseLimit(query.Get("limit")),
	})
	if err != nil {
		log.Printf("list coupons failed: %v", err)
		rows = []models.Voucher{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (h *Handler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	var req createVoucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	coupon, err := h.service.CreateVoucher(r.Context(), services.CreateVoucherRequest{
		ID:         req.ID,
		CouponType: req.CouponType,
		FirstValue: req.FirstValue,
		Employee:   req.Employee,
		Location:   locationOrSession(r, req.Location),
	})
	if err != nil {
		respondServiceError(w, err, "create coupon", msgIDTaken)
		return
	}
	middleware.VoucherEvents.WithLabelValues("created").Inc()
	respondSuccess(w, http.StatusCreated, map[string]any{"coupon": coupon})
}

func (h *Handler) CreateVoucherBatch(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	coupons, err := h.service.CreateVoucherBatch(r.Context(), services.CreateBatchRequest{
		StartID:    req.StartID,
		Count:      req.Count,
		CouponType: req.CouponType,
		FirstValue: req.FirstValue,
		Employee:   req.Employee,
		Location:   locationOrSession(r, req.Location),
	})
	if err != nil {
		respondServiceError(w, err, "create coupons", msgIDTaken)
		return
	}
	middleware.VoucherEvents.WithLabelValues("created").Add(float64(len(coupons)))
	respondSuccess(w, http.StatusCreated, map[string]any{"coupons": coupons})
}

func (h *Handler) CreateLegacyVoucher(w http.ResponseWriter, r *http.Request) {
	var req legacyVoucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	season, err := parseSeason(req.CreatedAt)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.service.CreateLegacyVoucher(r.Context(), services.LegacyVoucherRequest{
		ID:         req.ID,
		CouponType: req.CouponType,
		RestValue:  req.RestValue,
		CreatedAt:  season,
		Employee:   req.Employee,
		Location:   req.Location,
	})
	if err != nil {
		respondServiceError(w, err, "save old coupon", msgIDTaken)
		return
	}
	middleware.VoucherEvents.WithLabelValues("legacy").Inc()
	respondSuccess(w, http.StatusCreated, map[string]any{
		"coupon":       result.Voucher,
		"historyEntry": result.History,
	})
}

func (h *Handler) CheckID(w http.ResponseWriter, r *http.Request) {
	exists, err := h.service.CheckIDExists(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		log.Printf("check coupon id failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to check coupon id")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (h *Handler) GetVoucher(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.service.GetVoucher(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "load coupon", msgIDTaken)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": coupon})
}

func (h *Handler) VoucherHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.VoucherHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "load coupon history", msgIDTaken)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": entries})
}

func (h *Handler) RedeemVoucher(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	result, err := h.service.RedeemVoucher(r.Context(), chi.URLParam(r, "id"), services.RedeemRequest{
		UsedValue: req.UsedValue,
		Tip:       req.Tip,
		Employee:  req.Employee,
		Location:  locationOrSession(r, req.Location),
		NewID:     req.NewID,
	})
	if err != nil {
		respondServiceError(w, err, "redeem coupon", msgNewIDTaken)
		return
	}
	event := "redeemed"
	if result.Renumbered {
		event = "renumbered"
	}
	middleware.VoucherEvents.WithLabelValues(event).Inc()
	respondSuccess(w, http.StatusOK, map[string]string{
		"couponId":  result.CouponID,
		"historyId": result.HistoryID,
	})
}

// locationOrSession falls back to the location the till logged in at.
func locationOrSession(r *http.Request, location string) string {
	if strings.TrimSpace(location) != "" {
		return location
	}
	session, _ := middleware.LocationFromContext(r.Context())
	return session
}
