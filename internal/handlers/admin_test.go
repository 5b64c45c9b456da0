package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gutschein/internal/auth"
	"gutschein/internal/models"
	"gutschein/internal/store"

	"github.com/jmoiron/sqlx"
)

func TestListLocations(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubService{}, stubLocationStore{
		listFn: func(context.Context) ([]models.Location, error) {
			return []models.Location{{Name: "Braugasse", PasswordHash: "secret-hash"}}, nil
		},
	})
	rr := serve(t, handler, http.MethodGet, "/locations", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "secret-hash") {
		t.Fatal("password hashes must not leak")
	}
}

func TestSetLocationPasswordFromOffice(t *testing.T) {
	var storedName, storedHash string
	handler := newTestHandler(fakeTxRunner{}, stubService{}, stubLocationStore{
		setPasswordFn: func(_ context.Context, _ store.Execer, name, hash string) error {
			storedName, storedHash = name, hash
			return nil
		},
	})
	rr := serve(t, handler, http.MethodPut, "/locations/pit%20stop/password", `{"password":"Boxenstopp"}`, "Büro")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if storedName != "Pit Stop" {
		t.Fatalf("expected canonical location, got %q", storedName)
	}
	if !auth.CheckPassword(storedHash, "boxenstopp") {
		t.Fatal("stored hash does not match password")
	}
}

func TestSetLocationPasswordForbiddenOutsideOffice(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubService{}, stubLocationStore{
		setPasswordFn: func(context.Context, store.Execer, string, string) error {
			t.Fatalf("store should not be called")
			return nil
		},
	})
	rr := serve(t, handler, http.MethodPut, "/locations/Transit/password", `{"password":"gleis9"}`, "Transit")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestSetLocationPasswordRejectsShortPassword(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubService{}, stubLocationStore{})
	rr := serve(t, handler, http.MethodPut, "/locations/Transit/password", `{"password":"ab"}`, "Büro")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSetLocationPasswordTxFailure(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{
		withTxFn: func(context.Context, func(*sqlx.Tx) error) error {
			return errors.New("serialization failure")
		},
	}, stubService{}, stubLocationStore{})
	rr := serve(t, handler, http.MethodPut, "/locations/Transit/password", `{"password":"gleis9"}`, "Büro")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestWSCouponsMissingToken(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubService{}, stubLocationStore{})
	req := httptest.NewRequest(http.MethodGet, "/ws/coupons", nil)
	rr := httptest.NewRecorder()
	handler.WSCoupons(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestWSCouponsInvalidToken(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubService{}, stubLocationStore{})
	req := httptest.NewRequest(http.MethodGet, "/ws/coupons?token=garbage", nil)
	rr := httptest.NewRecorder()
	handler.WSCoupons(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubService{}, stubLocationStore{})
	rr := serve(t, handler, http.MethodGet, "/health", "", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"clients":{}`) {
		t.Fatalf("unexpected /health response: %d %s", rr.Code, rr.Body.String())
	}
	if rr := serve(t, handler, http.MethodGet, "/metrics", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rr.Code)
	}
}
