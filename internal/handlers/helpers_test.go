package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gutschein/internal/auth"
	"gutschein/internal/config"
	"gutschein/internal/db"
	"gutschein/internal/models"
	"gutschein/internal/services"
	"gutschein/internal/store"
	"gutschein/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubService struct {
	createFn  func(ctx context.Context, req services.CreateVoucherRequest) (models.Voucher, error)
	batchFn   func(ctx context.Context, req services.CreateBatchRequest) ([]models.Voucher, error)
	legacyFn  func(ctx context.Context, req services.LegacyVoucherRequest) (services.LegacyVoucherResult, error)
	redeemFn  func(ctx context.Context, id string, req services.RedeemRequest) (services.RedeemResult, error)
	checkIDFn func(ctx context.Context, id string) (bool, error)
	listFn    func(ctx context.Context, filter services.ListFilter) ([]models.Voucher, error)
	getFn     func(ctx context.Context, id string) (models.Voucher, error)
	historyFn func(ctx context.Context, id string) ([]models.CouponHistory, error)
}

func (s stubService) CreateVoucher(ctx context.Context, req services.CreateVoucherRequest) (models.Voucher, error) {
	if s.createFn == nil {
		return models.Voucher{}, nil
	}
	return s.createFn(ctx, req)
}

func (s stubService) CreateVoucherBatch(ctx context.Context, req services.CreateBatchRequest) ([]models.Voucher, error) {
	if s.batchFn == nil {
		return nil, nil
	}
	return s.batchFn(ctx, req)
}

func (s stubService) CreateLegacyVoucher(ctx context.Context, req services.LegacyVoucherRequest) (services.LegacyVoucherResult, error) {
	if s.legacyFn == nil {
		return services.LegacyVoucherResult{}, nil
	}
	return s.legacyFn(ctx, req)
}

func (s stubService) RedeemVoucher(ctx context.Context, id string, req services.RedeemRequest) (services.RedeemResult, error) {
	if s.redeemFn == nil {
		return services.RedeemResult{}, nil
	}
	return s.redeemFn(ctx, id, req)
}

func (s stubService) CheckIDExists(ctx context.Context, id string) (bool, error) {
	if s.checkIDFn == nil {
		return false, nil
	}
	return s.checkIDFn(ctx, id)
}

func (s stubService) ListVouchers(ctx context.Context, filter services.ListFilter) ([]models.Voucher, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter)
}

func (s stubService) GetVoucher(ctx context.Context, id string) (models.Voucher, error) {
	if s.getFn == nil {
		return models.Voucher{}, nil
	}
	return s.getFn(ctx, id)
}

func (s stubService) VoucherHistory(ctx context.Context, id string) ([]models.CouponHistory, error) {
	if s.historyFn == nil {
		return nil, nil
	}
	return s.historyFn(ctx, id)
}

type stubLocationStore struct {
	getFn         func(ctx context.Context, name string) (models.Location, error)
	listFn        func(ctx context.Context) ([]models.Location, error)
	setPasswordFn func(ctx context.Context, tx store.Execer, name, hash string) error
}

func (s stubLocationStore) GetByName(ctx context.Context, name string) (models.Location, error) {
	if s.getFn == nil {
		return models.Location{Name: name}, nil
	}
	return s.getFn(ctx, name)
}

func (s stubLocationStore) List(ctx context.Context) ([]models.Location, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s stubLocationStore) SetPassword(ctx context.Context, tx store.Execer, name, hash string) error {
	if s.setPasswordFn == nil {
		return nil
	}
	return s.setPasswordFn(ctx, tx, name, hash)
}

func newTestHandler(txRunner db.TxRunner, service VoucherService, locations LocationStore) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		DatabaseURL:    "",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	return New(txRunner, cfg, service, locations, websocket.NewHub())
}

// serve sends a request through the full router with a session for location.
// An empty location sends no token.
func serve(t *testing.T, handler *Handler, method, path, body, location string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if location != "" {
		token, err := auth.GenerateToken("secret", location, time.Minute)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	return rr
}
