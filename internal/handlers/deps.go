package handlers

import (
	"context"

	"gutschein/internal/models"
	"gutschein/internal/services"
	"gutschein/internal/store"
)

type VoucherService interface {
	CreateVoucher(ctx context.Context, req services.CreateVoucherRequest) (models.Voucher, error)
	CreateVoucherBatch(ctx context.Context, req services.CreateBatchRequest) ([]models.Voucher, error)
	CreateLegacyVoucher(ctx context.Context, req services.LegacyVoucherRequest) (services.LegacyVoucherResult, error)
	RedeemVoucher(ctx context.Context, id string, req services.RedeemRequest) (services.RedeemResult, error)
	CheckIDExists(ctx context.Context, id string) (bool, error)
	ListVouchers(ctx context.Context, filter services.ListFilter) ([]models.Voucher, error)
	GetVoucher(ctx context.Context, id string) (models.Voucher, error)
	VoucherHistory(ctx context.Context, id string) ([]models.CouponHistory, error)
}

type LocationStore interface {
	GetByName(ctx context.Context, name string) (models.Location, error)
	List(ctx context.Context) ([]models.Location, error)
	SetPassword(ctx context.Context, tx store.Execer, name, hash string) error
}
