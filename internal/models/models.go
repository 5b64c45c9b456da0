package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Voucher struct {
	ID           string              `db:"id" json:"id"`
	CouponType   string              `db:"coupon_type" json:"couponType"`
	FirstValue   decimal.NullDecimal `db:"first_value" json:"firstValue"`
	UsedValue    decimal.NullDecimal `db:"used_value" json:"usedValue"`
	RestValue    decimal.NullDecimal `db:"rest_value" json:"restValue"`
	Used         bool                `db:"used" json:"used"`
	Employee     string              `db:"employee" json:"employee"`
	Location     string              `db:"location" json:"location"`
	OldSystem    bool                `db:"old_system" json:"oldSystem"`
	ExtraPayment decimal.NullDecimal `db:"extra_payment" json:"extraPayment"`
	Tip          decimal.NullDecimal `db:"tip" json:"tip"`
	OldID        *string             `db:"old_id" json:"oldId"`
	Description  string              `db:"description" json:"description"`
	CreatedAt    time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updatedAt"`
}

type CouponHistory struct {
	ID           string              `db:"id" json:"id"`
	CouponID     string              `db:"coupon_id" json:"couponId"`
	CouponType   string              `db:"coupon_type" json:"couponType"`
	FirstValue   decimal.NullDecimal `db:"first_value" json:"firstValue"`
	UsedValue    decimal.NullDecimal `db:"used_value" json:"usedValue"`
	RestValue    decimal.NullDecimal `db:"rest_value" json:"restValue"`
	Used         bool                `db:"used" json:"used"`
	Employee     string              `db:"employee" json:"employee"`
	Location     string              `db:"location" json:"location"`
	OldSystem    bool                `db:"old_system" json:"oldSystem"`
	ExtraPayment decimal.NullDecimal `db:"extra_payment" json:"extraPayment"`
	Tip          decimal.NullDecimal `db:"tip" json:"tip"`
	OldID        *string             `db:"old_id" json:"oldId"`
	Description  string              `db:"description" json:"description"`
	CreatedAt    time.Time           `db:"created_at" json:"createdAt"`
}

type Location struct {
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
