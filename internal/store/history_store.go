package store

import (
	"context"

	"gutschein/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// HistoryStore is the append-only audit log of voucher snapshots.
type HistoryStore struct {
	db DB
}

const historyColumns = `id, coupon_id, coupon_type, first_value, used_value, rest_value, used, employee, location,
	old_system, extra_payment, tip, old_id, description, created_at`

func NewHistoryStore(db DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Append stores a snapshot of v and returns the new entry id.
func (s *HistoryStore) Append(ctx context.Context, tx Execer, v models.Voucher) (string, error) {
	id := uuid.NewString()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO coupon_history (id, coupon_id, coupon_type, first_value, used_value, rest_value, used, employee,
		                            location, old_system, extra_payment, tip, old_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
	`, id, v.ID, v.CouponType, v.FirstValue, v.UsedValue, v.RestValue, v.Used, v.Employee,
		v.Location, v.OldSystem, v.ExtraPayment, v.Tip, v.OldID, v.Description)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListByCoupon returns entries recorded under any of ids, newest first.
func (s *HistoryStore) ListByCoupon(ctx context.Context, ids []string) ([]models.CouponHistory, error) {
	rows := []models.CouponHistory{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+historyColumns+`
		FROM coupon_history
		WHERE coupon_id = ANY($1)
		ORDER BY created_at DESC, id
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return rows, nil
}
