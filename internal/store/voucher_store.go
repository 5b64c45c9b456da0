package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gutschein/internal/models"
)

type VoucherStore struct {
	db DB
}

// VoucherFilter narrows the listing. Zero values mean "no filter".
type VoucherFilter struct {
	Search   string
	Active   bool
	Type     string
	Location string
	Limit    int
}

const voucherColumns = `id, coupon_type, first_value, used_value, rest_value, used, employee, location,
	old_system, extra_payment, tip, old_id, description, created_at, updated_at`

// likeEscaper makes the search term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func NewVoucherStore(db DB) *VoucherStore {
	return &VoucherStore{db: db}
}

func (s *VoucherStore) Create(ctx context.Context, tx Execer, v models.Voucher) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO coupons (id, coupon_type, first_value, used_value, rest_value, used, employee, location,
		                     old_system, extra_payment, tip, old_id, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, COALESCE($14, NOW()), NOW())
	`, v.ID, v.CouponType, v.FirstValue, v.UsedValue, v.RestValue, v.Used, v.Employee, v.Location,
		v.OldSystem, v.ExtraPayment, v.Tip, v.OldID, v.Description, nullTime(v.CreatedAt))
	return err
}

func (s *VoucherStore) GetByID(ctx context.Context, id string) (models.Voucher, error) {
	var row models.Voucher
	err := s.db.GetContext(ctx, &row, `SELECT `+voucherColumns+` FROM coupons WHERE id = $1`, id)
	if err != nil {
		return models.Voucher{}, err
	}
	return row, nil
}

// GetForUpdate locks the voucher row until the surrounding transaction ends.
func (s *VoucherStore) GetForUpdate(ctx context.Context, tx Getter, id string) (models.Voucher, error) {
	var row models.Voucher
	err := tx.GetContext(ctx, &row, `SELECT `+voucherColumns+` FROM coupons WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return models.Voucher{}, err
	}
	return row, nil
}

// IDTaken checks case-insensitively whether any voucher uses id.
func (s *VoucherStore) IDTaken(ctx context.Context, tx Getter, id string) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM coupons WHERE UPPER(id) = UPPER($1))`, id)
	return exists, err
}

func (s *VoucherStore) Exists(ctx context.Context, id string) (bool, error) {
	return s.IDTaken(ctx, s.db, id)
}

// Update writes v over the row currently stored under currentID. v.ID may
// differ from currentID, which renames the voucher.
func (s *VoucherStore) Update(ctx context.Context, tx Execer, currentID string, v models.Voucher) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE coupons
		SET id = $1, first_value = $2, used_value = $3, rest_value = $4, used = $5, employee = $6,
		    location = $7, extra_payment = $8, tip = $9, old_id = $10, description = $11, updated_at = NOW()
		WHERE id = $12
	`, v.ID, v.FirstValue, v.UsedValue, v.RestValue, v.Used, v.Employee,
		v.Location, v.ExtraPayment, v.Tip, v.OldID, v.Description, currentID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *VoucherStore) List(ctx context.Context, filter VoucherFilter) ([]models.Voucher, error) {
	var conditions []string
	var args []any
	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(strings.ToUpper(filter.Search))+"%")
		conditions = append(conditions, "UPPER(id) LIKE $"+itoa(len(args))+` ESCAPE '\'`)
	}
	if filter.Active {
		conditions = append(conditions, "used = FALSE")
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, "coupon_type = $"+itoa(len(args)))
	}
	if filter.Location != "" {
		args = append(args, filter.Location)
		conditions = append(conditions, "location = $"+itoa(len(args)))
	}
	query := `SELECT ` + voucherColumns + ` FROM coupons`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY updated_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + itoa(len(args))
	}
	rows := []models.Voucher{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func itoa(value int) string {
	return fmt.Sprintf("%d", value)
}

func nullTime(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}
	return &value
}
