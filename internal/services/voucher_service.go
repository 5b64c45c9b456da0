package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gutschein/internal/db"
	"gutschein/internal/models"
	"gutschein/internal/money"
	"gutschein/internal/store"
	"gutschein/internal/validator"
	"gutschein/internal/voucher"
	"gutschein/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingFields     = errors.New("missing required fields")
	ErrInvalidID         = errors.New("invalid coupon id")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidLocation   = errors.New("invalid location")
	ErrInvalidEmployee   = errors.New("invalid employee")
	ErrInvalidCouponType = errors.New("invalid coupon type")
	ErrInvalidBatch      = errors.New("invalid batch")
	ErrVoucherNotFound   = errors.New("coupon not found")
	ErrVoucherIDTaken    = errors.New("coupon id already exists")
)

// legacyEmployee is recorded when a legacy voucher is taken over without a name.
const legacyEmployee = " "

type VoucherService struct {
	txRunner     db.TxRunner
	voucherStore VoucherStore
	historyStore HistoryStore
	hub          VoucherHub
}

type VoucherStore interface {
	Create(ctx context.Context, tx store.Execer, v models.Voucher) error
	GetByID(ctx context.Context, id string) (models.Voucher, error)
	GetForUpdate(ctx context.Context, tx store.Getter, id string) (models.Voucher, error)
	IDTaken(ctx context.Context, tx store.Getter, id string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, tx store.Execer, currentID string, v models.Voucher) (int64, error)
	List(ctx context.Context, filter store.VoucherFilter) ([]models.Voucher, error)
}

type HistoryStore interface {
	Append(ctx context.Context, tx store.Execer, v models.Voucher) (string, error)
	ListByCoupon(ctx context.Context, ids []string) ([]models.CouponHistory, error)
}

type VoucherHub interface {
	BroadcastVoucher(update websocket.VoucherUpdate)
}

func NewVoucherService(txRunner db.TxRunner, voucherStore VoucherStore, historyStore HistoryStore, hub VoucherHub) *VoucherService {
	return &VoucherService{
		txRunner:     txRunner,
		voucherStore: voucherStore,
		historyStore: historyStore,
		hub:          hub,
	}
}

type CreateVoucherRequest struct {
	ID         string
	CouponType string
	FirstValue decimal.NullDecimal
	Employee   string
	Location   string
}

type CreateBatchRequest struct {
	StartID    string
	Count      int
	CouponType string
	FirstValue decimal.NullDecimal
	Employee   string
	Location   string
}

type LegacyVoucherRequest struct {
	ID         string
	CouponType string
	RestValue  decimal.NullDecimal
	CreatedAt  *time.Time
	Employee   string
	Location   string
}

type LegacyVoucherResult struct {
	Voucher models.Voucher
	History models.CouponHistory
}

type RedeemRequest struct {
	UsedValue decimal.NullDecimal
	Tip       decimal.NullDecimal
	Employee  string
	Location  string
	NewID     string
}

type RedeemResult struct {
	CouponID   string
	HistoryID  string
	Renumbered bool
}

type ListFilter struct {
	Search   string
	Active   bool
	Type     string
	Location string
	Limit    int
}

// MaxListLimit caps a single listing page.
const MaxListLimit = 500

func (s *VoucherService) CreateVoucher(ctx context.Context, req CreateVoucherRequest) (models.Voucher, error) {
	id, err := validID(req.ID)
	if err != nil {
		return models.Voucher{}, err
	}
	issue, location, err := newIssue(req.CouponType, req.FirstValue, req.Employee, req.Location)
	if err != nil {
		return models.Voucher{}, err
	}
	created := stamp(toModel(voucher.NewVoucher(id, issue, strings.TrimSpace(req.Employee), string(location))), time.Now().UTC())
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := s.insert(ctx, tx, created)
		return err
	})
	if err != nil {
		return models.Voucher{}, mapWriteError(err)
	}
	s.broadcast("created", created)
	return created, nil
}

// CreateVoucherBatch issues Count vouchers numbered upwards from StartID. A
// single taken id aborts the whole batch.
func (s *VoucherService) CreateVoucherBatch(ctx context.Context, req CreateBatchRequest) ([]models.Voucher, error) {
	if strings.TrimSpace(req.StartID) == "" {
		return nil, ErrMissingFields
	}
	ids, err := voucher.SequentialIDs(req.StartID, req.Count)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
	}
	for _, id := range ids {
		if err := validator.ValidateVoucherID(id); err != nil {
			return nil, ErrInvalidID
		}
	}
	issue, location, err := newIssue(req.CouponType, req.FirstValue, req.Employee, req.Location)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	created := make([]models.Voucher, 0, len(ids))
	for _, id := range ids {
		created = append(created, stamp(toModel(voucher.NewVoucher(id, issue, strings.TrimSpace(req.Employee), string(location))), now))
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, v := range created {
			if _, err := s.insert(ctx, tx, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapWriteError(err)
	}
	for _, v := range created {
		s.broadcast("created", v)
	}
	return created, nil
}

func (s *VoucherService) CreateLegacyVoucher(ctx context.Context, req LegacyVoucherRequest) (LegacyVoucherResult, error) {
	id, err := validID(req.ID)
	if err != nil {
		return LegacyVoucherResult{}, err
	}
	couponType, ok := voucher.ParseType(req.CouponType)
	if !ok {
		return LegacyVoucherResult{}, ErrInvalidCouponType
	}
	var issue voucher.Issue
	switch couponType {
	case voucher.TypeValue:
		if !req.RestValue.Valid {
			return LegacyVoucherResult{}, ErrMissingFields
		}
		if err := money.ValidatePositive(req.RestValue.Decimal); err != nil {
			return LegacyVoucherResult{}, ErrInvalidAmount
		}
		issue = voucher.LegacyValueIssue{RestValue: req.RestValue.Decimal}
	case voucher.TypeKlein:
		if req.CreatedAt == nil || req.CreatedAt.IsZero() {
			return LegacyVoucherResult{}, ErrMissingFields
		}
		issue = voucher.LegacyKleinIssue{Season: *req.CreatedAt}
	}
	employee := strings.TrimSpace(req.Employee)
	if employee == "" {
		employee = legacyEmployee
	} else if err := validator.ValidateEmployee(employee); err != nil {
		return LegacyVoucherResult{}, ErrInvalidEmployee
	}
	var location voucher.Location
	if strings.TrimSpace(req.Location) != "" {
		if location, err = validator.ValidateLocation(req.Location); err != nil {
			return LegacyVoucherResult{}, ErrInvalidLocation
		}
	}

	now := time.Now().UTC()
	created := stamp(toModel(voucher.NewVoucher(id, issue, employee, string(location))), now)
	var historyID string
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		historyID, err = s.insert(ctx, tx, created)
		return err
	})
	if err != nil {
		return LegacyVoucherResult{}, mapWriteError(err)
	}
	s.broadcast("created", created)
	return LegacyVoucherResult{Voucher: created, History: snapshot(historyID, created, now)}, nil
}

// RedeemVoucher books a redemption against the voucher stored under id,
// optionally moving it to a new number in the same transaction.
func (s *VoucherService) RedeemVoucher(ctx context.Context, id string, req RedeemRequest) (RedeemResult, error) {
	currentID := voucher.NormalizeID(id)
	if currentID == "" || strings.TrimSpace(req.Employee) == "" || strings.TrimSpace(req.Location) == "" {
		return RedeemResult{}, ErrMissingFields
	}
	if err := validator.ValidateEmployee(req.Employee); err != nil {
		return RedeemResult{}, ErrInvalidEmployee
	}
	location, err := validator.ValidateLocation(req.Location)
	if err != nil {
		return RedeemResult{}, ErrInvalidLocation
	}
	if req.UsedValue.Valid {
		if err := money.Validate(req.UsedValue.Decimal); err != nil {
			return RedeemResult{}, ErrInvalidAmount
		}
	}
	if req.Tip.Valid {
		if err := money.Validate(req.Tip.Decimal); err != nil {
			return RedeemResult{}, ErrInvalidAmount
		}
	}
	newID := voucher.NormalizeID(req.NewID)
	if newID != "" {
		if err := validator.ValidateVoucherID(newID); err != nil {
			return RedeemResult{}, ErrInvalidID
		}
	}

	var result RedeemResult
	var next models.Voucher
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := s.voucherStore.GetForUpdate(ctx, tx, currentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrVoucherNotFound
			}
			return err
		}
		state := toState(current)
		if state.Type == voucher.TypeValue && !req.UsedValue.Valid {
			return ErrMissingFields
		}
		if state.Type == voucher.TypeValue && newID != "" && newID != current.ID {
			taken, err := s.voucherStore.IDTaken(ctx, tx, newID)
			if err != nil {
				return err
			}
			if taken {
				return ErrVoucherIDTaken
			}
		}
		fields := voucher.ApplyRedemption(state, voucher.Redemption{
			UsedValue: money.OrZero(req.UsedValue),
			Tip:       req.Tip,
			Employee:  strings.TrimSpace(req.Employee),
			Location:  location,
			NewID:     newID,
		})
		next = toModel(fields)
		next.CreatedAt = current.CreatedAt
		next.UpdatedAt = time.Now().UTC()
		rows, err := s.voucherStore.Update(ctx, tx, current.ID, next)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrVoucherNotFound
		}
		historyID, err := s.historyStore.Append(ctx, tx, next)
		if err != nil {
			return err
		}
		result = RedeemResult{CouponID: next.ID, HistoryID: historyID, Renumbered: fields.Renumbered(current.ID)}
		return nil
	})
	if err != nil {
		return RedeemResult{}, mapWriteError(err)
	}
	s.broadcast("redeemed", next)
	return result, nil
}

// CheckIDExists is advisory; creation repeats the check inside its transaction.
func (s *VoucherService) CheckIDExists(ctx context.Context, id string) (bool, error) {
	normalized := voucher.NormalizeID(id)
	if normalized == "" {
		return false, nil
	}
	return s.voucherStore.Exists(ctx, normalized)
}

func (s *VoucherService) ListVouchers(ctx context.Context, filter ListFilter) ([]models.Voucher, error) {
	storeFilter := store.VoucherFilter{
		Search: strings.TrimSpace(filter.Search),
		Active: filter.Active,
		Limit:  min(max(filter.Limit, 0), MaxListLimit),
	}
	if filter.Type != "" {
		couponType, ok := voucher.ParseType(filter.Type)
		if !ok {
			return nil, ErrInvalidCouponType
		}
		storeFilter.Type = string(couponType)
	}
	if filter.Location != "" {
		location, err := validator.ValidateLocation(filter.Location)
		if err != nil {
			return nil, ErrInvalidLocation
		}
		storeFilter.Location = string(location)
	}
	return s.voucherStore.List(ctx, storeFilter)
}

func (s *VoucherService) GetVoucher(ctx context.Context, id string) (models.Voucher, error) {
	row, err := s.voucherStore.GetByID(ctx, voucher.NormalizeID(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Voucher{}, ErrVoucherNotFound
		}
		return models.Voucher{}, err
	}
	return row, nil
}

// VoucherHistory lists the entries of a voucher across all its numbers,
// newest first. Each renumbering hop is followed through the oldId of the
// entries filed under the later number. Entries under an earlier number
// only count up to the first entry of the later one, since a freed number
// may have been issued again.
func (s *VoucherService) VoucherHistory(ctx context.Context, id string) ([]models.CouponHistory, error) {
	row, err := s.GetVoucher(ctx, id)
	if err != nil {
		return nil, err
	}
	entries := []models.CouponHistory{}
	seen := make(map[string]bool)
	couponID := row.ID
	var cutoff *time.Time
	for couponID != "" && !seen[couponID] {
		seen[couponID] = true
		rows, err := s.historyStore.ListByCoupon(ctx, []string{couponID})
		if err != nil {
			return nil, err
		}
		previous := ""
		var earliest *time.Time
		for i := range rows {
			entry := rows[i]
			if cutoff != nil && entry.CreatedAt.After(*cutoff) {
				continue
			}
			entries = append(entries, entry)
			if entry.OldID != nil && *entry.OldID != entry.CouponID {
				previous = *entry.OldID
			}
			earliest = &rows[i].CreatedAt
		}
		couponID, cutoff = previous, earliest
	}
	return entries, nil
}

// insert writes the voucher and its creation entry. The existence check runs
// inside the transaction; the unique index still has the final word.
func (s *VoucherService) insert(ctx context.Context, tx *sqlx.Tx, v models.Voucher) (string, error) {
	taken, err := s.voucherStore.IDTaken(ctx, tx, v.ID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrVoucherIDTaken
	}
	if err := s.voucherStore.Create(ctx, tx, v); err != nil {
		return "", err
	}
	return s.historyStore.Append(ctx, tx, v)
}

func (s *VoucherService) broadcast(action string, v models.Voucher) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastVoucher(websocket.VoucherUpdate{
		Action:    action,
		CouponID:  v.ID,
		RestValue: v.RestValue,
		Used:      v.Used,
		Location:  v.Location,
	})
}

func validID(raw string) (string, error) {
	id := voucher.NormalizeID(raw)
	if id == "" {
		return "", ErrMissingFields
	}
	if err := validator.ValidateVoucherID(id); err != nil {
		return "", ErrInvalidID
	}
	return id, nil
}

func newIssue(rawType string, firstValue decimal.NullDecimal, employee, rawLocation string) (voucher.Issue, voucher.Location, error) {
	if strings.TrimSpace(employee) == "" || strings.TrimSpace(rawLocation) == "" {
		return nil, "", ErrMissingFields
	}
	if err := validator.ValidateEmployee(employee); err != nil {
		return nil, "", ErrInvalidEmployee
	}
	location, err := validator.ValidateLocation(rawLocation)
	if err != nil {
		return nil, "", ErrInvalidLocation
	}
	couponType, ok := voucher.ParseType(rawType)
	if !ok {
		return nil, "", ErrInvalidCouponType
	}
	if couponType == voucher.TypeKlein {
		return voucher.KleinIssue{}, location, nil
	}
	if !firstValue.Valid {
		return nil, "", ErrMissingFields
	}
	if err := money.ValidatePositive(firstValue.Decimal); err != nil {
		return nil, "", ErrInvalidAmount
	}
	return voucher.ValueIssue{FirstValue: firstValue.Decimal}, location, nil
}

func mapWriteError(err error) error {
	if db.IsUniqueViolation(err) {
		return ErrVoucherIDTaken
	}
	return err
}

func toState(v models.Voucher) voucher.State {
	return voucher.State{
		ID:         v.ID,
		OldID:      v.OldID,
		Type:       voucher.Type(v.CouponType),
		FirstValue: v.FirstValue,
		UsedValue:  v.UsedValue,
		RestValue:  v.RestValue,
		OldSystem:  v.OldSystem,
		CreatedAt:  v.CreatedAt,
	}
}

func toModel(f voucher.Fields) models.Voucher {
	return models.Voucher{
		ID:           f.ID,
		CouponType:   string(f.Type),
		FirstValue:   f.FirstValue,
		UsedValue:    f.UsedValue,
		RestValue:    f.RestValue,
		Used:         f.Used,
		Employee:     f.Employee,
		Location:     f.Location,
		OldSystem:    f.OldSystem,
		ExtraPayment: f.ExtraPayment,
		Tip:          f.Tip,
		OldID:        f.OldID,
		Description:  f.Description,
		CreatedAt:    f.CreatedAt,
	}
}

// stamp fills in the timestamps the database would assign. A preset
// CreatedAt (legacy small cups) is kept.
func stamp(v models.Voucher, now time.Time) models.Voucher {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now
	return v
}

func snapshot(historyID string, v models.Voucher, at time.Time) models.CouponHistory {
	return models.CouponHistory{
		ID:           historyID,
		CouponID:     v.ID,
		CouponType:   v.CouponType,
		FirstValue:   v.FirstValue,
		UsedValue:    v.UsedValue,
		RestValue:    v.RestValue,
		Used:         v.Used,
		Employee:     v.Employee,
		Location:     v.Location,
		OldSystem:    v.OldSystem,
		ExtraPayment: v.ExtraPayment,
		Tip:          v.Tip,
		OldID:        v.OldID,
		Description:  v.Description,
		CreatedAt:    at,
	}
}
