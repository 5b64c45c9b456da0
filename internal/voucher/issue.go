package voucher

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gutschein/internal/money"

	"github.com/shopspring/decimal"
)

const createdDescription = "NEU GUTSCHEIN !"

// Issue is one of ValueIssue, KleinIssue, LegacyValueIssue or LegacyKleinIssue.
type Issue interface {
	Type() Type
	fields() Fields
}

// ValueIssue sells a new voucher over FirstValue.
type ValueIssue struct {
	FirstValue decimal.Decimal
}

func (ValueIssue) Type() Type { return TypeValue }

func (i ValueIssue) fields() Fields {
	return Fields{
		FirstValue:  money.Null(i.FirstValue),
		UsedValue:   money.Null(decimal.Zero),
		RestValue:   money.Null(i.FirstValue),
		Description: createdDescription,
	}
}

type KleinIssue struct{}

func (KleinIssue) Type() Type { return TypeKlein }

func (KleinIssue) fields() Fields {
	return Fields{Description: createdDescription}
}

// LegacyValueIssue takes over a paper voucher with whatever balance is left
// on it. The remaining balance becomes the voucher's face value.
type LegacyValueIssue struct {
	RestValue decimal.Decimal
}

func (LegacyValueIssue) Type() Type { return TypeValue }

func (i LegacyValueIssue) fields() Fields {
	return Fields{
		FirstValue:  money.Null(i.RestValue),
		UsedValue:   money.Null(decimal.Zero),
		RestValue:   money.Null(i.RestValue),
		OldSystem:   true,
		Description: fmt.Sprintf("ALTER G. mit %s € gespeichert", money.Format(i.RestValue)),
	}
}

// LegacyKleinIssue takes over a small-cup voucher sold in Season.
type LegacyKleinIssue struct {
	Season time.Time
}

func (LegacyKleinIssue) Type() Type { return TypeKlein }

func (i LegacyKleinIssue) fields() Fields {
	return Fields{
		OldSystem:   true,
		CreatedAt:   i.Season,
		Description: fmt.Sprintf("kl.Becher von %d gespeichert", i.Season.Year()),
	}
}

// NewVoucher builds the initial state of a voucher.
func NewVoucher(id string, issue Issue, employee, location string) Fields {
	f := issue.fields()
	f.ID = NormalizeID(id)
	f.Type = issue.Type()
	f.Employee = employee
	f.Location = location
	return f
}

const MaxBatch = 100

var (
	ErrNoSequence = errors.New("voucher id has no numeric suffix")
	ErrBatchSize  = errors.New("batch size out of range")
)

// SequentialIDs numbers count vouchers upwards from start, keeping the zero
// padding of its numeric suffix: EF098 x3 gives EF098, EF099, EF100.
func SequentialIDs(start string, count int) ([]string, error) {
	if count < 1 || count > MaxBatch {
		return nil, ErrBatchSize
	}
	start = NormalizeID(start)
	i := len(start)
	for i > 0 && start[i-1] >= '0' && start[i-1] <= '9' {
		i--
	}
	if i == len(start) {
		return nil, ErrNoSequence
	}
	prefix, digits := start[:i], start[i:]
	first, err := strconv.Atoi(digits)
	if err != nil {
		return nil, ErrNoSequence
	}
	ids := make([]string, 0, count)
	for k := 0; k < count; k++ {
		ids = append(ids, fmt.Sprintf("%s%0*d", prefix, len(digits), first+k))
	}
	return ids, nil
}
