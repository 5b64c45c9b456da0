package voucher

import (
	"fmt"

	"gutschein/internal/money"

	"github.com/shopspring/decimal"
)

type Redemption struct {
	UsedValue decimal.Decimal
	Tip       decimal.NullDecimal
	Employee  string
	Location  Location
	// NewID is set when the physical voucher is swapped for a new number.
	NewID string
}

// ApplyRedemption computes the voucher after a redemption. Checking that
// NewID is free is the caller's job.
func ApplyRedemption(current State, req Redemption) Fields {
	if current.Type == TypeKlein {
		return redeemKlein(current, req)
	}
	return redeemValue(current, req)
}

func redeemValue(current State, req Redemption) Fields {
	tip := money.OrZero(req.Tip)
	raw := money.OrZero(current.RestValue).Sub(req.UsedValue).Sub(tip)

	// The row carries the tip of this redemption only, as its history entry does.
	next := Fields{
		ID:         current.ID,
		OldID:      current.OldID,
		Type:       current.Type,
		FirstValue: current.FirstValue,
		UsedValue:  money.Null(money.OrZero(current.UsedValue).Add(req.UsedValue)),
		RestValue:  money.Null(decimal.Max(decimal.Zero, raw)),
		Used:       money.Settled(raw),
		Tip:        req.Tip,
		Employee:   req.Employee,
		Location:   string(req.Location),
		OldSystem:  current.OldSystem,
	}
	if raw.IsNegative() {
		next.ExtraPayment = money.Null(raw.Abs())
	}

	newID := NormalizeID(req.NewID)
	if newID != "" && newID != current.ID {
		previous := current.ID
		next.ID = newID
		next.OldID = &previous
		next.Description = fmt.Sprintf("WECHSEL! %s -> %s und %s € eingelöst", previous, newID, money.Format(req.UsedValue))
		return next
	}
	next.Description = fmt.Sprintf("%s € eingelöst", money.Format(req.UsedValue))
	return next
}

// redeemKlein ignores the amounts in the request; a small cup is all or nothing.
func redeemKlein(current State, req Redemption) Fields {
	return Fields{
		ID:          current.ID,
		OldID:       current.OldID,
		Type:        TypeKlein,
		FirstValue:  current.FirstValue,
		UsedValue:   money.Null(decimal.Zero),
		RestValue:   money.Null(decimal.Zero),
		Used:        true,
		Employee:    req.Employee,
		Location:    string(req.Location),
		OldSystem:   current.OldSystem,
		Description: fmt.Sprintf("kl.Becher(%d) eingelöst", current.CreatedAt.Year()),
	}
}
