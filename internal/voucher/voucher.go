// Package voucher holds the balance rules for gift vouchers. Nothing in here
// touches the database; callers persist the returned Fields.
package voucher

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeValue Type = "value"
	TypeKlein Type = "klein"
)

func ParseType(raw string) (Type, bool) {
	switch Type(raw) {
	case TypeValue:
		return TypeValue, true
	case TypeKlein:
		return TypeKlein, true
	default:
		return "", false
	}
}

type Location string

const (
	Braugasse Location = "Braugasse"
	Transit   Location = "Transit"
	PitStop   Location = "Pit Stop"
	Wirges    Location = "Wirges"
	Buero     Location = "Büro"
	Eiswagen  Location = "Eiswagen"
)

var Locations = []Location{Braugasse, Transit, PitStop, Wirges, Buero, Eiswagen}

// ParseLocation matches case-insensitively and returns the canonical spelling.
func ParseLocation(raw string) (Location, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, location := range Locations {
		if strings.EqualFold(string(location), trimmed) {
			return location, true
		}
	}
	return "", false
}

// NormalizeID canonicalizes a voucher number. Ids are stored uppercase.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// State is what a redemption needs to know about the stored voucher.
type State struct {
	ID         string
	OldID      *string
	Type       Type
	FirstValue decimal.NullDecimal
	UsedValue  decimal.NullDecimal
	RestValue  decimal.NullDecimal
	OldSystem  bool
	CreatedAt  time.Time
}

// Fields is a voucher as it stands right after an event. The same values are
// written to the voucher row and snapshotted into its history entry.
type Fields struct {
	ID           string
	OldID        *string
	Type         Type
	FirstValue   decimal.NullDecimal
	UsedValue    decimal.NullDecimal
	RestValue    decimal.NullDecimal
	Used         bool
	Tip          decimal.NullDecimal
	ExtraPayment decimal.NullDecimal
	Employee     string
	Location     string
	OldSystem    bool
	Description  string
	// CreatedAt is only set when the event dictates it (legacy small-cup intake).
	CreatedAt time.Time
}

// Renumbered reports whether the event moved the voucher to a new id.
func (f Fields) Renumbered(previousID string) bool {
	return f.ID != previousID
}
