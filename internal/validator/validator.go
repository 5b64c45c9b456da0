package validator

import (
	"errors"
	"regexp"
	"strings"

	"gutschein/internal/voucher"
)

var (
	ErrInvalidVoucherID = errors.New("invalid voucher id")
	ErrInvalidEmployee  = errors.New("invalid employee")
	ErrInvalidLocation  = errors.New("invalid location")
	ErrInvalidPassword  = errors.New("invalid password")
)

var voucherIDRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-]{1,31}$`)

// ValidateVoucherID expects an already normalized (uppercase) id.
func ValidateVoucherID(id string) error {
	if !voucherIDRegex.MatchString(id) {
		return ErrInvalidVoucherID
	}
	return nil
}

func ValidateEmployee(employee string) error {
	if strings.TrimSpace(employee) == "" || len(employee) > 64 {
		return ErrInvalidEmployee
	}
	return nil
}

func ValidateLocation(location string) (voucher.Location, error) {
	parsed, ok := voucher.ParseLocation(location)
	if !ok {
		return "", ErrInvalidLocation
	}
	return parsed, nil
}

func ValidatePassword(password string) error {
	if len(password) < 4 {
		return ErrInvalidPassword
	}
	return nil
}
