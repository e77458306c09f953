// Package validate holds the input checks performed before payment is
// accepted: mobile number format, card number checksum and card expiry.
package validate

import (
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrInvalidFormat is returned when an input does not match the
	// expected shape (digit count, MM/YY pattern).
	ErrInvalidFormat = errors.New("invalid format")
	// ErrInvalidChecksum is returned when a card number fails the Luhn check.
	ErrInvalidChecksum = errors.New("invalid checksum")
	// ErrExpired is returned when a card expiry is in the past.
	ErrExpired = errors.New("card expired")
)

const cardNumberLen = 16

// Mobile checks that s is exactly 10 ASCII digits.
func Mobile(s string) error {
	if len(s) != 10 {
		return ErrInvalidFormat
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return ErrInvalidFormat
		}
	}
	return nil
}

// CardNumber checks that s is a 16-digit card number with a valid Luhn
// mod-10 checksum: every second digit from the right is doubled, 9 is
// subtracted from doubles above 9, and the digit sum must divide by 10.
func CardNumber(s string) error {
	if len(s) != cardNumberLen {
		return ErrInvalidFormat
	}

	sum := 0
	double := false
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c < '0' || c > '9' {
			return ErrInvalidFormat
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}

	if sum%10 != 0 {
		return ErrInvalidChecksum
	}
	return nil
}

// Expiry checks that the given month/year is not strictly before the
// month/year of now. Year is a full four-digit year, month is 1-12.
func Expiry(month, year int, now time.Time) error {
	if month < 1 || month > 12 {
		return ErrInvalidFormat
	}
	if year < now.Year() {
		return ErrExpired
	}
	if year == now.Year() && time.Month(month) < now.Month() {
		return ErrExpired
	}
	return nil
}

// ParseExpiry parses a card expiry in MM/YY form. Two-digit years map to
// the 2000s, matching what the card form collects.
func ParseExpiry(s string) (month, year int, err error) {
	if len(s) != 5 || s[2] != '/' {
		return 0, 0, ErrInvalidFormat
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, 0, ErrInvalidFormat
		}
	}
	month = int(s[0]-'0')*10 + int(s[1]-'0')
	year = 2000 + int(s[3]-'0')*10 + int(s[4]-'0')
	if month < 1 || month > 12 {
		return 0, 0, ErrInvalidFormat
	}
	return month, year, nil
}
