package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMobile(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
	}{
		{"valid", "9876543210", true},
		{"leading zero", "0123456789", true},
		{"too short", "98765", false},
		{"too long", "98765432101", false},
		{"empty", "", false},
		{"letters", "98765abc10", false},
		{"spaces", "98765 4321", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Mobile(tt.input)
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidFormat)
			}
		})
	}
}

func TestCardNumber_Valid(t *testing.T) {
	// Standard test card numbers, all Luhn-valid.
	for _, num := range []string{
		"4539578763621486",
		"4111111111111111",
		"5500005555555559",
		"6011000990139424",
	} {
		assert.NoError(t, CardNumber(num), num)
	}
}

func TestCardNumber_SingleDigitMutation(t *testing.T) {
	const valid = "4111111111111111"
	require.NoError(t, CardNumber(valid))

	// Mutating any single digit must break the checksum: the Luhn code
	// detects all single-digit substitutions.
	for i := range len(valid) {
		for d := byte('0'); d <= '9'; d++ {
			if valid[i] == d {
				continue
			}
			mutated := valid[:i] + string(d) + valid[i+1:]
			assert.ErrorIs(t, CardNumber(mutated), ErrInvalidChecksum, mutated)
		}
	}
}

func TestCardNumber_Format(t *testing.T) {
	assert.ErrorIs(t, CardNumber("411111111111111"), ErrInvalidFormat)   // 15 digits
	assert.ErrorIs(t, CardNumber("41111111111111112"), ErrInvalidFormat) // 17 digits
	assert.ErrorIs(t, CardNumber("4111a11111111111"), ErrInvalidFormat)
	assert.ErrorIs(t, CardNumber(""), ErrInvalidFormat)
}

func TestExpiry(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, Expiry(6, 2026, now), "current month is still valid")
	assert.NoError(t, Expiry(7, 2026, now))
	assert.NoError(t, Expiry(1, 2027, now))
	assert.ErrorIs(t, Expiry(5, 2026, now), ErrExpired)
	assert.ErrorIs(t, Expiry(12, 2025, now), ErrExpired)
	assert.ErrorIs(t, Expiry(0, 2027, now), ErrInvalidFormat)
	assert.ErrorIs(t, Expiry(13, 2027, now), ErrInvalidFormat)
}

func TestParseExpiry(t *testing.T) {
	m, y, err := ParseExpiry("09/27")
	require.NoError(t, err)
	assert.Equal(t, 9, m)
	assert.Equal(t, 2027, y)

	for _, s := range []string{"", "9/27", "09-27", "ab/cd", "13/27", "00/27", "09/2"} {
		_, _, err := ParseExpiry(s)
		assert.ErrorIs(t, err, ErrInvalidFormat, s)
	}
}
