package config

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TokenDecimals is the number of decimals of the reward token
const TokenDecimals = 18

// ParseTokenAmount converts a whole-token decimal string such as "10" or
// "0.5" into base units. Fractions finer than one base unit are rejected.
func ParseTokenAmount(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid token amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("invalid token amount %q: must not be negative", s)
	}
	units := d.Shift(TokenDecimals)
	if !units.Equal(units.Truncate(0)) {
		return nil, fmt.Errorf("invalid token amount %q: more than %d decimals", s, TokenDecimals)
	}
	return units.BigInt(), nil
}

// FormatTokenAmount renders base units as whole tokens
func FormatTokenAmount(units *big.Int) string {
	if units == nil {
		return "0"
	}
	return decimal.NewFromBigInt(units, -TokenDecimals).String()
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday accepts full English weekday names in any case
func ParseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("invalid weekday %q", s)
	}
	return wd, nil
}
