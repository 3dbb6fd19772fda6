package ledger

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a monetary value in minor units (grosz, cents).
type Amount int64

// AmountFromFloat converts a value in major units, rounding to the nearest
// minor unit.
func AmountFromFloat(f float64) Amount {
	return Amount(math.Round(f * 100))
}

// ParseAmount parses a decimal amount in major units. Both "." and "," are
// accepted as the decimal separator; spaces, underscores and apostrophes are
// treated as digit grouping.
func ParseAmount(s string) (Amount, error) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(" ", "", "_", "", "'", "", "\u00a0", "").Replace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty amount", ErrValidation)
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, frac, hasFrac := strings.Cut(strings.ReplaceAll(s, ",", "."), ".")
	if intPart == "" && !hasFrac {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, raw)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("%w: amount %q has more than two decimal places", ErrValidation, raw)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if intPart == "" {
		intPart = "0"
	}

	major, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, raw)
	}
	minor, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || minor < 0 {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, raw)
	}
	if major > math.MaxInt64/100-1 {
		return 0, fmt.Errorf("%w: amount %q out of range", ErrValidation, raw)
	}

	v := Amount(major*100 + minor)
	if neg {
		v = -v
	}
	return v, nil
}

// Float returns the amount in major units.
func (a Amount) Float() float64 {
	return float64(a) / 100
}

// String renders the amount with two decimals and no grouping, e.g. "-12.50".
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// MarshalJSON writes the amount as a number in major units.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings in major units.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		v, err := ParseAmount(n.String())
		if err != nil {
			return err
		}
		*a = v
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: amount must be a number or string", ErrValidation)
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalYAML writes the amount as a float in major units.
func (a Amount) MarshalYAML() (any, error) {
	return a.Float(), nil
}

// MarshalText is used by encoders without a number hook (TOML).
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses a decimal string in major units.
func (a *Amount) UnmarshalText(b []byte) error {
	v, err := ParseAmount(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
