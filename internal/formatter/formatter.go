// Package formatter turns ledger values into display text: money, dates,
// labels, the cashflow timeline tree, the balance chart and file exports.
package formatter

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/oakwood-commons/cashbook/internal/ledger"
)

// Dash stands in for missing values.
const Dash = "—"

// DisplayDateLayout is the layout of dates shown to users.
const DisplayDateLayout = "02.01.2006"

var printer = message.NewPrinter(language.English)

// SetLocale switches the number grouping used by Money. Unknown tags fall
// back to English.
func SetLocale(tag string) error {
	t, err := language.Parse(tag)
	if err != nil {
		printer = message.NewPrinter(language.English)
		return fmt.Errorf("parse locale %q: %w", tag, err)
	}
	printer = message.NewPrinter(t)
	return nil
}

// Number formats a minor-unit amount with grouping and two decimals, e.g.
// "1,234.50". The integer part goes through the locale printer; the two
// fraction digits are appended without rounding.
func Number(a ledger.Amount) string {
	sign := ""
	if a < 0 {
		sign = "-"
		a = -a
	}
	whole := int64(a) / 100
	cents := int64(a) % 100
	return fmt.Sprintf("%s%s.%02d", sign, printer.Sprintf("%d", whole), cents)
}

// Money formats an amount followed by its ISO currency code, e.g.
// "1,234.50 PLN". An empty currency prints the number alone.
func Money(a ledger.Amount, currency string) string {
	n := Number(a)
	if currency == "" {
		return n
	}
	return n + " " + strings.ToUpper(currency)
}

// MoneyPtr formats an optional amount, Dash when nil.
func MoneyPtr(a *ledger.Amount, currency string) string {
	if a == nil {
		return Dash
	}
	return Money(*a, currency)
}

// SignedMoney prefixes positive amounts with "+".
func SignedMoney(a ledger.Amount, currency string) string {
	if a > 0 {
		return "+" + Money(a, currency)
	}
	return Money(a, currency)
}

// Date formats d as DD.MM.YYYY, Dash for the zero date.
func Date(d ledger.Date) string {
	if d.IsZero() {
		return Dash
	}
	return d.Format(DisplayDateLayout)
}

// DateShort formats d as DD.MM.
func DateShort(d ledger.Date) string {
	if d.IsZero() {
		return Dash
	}
	return d.Format("02.01")
}

// Percent formats an optional percentage, e.g. "23%".
func Percent(p *int) string {
	if p == nil {
		return Dash
	}
	return fmt.Sprintf("%d%%", *p)
}

// OrDash returns s, or Dash when s is blank.
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return Dash
	}
	return s
}

// Value renders an arbitrary raw value the way table cells show it: nil as
// Dash, ledger types through their formatters, composite values as
// compact JSON.
func Value(v any) string {
	switch t := v.(type) {
	case nil:
		return Dash
	case string:
		return OrDash(t)
	case ledger.Amount:
		return Number(t)
	case *ledger.Amount:
		if t == nil {
			return Dash
		}
		return Number(*t)
	case ledger.Date:
		return Date(t)
	case interface{ Label() string }:
		return t.Label()
	case bool, int, int64, float64:
		return fmt.Sprint(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // only composite kinds need JSON
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	case reflect.Ptr:
		if rv.IsNil() {
			return Dash
		}
		return Value(rv.Elem().Interface())
	}
	return fmt.Sprintf("%v", v)
}
