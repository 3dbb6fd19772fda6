package registry

import (
	"github.com/oakwood-commons/cashbook/internal/formatter"
	"github.com/oakwood-commons/cashbook/internal/ledger"
	"github.com/oakwood-commons/cashbook/pkg/columns"
)

// builtinAccessors resolve computed column ids that do not name a field.
var builtinAccessors = map[string]map[string]func(row any) any{
	TableDocuments: {
		"counterparty":    documentCounterparty,
		"document_type":   fieldOf("kind"),
		"vat_id":          fieldOf("counterparty_vat_id"),
		"payment_date":    fieldOf("latest_payment_date"),
		"document_number": fieldOf("number"),
	},
}

func fieldOf(name string) func(row any) any {
	acc := columns.Field(name)
	return acc.Value
}

// documentCounterparty prefers the linked counterparty's name over the
// free-text one.
func documentCounterparty(row any) any {
	switch d := row.(type) {
	case ledger.DocumentEnhanced:
		return d.DisplayCounterparty()
	case *ledger.DocumentEnhanced:
		if d == nil {
			return nil
		}
		return d.DisplayCounterparty()
	}
	if v := columns.Field("counterparty_name").Value(row); v != nil && v != "" {
		return v
	}
	return columns.Field("counterparty").Value(row)
}

var (
	dateColumns = map[string]bool{
		"issue_date": true, "due_date": true, "payment_date": true, "paid_date": true,
		"event_date": true, "start_date": true, "end_date": true, "latest_payment_date": true,
	}
	moneyColumns = map[string]bool{
		"amount_gross": true, "amount_net": true, "vat_amount": true, "amount": true,
		"paid_amount": true, "remaining": true, "total_paid": true,
	}
)

// formatterFor returns the cell formatter of a column id. Every formatter
// shows missing values as a dash.
func formatterFor(columnID string) columns.Formatter {
	switch {
	case dateColumns[columnID]:
		return formatDate
	case moneyColumns[columnID]:
		return formatMoney
	case columnID == "vat_percentage":
		return formatPercent
	case columnID == "is_active":
		return formatBool
	default:
		return formatDefault
	}
}

func formatDate(raw, _ any) string {
	switch d := raw.(type) {
	case ledger.Date:
		return formatter.Date(d)
	case string:
		parsed, err := ledger.ParseDate(d)
		if err != nil {
			return formatter.OrDash(d)
		}
		return formatter.Date(parsed)
	default:
		return formatter.Dash
	}
}

// formatMoney prints amounts in the currency of their row.
func formatMoney(raw, row any) string {
	a, ok := amountOf(raw)
	if !ok {
		return formatter.Dash
	}
	currency, _ := columns.Field("currency").Value(row).(string)
	return formatter.Money(a, currency)
}

func amountOf(raw any) (ledger.Amount, bool) {
	switch v := raw.(type) {
	case ledger.Amount:
		return v, true
	case *ledger.Amount:
		if v == nil {
			return 0, false
		}
		return *v, true
	case float64:
		return ledger.AmountFromFloat(v), true
	case int:
		return ledger.Amount(v) * 100, true
	case int64:
		return ledger.Amount(v) * 100, true
	default:
		return 0, false
	}
}

func formatPercent(raw, _ any) string {
	switch v := raw.(type) {
	case int:
		return formatter.Percent(&v)
	case *int:
		return formatter.Percent(v)
	default:
		return formatter.Dash
	}
}

func formatBool(raw, _ any) string {
	b, ok := raw.(bool)
	switch {
	case !ok:
		return formatter.Dash
	case b:
		return "Yes"
	default:
		return "No"
	}
}

func formatDefault(raw, _ any) string {
	return formatter.Value(raw)
}
