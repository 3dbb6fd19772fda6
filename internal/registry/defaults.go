package registry

import "github.com/oakwood-commons/cashbook/internal/ledger"

// Table names of the column registry.
const (
	TableDocuments      = "documents"
	TablePayments       = "payments"
	TableCashflow       = "cashflow"
	TableCounterparties = "counterparties"
	TableRecurring      = "recurring"
)

// Tables lists every registered table.
var Tables = []string{TableDocuments, TablePayments, TableCashflow, TableCounterparties, TableRecurring}

type def struct {
	id       string
	label    string
	priority int
	width    string
	align    string
}

var defaultSets = map[string][]def{
	TableDocuments: {
		{id: "title", label: "Title", priority: 0, width: "200"},
		{id: "due_date", label: "Due", priority: 0, width: "100"},
		{id: "amount_gross", label: "Gross", priority: 0, width: "130", align: "right"},
		{id: "status", label: "Status", priority: 1, width: "100"},
		{id: "counterparty", label: "Counterparty", priority: 1, width: "180"},
		{id: "document_number", label: "Number", priority: 2, width: "140"},
		{id: "remaining", label: "Remaining", priority: 2, width: "130", align: "right"},
		{id: "document_type", label: "Type", priority: 3, width: "150"},
		{id: "direction", label: "Direction", priority: 3, width: "90"},
		{id: "issue_date", label: "Issued", priority: 4, width: "100"},
		{id: "amount_net", label: "Net", priority: 4, width: "130", align: "right"},
		{id: "vat_amount", label: "VAT", priority: 5, width: "120", align: "right"},
		{id: "vat_percentage", label: "VAT %", priority: 5, width: "70", align: "right"},
		{id: "payment_date", label: "Paid on", priority: 5, width: "100"},
		{id: "receipt_form", label: "Received as", priority: 6, width: "130"},
		{id: "vat_id", label: "VAT ID", priority: 6, width: "130"},
		{id: "notes", label: "Notes", priority: 7, width: "250"},
	},
	TablePayments: {
		{id: "paid_date", label: "Date", priority: 0, width: "100"},
		{id: "amount", label: "Amount", priority: 0, width: "130", align: "right"},
		{id: "method", label: "Method", priority: 1, width: "110"},
		{id: "note", label: "Note", priority: 2, width: "250"},
		{id: "id", label: "ID", priority: 3, width: "300"},
	},
	TableCashflow: {
		{id: "event_date", label: "Date", priority: 0, width: "100"},
		{id: "title", label: "Title", priority: 0, width: "200"},
		{id: "remaining", label: "Remaining", priority: 0, width: "130", align: "right"},
		{id: "direction", label: "Direction", priority: 1, width: "90"},
		{id: "status", label: "Status", priority: 2, width: "100"},
		{id: "amount", label: "Gross", priority: 2, width: "130", align: "right"},
		{id: "paid_amount", label: "Paid", priority: 3, width: "130", align: "right"},
		{id: "kind", label: "Type", priority: 3, width: "150"},
	},
	TableCounterparties: {
		{id: "name", label: "Name", priority: 0, width: "200"},
		{id: "vat_id", label: "VAT ID", priority: 1, width: "130"},
		{id: "email", label: "Email", priority: 2, width: "200"},
		{id: "phone", label: "Phone", priority: 3, width: "130"},
		{id: "address", label: "Address", priority: 4, width: "250"},
		{id: "notes", label: "Notes", priority: 5, width: "250"},
	},
	TableRecurring: {
		{id: "title", label: "Title", priority: 0, width: "200"},
		{id: "amount", label: "Amount", priority: 0, width: "130", align: "right"},
		{id: "is_active", label: "Active", priority: 1, width: "70"},
		{id: "direction", label: "Direction", priority: 1, width: "90"},
		{id: "day_of_month", label: "Day", priority: 2, width: "50", align: "right"},
		{id: "interval_months", label: "Every (months)", priority: 3, width: "120", align: "right"},
		{id: "kind", label: "Type", priority: 3, width: "150"},
		{id: "start_date", label: "From", priority: 4, width: "100"},
		{id: "end_date", label: "Until", priority: 4, width: "100"},
	},
}

// Defaults returns the built-in column rows of table, ready to be seeded.
// Unknown tables return nil.
func Defaults(table string) []ledger.TableColumn {
	defs, ok := defaultSets[table]
	if !ok {
		return nil
	}
	out := make([]ledger.TableColumn, 0, len(defs))
	for i, d := range defs {
		align := d.align
		if align == "" {
			align = "left"
		}
		out = append(out, ledger.TableColumn{
			ID:           table + "." + d.id,
			TableName:    table,
			ColumnID:     d.id,
			Label:        d.label,
			Priority:     d.priority,
			Align:        align,
			Width:        d.width,
			IsSortable:   true,
			IsActive:     true,
			DisplayOrder: (i + 1) * 10,
		})
	}
	return out
}

// AllDefaults returns the built-in columns of every table.
func AllDefaults() []ledger.TableColumn {
	var out []ledger.TableColumn
	for _, t := range Tables {
		out = append(out, Defaults(t)...)
	}
	return out
}
