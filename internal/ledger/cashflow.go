package ledger

// CashflowEvent is an open document projected onto its due date.
type CashflowEvent struct {
	DocumentID string         `json:"document_id" yaml:"document_id"`
	EventDate  Date           `json:"event_date" yaml:"event_date"`
	Title      string         `json:"title" yaml:"title"`
	Direction  Direction      `json:"direction" yaml:"direction"`
	Kind       DocumentKind   `json:"kind" yaml:"kind"`
	Status     DocumentStatus `json:"status" yaml:"status"`
	Amount     Amount         `json:"amount" yaml:"amount"`
	PaidAmount Amount         `json:"paid_amount" yaml:"paid_amount"`
	Remaining  Amount         `json:"remaining" yaml:"remaining"`
	Currency   string         `json:"currency" yaml:"currency"`
}

// Signed returns the remaining amount, negative for expenses.
func (e CashflowEvent) Signed() Amount {
	return Amount(e.Direction.Sign()) * e.Remaining
}

// TableColumn is one row of the per-table column configuration.
type TableColumn struct {
	ID             string `json:"id" yaml:"id"`
	TableName      string `json:"table_name" yaml:"table_name"`
	ColumnID       string `json:"column_id" yaml:"column_id"`
	Label          string `json:"label" yaml:"label"`
	Priority       int    `json:"priority" yaml:"priority"`
	Accessor       string `json:"accessor,omitempty" yaml:"accessor,omitempty"`
	Align          string `json:"align" yaml:"align"`
	Width          string `json:"width,omitempty" yaml:"width,omitempty"`
	MinScreenWidth int    `json:"min_screen_width,omitempty" yaml:"min_screen_width,omitempty"`
	IsSortable     bool   `json:"is_sortable" yaml:"is_sortable"`
	IsActive       bool   `json:"is_active" yaml:"is_active"`
	DisplayOrder   int    `json:"display_order" yaml:"display_order"`
}
