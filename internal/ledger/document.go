package ledger

import (
	"errors"
	"math"
	"strings"
	"time"

	"golang.org/x/text/currency"
)

// DefaultCurrency is used when neither the record nor the configuration names one.
const DefaultCurrency = "PLN"

// Document is a payable or receivable: an invoice, tax, instalment or order.
type Document struct {
	ID              string         `json:"id" yaml:"id"`
	Kind            DocumentKind   `json:"kind" yaml:"kind"`
	Direction       Direction      `json:"direction" yaml:"direction"`
	Status          DocumentStatus `json:"status" yaml:"status"`
	Number          string         `json:"number,omitempty" yaml:"number,omitempty"`
	Title           string         `json:"title" yaml:"title"`
	Counterparty    string         `json:"counterparty,omitempty" yaml:"counterparty,omitempty"`
	CounterpartyID  string         `json:"counterparty_id,omitempty" yaml:"counterparty_id,omitempty"`
	ReceiptForm     ReceiptForm    `json:"receipt_form,omitempty" yaml:"receipt_form,omitempty"`
	IssueDate       Date           `json:"issue_date" yaml:"issue_date"`
	DueDate         Date           `json:"due_date" yaml:"due_date"`
	AmountNet       *Amount        `json:"amount_net,omitempty" yaml:"amount_net,omitempty"`
	AmountGross     Amount         `json:"amount_gross" yaml:"amount_gross"`
	Currency        string         `json:"currency" yaml:"currency"`
	Notes           string         `json:"notes,omitempty" yaml:"notes,omitempty"`
	RecurringRuleID string         `json:"recurring_rule_id,omitempty" yaml:"recurring_rule_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" yaml:"updated_at"`
}

// IsOverdue reports whether an open document is past its due date on today.
func (d Document) IsOverdue(today Date) bool {
	switch d.Status {
	case StatusIssued, StatusPartial:
		return !d.DueDate.IsZero() && d.DueDate.Before(today)
	default:
		return false
	}
}

// DocumentEnhanced is a document joined with its counterparty and payments.
type DocumentEnhanced struct {
	Document          `yaml:",inline"`
	CounterpartyName  string `json:"counterparty_name,omitempty" yaml:"counterparty_name,omitempty"`
	CounterpartyVATID string `json:"counterparty_vat_id,omitempty" yaml:"counterparty_vat_id,omitempty"`
	LatestPaymentDate Date   `json:"latest_payment_date" yaml:"latest_payment_date"`
	TotalPaid         Amount `json:"total_paid" yaml:"total_paid"`
}

// VATAmount is gross minus net, when the net amount is known.
func (d DocumentEnhanced) VATAmount() *Amount {
	if d.AmountNet == nil {
		return nil
	}
	v := d.AmountGross - *d.AmountNet
	return &v
}

// VATPercentage is the VAT rate in whole percent, when the net amount is
// known and non-zero.
func (d DocumentEnhanced) VATPercentage() *int {
	if d.AmountNet == nil || *d.AmountNet == 0 {
		return nil
	}
	p := int(math.Round(float64(d.AmountGross-*d.AmountNet) / float64(*d.AmountNet) * 100))
	return &p
}

// Remaining is the unpaid part of the gross amount, never negative.
func (d DocumentEnhanced) Remaining() Amount {
	if r := d.AmountGross - d.TotalPaid; r > 0 {
		return r
	}
	return 0
}

// DisplayCounterparty prefers the linked counterparty name over the free-text one.
func (d DocumentEnhanced) DisplayCounterparty() string {
	if d.CounterpartyName != "" {
		return d.CounterpartyName
	}
	return d.Counterparty
}

// DocumentFields lists the names FieldValue resolves, in display order.
var DocumentFields = []string{
	"id", "kind", "direction", "status", "number", "title", "counterparty", "counterparty_id",
	"receipt_form", "issue_date", "due_date", "amount_net", "amount_gross", "currency", "notes",
	"recurring_rule_id", "created_at", "updated_at", "counterparty_name", "counterparty_vat_id",
	"vat_amount", "vat_percentage", "latest_payment_date", "total_paid", "remaining",
}

// FieldValue resolves a snake_case field name to its typed value. Unset
// optional fields resolve to nil.
func (d DocumentEnhanced) FieldValue(name string) (any, bool) {
	switch name {
	case "id":
		return d.ID, true
	case "kind":
		return d.Kind, true
	case "direction":
		return d.Direction, true
	case "status":
		return d.Status, true
	case "number":
		return nilIfEmpty(d.Number), true
	case "title":
		return d.Title, true
	case "counterparty":
		return nilIfEmpty(d.Counterparty), true
	case "counterparty_id":
		return nilIfEmpty(d.CounterpartyID), true
	case "receipt_form":
		if d.ReceiptForm == "" {
			return nil, true
		}
		return d.ReceiptForm, true
	case "issue_date":
		return nilIfZeroDate(d.IssueDate), true
	case "due_date":
		return d.DueDate, true
	case "amount_net":
		if d.AmountNet == nil {
			return nil, true
		}
		return *d.AmountNet, true
	case "amount_gross":
		return d.AmountGross, true
	case "currency":
		return d.Currency, true
	case "notes":
		return nilIfEmpty(d.Notes), true
	case "recurring_rule_id":
		return nilIfEmpty(d.RecurringRuleID), true
	case "created_at":
		return d.CreatedAt, true
	case "updated_at":
		return d.UpdatedAt, true
	case "counterparty_name":
		return nilIfEmpty(d.CounterpartyName), true
	case "counterparty_vat_id":
		return nilIfEmpty(d.CounterpartyVATID), true
	case "vat_amount":
		if v := d.VATAmount(); v != nil {
			return *v, true
		}
		return nil, true
	case "vat_percentage":
		if v := d.VATPercentage(); v != nil {
			return *v, true
		}
		return nil, true
	case "latest_payment_date":
		return nilIfZeroDate(d.LatestPaymentDate), true
	case "total_paid":
		return d.TotalPaid, true
	case "remaining":
		return d.Remaining(), true
	default:
		return nil, false
	}
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nilIfZeroDate(d Date) any {
	if d.IsZero() {
		return nil
	}
	return d
}

// DocumentInsert carries the fields of a new document.
type DocumentInsert struct {
	Kind            DocumentKind   `json:"kind" yaml:"kind" toml:"kind"`
	Direction       Direction      `json:"direction" yaml:"direction" toml:"direction"`
	Status          DocumentStatus `json:"status,omitempty" yaml:"status,omitempty" toml:"status,omitempty"`
	Number          string         `json:"number,omitempty" yaml:"number,omitempty" toml:"number,omitempty"`
	Title           string         `json:"title" yaml:"title" toml:"title"`
	Counterparty    string         `json:"counterparty,omitempty" yaml:"counterparty,omitempty" toml:"counterparty,omitempty"`
	CounterpartyID  string         `json:"counterparty_id,omitempty" yaml:"counterparty_id,omitempty" toml:"counterparty_id,omitempty"`
	ReceiptForm     ReceiptForm    `json:"receipt_form,omitempty" yaml:"receipt_form,omitempty" toml:"receipt_form,omitempty"`
	IssueDate       Date           `json:"issue_date,omitempty" yaml:"issue_date,omitempty" toml:"issue_date,omitempty"`
	DueDate         Date           `json:"due_date" yaml:"due_date" toml:"due_date"`
	AmountNet       *Amount        `json:"amount_net,omitempty" yaml:"amount_net,omitempty" toml:"amount_net,omitempty"`
	AmountGross     Amount         `json:"amount_gross" yaml:"amount_gross" toml:"amount_gross"`
	Currency        string         `json:"currency,omitempty" yaml:"currency,omitempty" toml:"currency,omitempty"`
	Notes           string         `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes,omitempty"`
	RecurringRuleID string         `json:"recurring_rule_id,omitempty" yaml:"recurring_rule_id,omitempty" toml:"recurring_rule_id,omitempty"`
}

// Normalize fills defaults: status planned and the given currency (or
// DefaultCurrency), upper-cased.
func (in DocumentInsert) Normalize(defaultCurrency string) DocumentInsert {
	if in.Status == "" {
		in.Status = StatusPlanned
	}
	if strings.TrimSpace(in.Currency) == "" {
		in.Currency = defaultCurrency
	}
	if strings.TrimSpace(in.Currency) == "" {
		in.Currency = DefaultCurrency
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	in.Title = strings.TrimSpace(in.Title)
	in.Number = strings.TrimSpace(in.Number)
	return in
}

// Validate reports every invalid field joined into one error.
func (in DocumentInsert) Validate() error {
	var errs []error
	if !in.Kind.Valid() {
		errs = append(errs, invalid("kind", "unknown kind %q", in.Kind))
	}
	if !in.Direction.Valid() {
		errs = append(errs, invalid("direction", "unknown direction %q", in.Direction))
	}
	if in.Status != "" && !in.Status.Valid() {
		errs = append(errs, invalid("status", "unknown status %q", in.Status))
	}
	if in.ReceiptForm != "" && !in.ReceiptForm.Valid() {
		errs = append(errs, invalid("receipt_form", "unknown receipt form %q", in.ReceiptForm))
	}
	if strings.TrimSpace(in.Title) == "" {
		errs = append(errs, invalid("title", "is required"))
	}
	if in.DueDate.IsZero() {
		errs = append(errs, invalid("due_date", "is required"))
	}
	if in.AmountGross <= 0 {
		errs = append(errs, invalid("amount_gross", "must be positive, got %s", in.AmountGross))
	}
	if in.AmountNet != nil && (*in.AmountNet < 0 || *in.AmountNet > in.AmountGross) {
		errs = append(errs, invalid("amount_net", "must be between 0 and the gross amount, got %s", *in.AmountNet))
	}
	if in.Currency != "" {
		if err := ValidateCurrency(in.Currency); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ValidateCurrency checks that code is an ISO 4217 currency code.
func ValidateCurrency(code string) error {
	if _, err := currency.ParseISO(strings.TrimSpace(code)); err != nil {
		return invalid("currency", "unknown ISO 4217 code %q", code)
	}
	return nil
}

// Document materializes the insert into a record with the given id and time.
func (in DocumentInsert) Document(id string, now time.Time) Document {
	return Document{
		ID:              id,
		Kind:            in.Kind,
		Direction:       in.Direction,
		Status:          in.Status,
		Number:          in.Number,
		Title:           in.Title,
		Counterparty:    in.Counterparty,
		CounterpartyID:  in.CounterpartyID,
		ReceiptForm:     in.ReceiptForm,
		IssueDate:       in.IssueDate,
		DueDate:         in.DueDate,
		AmountNet:       in.AmountNet,
		AmountGross:     in.AmountGross,
		Currency:        in.Currency,
		Notes:           in.Notes,
		RecurringRuleID: in.RecurringRuleID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// DocumentUpdate changes the non-nil fields of document ID.
type DocumentUpdate struct {
	ID           string
	Kind         *DocumentKind
	Direction    *Direction
	Status       *DocumentStatus
	Number       *string
	Title        *string
	Counterparty *string
	ReceiptForm  *ReceiptForm
	IssueDate    *Date
	DueDate      *Date
	AmountNet    *Amount
	AmountGross  *Amount
	Currency     *string
	Notes        *string
}

// Empty reports whether the update changes nothing.
func (u DocumentUpdate) Empty() bool {
	return u.Kind == nil && u.Direction == nil && u.Status == nil && u.Number == nil &&
		u.Title == nil && u.Counterparty == nil && u.ReceiptForm == nil && u.IssueDate == nil &&
		u.DueDate == nil && u.AmountNet == nil && u.AmountGross == nil && u.Currency == nil && u.Notes == nil
}

// Apply returns d with the update applied and validated.
func (u DocumentUpdate) Apply(d Document, now time.Time) (Document, error) {
	if u.Kind != nil {
		d.Kind = *u.Kind
	}
	if u.Direction != nil {
		d.Direction = *u.Direction
	}
	if u.Status != nil {
		d.Status = *u.Status
	}
	if u.Number != nil {
		d.Number = strings.TrimSpace(*u.Number)
	}
	if u.Title != nil {
		d.Title = strings.TrimSpace(*u.Title)
	}
	if u.Counterparty != nil {
		d.Counterparty = *u.Counterparty
	}
	if u.ReceiptForm != nil {
		d.ReceiptForm = *u.ReceiptForm
	}
	if u.IssueDate != nil {
		d.IssueDate = *u.IssueDate
	}
	if u.DueDate != nil {
		d.DueDate = *u.DueDate
	}
	if u.AmountNet != nil {
		net := *u.AmountNet
		d.AmountNet = &net
	}
	if u.AmountGross != nil {
		d.AmountGross = *u.AmountGross
	}
	if u.Currency != nil {
		d.Currency = strings.ToUpper(strings.TrimSpace(*u.Currency))
	}
	if u.Notes != nil {
		d.Notes = *u.Notes
	}

	check := DocumentInsert{
		Kind: d.Kind, Direction: d.Direction, Status: d.Status, Title: d.Title,
		ReceiptForm: d.ReceiptForm, DueDate: d.DueDate, AmountNet: d.AmountNet,
		AmountGross: d.AmountGross, Currency: d.Currency,
	}
	if err := check.Validate(); err != nil {
		return Document{}, err
	}
	d.UpdatedAt = now
	return d, nil
}

// SettleStatus returns the status of a document with the given gross amount
// after its payments total paid. Cancelled and planned documents without
// payments keep their status; fully paid documents become paid and partly
// paid ones partial. A document that loses all payments reverts to issued.
func SettleStatus(current DocumentStatus, gross, paid Amount) DocumentStatus {
	if current == StatusCancelled {
		return current
	}
	switch {
	case paid > 0 && paid >= gross:
		return StatusPaid
	case paid > 0:
		return StatusPartial
	case current == StatusPaid || current == StatusPartial:
		return StatusIssued
	default:
		return current
	}
}
