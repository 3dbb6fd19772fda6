package ledger

import (
	"errors"
	"strings"
	"time"
)

// Payment is money paid against a document.
type Payment struct {
	ID         string        `json:"id" yaml:"id"`
	DocumentID string        `json:"document_id" yaml:"document_id"`
	PaidDate   Date          `json:"paid_date" yaml:"paid_date"`
	Amount     Amount        `json:"amount" yaml:"amount"`
	Method     PaymentMethod `json:"method" yaml:"method"`
	Note       string        `json:"note,omitempty" yaml:"note,omitempty"`
	CreatedAt  time.Time     `json:"created_at" yaml:"created_at"`
}

// PaymentInsert carries the fields of a new payment.
type PaymentInsert struct {
	DocumentID string
	PaidDate   Date
	Amount     Amount
	Method     PaymentMethod
	Note       string
}

// Normalize defaults the method to transfer and the date to today.
func (in PaymentInsert) Normalize(today Date) PaymentInsert {
	if in.Method == "" {
		in.Method = MethodTransfer
	}
	if in.PaidDate.IsZero() {
		in.PaidDate = today
	}
	in.Note = strings.TrimSpace(in.Note)
	return in
}

// Validate reports every invalid field joined into one error.
func (in PaymentInsert) Validate() error {
	var errs []error
	if strings.TrimSpace(in.DocumentID) == "" {
		errs = append(errs, invalid("document_id", "is required"))
	}
	if in.PaidDate.IsZero() {
		errs = append(errs, invalid("paid_date", "is required"))
	}
	if in.Amount <= 0 {
		errs = append(errs, invalid("amount", "must be positive, got %s", in.Amount))
	}
	if in.Method != "" && !in.Method.Valid() {
		errs = append(errs, invalid("method", "unknown payment method %q", in.Method))
	}
	return errors.Join(errs...)
}

// Payment materializes the insert into a record.
func (in PaymentInsert) Payment(id string, now time.Time) Payment {
	return Payment{
		ID:         id,
		DocumentID: in.DocumentID,
		PaidDate:   in.PaidDate,
		Amount:     in.Amount,
		Method:     in.Method,
		Note:       in.Note,
		CreatedAt:  now,
	}
}
