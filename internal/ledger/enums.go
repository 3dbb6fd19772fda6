package ledger

import (
	"fmt"
	"strings"
)

// Direction tells whether money flows in or out.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// DocumentKind classifies a document.
type DocumentKind string

const (
	KindARInvoice       DocumentKind = "ar_invoice"
	KindAPInvoice       DocumentKind = "ap_invoice"
	KindTax             DocumentKind = "tax"
	KindStandingOrder   DocumentKind = "standing_order"
	KindLeaseInstalment DocumentKind = "lease_instalment"
	KindLoanInstalment  DocumentKind = "loan_instalment"
	KindOther           DocumentKind = "other"
)

// DocumentStatus is the settlement state of a document.
type DocumentStatus string

const (
	StatusPlanned   DocumentStatus = "planned"
	StatusIssued    DocumentStatus = "issued"
	StatusPartial   DocumentStatus = "partial"
	StatusPaid      DocumentStatus = "paid"
	StatusOverdue   DocumentStatus = "overdue"
	StatusCancelled DocumentStatus = "cancelled"
)

// PaymentMethod describes how a payment was made.
type PaymentMethod string

const (
	MethodTransfer PaymentMethod = "transfer"
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodOther    PaymentMethod = "other"
)

// ReceiptForm describes how a document was received.
type ReceiptForm string

const (
	ReceiptPaper          ReceiptForm = "paper"
	ReceiptEmail          ReceiptForm = "email"
	ReceiptNationalSystem ReceiptForm = "national_system"
	ReceiptEDI            ReceiptForm = "edi"
	ReceiptOther          ReceiptForm = "other"
)

var (
	// Directions lists every direction in display order.
	Directions = []Direction{DirectionIn, DirectionOut}
	// DocumentKinds lists every document kind in display order.
	DocumentKinds = []DocumentKind{
		KindARInvoice, KindAPInvoice, KindTax, KindStandingOrder,
		KindLeaseInstalment, KindLoanInstalment, KindOther,
	}
	// DocumentStatuses lists every status in lifecycle order.
	DocumentStatuses = []DocumentStatus{
		StatusPlanned, StatusIssued, StatusPartial, StatusPaid, StatusOverdue, StatusCancelled,
	}
	// PaymentMethods lists every payment method.
	PaymentMethods = []PaymentMethod{MethodTransfer, MethodCash, MethodCard, MethodOther}
	// ReceiptForms lists every receipt form.
	ReceiptForms = []ReceiptForm{ReceiptPaper, ReceiptEmail, ReceiptNationalSystem, ReceiptEDI, ReceiptOther}
)

var directionLabels = map[Direction]string{
	DirectionIn:  "Income",
	DirectionOut: "Expense",
}

var kindLabels = map[DocumentKind]string{
	KindARInvoice:       "Sales Invoice",
	KindAPInvoice:       "Purchase Invoice",
	KindTax:             "Tax",
	KindStandingOrder:   "Standing Order",
	KindLeaseInstalment: "Lease Instalment",
	KindLoanInstalment:  "Loan Instalment",
	KindOther:           "Other",
}

var statusLabels = map[DocumentStatus]string{
	StatusPlanned:   "Planned",
	StatusIssued:    "Issued",
	StatusPartial:   "Partially Paid",
	StatusPaid:      "Paid",
	StatusOverdue:   "Overdue",
	StatusCancelled: "Cancelled",
}

var methodLabels = map[PaymentMethod]string{
	MethodTransfer: "Transfer",
	MethodCash:     "Cash",
	MethodCard:     "Card",
	MethodOther:    "Other",
}

var receiptLabels = map[ReceiptForm]string{
	ReceiptPaper:          "Paper",
	ReceiptEmail:          "Email",
	ReceiptNationalSystem: "National System",
	ReceiptEDI:            "EDI",
	ReceiptOther:          "Other",
}

func labelOr[K ~string](labels map[K]string, k K) string {
	if l, ok := labels[k]; ok {
		return l
	}
	return string(k)
}

// Label returns the human readable name, or the raw value when unknown.
func (d Direction) Label() string { return labelOr(directionLabels, d) }

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	_, ok := directionLabels[d]
	return ok
}

// Sign returns +1 for income and -1 for expenses.
func (d Direction) Sign() int64 {
	if d == DirectionOut {
		return -1
	}
	return 1
}

// Label returns the human readable name, or the raw value when unknown.
func (k DocumentKind) Label() string { return labelOr(kindLabels, k) }

// Valid reports whether k is a known kind.
func (k DocumentKind) Valid() bool {
	_, ok := kindLabels[k]
	return ok
}

// Label returns the human readable name, or the raw value when unknown.
func (s DocumentStatus) Label() string { return labelOr(statusLabels, s) }

// Valid reports whether s is a known status.
func (s DocumentStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the human readable name, or the raw value when unknown.
func (m PaymentMethod) Label() string { return labelOr(methodLabels, m) }

// Valid reports whether m is a known method.
func (m PaymentMethod) Valid() bool {
	_, ok := methodLabels[m]
	return ok
}

// Label returns the human readable name, or the raw value when unknown.
func (r ReceiptForm) Label() string { return labelOr(receiptLabels, r) }

// Valid reports whether r is a known receipt form.
func (r ReceiptForm) Valid() bool {
	_, ok := receiptLabels[r]
	return ok
}

func parseEnum[K ~string](what, s string, all []K) (K, error) {
	s = strings.TrimSpace(s)
	for _, k := range all {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	var zero K
	names := make([]string, len(all))
	for i, k := range all {
		names[i] = string(k)
	}
	return zero, fmt.Errorf("%w: unknown %s %q (want one of %s)", ErrValidation, what, s, strings.Join(names, ", "))
}

// ParseDirection parses a direction case-insensitively.
func ParseDirection(s string) (Direction, error) { return parseEnum("direction", s, Directions) }

// ParseDocumentKind parses a document kind case-insensitively.
func ParseDocumentKind(s string) (DocumentKind, error) { return parseEnum("kind", s, DocumentKinds) }

// ParseDocumentStatus parses a status case-insensitively.
func ParseDocumentStatus(s string) (DocumentStatus, error) {
	return parseEnum("status", s, DocumentStatuses)
}

// ParsePaymentMethod parses a payment method case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	return parseEnum("payment method", s, PaymentMethods)
}

// ParseReceiptForm parses a receipt form case-insensitively.
func ParseReceiptForm(s string) (ReceiptForm, error) {
	return parseEnum("receipt form", s, ReceiptForms)
}
