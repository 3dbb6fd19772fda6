package ledger

import (
	"strings"
	"time"
)

// Counterparty is a customer, supplier or authority documents refer to.
type Counterparty struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	VATID     string    `json:"vat_id,omitempty" yaml:"vat_id,omitempty"`
	Email     string    `json:"email,omitempty" yaml:"email,omitempty"`
	Phone     string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address   string    `json:"address,omitempty" yaml:"address,omitempty"`
	Notes     string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// CounterpartyInsert carries the fields of a new counterparty.
type CounterpartyInsert struct {
	Name    string
	VATID   string
	Email   string
	Phone   string
	Address string
	Notes   string
}

// Validate requires a name and a plausible email address.
func (in CounterpartyInsert) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "is required")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return invalid("email", "%q is not an email address", in.Email)
	}
	return nil
}

// Counterparty materializes the insert into a record.
func (in CounterpartyInsert) Counterparty(id string, now time.Time) Counterparty {
	return Counterparty{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		VATID:     strings.TrimSpace(in.VATID),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
