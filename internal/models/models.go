package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SigningStatus is the order's position in the signing lifecycle.
// pending → sent → completed|rejected, with a side branch to error
// from any pre-terminal state. completed and rejected are terminal.
type SigningStatus string

const (
	SigningPending   SigningStatus = "pending"
	SigningSent      SigningStatus = "sent"
	SigningCompleted SigningStatus = "completed"
	SigningRejected  SigningStatus = "rejected"
	SigningError     SigningStatus = "error"
)

// Terminal reports whether no further automatic transition is permitted.
func (s SigningStatus) Terminal() bool {
	return s == SigningCompleted || s == SigningRejected
}

// Order is the snapshot this service reads from and writes back to the
// commerce system. Created externally; only signing meta, notes and the
// lifecycle status are mutated here.
type Order struct {
	ID int64 `json:"id"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	// Checkout custom attributes
	ABN                  string `json:"abn"`
	InstallationAddress  string `json:"installation_address"`
	InstallationState    string `json:"installation_state"`
	InstallationPostcode string `json:"installation_postcode"`

	Items    []LineItem      `json:"items"`
	TotalTax decimal.Decimal `json:"total_tax"`
	Total    decimal.Decimal `json:"total"`

	// Commerce lifecycle status (processing, on-hold, ...), distinct from
	// the signing status.
	Status string `json:"status"`

	SigningStatus SigningStatus `json:"signing_status"`
	DocID         string        `json:"doc_id"`
	WorkflowID    string        `json:"workflow_id"`
	LastError     string        `json:"last_error"`

	Notes []string `json:"notes,omitempty"`
}

// ContactName joins the billing first/last name.
func (o *Order) ContactName() string {
	return strings.TrimSpace(strings.TrimSpace(o.FirstName) + " " + strings.TrimSpace(o.LastName))
}

// LegalName is the billing company when present, otherwise the contact name.
func (o *Order) LegalName() string {
	if o.Company != "" {
		return o.Company
	}
	return o.ContactName()
}

type LineItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}
