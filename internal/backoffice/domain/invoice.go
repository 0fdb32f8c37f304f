package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceKind string

const (
	KindInvoice InvoiceKind = "invoice"
	KindQuote   InvoiceKind = "quote"
)

func (k InvoiceKind) Valid() bool {
	return k == KindInvoice || k == KindQuote
}

// NumberPrefix is the prefix of the sequential document number.
func (k InvoiceKind) NumberPrefix() string {
	if k == KindQuote {
		return "ORC"
	}
	return "NF"
}

// FormatNumber renders the n-th document of kind k, e.g. NF-000042.
func (k InvoiceKind) FormatNumber(n int64) string {
	return fmt.Sprintf("%s-%06d", k.NumberPrefix(), n)
}

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceIssued    InvoiceStatus = "issued"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
	QuoteSent        InvoiceStatus = "sent"
	QuoteAccepted    InvoiceStatus = "accepted"
	QuoteRejected    InvoiceStatus = "rejected"
)

var invoiceTransitions = map[InvoiceKind]map[InvoiceStatus][]InvoiceStatus{
	KindInvoice: {
		InvoiceDraft:  {InvoiceIssued, InvoiceCancelled},
		InvoiceIssued: {InvoicePaid, InvoiceCancelled},
	},
	KindQuote: {
		InvoiceDraft: {QuoteSent, QuoteRejected},
		QuoteSent:    {QuoteAccepted, QuoteRejected},
	},
}

// CanTransition reports whether a document of kind k may move from -> to.
func CanTransition(k InvoiceKind, from, to InvoiceStatus) bool {
	for _, next := range invoiceTransitions[k][from] {
		if next == to {
			return true
		}
	}
	return false
}

type InvoiceItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Amount is quantity times unit price, unrounded.
func (it InvoiceItem) Amount() decimal.Decimal {
	return it.Quantity.Mul(it.UnitPrice)
}

type Invoice struct {
	ID           string          `json:"id"`
	ClientID     string          `json:"client_id"`
	Kind         InvoiceKind     `json:"kind"`
	Number       string          `json:"number"`
	Status       InvoiceStatus   `json:"status"`
	IssueDate    Date            `json:"issue_date"`
	DueDate      Date            `json:"due_date"`
	Notes        string          `json:"notes,omitempty"`
	Items        []InvoiceItem   `json:"items"`
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"total_display"`
	SourceID     string          `json:"source_id,omitempty"` // quote an invoice was converted from
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// InvoiceTotal sums the item amounts and rounds to centavos once.
func InvoiceTotal(items []InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount())
	}
	return RoundMoney(total)
}

// Recalculate refreshes the derived total fields.
func (inv *Invoice) Recalculate() {
	inv.Total = InvoiceTotal(inv.Items)
	inv.TotalDisplay = FormatBRL(inv.Total)
}

// Editable reports whether the document content may still change.
func (inv Invoice) Editable() bool {
	return inv.Status == InvoiceDraft
}

// Validate checks the editable content of a document.
func (inv Invoice) Validate() error {
	v := &ValidationError{}
	v.Require("client_id", inv.ClientID)
	if !inv.Kind.Valid() {
		v.Add("kind", "must be invoice or quote")
	}
	if inv.IssueDate.IsZero() {
		v.Add("issue_date", "is required")
	}
	if !inv.DueDate.IsZero() && !inv.IssueDate.IsZero() && inv.DueDate.Before(inv.IssueDate) {
		v.Add("due_date", "must not be before issue_date")
	}
	if len(inv.Items) == 0 {
		v.Add("items", "at least one item is required")
	}
	for i, it := range inv.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		if strings.TrimSpace(it.Description) == "" {
			v.Add(prefix+"description", "is required")
		}
		if !it.Quantity.IsPositive() {
			v.Add(prefix+"quantity", "must be greater than zero")
		}
		if it.UnitPrice.IsNegative() {
			v.Add(prefix+"unit_price", "must not be negative")
		}
	}
	return v.Err()
}
