package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type GuiaKind string

const (
	GuiaDAS     GuiaKind = "DAS"
	GuiaDARF    GuiaKind = "DARF"
	GuiaGPS     GuiaKind = "GPS"
	GuiaFGTS    GuiaKind = "FGTS"
	GuiaISS     GuiaKind = "ISS"
	GuiaDCTFWeb GuiaKind = "DCTFWEB"
)

func (k GuiaKind) Valid() bool {
	switch k {
	case GuiaDAS, GuiaDARF, GuiaGPS, GuiaFGTS, GuiaISS, GuiaDCTFWeb:
		return true
	}
	return false
}

type GuiaStatus string

const (
	GuiaPending   GuiaStatus = "pending"
	GuiaPaid      GuiaStatus = "paid"
	GuiaOverdue   GuiaStatus = "overdue"
	GuiaCancelled GuiaStatus = "cancelled"
)

// Guia is a tax payment slip issued for a client and competence.
type Guia struct {
	ID         string          `json:"id"`
	ClientID   string          `json:"client_id"`
	Kind       GuiaKind        `json:"kind"`
	Competence string          `json:"competence"` // YYYY-MM
	DueDate    Date            `json:"due_date"`
	Amount     decimal.Decimal `json:"amount"`
	Status     GuiaStatus      `json:"status"`
	Barcode    string          `json:"barcode,omitempty"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Open reports whether the guia still expects a payment.
func (g Guia) Open() bool {
	return g.Status == GuiaPending || g.Status == GuiaOverdue
}

// IsOverdue reports whether an unpaid guia is past its due date on day.
func (g Guia) IsOverdue(day Date) bool {
	return g.Status == GuiaPending && g.DueDate.Before(day)
}

func (g Guia) Validate() error {
	v := &ValidationError{}
	v.Require("client_id", g.ClientID)
	if !g.Kind.Valid() {
		v.Add("kind", "must be one of DAS, DARF, GPS, FGTS, ISS, DCTFWEB")
	}
	if !ValidPeriod(g.Competence) {
		v.Add("competence", "must be YYYY-MM")
	}
	if g.DueDate.IsZero() {
		v.Add("due_date", "is required")
	}
	if !g.Amount.IsPositive() {
		v.Add("amount", "must be greater than zero")
	}
	if b := OnlyDigits(g.Barcode); g.Barcode != "" && len(b) != 47 && len(b) != 48 {
		v.Add("barcode", "must have 47 or 48 digits")
	}
	return v.Err()
}
