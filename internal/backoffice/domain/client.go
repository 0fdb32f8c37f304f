package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TaxRegime string

const (
	RegimeMEI             TaxRegime = "mei"
	RegimeSimplesNacional TaxRegime = "simples_nacional"
	RegimeLucroPresumido  TaxRegime = "lucro_presumido"
	RegimeLucroReal       TaxRegime = "lucro_real"
)

func (r TaxRegime) Valid() bool {
	switch r {
	case RegimeMEI, RegimeSimplesNacional, RegimeLucroPresumido, RegimeLucroReal:
		return true
	}
	return false
}

type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
)

type Client struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	TradeName string       `json:"trade_name,omitempty"`
	Document  string       `json:"document"` // CPF or CNPJ, digits only
	Email     string       `json:"email,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	TaxRegime TaxRegime    `json:"tax_regime"`
	Status    ClientStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Normalize trims inputs, strips document punctuation and applies defaults.
func (c *Client) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.TradeName = strings.TrimSpace(c.TradeName)
	c.Document = OnlyDigits(c.Document)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = OnlyDigits(c.Phone)
	if c.Status == "" {
		c.Status = ClientActive
	}
}

// Validate checks a normalized client.
func (c Client) Validate() error {
	v := &ValidationError{}
	v.Require("name", c.Name)
	switch {
	case c.Document == "":
		v.Add("document", "is required")
	case !ValidDocument(c.Document):
		v.Add("document", "must be a valid CPF or CNPJ")
	}
	if c.Email != "" && !ValidEmail(c.Email) {
		v.Add("email", "must be a valid email address")
	}
	if c.Phone != "" && !ValidPhone(c.Phone) {
		v.Add("phone", "must have 10 or 11 digits")
	}
	if !c.TaxRegime.Valid() {
		v.Add("tax_regime", "must be one of mei, simples_nacional, lucro_presumido, lucro_real")
	}
	if c.Status != ClientActive && c.Status != ClientInactive {
		v.Add("status", "must be active or inactive")
	}
	return v.Err()
}

// ClientSummary aggregates a client's position for one period.
type ClientSummary struct {
	ClientID          string            `json:"client_id"`
	Period            string            `json:"period"`
	Resumo            ResumoTransacoes  `json:"resumoTransacoes"`
	Totais            Totais            `json:"totais"`
	OpenInvoices      int               `json:"open_invoices"`
	OpenInvoicesTotal decimal.Decimal   `json:"open_invoices_total"`
	PendingGuias      int               `json:"pending_guias"`
	OverdueGuias      int               `json:"overdue_guias"`
	GuiasDue          decimal.Decimal   `json:"guias_due"`
	ExpiringLicenses  int               `json:"expiring_licenses"`
	Display           map[string]string `json:"display"`
}
