package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ReconciliationStatus string

const (
	ReconciliationOpen      ReconciliationStatus = "open"
	ReconciliationFinalized ReconciliationStatus = "finalized"
)

// Tipo is the direction of a bank statement line.
type Tipo string

const (
	Credito Tipo = "credito"
	Debito  Tipo = "debito"
)

func (t Tipo) Valid() bool {
	return t == Credito || t == Debito
}

type TransactionStatus string

const (
	TransactionConfirmed TransactionStatus = "confirmed"
	TransactionPending   TransactionStatus = "pending"
)

// Reconciliation is one client's bank account statement for a month.
type Reconciliation struct {
	ID          string               `json:"id"`
	ClientID    string               `json:"client_id"`
	Period      string               `json:"period"` // YYYY-MM
	Bank        string               `json:"bank"`
	Account     string               `json:"account"`
	Status      ReconciliationStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	FinalizedAt *time.Time           `json:"finalized_at,omitempty"`
}

func (r Reconciliation) Finalized() bool {
	return r.Status == ReconciliationFinalized
}

// Validate checks the fields supplied on creation.
func (r Reconciliation) Validate() error {
	v := &ValidationError{}
	v.Require("client_id", r.ClientID)
	if !ValidPeriod(r.Period) {
		v.Add("period", "must be YYYY-MM")
	}
	v.Require("bank", r.Bank)
	v.Require("account", r.Account)
	return v.Err()
}

// Transaction is a bank statement line. Status is never stored: a line is
// confirmed exactly when it is linked to a ledger account.
type Transaction struct {
	ID               string            `json:"id"`
	ReconciliationID string            `json:"reconciliation_id"`
	Date             Date              `json:"date"`
	Description      string            `json:"description"`
	Tipo             Tipo              `json:"tipo"`
	Valor            decimal.Decimal   `json:"valor"`
	ContaContabilID  string            `json:"contaContabilId,omitempty"`
	Status           TransactionStatus `json:"status"`
}

// DeriveStatus returns the status implied by the ledger link.
func (t Transaction) DeriveStatus() TransactionStatus {
	if t.ContaContabilID != "" {
		return TransactionConfirmed
	}
	return TransactionPending
}

// Tag sets Status from the ledger link.
func (t *Transaction) Tag() {
	t.Status = t.DeriveStatus()
}

// Validate checks an imported line.
func (t Transaction) Validate() error {
	v := &ValidationError{}
	if t.Date.IsZero() {
		v.Add("date", "is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		v.Add("description", "is required")
	}
	if !t.Tipo.Valid() {
		v.Add("tipo", "must be credito or debito")
	}
	if !t.Valor.IsPositive() {
		v.Add("valor", "must be greater than zero")
	} else if t.Valor.Exponent() < -2 {
		v.Add("valor", "must have at most two decimal places")
	}
	return v.Err()
}

type LedgerAccount struct {
	ID   string `json:"id"`
	Code string `json:"code"` // e.g. 1.1.01.001
	Name string `json:"name"`
	Kind string `json:"kind"` // asset, liability, equity, revenue, expense
}

var ledgerKinds = []string{"asset", "liability", "equity", "revenue", "expense"}

func (a LedgerAccount) Validate() error {
	v := &ValidationError{}
	v.Require("code", a.Code)
	v.Require("name", a.Name)
	ok := false
	for _, k := range ledgerKinds {
		ok = ok || a.Kind == k
	}
	if !ok {
		v.Add("kind", "must be one of "+strings.Join(ledgerKinds, ", "))
	}
	return v.Err()
}

// ResumoTransacoes counts lines by derived status.
type ResumoTransacoes struct {
	Total       int `json:"total"`
	Confirmadas int `json:"confirmadas"`
	Pendentes   int `json:"pendentes"`
}

// Totais are the credit and debit sums of a statement.
type Totais struct {
	TotalCreditos decimal.Decimal `json:"totalCreditos"`
	TotalDebitos  decimal.Decimal `json:"totalDebitos"`
	SaldoFinal    decimal.Decimal `json:"saldoFinal"`
}

// SummarizeTransactions counts and sums txs. Status is derived from the ledger
// link rather than trusted from the input. An empty list yields zeros.
func SummarizeTransactions(txs []Transaction) (ResumoTransacoes, Totais) {
	var r ResumoTransacoes
	t := Totais{TotalCreditos: decimal.Zero, TotalDebitos: decimal.Zero}
	for _, tx := range txs {
		r.Total++
		if tx.DeriveStatus() == TransactionConfirmed {
			r.Confirmadas++
		} else {
			r.Pendentes++
		}
		switch tx.Tipo {
		case Credito:
			t.TotalCreditos = t.TotalCreditos.Add(tx.Valor)
		case Debito:
			t.TotalDebitos = t.TotalDebitos.Add(tx.Valor)
		}
	}
	t.SaldoFinal = t.TotalCreditos.Sub(t.TotalDebitos)
	return r, t
}

// ReconciliationDetail is the payload of the detail endpoint.
type ReconciliationDetail struct {
	Reconciliation
	Transacoes []Transaction     `json:"transacoes"`
	Resumo     ResumoTransacoes  `json:"resumoTransacoes"`
	Totais     Totais            `json:"totais"`
	Display    map[string]string `json:"display"`
}

// NewReconciliationDetail tags every line and computes the summary.
func NewReconciliationDetail(r Reconciliation, txs []Transaction) ReconciliationDetail {
	if txs == nil {
		txs = []Transaction{}
	}
	for i := range txs {
		txs[i].Tag()
	}
	resumo, totais := SummarizeTransactions(txs)
	return ReconciliationDetail{
		Reconciliation: r,
		Transacoes:     txs,
		Resumo:         resumo,
		Totais:         totais,
		Display: map[string]string{
			"totalCreditos": FormatBRL(totais.TotalCreditos),
			"totalDebitos":  FormatBRL(totais.TotalDebitos),
			"saldoFinal":    FormatBRL(totais.SaldoFinal),
		},
	}
}
