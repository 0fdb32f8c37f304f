package officesdk

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// Health and auth
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the dependencies probed by /readyz.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// TokenResponse is the body of a successful login or refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	ClientID     string     `json:"client_id,omitempty"`
	MFAEnabledAt *time.Time `json:"mfa_enabled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
	ClientID string `json:"client_id,omitempty"`
}

// MFAEnrollment carries the TOTP secret shown once to the user.
type MFAEnrollment struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauth_url"`
}

// List is the envelope of every list endpoint.
type List[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// ============================================================================
// Clients
// ============================================================================

type Client struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	TradeName string    `json:"trade_name,omitempty"`
	Document  string    `json:"document"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	TaxRegime string    `json:"tax_regime"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

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

type FatorRResult struct {
	Payroll12m    decimal.Decimal `json:"payroll_12m"`
	Revenue12m    decimal.Decimal `json:"revenue_12m"`
	Ratio         decimal.Decimal `json:"ratio"`
	Annex         string          `json:"annex"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
}

// ============================================================================
// Invoices
// ============================================================================

type InvoiceItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// InvoiceInput is the editable part of an invoice or quote.
type InvoiceInput struct {
	ClientID  string        `json:"client_id"`
	Kind      string        `json:"kind"`
	IssueDate string        `json:"issue_date"`
	DueDate   string        `json:"due_date"`
	Notes     string        `json:"notes,omitempty"`
	Items     []InvoiceItem `json:"items"`
}

type Invoice struct {
	ID           string          `json:"id"`
	ClientID     string          `json:"client_id"`
	Kind         string          `json:"kind"`
	Number       string          `json:"number"`
	Status       string          `json:"status"`
	IssueDate    string          `json:"issue_date"`
	DueDate      string          `json:"due_date"`
	Notes        string          `json:"notes,omitempty"`
	Items        []InvoiceItem   `json:"items"`
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"total_display"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ============================================================================
// Reconciliation
// ============================================================================

const (
	TipoCredito = "credito"
	TipoDebito  = "debito"

	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
)

type Reconciliation struct {
	ID          string     `json:"id,omitempty"`
	ClientID    string     `json:"client_id"`
	Period      string     `json:"period"`
	Bank        string     `json:"bank"`
	Account     string     `json:"account"`
	Status      string     `json:"status,omitempty"`
	CreatedAt   time.Time  `json:"created_at,omitzero"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
}

type Transaction struct {
	ID               string          `json:"id,omitempty"`
	ReconciliationID string          `json:"reconciliation_id,omitempty"`
	Date             string          `json:"date"`
	Description      string          `json:"description"`
	Tipo             string          `json:"tipo"`
	Valor            decimal.Decimal `json:"valor"`
	ContaContabilID  string          `json:"contaContabilId,omitempty"`
	Status           string          `json:"status,omitempty"`
}

// TransactionUpdate edits a line. Nil fields are left alone; a pointer to ""
// unlinks the ledger account.
type TransactionUpdate struct {
	Description     *string `json:"description,omitempty"`
	ContaContabilID *string `json:"contaContabilId,omitempty"`
}

type ResumoTransacoes struct {
	Total       int `json:"total"`
	Confirmadas int `json:"confirmadas"`
	Pendentes   int `json:"pendentes"`
}

type Totais struct {
	TotalCreditos decimal.Decimal `json:"totalCreditos"`
	TotalDebitos  decimal.Decimal `json:"totalDebitos"`
	SaldoFinal    decimal.Decimal `json:"saldoFinal"`
}

type ReconciliationDetail struct {
	Reconciliation
	Transacoes []Transaction     `json:"transacoes"`
	Resumo     ResumoTransacoes  `json:"resumoTransacoes"`
	Totais     Totais            `json:"totais"`
	Display    map[string]string `json:"display,omitempty"`
}

type LedgerAccount struct {
	ID   string `json:"id,omitempty"`
	Code string `json:"code"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// ============================================================================
// Guias, leads, licenses
// ============================================================================

type Guia struct {
	ID         string          `json:"id,omitempty"`
	ClientID   string          `json:"client_id"`
	Kind       string          `json:"kind"`
	Competence string          `json:"competence"`
	DueDate    string          `json:"due_date"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status,omitempty"`
	Barcode    string          `json:"barcode,omitempty"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at,omitzero"`
}

type DASEstimate struct {
	Annex         string          `json:"annex"`
	Revenue12m    decimal.Decimal `json:"revenue_12m"`
	RevenueMonth  decimal.Decimal `json:"revenue_month"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
	Amount        decimal.Decimal `json:"amount"`
	AmountDisplay string          `json:"amount_display"`
}

type Lead struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Source    string    `json:"source,omitempty"`
	Status    string    `json:"status,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	ClientID  string    `json:"client_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

type ConvertLeadRequest struct {
	Document  string `json:"document"`
	TaxRegime string `json:"tax_regime"`
	TradeName string `json:"trade_name,omitempty"`
}

type ConvertLeadResponse struct {
	Lead   Lead   `json:"lead"`
	Client Client `json:"client"`
}

type License struct {
	ID        string `json:"id,omitempty"`
	ClientID  string `json:"client_id"`
	Kind      string `json:"kind"`
	Number    string `json:"number,omitempty"`
	Issuer    string `json:"issuer,omitempty"`
	IssuedAt  string `json:"issued_at"`
	ExpiresAt string `json:"expires_at"`
	Status    string `json:"status,omitempty"`
}

// ============================================================================
// Chat
// ============================================================================

type Thread struct {
	ID            string     `json:"id"`
	ClientID      string     `json:"client_id"`
	Subject       string     `json:"subject"`
	Status        string     `json:"status"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Message struct {
	ID         string    `json:"id"`
	ThreadID   string    `json:"thread_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChatEvent says that a thread changed. It carries no content; refetch.
type ChatEvent struct {
	Type     string `json:"type"`
	ThreadID string `json:"thread_id"`
}

// ============================================================================
// MEI wizard
// ============================================================================

type MEIRegistration struct {
	ID          string          `json:"id"`
	LeadID      string          `json:"lead_id,omitempty"`
	Status      string          `json:"status"`
	CurrentStep int             `json:"current_step"`
	Personal    json.RawMessage `json:"personal,omitempty"`
	Address     json.RawMessage `json:"address,omitempty"`
	Activity    json.RawMessage `json:"activity,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Token scopes.
const (
	ScopeRead   = "backoffice:read"
	ScopeWrite  = "backoffice:write"
	ScopeAdmin  = "admin"
	ScopePortal = "portal"
)
