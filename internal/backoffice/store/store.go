package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. It exposes one sub-repository per
// aggregate so a transaction scoped Store can be handed to the same code.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Clients() Clients
	Invoices() Invoices
	Reconciliations() Reconciliations
	LedgerAccounts() LedgerAccounts
	Guias() Guias
	Leads() Leads
	Licenses() Licenses
	Chat() Chat
	MEI() MEI

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) error
	ListUsers(ctx context.Context) ([]domain.User, error)

	// UpdateMFASecret stores a sealed TOTP seed and clears mfa_enabled_at
	// until the user verifies a code.
	UpdateMFASecret(ctx context.Context, userID, sealed string) error
	EnableMFA(ctx context.Context, userID string, at time.Time) error

	IsEmpty(ctx context.Context) (bool, error)
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeSession revokes every token of a session, used on refresh reuse.
	RevokeSession(ctx context.Context, sessionID string) error

	// DeleteExpiredRefreshTokens removes expired or revoked tokens older than
	// before and returns how many were removed.
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}

type ClientFilter struct {
	Status domain.ClientStatus
	Query  string // matches name, trade name or document
}

type Clients interface {
	// CreateClient returns ErrAlreadyExists on a duplicate document.
	CreateClient(ctx context.Context, c domain.Client) error
	GetClient(ctx context.Context, id string) (domain.Client, error)
	ListClients(ctx context.Context, f ClientFilter) ([]domain.Client, error)
	UpdateClient(ctx context.Context, c domain.Client) error
	DeleteClient(ctx context.Context, id string) error

	// CountDependents counts invoices, reconciliations, guias, licenses and
	// chat threads that reference the client.
	CountDependents(ctx context.Context, id string) (int, error)
}

type InvoiceFilter struct {
	ClientID string
	Kind     domain.InvoiceKind
	Status   domain.InvoiceStatus
}

type Invoices interface {
	// NextNumber reserves the next sequence value for kind.
	NextNumber(ctx context.Context, kind domain.InvoiceKind) (int64, error)

	CreateInvoice(ctx context.Context, inv domain.Invoice) error
	GetInvoice(ctx context.Context, id string) (domain.Invoice, error)
	ListInvoices(ctx context.Context, f InvoiceFilter) ([]domain.Invoice, error)

	// UpdateInvoice replaces the editable fields and the item list.
	UpdateInvoice(ctx context.Context, inv domain.Invoice) error
	UpdateInvoiceStatus(ctx context.Context, id string, status domain.InvoiceStatus, at time.Time) error
	DeleteInvoice(ctx context.Context, id string) error
}

type ReconciliationFilter struct {
	ClientID string
	Period   string
	Status   domain.ReconciliationStatus
}

type Reconciliations interface {
	// CreateReconciliation returns ErrAlreadyExists when the client already
	// has a statement for the same period and account.
	CreateReconciliation(ctx context.Context, r domain.Reconciliation) error
	GetReconciliation(ctx context.Context, id string) (domain.Reconciliation, error)
	ListReconciliations(ctx context.Context, f ReconciliationFilter) ([]domain.Reconciliation, error)
	SetReconciliationStatus(ctx context.Context, id string, status domain.ReconciliationStatus, finalizedAt *time.Time) error

	CreateTransactions(ctx context.Context, txs []domain.Transaction) error
	GetTransaction(ctx context.Context, id string) (domain.Transaction, error)
	ListTransactions(ctx context.Context, reconciliationID string) ([]domain.Transaction, error)

	// ListClientTransactions returns every line of the client's statements
	// for period.
	ListClientTransactions(ctx context.Context, clientID, period string) ([]domain.Transaction, error)

	// UpdateTransaction writes description and ledger link. An empty
	// contaContabilID stores NULL.
	UpdateTransaction(ctx context.Context, id, description, contaContabilID string) error
}

type LedgerAccounts interface {
	// CreateLedgerAccount returns ErrAlreadyExists on a duplicate code.
	CreateLedgerAccount(ctx context.Context, a domain.LedgerAccount) error
	GetLedgerAccount(ctx context.Context, id string) (domain.LedgerAccount, error)
	ListLedgerAccounts(ctx context.Context) ([]domain.LedgerAccount, error)
}

type GuiaFilter struct {
	ClientID   string
	Status     domain.GuiaStatus
	Competence string
}

type Guias interface {
	CreateGuia(ctx context.Context, g domain.Guia) error
	GetGuia(ctx context.Context, id string) (domain.Guia, error)
	ListGuias(ctx context.Context, f GuiaFilter) ([]domain.Guia, error)
	UpdateGuia(ctx context.Context, g domain.Guia) error
	SetGuiaStatus(ctx context.Context, id string, status domain.GuiaStatus, paidAt *time.Time) error
	DeleteGuia(ctx context.Context, id string) error

	// MarkOverdue flips pending guias due before day to overdue.
	MarkOverdue(ctx context.Context, day domain.Date) (int64, error)
}

type LeadFilter struct {
	Status domain.LeadStatus
}

type Leads interface {
	CreateLead(ctx context.Context, l domain.Lead) error
	GetLead(ctx context.Context, id string) (domain.Lead, error)
	ListLeads(ctx context.Context, f LeadFilter) ([]domain.Lead, error)
	UpdateLead(ctx context.Context, l domain.Lead) error
	DeleteLead(ctx context.Context, id string) error
}

type LicenseFilter struct {
	ClientID string
}

type Licenses interface {
	CreateLicense(ctx context.Context, l domain.License) error
	GetLicense(ctx context.Context, id string) (domain.License, error)
	ListLicenses(ctx context.Context, f LicenseFilter) ([]domain.License, error)
	UpdateLicense(ctx context.Context, l domain.License) error
	DeleteLicense(ctx context.Context, id string) error
}

type ThreadFilter struct {
	ClientID string
	Status   domain.ThreadStatus
}

type Chat interface {
	CreateThread(ctx context.Context, t domain.Thread) error
	GetThread(ctx context.Context, id string) (domain.Thread, error)
	ListThreads(ctx context.Context, f ThreadFilter) ([]domain.Thread, error)
	SetThreadStatus(ctx context.Context, id string, status domain.ThreadStatus) error

	// CreateMessage inserts m and bumps the thread's last_message_at.
	CreateMessage(ctx context.Context, m domain.Message) error
	ListMessages(ctx context.Context, threadID string) ([]domain.Message, error)
}

type MEIFilter struct {
	Status domain.MEIStatus
}

type MEI interface {
	CreateRegistration(ctx context.Context, m domain.MEIRegistration) error
	GetRegistration(ctx context.Context, id string) (domain.MEIRegistration, error)
	ListRegistrations(ctx context.Context, f MEIFilter) ([]domain.MEIRegistration, error)

	// UpdateRegistration writes the whole record, step payloads included.
	UpdateRegistration(ctx context.Context, m domain.MEIRegistration) error
}
