package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/httpx"
	"github.com/aussiebroadwan/escritorio/pkg/jwtx"
	"github.com/aussiebroadwan/escritorio/pkg/slogx"

	_ "github.com/aussiebroadwan/escritorio/api/backoffice" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// MaxRequestBody caps every request body.
const MaxRequestBody = 1 << 20

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store                 store.Store
	AuthService           *service.AuthService
	UserService           *service.UserService
	ClientService         *service.ClientService
	InvoiceService        *service.InvoiceService
	ReconciliationService *service.ReconciliationService
	GuiaService           *service.GuiaService
	LeadService           *service.LeadService
	LicenseService        *service.LicenseService
	ChatService           *service.ChatService
	MEIService            *service.MEIService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	allowedOrigins string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recoverer,
		httpx.CORS(allowedOrigins),
		httpx.RequestBodyLimit(MaxRequestBody),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerClients()
	r.registerInvoices()
	r.registerReconciliation()
	r.registerGuias()
	r.registerLeads()
	r.registerLicenses()
	r.registerChat()
	r.registerMEI()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Escritório Back Office API
//	@version		0.1.0
//	@description	Back office and client portal API for an accounting firm: clients, invoices and quotes,
//	@description	bank reconciliation, guias fiscais, leads, licenses, chat and the MEI opening wizard.
//	@description
//	@description				Access tokens are EdDSA signed JWTs, verifiable with the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/escritorio
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured authenticates the caller, checks that the token carries one of
// scopes and rate limits per user.
func (r *Router) secured(h http.HandlerFunc, limit httpx.RateLimitConfig, scopes ...string) http.Handler {
	mws := []httpx.Middleware{httpx.AuthnMiddleware(r.verifier)}
	if len(scopes) > 0 {
		mws = append(mws, httpx.RequireAnyScope(scopes...))
	}
	mws = append(mws, httpx.RateLimitByUser(limit))
	return httpx.Chain(h, mws...)
}

// Scope sets shared by most routes. Portal callers are narrowed to their own
// client inside the services.
var (
	readers = []string{domain.ScopeRead, domain.ScopePortal}
	writers = []string{domain.ScopeWrite}
	admins  = []string{domain.ScopeAdmin}
	talkers = []string{domain.ScopeWrite, domain.ScopePortal}
)

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, UserService: r.UserService}

	// Credential endpoints are rate limited by IP to slow brute force.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh), httpx.RateLimitByIP(httpx.ModerateLimit)))
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout), httpx.RateLimitByIP(httpx.ModerateLimit)))

	r.Mux.Handle("GET /v1/auth/me", r.secured(h.HandleMe, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/auth/mfa/enroll", r.secured(h.HandleEnrollMFA, httpx.ModerateLimit, domain.ScopeRead))
	r.Mux.Handle("POST /v1/auth/mfa/verify", r.secured(h.HandleVerifyMFA, httpx.StrictLimit, domain.ScopeRead))
}

func (r *Router) registerUsers() {
	h := &AuthHandler{AuthService: r.AuthService, UserService: r.UserService}

	r.Mux.Handle("POST /v1/users", r.secured(h.HandleCreateUser, httpx.ModerateLimit, admins...))
	r.Mux.Handle("GET /v1/users", r.secured(h.HandleListUsers, httpx.ModerateLimit, admins...))
}

func (r *Router) registerClients() {
	h := &ClientsHandler{ClientService: r.ClientService}

	r.Mux.Handle("GET /v1/clients", r.secured(h.HandleList, httpx.LenientLimit, readers...))
	r.Mux.Handle("POST /v1/clients", r.secured(h.HandleCreate, httpx.ModerateLimit, writers...))
	r.Mux.Handle("GET /v1/clients/{id}", r.secured(h.HandleGet, httpx.LenientLimit, readers...))
	r.Mux.Handle("PUT /v1/clients/{id}", r.secured(h.HandleUpdate, httpx.ModerateLimit, writers...))
	r.Mux.Handle("DELETE /v1/clients/{id}", r.secured(h.HandleDelete, httpx.ModerateLimit, writers...))
	r.Mux.Handle("GET /v1/clients/{id}/summary", r.secured(h.HandleSummary, httpx.LenientLimit, readers...))
	r.Mux.Handle("GET /v1/clients/{id}/fator-r", r.secured(h.HandleFatorR, httpx.LenientLimit, readers...))
}

func (r *Router) registerInvoices() {
	h := &InvoicesHandler{InvoiceService: r.InvoiceService}

	r.Mux.Handle("GET /v1/invoices", r.secured(h.HandleList, httpx.LenientLimit, readers...))
	r.Mux.Handle("POST /v1/invoices", r.secured(h.HandleCreate, httpx.ModerateLimit, writers...))
	r.Mux.Handle("GET /v1/invoices/{id}", r.secured(h.HandleGet, httpx.LenientLimit, readers...))
	r.Mux.Handle("PUT /v1/invoices/{id}", r.secured(h.HandleUpdate, httpx.ModerateLimit, writers...))
	r.Mux.Handle("DELETE /v1/invoices/{id}", r.secured(h.HandleDelete, httpx.ModerateLimit, writers...))
	r.Mux.Handle("POST /v1/invoices/{id}/status", r.secured(h.HandleStatus, httpx.ModerateLimit, writers...))
	r.Mux.Handle("POST /v1/invoices/{id}/convert", r.secured(h.HandleConvert, httpx.ModerateLimit, writers...))
}

func (r *Router) registerReconciliation() {
	h := &ReconciliationHandler{ReconciliationService: r.ReconciliationService}

	r.Mux.Handle("POST /v1/reconciliations", r.secured(h.HandleCreate, httpx.ModerateLimit, writers...))
	r.Mux.Handle("GET /v1/reconciliations", r.secured(h.HandleList, httpx.LenientLimit, readers...))
	r.Mux.Handle("GET /v1/reconciliations/{id}", r.secured(h.HandleDetail, httpx.LenientLimit, readers...))
	r.Mux.Handle("GET /v1/reconciliations/{id}/transactions", r.secured(h.HandleTransactions, httpx.LenientLimit, readers...))
	r.Mux.Handle("POST /v1/reconciliations/{id}/transactions", r.secured(h.HandleImport, httpx.ModerateLimit, writers...))
	r.Mux.Handle("POST /v1/reconciliations/transactions/confirm", r.secured(h.HandleConfirm, httpx.LenientLimit, writers...))
	r.Mux.Handle("PUT /v1/reconciliations/transactions/{id}", r.secured(h.HandleUpdateTransaction, httpx.LenientLimit, writers...))
	r.Mux.Handle("POST /v1/reconciliations/{id}/finalize", r.secured(h.HandleFinalize, httpx.ModerateLimit, writers...))
	r.Mux.Handle("POST /v1/reconciliations/{id}/reopen", r.secured(h.HandleReopen, httpx.ModerateLimit, admins...))

	r.Mux.Handle("GET /v1/ledger-accounts", r.secured(h.HandleListLedgerAccounts, httpx.LenientLimit, domain.ScopeRead))
	r.Mux.Handle("POST /v1/ledger-accounts", r.secured(h.HandleCreateLedgerAccount, httpx.ModerateLimit, writers...))

	// Routes of the previous API generation, kept for older screens.
	r.Mux.Handle("GET /reconciliation/{id}", r.secured(h.HandleLegacyGet, httpx.LenientLimit, readers...))
	r.Mux.Handle("GET /conciliacao/{id}/transacoes", r.secured(h.HandleLegacyTransactions, httpx.LenientLimit, readers...))
	r.Mux.Handle("POST /conciliacao/confirmar", r.secured(h.HandleConfirm, httpx.LenientLimit, writers...))
	r.Mux.Handle("PUT /conciliacao/transacao/{id}", r.secured(h.HandleUpdateTransaction, httpx.LenientLimit, writers...))
	r.Mux.Handle("POST /conciliacao/{id}/finalizar", r.secured(h.HandleFinalize, httpx.ModerateLimit, writers...))
}

func (r *Router) registerGuias() {
	h := &GuiasHandler{GuiaService: r.GuiaService}

	r.Mux.Handle("GET /v1/guias", r.secured(h.HandleList, httpx.LenientLimit, readers...))
	r.Mux.Handle("POST /v1/guias", r.secured(h.HandleCreate, httpx.ModerateLimit, writers...))
	r.Mux.Handle("POST /v1/guias/das/estimate", r.secured(h.HandleEstimateDAS, httpx.LenientLimit, readers...))
	r.Mux.Handle("GET /v1/guias/{id}", r.secured(h.HandleGet, httpx.LenientLimit, readers...))
	r.Mux.Handle("PUT /v1/guias/{id}", r.secured(h.HandleUpdate, httpx.ModerateLimit, writers...))
	r.Mux.Handle("DELETE /v1/guias/{id}", r.secured(h.HandleDelete, httpx.ModerateLimit, writers...))
	r.Mux.Handle("POST /v1/guias/{id}/pay", r.secured(h.HandlePay, httpx.ModerateLimit, writers...))
	r.Mux.Handle("POST /v1/guias/{id}/cancel", r.secured(h.HandleCancel, httpx.ModerateLimit, writers...))
}

func (r *Router) registerLeads() {
	h := &LeadsHandler{LeadService: r.LeadService}

	r.Mux.Handle("GET /v1/leads", r.secured(h.HandleList, httpx.LenientLimit, domain.ScopeRead))
	r.Mux.Handle("POST /v1/leads", r.secured(h.HandleCreate, httpx.ModerateLimit, writers...))
	r.Mux.Handle("GET /v1/leads/{id}", r.secured(h.HandleGet, httpx.LenientLimit, domain.ScopeRead))
	r.Mux.Handle("PUT /v1/leads/{id}", r.secured(h.HandleUpdate, httpx.ModerateLimit, writers...))
	r.Mux.Handle("DELETE /v1/leads/{id}", r.secured(h.HandleDelete, httpx.ModerateLimit, writers...))
	r.Mux.Handle("POST /v1/leads/{id}/convert", r.secured(h.HandleConvert, httpx.ModerateLimit, writers...))
}

func (r *Router) registerLicenses() {
	h := &LicensesHandler{LicenseService: r.LicenseService}

	r.Mux.Handle("GET /v1/licenses", r.secured(h.HandleList, httpx.LenientLimit, readers...))
	r.Mux.Handle("POST /v1/licenses", r.secured(h.HandleCreate, httpx.ModerateLimit, writers...))
	r.Mux.Handle("GET /v1/licenses/{id}", r.secured(h.HandleGet, httpx.LenientLimit, readers...))
	r.Mux.Handle("PUT /v1/licenses/{id}", r.secured(h.HandleUpdate, httpx.ModerateLimit, writers...))
	r.Mux.Handle("DELETE /v1/licenses/{id}", r.secured(h.HandleDelete, httpx.ModerateLimit, writers...))
}

func (r *Router) registerChat() {
	h := &ChatHandler{ChatService: r.ChatService}

	r.Mux.Handle("GET /v1/chat/threads", r.secured(h.HandleListThreads, httpx.LenientLimit, readers...))
	r.Mux.Handle("POST /v1/chat/threads", r.secured(h.HandleCreateThread, httpx.ModerateLimit, talkers...))
	r.Mux.Handle("GET /v1/chat/threads/{id}/messages", r.secured(h.HandleMessages, httpx.LenientLimit, readers...))
	r.Mux.Handle("POST /v1/chat/threads/{id}/messages", r.secured(h.HandlePostMessage, httpx.LenientLimit, talkers...))
	r.Mux.Handle("POST /v1/chat/threads/{id}/close", r.secured(h.HandleCloseThread, httpx.ModerateLimit, writers...))

	// One long lived request per subscriber.
	r.Mux.Handle("GET /v1/chat/events", r.secured(h.HandleEvents, httpx.ModerateLimit, readers...))
}

func (r *Router) registerMEI() {
	h := &MEIHandler{MEIService: r.MEIService}

	r.Mux.Handle("GET /v1/mei", r.secured(h.HandleList, httpx.LenientLimit, domain.ScopeRead))
	r.Mux.Handle("POST /v1/mei", r.secured(h.HandleCreate, httpx.ModerateLimit, writers...))
	r.Mux.Handle("GET /v1/mei/schema/{step}", r.secured(h.HandleSchema, httpx.PublicLimit, domain.ScopeRead))
	r.Mux.Handle("GET /v1/mei/{id}", r.secured(h.HandleGet, httpx.LenientLimit, domain.ScopeRead))
	r.Mux.Handle("PUT /v1/mei/{id}/steps/{n}", r.secured(h.HandleSaveStep, httpx.LenientLimit, writers...))
	r.Mux.Handle("POST /v1/mei/{id}/submit", r.secured(h.HandleSubmit, httpx.ModerateLimit, writers...))
	r.Mux.Handle("POST /v1/mei/{id}/status", r.secured(h.HandleStatus, httpx.ModerateLimit, writers...))
}

func (r *Router) registerSystem() {
	// Health probes may be polled often.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
