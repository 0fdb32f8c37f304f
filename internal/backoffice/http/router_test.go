package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store/drivers/sqlite"
	"github.com/aussiebroadwan/escritorio/pkg/cryptox"
	"github.com/aussiebroadwan/escritorio/pkg/httpx"
	"github.com/aussiebroadwan/escritorio/pkg/jwtx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const cnpjPadaria = "11.222.333/0001-81"

type testEnv struct {
	t      *testing.T
	router *Router
	admin  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{Issuer: "escritorio-test", Audience: []string{"backoffice"}})
	require.NoError(t, err)
	sealer, err := cryptox.NewSealer([]byte("test-pepper"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRouter(km.KeySet, km.Verifier, "test", "", st, logger)
	r.AuthService = &service.AuthService{
		Store:      st,
		KeyManager: km,
		Sealer:     sealer,
		Issuer:     "escritorio-test",
		Audience:   []string{"backoffice"},
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
	r.UserService = &service.UserService{Store: st}
	r.ClientService = &service.ClientService{Store: st}
	r.InvoiceService = &service.InvoiceService{Store: st}
	r.ReconciliationService = &service.ReconciliationService{Store: st}
	r.GuiaService = &service.GuiaService{Store: st}
	r.LeadService = &service.LeadService{Store: st}
	r.LicenseService = &service.LicenseService{Store: st}
	r.ChatService = &service.ChatService{Store: st, Hub: service.NewHub()}
	r.MEIService = &service.MEIService{Store: st}
	r.ApplyRoutes()

	created, err := r.UserService.Bootstrap(ctx, "admin", "correct-horse")
	require.NoError(t, err)
	require.True(t, created)

	env := &testEnv{t: t, router: r}
	env.admin = env.login("admin", "correct-horse")
	return env
}

// do sends a JSON request through the full middleware chain.
func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(username, password string) string {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/v1/auth/login", "", LoginRequest{Username: username, Password: password})
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())
	var pair domain.TokenPair
	decode(e.t, rec, &pair)
	return pair.AccessToken
}

func (e *testEnv) createClient(document string) domain.Client {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/v1/clients", e.admin, domain.Client{
		Name:      "Padaria Pão Quente Ltda",
		Document:  document,
		TaxRegime: domain.RegimeSimplesNacional,
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	var c domain.Client
	decode(e.t, rec, &c)
	return c
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func mustDec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) httpx.ErrorResponse {
	t.Helper()
	var e httpx.ErrorResponse
	decode(t, rec, &e)
	return e
}

func TestAuthRoutes(t *testing.T) {
	env := newTestEnv(t)

	t.Run("wrong password", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/v1/auth/login", "", LoginRequest{Username: "admin", Password: "nope-nope"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, httpx.CodeInvalidGrant, errorCode(t, rec).Error)
	})

	t.Run("me", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/v1/auth/me", env.admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var u domain.User
		decode(t, rec, &u)
		require.Equal(t, "admin", u.Username)
		require.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("missing token", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/v1/clients", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/v1/auth/login", "", "{not json")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPortalScope(t *testing.T) {
	env := newTestEnv(t)
	padaria := env.createClient(cnpjPadaria)
	other := env.createClient("11.444.777/0001-61")

	rec := env.do(http.MethodPost, "/v1/users", env.admin, service.CreateUserInput{
		Username: "padaria",
		Name:     "Dona Rosa",
		Password: "pao-de-queijo",
		Role:     domain.RoleClient,
		ClientID: padaria.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	portal := env.login("padaria", "pao-de-queijo")

	rec = env.do(http.MethodGet, "/v1/clients", portal, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list listResponse[domain.Client]
	decode(t, rec, &list)
	require.Equal(t, 1, list.Count)
	require.Equal(t, padaria.ID, list.Items[0].ID)

	rec = env.do(http.MethodGet, "/v1/clients/"+other.ID, portal, nil)
	require.Contains(t, []int{http.StatusForbidden, http.StatusNotFound}, rec.Code)

	rec = env.do(http.MethodPost, "/v1/clients", portal, domain.Client{Name: "X", Document: cnpjPadaria})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, httpx.CodeInsufficientScope, errorCode(t, rec).Error)

	rec = env.do(http.MethodGet, "/v1/leads", portal, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestValidationErrorBody(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/clients", env.admin, domain.Client{Name: "Sem Documento", Document: "123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := errorCode(t, rec)
	require.Equal(t, httpx.CodeValidation, body.Error)
	require.Contains(t, body.Fields, "document")

	env.createClient(cnpjPadaria)
	rec = env.do(http.MethodPost, "/v1/clients", env.admin, domain.Client{
		Name: "Outra", Document: cnpjPadaria, TaxRegime: domain.RegimeSimplesNacional,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodGet, "/v1/clients/does-not-exist", env.admin, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, httpx.CodeNotFound, errorCode(t, rec).Error)
}

func TestReconciliationRoutes(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(cnpjPadaria)

	rec := env.do(http.MethodPost, "/v1/ledger-accounts", env.admin, domain.LedgerAccount{
		Code: "1.1.01.001", Name: "Caixa", Kind: "asset",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var account domain.LedgerAccount
	decode(t, rec, &account)

	rec = env.do(http.MethodPost, "/v1/reconciliations", env.admin, domain.Reconciliation{
		ClientID: client.ID, Period: "2026-03", Bank: "Banco do Brasil", Account: "12345-6",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var recon domain.Reconciliation
	decode(t, rec, &recon)

	csv := "data;descricao;tipo;valor\n" +
		"02/03/2026;Venda cartão;credito;100,00\n" +
		"05/03/2026;Aluguel;debito;40,00\n"
	req := httptest.NewRequest(http.MethodPost, "/v1/reconciliations/"+recon.ID+"/transactions", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+env.admin)
	imp := httptest.NewRecorder()
	env.router.ServeHTTP(imp, req)
	require.Equal(t, http.StatusOK, imp.Code, imp.Body.String())

	var detail domain.ReconciliationDetail
	decode(t, imp, &detail)
	require.Len(t, detail.Transacoes, 2)
	require.Equal(t, 2, detail.Resumo.Pendentes)
	require.True(t, detail.Totais.TotalCreditos.Equal(mustDec("100")))
	require.True(t, detail.Totais.TotalDebitos.Equal(mustDec("40")))
	require.True(t, detail.Totais.SaldoFinal.Equal(mustDec("60")))

	t.Run("oversized statement", func(t *testing.T) {
		line := "02/03/2026;Venda cartão;credito;100,00\n"
		big := "data;descricao;tipo;valor\n" + strings.Repeat(line, MaxRequestBody/len(line)+64)
		req := httptest.NewRequest(http.MethodPost, "/v1/reconciliations/"+recon.ID+"/transactions", strings.NewReader(big))
		req.Header.Set("Content-Type", "text/csv")
		req.Header.Set("Authorization", "Bearer "+env.admin)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
		require.Equal(t, httpx.CodeTooLarge, errorCode(t, rec).Error)
	})

	t.Run("finalize refused while pending", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/v1/reconciliations/"+recon.ID+"/finalize", env.admin, nil)
		require.Equal(t, http.StatusConflict, rec.Code)
		var pending PendingResponse
		decode(t, rec, &pending)
		require.Equal(t, "pending_transactions", pending.Error)
		require.Equal(t, 2, pending.Pendentes)
	})

	t.Run("legacy header and lines", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/reconciliation/"+recon.ID, env.admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotContains(t, rec.Body.String(), "transacoes")

		rec = env.do(http.MethodGet, "/conciliacao/"+recon.ID+"/transacoes", env.admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var lines []domain.Transaction
		decode(t, rec, &lines)
		require.Len(t, lines, 2)
	})

	first, second := detail.Transacoes[0], detail.Transacoes[1]

	rec = env.do(http.MethodPost, "/conciliacao/confirmar", env.admin, ConfirmRequest{
		TransacaoID: first.ID, ContaContabilID: account.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var confirmed domain.Transaction
	decode(t, rec, &confirmed)
	require.Equal(t, domain.TransactionConfirmed, confirmed.Status)

	rec = env.do(http.MethodPut, "/conciliacao/transacao/"+second.ID, env.admin,
		map[string]string{"contaContabilId": account.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/conciliacao/"+recon.ID+"/finalizar", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &detail)
	require.Equal(t, domain.ReconciliationFinalized, detail.Status)
	require.Equal(t, 0, detail.Resumo.Pendentes)

	rec = env.do(http.MethodPost, "/v1/reconciliations/"+recon.ID+"/transactions", env.admin,
		[]map[string]string{{"date": "2026-03-10", "description": "Tarifa", "tipo": "debito", "valor": "9.90"}})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodPost, "/v1/reconciliations/"+recon.ID+"/reopen", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestMEIRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/v1/mei/schema/2", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "cep")

	rec = env.do(http.MethodGet, "/v1/mei/schema/9", env.admin, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, "/v1/mei", env.admin, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg domain.MEIRegistration
	decode(t, rec, &reg)

	rec = env.do(http.MethodPut, "/v1/mei/"+reg.ID+"/steps/3", env.admin, map[string]any{})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodPut, "/v1/mei/"+reg.ID+"/steps/1", env.admin, map[string]any{"nome_errado": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/v1/mei/"+reg.ID+"/submit", env.admin, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestChatEventStream(t *testing.T) {
	env := newTestEnv(t)
	client := env.createClient(cnpjPadaria)

	rec := env.do(http.MethodPost, "/v1/chat/threads", env.admin, CreateThreadRequest{ClientID: client.ID, Subject: "DAS de março"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var thread domain.Thread
	decode(t, rec, &thread)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/chat/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.admin)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	require.Equal(t, ": connected", lines.Text())

	rec = env.do(http.MethodPost, "/v1/chat/threads/"+thread.ID+"/messages", env.admin, PostMessageRequest{Body: "Segue a guia."})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var event, data string
	for lines.Scan() {
		line := lines.Text()
		if v, ok := strings.CutPrefix(line, "event: "); ok {
			event = v
		}
		if v, ok := strings.CutPrefix(line, "data: "); ok {
			data = v
			break
		}
	}
	require.Equal(t, "message", event)
	var ev domain.ChatEvent
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	require.Equal(t, thread.ID, ev.ThreadID)
}

func TestHealthRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"database":"ok"`)

	rec = env.do(http.MethodGet, "/.well-known/jwks.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "OKP")
}
