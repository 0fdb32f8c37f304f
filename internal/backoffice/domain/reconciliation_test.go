package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSummarizeTransactions(t *testing.T) {
	tests := []struct {
		name     string
		txs      []domain.Transaction
		resumo   domain.ResumoTransacoes
		creditos string
		debitos  string
		saldo    string
	}{
		{
			name:     "empty",
			resumo:   domain.ResumoTransacoes{},
			creditos: "0", debitos: "0", saldo: "0",
		},
		{
			name: "credit and debit",
			txs: []domain.Transaction{
				{Tipo: domain.Credito, Valor: dec("100")},
				{Tipo: domain.Debito, Valor: dec("40")},
			},
			resumo:   domain.ResumoTransacoes{Total: 2, Pendentes: 2},
			creditos: "100", debitos: "40", saldo: "60",
		},
		{
			name: "status derived from ledger link",
			txs: []domain.Transaction{
				{Tipo: domain.Credito, Valor: dec("10.10"), ContaContabilID: "acc", Status: domain.TransactionPending},
				{Tipo: domain.Debito, Valor: dec("20.20"), Status: domain.TransactionConfirmed},
				{Tipo: domain.Debito, Valor: dec("0.05"), ContaContabilID: "acc"},
			},
			resumo:   domain.ResumoTransacoes{Total: 3, Confirmadas: 2, Pendentes: 1},
			creditos: "10.10", debitos: "20.25", saldo: "-10.15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resumo, totais := domain.SummarizeTransactions(tt.txs)
			require.Equal(t, tt.resumo, resumo)
			require.True(t, dec(tt.creditos).Equal(totais.TotalCreditos), totais.TotalCreditos.String())
			require.True(t, dec(tt.debitos).Equal(totais.TotalDebitos), totais.TotalDebitos.String())
			require.True(t, dec(tt.saldo).Equal(totais.SaldoFinal), totais.SaldoFinal.String())
		})
	}
}

func TestNewReconciliationDetail(t *testing.T) {
	detail := domain.NewReconciliationDetail(domain.Reconciliation{ID: "r1"}, []domain.Transaction{
		{ID: "a", Tipo: domain.Credito, Valor: dec("1234.56"), ContaContabilID: "acc"},
		{ID: "b", Tipo: domain.Debito, Valor: dec("34.56")},
	})

	require.Equal(t, domain.TransactionConfirmed, detail.Transacoes[0].Status)
	require.Equal(t, domain.TransactionPending, detail.Transacoes[1].Status)
	require.Equal(t, 1, detail.Resumo.Pendentes)
	require.Equal(t, "R$1.234,56", detail.Display["totalCreditos"])
	require.Equal(t, "R$1.200,00", detail.Display["saldoFinal"])

	empty := domain.NewReconciliationDetail(domain.Reconciliation{ID: "r2"}, nil)
	require.NotNil(t, empty.Transacoes)
	require.Equal(t, "R$0,00", empty.Display["saldoFinal"])
}

func TestTransactionValidate(t *testing.T) {
	d, err := domain.ParseDate("2025-03-10")
	require.NoError(t, err)

	ok := domain.Transaction{Date: d, Description: "PIX recebido", Tipo: domain.Credito, Valor: dec("1")}
	require.NoError(t, ok.Validate())

	var ve *domain.ValidationError
	require.ErrorAs(t, domain.Transaction{Tipo: "x", Valor: dec("0")}.Validate(), &ve)
	require.Len(t, ve.Fields, 4)

	subCent := ok
	subCent.Valor = dec("1.234")
	require.ErrorAs(t, subCent.Validate(), &ve)
	require.Contains(t, ve.Fields, "valor")
}

func TestFormatBRL(t *testing.T) {
	require.Equal(t, "R$0,00", domain.FormatBRL(decimal.Zero))
	require.Equal(t, "R$1.234.567,89", domain.FormatBRL(dec("1234567.891")))
	require.Equal(t, "-R$60,00", domain.FormatBRL(dec("-60")))
	require.Equal(t, "R$0,01", domain.FormatBRL(dec("0.005")))
}
