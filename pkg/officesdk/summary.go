package officesdk

import "github.com/shopspring/decimal"

// TagTransactions sets Status on every line: confirmed when a ledger account
// is linked, pending otherwise.
func TagTransactions(txs []Transaction) {
	for i := range txs {
		if txs[i].ContaContabilID != "" {
			txs[i].Status = StatusConfirmed
		} else {
			txs[i].Status = StatusPending
		}
	}
}

// Summarize counts and sums tagged lines. An empty list gives zeros.
func Summarize(txs []Transaction) (ResumoTransacoes, Totais) {
	r := ResumoTransacoes{Total: len(txs)}
	t := Totais{TotalCreditos: decimal.Zero, TotalDebitos: decimal.Zero}
	for _, tx := range txs {
		if tx.Status == StatusConfirmed {
			r.Confirmadas++
		} else {
			r.Pendentes++
		}
		switch tx.Tipo {
		case TipoCredito:
			t.TotalCreditos = t.TotalCreditos.Add(tx.Valor)
		case TipoDebito:
			t.TotalDebitos = t.TotalDebitos.Add(tx.Valor)
		}
	}
	t.SaldoFinal = t.TotalCreditos.Sub(t.TotalDebitos)
	return r, t
}
