package domain

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// RoundMoney rounds to centavos, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatBRL renders d the way invoices and summaries display it, e.g.
// "R$1.234,56".
func FormatBRL(d decimal.Decimal) string {
	cents := RoundMoney(d).Shift(2).IntPart()
	return money.New(cents, money.BRL).Display()
}
