package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

type Annex string

const (
	AnnexIII Annex = "III"
	AnnexV   Annex = "V"
)

func (a Annex) Valid() bool {
	return a == AnnexIII || a == AnnexV
}

// FatorRThreshold is the payroll to revenue ratio at which services move from
// Anexo V to Anexo III.
var FatorRThreshold = decimal.RequireFromString("0.28")

// SimplesLimit is the annual revenue ceiling of the Simples Nacional.
var SimplesLimit = decimal.NewFromInt(4_800_000)

var (
	ErrNonPositiveRevenue = errors.New("revenue must be greater than zero")
	ErrAboveSimplesLimit  = errors.New("revenue above the Simples Nacional limit")
	ErrUnknownAnnex       = errors.New("annex must be III or V")
)

type bracket struct {
	ceiling   decimal.Decimal
	rate      decimal.Decimal // nominal
	deduction decimal.Decimal
}

func br(ceiling int64, rate string, deduction int64) bracket {
	return bracket{
		ceiling:   decimal.NewFromInt(ceiling),
		rate:      decimal.RequireFromString(rate),
		deduction: decimal.NewFromInt(deduction),
	}
}

var simplesTables = map[Annex][]bracket{
	AnnexIII: {
		br(180_000, "0.06", 0),
		br(360_000, "0.112", 9_360),
		br(720_000, "0.135", 17_640),
		br(1_800_000, "0.16", 35_640),
		br(3_600_000, "0.21", 125_640),
		br(4_800_000, "0.33", 648_000),
	},
	AnnexV: {
		br(180_000, "0.155", 0),
		br(360_000, "0.18", 4_500),
		br(720_000, "0.195", 9_900),
		br(1_800_000, "0.205", 17_100),
		br(3_600_000, "0.23", 62_100),
		br(4_800_000, "0.305", 540_000),
	},
}

// FatorRResult is the outcome of the Fator R test.
type FatorRResult struct {
	Payroll12m    decimal.Decimal `json:"payroll_12m"`
	Revenue12m    decimal.Decimal `json:"revenue_12m"`
	Ratio         decimal.Decimal `json:"ratio"`
	Annex         Annex           `json:"annex"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
}

// FatorR divides the last 12 months of payroll by the last 12 months of gross
// revenue. A ratio of 28% or more places the activity in Anexo III.
func FatorR(payroll12m, revenue12m decimal.Decimal) (FatorRResult, error) {
	if !revenue12m.IsPositive() {
		return FatorRResult{}, ErrNonPositiveRevenue
	}
	if payroll12m.IsNegative() {
		return FatorRResult{}, errors.New("payroll must not be negative")
	}
	ratio := payroll12m.Div(revenue12m)
	annex := AnnexV
	if ratio.GreaterThanOrEqual(FatorRThreshold) {
		annex = AnnexIII
	}
	rate, err := SimplesRate(annex, revenue12m)
	if err != nil {
		return FatorRResult{}, err
	}
	return FatorRResult{
		Payroll12m:    payroll12m,
		Revenue12m:    revenue12m,
		Ratio:         ratio.Round(4),
		Annex:         annex,
		EffectiveRate: rate,
	}, nil
}

// SimplesRate is the effective rate (RBT12 * nominal - deduction) / RBT12,
// rounded to 4 decimal places for display.
func SimplesRate(annex Annex, revenue12m decimal.Decimal) (decimal.Decimal, error) {
	rate, err := effectiveRate(annex, revenue12m)
	if err != nil {
		return decimal.Zero, err
	}
	return rate.Round(4), nil
}

func effectiveRate(annex Annex, revenue12m decimal.Decimal) (decimal.Decimal, error) {
	table, ok := simplesTables[annex]
	if !ok {
		return decimal.Zero, ErrUnknownAnnex
	}
	if !revenue12m.IsPositive() {
		return decimal.Zero, ErrNonPositiveRevenue
	}
	for _, b := range table {
		if revenue12m.LessThanOrEqual(b.ceiling) {
			return revenue12m.Mul(b.rate).Sub(b.deduction).Div(revenue12m), nil
		}
	}
	return decimal.Zero, ErrAboveSimplesLimit
}

// DASEstimate is the monthly DAS for a given revenue history.
type DASEstimate struct {
	Annex         Annex           `json:"annex"`
	Revenue12m    decimal.Decimal `json:"revenue_12m"`
	RevenueMonth  decimal.Decimal `json:"revenue_month"`
	EffectiveRate decimal.Decimal `json:"effective_rate"`
	Amount        decimal.Decimal `json:"amount"`
	AmountDisplay string          `json:"amount_display"`
}

// EstimateDAS applies the effective rate to the month's revenue.
func EstimateDAS(annex Annex, revenue12m, revenueMonth decimal.Decimal) (DASEstimate, error) {
	if revenueMonth.IsNegative() {
		return DASEstimate{}, errors.New("monthly revenue must not be negative")
	}
	rate, err := effectiveRate(annex, revenue12m)
	if err != nil {
		return DASEstimate{}, err
	}
	amount := RoundMoney(revenueMonth.Mul(rate))
	return DASEstimate{
		Annex:         annex,
		Revenue12m:    revenue12m,
		RevenueMonth:  revenueMonth,
		EffectiveRate: rate.Round(4),
		Amount:        amount,
		AmountDisplay: FormatBRL(amount),
	}, nil
}
