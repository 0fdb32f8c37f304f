package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/shopspring/decimal"
)

// MaxStatementLines bounds a single statement import.
const MaxStatementLines = 5000

// ParseStatementCSV reads bank statement lines in the column order
// date,description,tipo,valor. A first row whose date column does not parse
// is treated as a header. Both ';' and ',' separated files are accepted, and
// valor may be written as 1234.56 or 1.234,56.
func ParseStatementCSV(r io.Reader) ([]domain.Transaction, error) {
	data, err := io.ReadAll(io.LimitReader(r, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read statement: %w", err)
	}
	text := strings.TrimPrefix(string(data), "\uFEFF")

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = sniffComma(text)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	v := &domain.ValidationError{}
	var out []domain.Transaction
	for i, rec := range records {
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		prefix := fmt.Sprintf("line[%d].", i+1)
		if len(rec) < 4 {
			v.Add(prefix+"columns", "expected date,description,tipo,valor")
			continue
		}
		date, derr := parseStatementDate(rec[0])
		if derr != nil {
			if i == 0 {
				continue // header
			}
			v.Add(prefix+"date", "must be YYYY-MM-DD or DD/MM/YYYY")
		}
		valor, verr := ParseAmount(rec[3])
		if verr != nil {
			v.Add(prefix+"valor", "is not a valid amount")
		}
		t := domain.Transaction{
			Date:        date,
			Description: strings.TrimSpace(rec[1]),
			Tipo:        domain.Tipo(strings.ToLower(strings.TrimSpace(rec[2]))),
			Valor:       valor,
		}
		// A signed amount without tipo decides the direction.
		if t.Tipo == "" && !valor.IsZero() {
			t.Tipo = domain.Credito
			if valor.IsNegative() {
				t.Tipo = domain.Debito
			}
		}
		t.Valor = t.Valor.Abs()
		out = append(out, t)
		if len(out) > MaxStatementLines {
			return nil, fmt.Errorf("%w: more than %d lines", ErrInvalidImport, MaxStatementLines)
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no lines", ErrInvalidImport)
	}
	return out, nil
}

func sniffComma(text string) rune {
	first, _, _ := strings.Cut(text, "\n")
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';'
	}
	return ','
}

func parseStatementDate(s string) (domain.Date, error) {
	s = strings.TrimSpace(s)
	if d, err := domain.ParseDate(s); err == nil {
		return d, nil
	}
	var dd, mm, yyyy int
	if n, _ := fmt.Sscanf(s, "%02d/%02d/%04d", &dd, &mm, &yyyy); n == 3 {
		return domain.ParseDate(fmt.Sprintf("%04d-%02d-%02d", yyyy, mm, dd))
	}
	return domain.Date{}, errors.New("unrecognised date")
}

// ParseAmount accepts 1234.56, 1234,56, 1.234,56 and R$ prefixes. When both
// separators appear the comma must be the decimal one. At most two decimal
// places are allowed, so 1.234 and 1,234.56 are rejected as ambiguous.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")

	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case comma >= 0 && dot > comma:
		return decimal.Zero, fmt.Errorf("ambiguous amount %q", s)
	case strings.Count(s, ",") > 1:
		return decimal.Zero, fmt.Errorf("ambiguous amount %q", s)
	case comma >= 0:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		return decimal.Zero, fmt.Errorf("ambiguous amount %q", s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return d, nil
}
