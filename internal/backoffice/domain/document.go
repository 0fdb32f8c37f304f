package domain

import (
	"regexp"
	"strings"
)

// OnlyDigits strips punctuation from CPF, CNPJ, CEP and phone inputs.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allSame(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}

func checkDigit(digits string, weights []int) byte {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + 11 - r)
}

// ValidCPF checks length and both check digits. Punctuation is ignored.
func ValidCPF(s string) bool {
	d := OnlyDigits(s)
	if len(d) != 11 || allSame(d) {
		return false
	}
	if checkDigit(d, []int{10, 9, 8, 7, 6, 5, 4, 3, 2}) != d[9] {
		return false
	}
	return checkDigit(d, []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}) == d[10]
}

// ValidCNPJ checks length and both check digits. Punctuation is ignored.
func ValidCNPJ(s string) bool {
	d := OnlyDigits(s)
	if len(d) != 14 || allSame(d) {
		return false
	}
	if checkDigit(d, []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}) != d[12] {
		return false
	}
	return checkDigit(d, []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}) == d[13]
}

// ValidDocument accepts either a CPF or a CNPJ.
func ValidDocument(s string) bool {
	switch len(OnlyDigits(s)) {
	case 11:
		return ValidCPF(s)
	case 14:
		return ValidCNPJ(s)
	}
	return false
}

var ufs = map[string]struct{}{
	"AC": {}, "AL": {}, "AP": {}, "AM": {}, "BA": {}, "CE": {}, "DF": {}, "ES": {}, "GO": {},
	"MA": {}, "MT": {}, "MS": {}, "MG": {}, "PA": {}, "PB": {}, "PR": {}, "PE": {}, "PI": {},
	"RJ": {}, "RN": {}, "RS": {}, "RO": {}, "RR": {}, "SC": {}, "SP": {}, "SE": {}, "TO": {},
}

// ValidUF reports whether uf is one of the 27 federative units.
func ValidUF(uf string) bool {
	_, ok := ufs[strings.ToUpper(strings.TrimSpace(uf))]
	return ok
}

// ValidCEP requires exactly 8 digits after punctuation is removed.
func ValidCEP(cep string) bool {
	return len(OnlyDigits(cep)) == 8
}

// ValidCNAE requires the 7 digit subclass code, e.g. 6201-5/01.
func ValidCNAE(code string) bool {
	return len(OnlyDigits(code)) == 7
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail is a shape check only.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidPhone accepts 10 or 11 digit Brazilian numbers (DDD + number).
func ValidPhone(s string) bool {
	n := len(OnlyDigits(s))
	return n == 10 || n == 11
}
