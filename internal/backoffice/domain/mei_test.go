package domain_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/stretchr/testify/require"
)

func TestMEIPersonalValidate(t *testing.T) {
	today := mustDate(t, "2025-06-15")
	p := domain.MEIPersonal{
		Name:      "Maria da Silva",
		CPF:       "529.982.247-25",
		BirthDate: mustDate(t, "2007-06-15"),
		Email:     "Maria@Example.com ",
		Phone:     "(11) 98765-4321",
	}
	p.Normalize()
	require.NoError(t, p.ValidateAt(today))
	require.Equal(t, "52998224725", p.CPF)
	require.Equal(t, "maria@example.com", p.Email)

	p.BirthDate = mustDate(t, "2007-06-16")
	var ve *domain.ValidationError
	require.ErrorAs(t, p.ValidateAt(today), &ve)
	require.Contains(t, ve.Fields, "birth_date")
}

func TestMEIAddressValidate(t *testing.T) {
	a := domain.MEIAddress{CEP: "01310-100", Street: "Av. Paulista", Number: "1000", District: "Bela Vista", City: "São Paulo", UF: "sp"}
	a.Normalize()
	require.NoError(t, a.Validate())
	require.Equal(t, "SP", a.UF)

	a.UF = "ZZ"
	a.CEP = "123"
	var ve *domain.ValidationError
	require.ErrorAs(t, a.Validate(), &ve)
	require.Contains(t, ve.Fields, "uf")
	require.Contains(t, ve.Fields, "cep")
}

func TestMEIActivityValidate(t *testing.T) {
	a := domain.MEIActivity{
		CNAEPrincipal:    "4712-1/00",
		CNAEsSecundarios: []string{"4721-1/02"},
		Occupation:       "Comerciante de mercadorias em geral",
		EstimatedRevenue: dec("81000.00"),
		BusinessForm:     "estabelecimento_fixo",
	}
	a.Normalize()
	require.NoError(t, a.Validate())

	tests := []struct {
		name  string
		edit  func(*domain.MEIActivity)
		field string
	}{
		{"revenue above limit", func(a *domain.MEIActivity) { a.EstimatedRevenue = dec("81000.01") }, "estimated_revenue"},
		{"revenue below a cent", func(a *domain.MEIActivity) { a.EstimatedRevenue = dec("60000.001") }, "estimated_revenue"},
		{"secondary equals principal", func(a *domain.MEIActivity) { a.CNAEsSecundarios = []string{"4712100"} }, "cnaes_secundarios[0]"},
		{"duplicated secondary", func(a *domain.MEIActivity) { a.CNAEsSecundarios = []string{"4721102", "4721102"} }, "cnaes_secundarios[1]"},
		{"too many secondaries", func(a *domain.MEIActivity) {
			a.CNAEsSecundarios = nil
			for i := range 16 {
				a.CNAEsSecundarios = append(a.CNAEsSecundarios, fmt.Sprintf("47%05d", 11000+i))
			}
		}, "cnaes_secundarios"},
		{"unknown business form", func(a *domain.MEIActivity) { a.BusinessForm = "feira" }, "business_form"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := a
			c.CNAEsSecundarios = append([]string(nil), a.CNAEsSecundarios...)
			tt.edit(&c)
			var ve *domain.ValidationError
			require.ErrorAs(t, c.Validate(), &ve)
			require.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestStepSchema(t *testing.T) {
	for _, step := range []int{domain.StepPersonal, domain.StepAddress, domain.StepActivity} {
		s, err := domain.StepSchema(step)
		require.NoError(t, err)

		raw, err := json.Marshal(s)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(raw, &doc))
		require.Equal(t, "object", doc["type"])
		require.NotEmpty(t, doc["properties"])
	}

	s, err := domain.StepSchema(domain.StepActivity)
	require.NoError(t, err)
	rev, ok := s.Properties.Get("estimated_revenue")
	require.True(t, ok)
	require.Len(t, rev.AnyOf, 2)
	require.Equal(t, "string", rev.AnyOf[0].Type)
	require.Equal(t, "number", rev.AnyOf[1].Type)
	require.Equal(t, "81000", rev.AnyOf[1].Maximum.String())

	_, err = domain.StepSchema(9)
	require.Error(t, err)
}

func TestAgeOn(t *testing.T) {
	birth := mustDate(t, "2000-02-29")
	require.Equal(t, 17, domain.AgeOn(birth, mustDate(t, "2018-02-28")))
	require.Equal(t, 18, domain.AgeOn(birth, mustDate(t, "2018-03-01")))
}
