package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

type MEIStatus string

const (
	MEIDraft      MEIStatus = "draft"
	MEISubmitted  MEIStatus = "submitted"
	MEIProcessing MEIStatus = "processing"
	MEICompleted  MEIStatus = "completed"
	MEIRejected   MEIStatus = "rejected"
)

// Wizard steps. StepReview is reached once the three data steps are valid.
const (
	StepPersonal = 1
	StepAddress  = 2
	StepActivity = 3
	StepReview   = 4
)

// MEIRevenueLimit is the annual revenue ceiling of a MEI.
var MEIRevenueLimit = decimal.NewFromInt(81_000)

// MaxSecondaryCNAEs is how many secondary activities a MEI may declare.
const MaxSecondaryCNAEs = 15

var meiTransitions = map[MEIStatus][]MEIStatus{
	MEISubmitted:  {MEIProcessing, MEIRejected},
	MEIProcessing: {MEICompleted, MEIRejected},
}

// CanMEITransition reports whether staff may move a registration from -> to.
func CanMEITransition(from, to MEIStatus) bool {
	return slices.Contains(meiTransitions[from], to)
}

type MEIPersonal struct {
	Name      string `json:"name" jsonschema:"minLength=3" jsonschema_description:"Full legal name of the entrepreneur"`
	CPF       string `json:"cpf" jsonschema:"minLength=11,maxLength=14" jsonschema_description:"CPF, with or without punctuation"`
	BirthDate Date   `json:"birth_date" jsonschema_description:"Birth date, YYYY-MM-DD. The entrepreneur must be at least 18."`
	Email     string `json:"email" jsonschema:"format=email"`
	Phone     string `json:"phone" jsonschema_description:"DDD plus number, 10 or 11 digits"`
}

type MEIAddress struct {
	CEP        string `json:"cep" jsonschema_description:"8 digit postal code"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district"`
	City       string `json:"city"`
	UF         string `json:"uf" jsonschema:"minLength=2,maxLength=2"`
}

// Business forms accepted by the Receita for a MEI.
var MEIBusinessForms = []string{
	"estabelecimento_fixo",
	"internet",
	"local_fixo_fora_da_loja",
	"correio",
	"porta_a_porta",
	"televenda",
	"maquina_automatica",
}

type MEIActivity struct {
	CNAEPrincipal    string          `json:"cnae_principal" jsonschema_description:"Main activity, 7 digit CNAE subclass"`
	CNAEsSecundarios []string        `json:"cnaes_secundarios,omitempty" jsonschema:"maxItems=15,uniqueItems=true"`
	Occupation       string          `json:"occupation" jsonschema_description:"Occupation as listed in the MEI table"`
	EstimatedRevenue decimal.Decimal `json:"estimated_revenue" jsonschema_description:"Expected annual revenue, at most 81000.00"`
	BusinessForm     string          `json:"business_form" jsonschema:"enum=estabelecimento_fixo,enum=internet,enum=local_fixo_fora_da_loja,enum=correio,enum=porta_a_porta,enum=televenda,enum=maquina_automatica"`
}

// MEIRegistration is one run of the MEI opening wizard.
type MEIRegistration struct {
	ID          string       `json:"id"`
	LeadID      string       `json:"lead_id,omitempty"`
	Status      MEIStatus    `json:"status"`
	CurrentStep int          `json:"current_step"`
	Personal    *MEIPersonal `json:"personal,omitempty"`
	Address     *MEIAddress  `json:"address,omitempty"`
	Activity    *MEIActivity `json:"activity,omitempty"`
	Reason      string       `json:"reason,omitempty"`
	SubmittedAt *time.Time   `json:"submitted_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Complete reports whether the three data steps have been accepted.
func (m MEIRegistration) Complete() bool {
	return m.CurrentStep >= StepReview && m.Personal != nil && m.Address != nil && m.Activity != nil
}

// Normalize trims the step and strips punctuation from CPF and phone.
func (p *MEIPersonal) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.CPF = OnlyDigits(p.CPF)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = OnlyDigits(p.Phone)
}

// ValidateAt checks the personal step with the age computed on day.
func (p MEIPersonal) ValidateAt(day Date) error {
	v := &ValidationError{}
	if len([]rune(p.Name)) < 3 {
		v.Add("name", "must have at least 3 characters")
	}
	if !ValidCPF(p.CPF) {
		v.Add("cpf", "must be a valid CPF")
	}
	switch {
	case p.BirthDate.IsZero():
		v.Add("birth_date", "is required")
	case AgeOn(p.BirthDate, day) < 18:
		v.Add("birth_date", "entrepreneur must be at least 18 years old")
	}
	if !ValidEmail(p.Email) {
		v.Add("email", "must be a valid email address")
	}
	if !ValidPhone(p.Phone) {
		v.Add("phone", "must have 10 or 11 digits")
	}
	return v.Err()
}

// AgeOn returns completed years between birth and day.
func AgeOn(birth, day Date) int {
	years := day.Year() - birth.Year()
	if day.Month() < birth.Month() || (day.Month() == birth.Month() && day.Day() < birth.Day()) {
		years--
	}
	return years
}

func (a *MEIAddress) Normalize() {
	a.CEP = OnlyDigits(a.CEP)
	a.Street = strings.TrimSpace(a.Street)
	a.Number = strings.TrimSpace(a.Number)
	a.District = strings.TrimSpace(a.District)
	a.City = strings.TrimSpace(a.City)
	a.UF = strings.ToUpper(strings.TrimSpace(a.UF))
}

func (a MEIAddress) Validate() error {
	v := &ValidationError{}
	if !ValidCEP(a.CEP) {
		v.Add("cep", "must have 8 digits")
	}
	v.Require("street", a.Street)
	v.Require("number", a.Number)
	v.Require("district", a.District)
	v.Require("city", a.City)
	if !ValidUF(a.UF) {
		v.Add("uf", "must be a valid UF")
	}
	return v.Err()
}

func (a *MEIActivity) Normalize() {
	a.CNAEPrincipal = OnlyDigits(a.CNAEPrincipal)
	for i, c := range a.CNAEsSecundarios {
		a.CNAEsSecundarios[i] = OnlyDigits(c)
	}
	a.Occupation = strings.TrimSpace(a.Occupation)
	a.BusinessForm = strings.TrimSpace(a.BusinessForm)
}

func (a MEIActivity) Validate() error {
	v := &ValidationError{}
	if !ValidCNAE(a.CNAEPrincipal) {
		v.Add("cnae_principal", "must be a 7 digit CNAE")
	}
	if len(a.CNAEsSecundarios) > MaxSecondaryCNAEs {
		v.Add("cnaes_secundarios", fmt.Sprintf("at most %d secondary activities", MaxSecondaryCNAEs))
	}
	seen := map[string]bool{}
	for i, c := range a.CNAEsSecundarios {
		field := fmt.Sprintf("cnaes_secundarios[%d]", i)
		switch {
		case !ValidCNAE(c):
			v.Add(field, "must be a 7 digit CNAE")
		case c == a.CNAEPrincipal:
			v.Add(field, "must differ from cnae_principal")
		case seen[c]:
			v.Add(field, "is duplicated")
		}
		seen[c] = true
	}
	v.Require("occupation", a.Occupation)
	switch {
	case !a.EstimatedRevenue.IsPositive():
		v.Add("estimated_revenue", "must be greater than zero")
	case a.EstimatedRevenue.GreaterThan(MEIRevenueLimit):
		v.Add("estimated_revenue", "must not exceed 81000.00")
	case a.EstimatedRevenue.Exponent() < -2:
		v.Add("estimated_revenue", "must have at most two decimal places")
	}
	if !slices.Contains(MEIBusinessForms, a.BusinessForm) {
		v.Add("business_form", "must be one of "+strings.Join(MEIBusinessForms, ", "))
	}
	return v.Err()
}

var schemaReflector = &jsonschema.Reflector{
	AllowAdditionalProperties: false,
	DoNotReference:            true,
	Mapper: func(t reflect.Type) *jsonschema.Schema {
		switch t {
		case reflect.TypeFor[decimal.Decimal]():
			// Amounts decode from either a JSON string or a JSON number.
			return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{
				{Type: "string", Pattern: `^[0-9]+(\.[0-9]{1,2})?$`},
				{Type: "number", ExclusiveMinimum: "0", MultipleOf: "0.01"},
			}}
		case reflect.TypeFor[Date]():
			return &jsonschema.Schema{Type: "string", Format: "date"}
		}
		return nil
	},
}

// StepSchema returns the JSON Schema of the payload accepted by step.
func StepSchema(step int) (*jsonschema.Schema, error) {
	var s *jsonschema.Schema
	switch step {
	case StepPersonal:
		s = schemaReflector.Reflect(&MEIPersonal{})
		s.Title = "MEI personal data"
	case StepAddress:
		s = schemaReflector.Reflect(&MEIAddress{})
		s.Title = "MEI address"
	case StepActivity:
		s = schemaReflector.Reflect(&MEIActivity{})
		s.Title = "MEI activity"
		if rev, ok := s.Properties.Get("estimated_revenue"); ok {
			for _, alt := range rev.AnyOf {
				if alt.Type == "number" {
					alt.Maximum = json.Number(MEIRevenueLimit.String())
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown step %d", step)
	}
	return s, nil
}
