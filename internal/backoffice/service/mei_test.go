package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/stretchr/testify/require"
)

const (
	personalStep = `{"name":"Maria Souza","cpf":"529.982.247-25","birth_date":"1990-05-17","email":"maria@exemplo.com","phone":"(11) 98765-4321"}`
	addressStep  = `{"cep":"01310-100","street":"Av. Paulista","number":"1000","district":"Bela Vista","city":"São Paulo","uf":"sp"}`
	activityStep = `{"cnae_principal":"4712-1/00","cnaes_secundarios":["5611-2/03"],"occupation":"Comerciante de mercadorias em geral","estimated_revenue":"60000","business_form":"estabelecimento_fixo"}`
)

func TestMEIWizard(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &MEIService{Store: st, Now: fixedNow("2026-03-20T12:00:00Z")}

	_, err := svc.Create(ctx, "missing-lead")
	requireField(t, err, "lead_id")

	reg, err := svc.Create(ctx, "")
	require.NoError(t, err)
	require.Equal(t, domain.MEIDraft, reg.Status)
	require.Equal(t, domain.StepPersonal, reg.CurrentStep)

	t.Run("steps are gated", func(t *testing.T) {
		_, err := svc.SaveStep(ctx, reg.ID, domain.StepAddress, json.RawMessage(addressStep))
		require.ErrorIs(t, err, ErrStepOutOfOrder)

		_, err = svc.SaveStep(ctx, reg.ID, 7, json.RawMessage(`{}`))
		require.ErrorIs(t, err, ErrUnknownStep)

		_, err = svc.Submit(ctx, reg.ID)
		require.ErrorIs(t, err, ErrRegistrationIncomplete)
	})

	t.Run("invalid step does not advance", func(t *testing.T) {
		_, err := svc.SaveStep(ctx, reg.ID, domain.StepPersonal, json.RawMessage(`{"name":"Jo","cpf":"111.111.111-11","birth_date":"2010-01-01","email":"x","phone":"1"}`))
		requireField(t, err, "name")
		requireField(t, err, "cpf")
		requireField(t, err, "birth_date")

		_, err = svc.SaveStep(ctx, reg.ID, domain.StepPersonal, json.RawMessage(`{"nome":"Maria"}`))
		requireField(t, err, "body")

		got, err := svc.Get(ctx, reg.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StepPersonal, got.CurrentStep)
		require.Nil(t, got.Personal)
	})

	reg, err = svc.SaveStep(ctx, reg.ID, domain.StepPersonal, json.RawMessage(personalStep))
	require.NoError(t, err)
	require.Equal(t, domain.StepAddress, reg.CurrentStep)
	require.Equal(t, "52998224725", reg.Personal.CPF)

	reg, err = svc.SaveStep(ctx, reg.ID, domain.StepAddress, json.RawMessage(addressStep))
	require.NoError(t, err)
	require.Equal(t, "SP", reg.Address.UF)

	t.Run("numeric revenue matches the published schema", func(t *testing.T) {
		other, err := svc.Create(ctx, "")
		require.NoError(t, err)
		_, err = svc.SaveStep(ctx, other.ID, domain.StepPersonal, json.RawMessage(personalStep))
		require.NoError(t, err)
		_, err = svc.SaveStep(ctx, other.ID, domain.StepAddress, json.RawMessage(addressStep))
		require.NoError(t, err)

		numeric := `{"cnae_principal":"4712100","occupation":"Comerciante","estimated_revenue":60000.5,"business_form":"estabelecimento_fixo"}`
		got, err := svc.SaveStep(ctx, other.ID, domain.StepActivity, json.RawMessage(numeric))
		require.NoError(t, err)
		require.True(t, dec("60000.5").Equal(got.Activity.EstimatedRevenue))

		_, err = svc.SaveStep(ctx, other.ID, domain.StepActivity, json.RawMessage(`{"cnae_principal":"4712100","occupation":"Comerciante","estimated_revenue":"60000.001","business_form":"estabelecimento_fixo"}`))
		requireField(t, err, "estimated_revenue")
	})

	reg, err = svc.SaveStep(ctx, reg.ID, domain.StepActivity, json.RawMessage(activityStep))
	require.NoError(t, err)
	require.Equal(t, domain.StepReview, reg.CurrentStep)
	require.Equal(t, "4712100", reg.Activity.CNAEPrincipal)

	t.Run("editing an earlier step keeps progress", func(t *testing.T) {
		edited, err := svc.SaveStep(ctx, reg.ID, domain.StepPersonal, json.RawMessage(personalStep))
		require.NoError(t, err)
		require.Equal(t, domain.StepReview, edited.CurrentStep)
	})

	submitted, err := svc.Submit(ctx, reg.ID)
	require.NoError(t, err)
	require.Equal(t, domain.MEISubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)

	_, err = svc.SaveStep(ctx, reg.ID, domain.StepPersonal, json.RawMessage(personalStep))
	require.ErrorIs(t, err, ErrRegistrationLocked)
	_, err = svc.Submit(ctx, reg.ID)
	require.ErrorIs(t, err, ErrRegistrationLocked)

	t.Run("staff processing", func(t *testing.T) {
		_, err := svc.SetStatus(ctx, reg.ID, domain.MEICompleted, "")
		require.ErrorIs(t, err, ErrInvalidTransition)

		_, err = svc.SetStatus(ctx, reg.ID, domain.MEIRejected, "")
		requireField(t, err, "reason")

		processing, err := svc.SetStatus(ctx, reg.ID, domain.MEIProcessing, "")
		require.NoError(t, err)
		require.Equal(t, domain.MEIProcessing, processing.Status)

		done, err := svc.SetStatus(ctx, reg.ID, domain.MEICompleted, "")
		require.NoError(t, err)
		require.Equal(t, domain.MEICompleted, done.Status)

		list, err := svc.List(ctx, store.MEIFilter{Status: domain.MEICompleted})
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.NotNil(t, list[0].Activity)
	})
}

func TestMEISchema(t *testing.T) {
	t.Parallel()
	svc := &MEIService{}

	s, err := svc.Schema(domain.StepAddress)
	require.NoError(t, err)
	require.Equal(t, "MEI address", s.Title)

	_, err = svc.Schema(domain.StepReview)
	require.ErrorIs(t, err, ErrUnknownStep)
}
