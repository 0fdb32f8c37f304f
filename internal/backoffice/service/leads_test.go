package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/stretchr/testify/require"
)

func TestLeads(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &LeadService{Store: st}

	lead, err := svc.Create(ctx, domain.Lead{Name: " Maria Souza ", Email: "Maria@Exemplo.com", Phone: "(11) 98765-4321", Source: "site"})
	require.NoError(t, err)
	require.Equal(t, domain.LeadNew, lead.Status)
	require.Equal(t, "maria@exemplo.com", lead.Email)
	require.Equal(t, "11987654321", lead.Phone)

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.Lead{Name: "Sem contato"})
		requireField(t, err, "email")

		_, err = svc.Create(ctx, domain.Lead{Name: "Direto", Email: "a@b.com", Status: domain.LeadConverted})
		requireField(t, err, "status")
	})

	t.Run("update", func(t *testing.T) {
		lead.Status = domain.LeadQualified
		lead.Notes = "quer abrir MEI"
		updated, err := svc.Update(ctx, lead.ID, lead)
		require.NoError(t, err)
		require.Equal(t, domain.LeadQualified, updated.Status)

		list, err := svc.List(ctx, store.LeadFilter{Status: domain.LeadQualified})
		require.NoError(t, err)
		require.Len(t, list, 1)

		_, err = svc.List(ctx, store.LeadFilter{Status: "hot"})
		requireField(t, err, "status")
	})

	t.Run("convert", func(t *testing.T) {
		_, _, err := svc.Convert(ctx, lead.ID, ConvertLeadInput{Document: "123", TaxRegime: domain.RegimeMEI})
		requireField(t, err, "document")

		converted, client, err := svc.Convert(ctx, lead.ID, ConvertLeadInput{Document: cpfMaria, TaxRegime: domain.RegimeMEI})
		require.NoError(t, err)
		require.Equal(t, domain.LeadConverted, converted.Status)
		require.Equal(t, client.ID, converted.ClientID)
		require.Equal(t, "Maria Souza", client.Name)
		require.Equal(t, "52998224725", client.Document)

		got, err := st.Clients().GetClient(ctx, client.ID)
		require.NoError(t, err)
		require.Equal(t, "maria@exemplo.com", got.Email)

		_, _, err = svc.Convert(ctx, lead.ID, ConvertLeadInput{Document: cpfMaria, TaxRegime: domain.RegimeMEI})
		require.ErrorIs(t, err, ErrLeadClosed)
	})

	t.Run("closed leads keep their status", func(t *testing.T) {
		lead.Status = domain.LeadContacted
		_, err := svc.Update(ctx, lead.ID, lead)
		require.ErrorIs(t, err, ErrLeadClosed)

		lead.Status = domain.LeadConverted
		lead.Notes = "cliente desde março"
		updated, err := svc.Update(ctx, lead.ID, lead)
		require.NoError(t, err)
		require.Equal(t, "cliente desde março", updated.Notes)
	})

	t.Run("conversion is atomic", func(t *testing.T) {
		other, err := svc.Create(ctx, domain.Lead{Name: "João", Phone: "1133334444"})
		require.NoError(t, err)

		_, _, err = svc.Convert(ctx, other.ID, ConvertLeadInput{Document: cpfMaria, TaxRegime: domain.RegimeMEI})
		require.ErrorIs(t, err, ErrDuplicateDocument)

		got, err := svc.Get(ctx, other.ID)
		require.NoError(t, err)
		require.Equal(t, domain.LeadNew, got.Status)
		require.Empty(t, got.ClientID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, lead.ID))
		require.ErrorIs(t, svc.Delete(ctx, lead.ID), ErrLeadNotFound)
	})
}
