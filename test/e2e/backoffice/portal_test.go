package backoffice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/escritorio/pkg/officesdk"
	"github.com/stretchr/testify/require"
)

func TestPortalUserSeesOnlyOwnClient(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	ctx := t.Context()
	staff := adminSession(t, baseURL)

	mine, err := staff.CreateClient(ctx, officesdk.Client{Name: "Padaria", Document: "11.222.333/0001-81", TaxRegime: "simples_nacional"})
	require.NoError(t, err)
	other, err := staff.CreateClient(ctx, officesdk.Client{Name: "Oficina", Document: "529.982.247-25", TaxRegime: "mei"})
	require.NoError(t, err)

	_, err = staff.CreateUser(ctx, officesdk.CreateUserRequest{
		Username: "padaria", Name: "Dona Maria", Password: "pao-de-queijo", Role: "client", ClientID: mine.ID,
	})
	require.NoError(t, err)

	portal, err := officesdk.NewSDKClient(baseURL).Login(ctx, "padaria", "pao-de-queijo", "")
	require.NoError(t, err)
	require.True(t, portal.HasScope(officesdk.ScopePortal))
	require.False(t, portal.HasScope(officesdk.ScopeWrite))

	clients, err := portal.ListClients(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, clients, 1)
	require.Equal(t, mine.ID, clients[0].ID)

	_, err = portal.GetClient(ctx, other.ID)
	require.True(t, officesdk.IsNotFound(err))
}

func TestChatNotifiesPortalUser(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	ctx := t.Context()
	staff := adminSession(t, baseURL)

	client, err := staff.CreateClient(ctx, officesdk.Client{Name: "Padaria", Document: "11.222.333/0001-81", TaxRegime: "simples_nacional"})
	require.NoError(t, err)
	_, err = staff.CreateUser(ctx, officesdk.CreateUserRequest{
		Username: "padaria", Name: "Dona Maria", Password: "pao-de-queijo", Role: "client", ClientID: client.ID,
	})
	require.NoError(t, err)
	portal, err := officesdk.NewSDKClient(baseURL).Login(ctx, "padaria", "pao-de-queijo", "")
	require.NoError(t, err)

	thread, err := staff.CreateThread(ctx, client.ID, "Guia DAS de março")
	require.NoError(t, err)

	watchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	got := make(chan officesdk.ChatEvent, 1)
	go func() {
		_ = portal.WatchChat(watchCtx, func(ev officesdk.ChatEvent) error {
			got <- ev
			return errors.New("done")
		})
	}()

	// The subscription is registered asynchronously; keep posting until the
	// watcher has seen one.
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case ev := <-got:
			require.Equal(t, thread.ID, ev.ThreadID)
			msgs, err := portal.Messages(ctx, thread.ID)
			require.NoError(t, err)
			require.NotEmpty(t, msgs)
			return
		case <-tick.C:
			_, err := staff.PostMessage(ctx, thread.ID, "Segue a guia em anexo.")
			require.NoError(t, err)
		case <-watchCtx.Done():
			t.Fatal("no chat event received")
		}
	}
}
