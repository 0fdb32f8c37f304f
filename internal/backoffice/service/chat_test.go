package service

import (
	"context"
	"strings"
	"testing"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/stretchr/testify/require"
)

func TestHub(t *testing.T) {
	t.Parallel()
	hub := NewHub()

	all := hub.Subscribe("")
	mine := hub.Subscribe("client-a")
	require.Equal(t, 2, hub.Len())

	n := hub.Publish(domain.ChatEvent{Type: domain.ChatEventMessage, ThreadID: "t1", ClientID: "client-b"})
	require.Equal(t, 1, n)
	require.Equal(t, "t1", (<-all.C).ThreadID)
	require.Empty(t, mine.C)

	t.Run("slow subscribers drop events", func(t *testing.T) {
		for range EventBuffer + 5 {
			hub.Publish(domain.ChatEvent{Type: domain.ChatEventMessage, ThreadID: "t2", ClientID: "client-a"})
		}
		require.Len(t, mine.C, EventBuffer)
		require.Len(t, all.C, EventBuffer)
	})

	t.Run("cancel closes the channel", func(t *testing.T) {
		mine.Cancel()
		mine.Cancel()
		require.Equal(t, 1, hub.Len())
		for range mine.C {
		}
		_, ok := <-mine.C
		require.False(t, ok)
	})
}

func TestChat(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	hub := NewHub()
	svc := &ChatService{Store: st, Hub: hub}
	clients := &ClientService{Store: st}
	a := createClient(t, clients, cnpjPadaria)
	b := createClient(t, clients, cnpjOficina)

	users := &UserService{Store: st}
	staff := createActor(t, users, CreateUserInput{Username: "contadora", Name: "Contadora", Role: domain.RoleAccountant})
	portalA := createActor(t, users, CreateUserInput{Username: "padaria", Name: "Padaria", Role: domain.RoleClient, ClientID: a.ID})
	portalB := createActor(t, users, CreateUserInput{Username: "oficina", Name: "Oficina", Role: domain.RoleClient, ClientID: b.ID})

	subA := svc.Subscribe(portalA)
	defer subA.Cancel()
	subStaff := svc.Subscribe(staff)
	defer subStaff.Cancel()

	// Portal users cannot open threads for another client.
	thread, err := svc.CreateThread(ctx, portalA, b.ID, "Dúvida sobre o DAS")
	require.NoError(t, err)
	require.Equal(t, a.ID, thread.ClientID)
	require.Equal(t, domain.ThreadOpen, thread.Status)
	require.Equal(t, domain.ChatEventThread, (<-subA.C).Type)
	require.Equal(t, thread.ID, (<-subStaff.C).ThreadID)

	_, err = svc.CreateThread(ctx, staff, a.ID, "  ")
	requireField(t, err, "subject")

	msg, err := svc.PostMessage(ctx, staff, thread.ID, "  O DAS vence dia 20.  ")
	require.NoError(t, err)
	require.Equal(t, "O DAS vence dia 20.", msg.Body)
	require.Equal(t, "Contadora", msg.AuthorName)
	ev := <-subA.C
	require.Equal(t, domain.ChatEventMessage, ev.Type)
	require.Equal(t, thread.ID, ev.ThreadID)
	<-subStaff.C

	_, err = svc.PostMessage(ctx, portalA, thread.ID, "Obrigado!")
	require.NoError(t, err)

	_, err = svc.PostMessage(ctx, portalA, thread.ID, strings.Repeat("a", domain.MaxMessageLength+1))
	requireField(t, err, "body")

	msgs, err := svc.Messages(ctx, portalA, thread.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "Obrigado!", msgs[1].Body)

	_, err = svc.Messages(ctx, portalB, thread.ID)
	require.ErrorIs(t, err, ErrThreadNotFound)

	threads, err := svc.Threads(ctx, portalB, store.ThreadFilter{})
	require.NoError(t, err)
	require.Empty(t, threads)

	threads, err = svc.Threads(ctx, staff, store.ThreadFilter{Status: domain.ThreadOpen})
	require.NoError(t, err)
	require.Len(t, threads, 1)
	require.NotNil(t, threads[0].LastMessageAt)

	closed, err := svc.CloseThread(ctx, staff, thread.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ThreadClosed, closed.Status)

	_, err = svc.PostMessage(ctx, portalA, thread.ID, "mais uma")
	require.ErrorIs(t, err, ErrThreadClosed)
	_, err = svc.CloseThread(ctx, staff, thread.ID)
	require.ErrorIs(t, err, ErrThreadClosed)
}
