package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store/drivers/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	cnpjPadaria = "11.222.333/0001-81"
	cnpjOficina = "11.444.777/0001-61"
	cpfMaria    = "529.982.247-25"
)

var staff = Actor{UserID: "staff", Name: "Contadora", Role: domain.RoleAccountant}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func createClient(t *testing.T, s *ClientService, document string) domain.Client {
	t.Helper()
	c, err := s.Create(context.Background(), domain.Client{
		Name:      "Padaria Pão Quente Ltda",
		Document:  document,
		Email:     "contato@padaria.com.br",
		TaxRegime: domain.RegimeSimplesNacional,
	})
	require.NoError(t, err)
	return c
}

// createActor stores a user so rows that reference users(id) can be written
// on its behalf.
func createActor(t *testing.T, s *UserService, in CreateUserInput) Actor {
	t.Helper()
	if in.Password == "" {
		in.Password = "long-enough"
	}
	u, err := s.CreateUser(context.Background(), in)
	require.NoError(t, err)
	return Actor{UserID: u.ID, Name: u.Name, Role: u.Role, ClientID: u.ClientID}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(t *testing.T, s string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func fixedNow(s string) func() time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return ts }
}

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Fields, field)
}
