package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/stretchr/testify/require"
)

func TestLicenseStatusOn(t *testing.T) {
	today := mustDate(t, "2025-06-01")
	warning := 30 * 24 * time.Hour

	tests := []struct {
		expires string
		want    domain.LicenseStatus
	}{
		{"2025-05-31", domain.LicenseExpired},
		{"2025-06-01", domain.LicenseExpiring},
		{"2025-07-01", domain.LicenseExpiring},
		{"2025-07-02", domain.LicenseValid},
	}
	for _, tt := range tests {
		t.Run(tt.expires, func(t *testing.T) {
			require.Equal(t, tt.want, domain.LicenseStatusOn(mustDate(t, tt.expires), today, warning))
		})
	}
}

func TestGuiaIsOverdue(t *testing.T) {
	g := domain.Guia{Status: domain.GuiaPending, DueDate: mustDate(t, "2025-05-20")}
	require.True(t, g.IsOverdue(mustDate(t, "2025-05-21")))
	require.False(t, g.IsOverdue(mustDate(t, "2025-05-20")))

	g.Status = domain.GuiaPaid
	require.False(t, g.IsOverdue(mustDate(t, "2025-06-01")))
}

func TestDateJSON(t *testing.T) {
	d := mustDate(t, "2025-01-31")
	raw, err := d.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `"2025-01-31"`, string(raw))

	var back domain.Date
	require.NoError(t, back.UnmarshalJSON(raw))
	require.True(t, d.Equal(back.Time))

	require.Error(t, back.UnmarshalJSON([]byte(`"31/01/2025"`)))

	start, end, err := domain.PeriodBounds("2024-02")
	require.NoError(t, err)
	require.Equal(t, "2024-02-01", start.String())
	require.Equal(t, "2024-02-29", end.String())
}
