package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
)

// HousekeepingService periodically purges expired refresh tokens, flips
// unpaid guias past their due date to overdue and reports licenses that need
// renewal.
type HousekeepingService struct {
	Store    store.Store
	Guias    *GuiaService
	Licenses *LicenseService
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to one hour.
func NewHousekeepingService(st store.Store, guias *GuiaService, licenses *LicenseService, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:    st,
		Guias:    guias,
		Licenses: licenses,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress pass has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// HousekeepingReport counts what one pass changed.
type HousekeepingReport struct {
	TokensDeleted    int64
	GuiasOverdue     int64
	LicensesExpiring int
	Failures         int
}

// RunOnce performs a single pass. Each step is independent, a failing step
// does not stop the others.
func (s *HousekeepingService) RunOnce(ctx context.Context) HousekeepingReport {
	var rep HousekeepingReport
	s.Logger.Info("starting housekeeping")

	n, err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, time.Now().UTC())
	if err != nil {
		s.Logger.Error("failed to delete expired refresh tokens", "error", err)
		rep.Failures++
	} else {
		rep.TokensDeleted = n
	}

	if s.Guias != nil {
		n, err := s.Guias.SweepOverdue(ctx)
		if err != nil {
			s.Logger.Error("failed to mark overdue guias", "error", err)
			rep.Failures++
		} else {
			rep.GuiasOverdue = n
		}
	}

	if s.Licenses != nil {
		ls, err := s.Licenses.List(ctx, Actor{}, store.LicenseFilter{}, domain.LicenseExpiring)
		if err != nil {
			s.Logger.Error("failed to list expiring licenses", "error", err)
			rep.Failures++
		} else {
			rep.LicensesExpiring = len(ls)
			for _, l := range ls {
				s.Logger.Warn("license expiring",
					"license_id", l.ID, "client_id", l.ClientID, "kind", l.Kind, "expires_at", l.ExpiresAt.String())
			}
		}
	}

	s.Logger.Info("housekeeping completed",
		"tokens_deleted", rep.TokensDeleted,
		"guias_overdue", rep.GuiasOverdue,
		"licenses_expiring", rep.LicensesExpiring,
		"failures", rep.Failures)
	return rep
}
