package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
)

func guiasCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guias",
		Short: "Tax slip maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sweep-overdue",
		Short: "Mark unpaid guias past their due date as overdue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := &service.GuiaService{Store: e.db}
			n, err := svc.SweepOverdue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d guia(s) marked overdue\n", n)
			return nil
		},
	})
	return cmd
}

func housekeepingCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "housekeeping",
		Short: "Run one housekeeping pass and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := service.NewHousekeepingService(
				e.db,
				&service.GuiaService{Store: e.db},
				&service.LicenseService{Store: e.db, Warning: e.cfg.LicenseExpiryWarning},
				e.logger,
				e.cfg.HousekeepingInterval,
			)
			rep := svc.RunOnce(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "tokens deleted: %d\nguias overdue: %d\nlicenses expiring: %d\n",
				rep.TokensDeleted, rep.GuiasOverdue, rep.LicensesExpiring)
			if rep.Failures > 0 {
				return fmt.Errorf("%d housekeeping step(s) failed", rep.Failures)
			}
			return nil
		},
	}
}
