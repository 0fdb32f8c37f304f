package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/app"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store/drivers/sqlite"
	"github.com/aussiebroadwan/escritorio/pkg/cryptox"
	"github.com/aussiebroadwan/escritorio/pkg/slogx"
)

// env carries what every subcommand needs once the root has opened the
// database.
type env struct {
	cfg    app.Config
	db     *sqlite.Store
	logger *slog.Logger

	dbFile     string
	pepperFile string
}

func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. Each call returns independent state.
func NewRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "backofficectl",
		Short:         "Administration tool for the back office database",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			e.cfg = app.LoadConfig()
			if e.dbFile == "" {
				e.dbFile = e.cfg.DatabaseFile
			}
			if e.pepperFile == "" {
				e.pepperFile = e.cfg.PepperFile
			}
			e.logger = slogx.New(slogx.Config{
				Service: "backofficectl",
				Version: app.BuildVersion,
				Env:     e.cfg.Env,
				Level:   e.cfg.LogLevel,
				Format:  "text",
				Output:  os.Stderr,
			})

			if err := cryptox.LoadPepper(e.pepperFile); err != nil {
				return err
			}
			db, err := sqlite.NewStore(app.DSN(e.dbFile))
			if err != nil {
				return err
			}
			e.db = db
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e.db == nil {
				return nil
			}
			return e.db.Close()
		},
	}

	root.PersistentFlags().StringVar(&e.dbFile, "db", "", "SQLite database file (default $BACKOFFICE_DATABASE_FILE)")
	root.PersistentFlags().StringVar(&e.pepperFile, "pepper", "", "password pepper file (default $BACKOFFICE_PEPPER_FILE)")

	root.AddCommand(migrateCmd(e), usersCmd(e), guiasCmd(e), housekeepingCmd(e))
	return root
}
