// Package cli holds the arbor command tree.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arbor-cms/arbor/internal/app"
)

// runtime carries what every subcommand needs after flag parsing.
type runtime struct {
	cfg    *app.Config
	logger *slog.Logger
}

// NewRootCommand builds the arbor command. Running it without a subcommand
// serves the admin.
func NewRootCommand() *cobra.Command {
	rt := &runtime{}
	root := &cobra.Command{
		Use:           "arbor",
		Short:         "Arbor page history admin",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.logger = app.NewLogger(cfg)
			slog.SetDefault(rt.logger)
			return nil
		},
	}
	serve := newServeCommand(rt)
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newMigrateCommand(rt), newJobsCommand(rt))
	return root
}
