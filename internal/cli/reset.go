package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/mirror/internal/reconcile"
	"github.com/roach88/mirror/internal/store"
)

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reset",
		Short:         "Clear every document from the replica",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(rootOpts, cmd)
		},
	}

	return cmd
}

func runReset(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	s, err := store.OpenSQLite(opts.DBPath)
	if err != nil {
		formatter.Error("E_DB", err.Error(), nil)
		return WrapExitError(ExitCommandError, "open replica", err)
	}
	defer s.Close()

	replica := reconcile.New(s)
	b, err := replica.BeginUpdate(cmd.Context(), 0, true)
	if err != nil {
		formatter.Error("E_RESET", err.Error(), nil)
		return WrapExitError(ExitFailure, "reset", err)
	}
	b.End()

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"reset": true})
	}
	return formatter.Success("replica cleared")
}
