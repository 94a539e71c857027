package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mirror/internal/reconcile"
	"github.com/roach88/mirror/internal/store"
	"github.com/roach88/mirror/internal/wire"
)

// ApplyResult holds the outcome of an apply run.
type ApplyResult struct {
	Applied int  `json:"applied"`
	Reset   bool `json:"reset"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <batch-file>",
		Short: "Apply a change-message batch to the replica",
		Long: `Apply an authoritative change-message batch to the replica database.

The batch file (JSON or YAML) is validated against the wire schema before
any message is applied. A batch that fails mid-apply leaves the replica in
an undefined state; recover with a reset batch from the authoritative
source.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runApply(opts *RootOptions, batchPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	batch, err := wire.LoadBatchFile(batchPath)
	if err != nil {
		formatter.Error("E_BATCH", err.Error(), nil)
		return WrapExitError(ExitCommandError, "load batch", err)
	}
	msgs, err := batch.Decode()
	if err != nil {
		formatter.Error("E_BATCH", err.Error(), nil)
		return WrapExitError(ExitCommandError, "decode batch", err)
	}

	s, err := store.OpenSQLite(opts.DBPath)
	if err != nil {
		formatter.Error("E_DB", err.Error(), nil)
		return WrapExitError(ExitCommandError, "open replica", err)
	}
	defer s.Close()

	replica := reconcile.New(s)
	ctx := cmd.Context()

	b, err := replica.BeginUpdate(ctx, len(msgs), batch.Reset)
	if err != nil {
		formatter.Error("E_BATCH", err.Error(), nil)
		return WrapExitError(ExitFailure, "begin batch", err)
	}
	defer b.End()

	for i, m := range msgs {
		if err := replica.Apply(ctx, m); err != nil {
			// Fatal: the replica must be treated as desynchronized.
			formatter.Error("E_DESYNC",
				fmt.Sprintf("message %d: %v", i, err),
				map[string]any{"applied": i})
			return WrapExitError(ExitFailure, "apply batch", err)
		}
	}
	b.End()

	if formatter.Format == "json" {
		return formatter.Success(ApplyResult{Applied: len(msgs), Reset: batch.Reset})
	}
	if batch.Reset {
		return formatter.Success(fmt.Sprintf("reset replica, applied %d message(s)", len(msgs)))
	}
	return formatter.Success(fmt.Sprintf("applied %d message(s)", len(msgs)))
}
