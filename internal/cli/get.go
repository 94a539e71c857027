package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mirror/internal/doc"
	"github.com/roach88/mirror/internal/store"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "get <id>",
		Short:         "Print one replica document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runGet(opts *RootOptions, rawID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	id, err := doc.ParseID(rawID)
	if err != nil {
		formatter.Error("E_ID", err.Error(), nil)
		return WrapExitError(ExitCommandError, "parse id", err)
	}

	s, err := store.OpenSQLite(opts.DBPath)
	if err != nil {
		formatter.Error("E_DB", err.Error(), nil)
		return WrapExitError(ExitCommandError, "open replica", err)
	}
	defer s.Close()

	d, ok, err := s.Lookup(cmd.Context(), id)
	if err != nil {
		formatter.Error("E_DB", err.Error(), nil)
		return WrapExitError(ExitCommandError, "lookup", err)
	}
	if !ok {
		formatter.Error("E_MISSING", fmt.Sprintf("no document with id %q", id), nil)
		return WrapExitError(ExitFailure, "lookup", store.ErrDocumentMissing)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{
			"id":     string(d.ID),
			"fields": map[string]any(d.Fields),
		})
	}
	canonical, err := doc.MarshalCanonical(d.Fields)
	if err != nil {
		return WrapExitError(ExitCommandError, "marshal document", err)
	}
	return formatter.Success(fmt.Sprintf("%s %s", d.ID, canonical))
}
