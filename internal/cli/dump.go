package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mirror/internal/doc"
	"github.com/roach88/mirror/internal/store"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dump",
		Short:         "Print every replica document in identifier order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(rootOpts, cmd)
		},
	}

	return cmd
}

func runDump(opts *RootOptions, cmd *cobra.Command) error {
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

	docs, err := s.All(cmd.Context())
	if err != nil {
		formatter.Error("E_DB", err.Error(), nil)
		return WrapExitError(ExitCommandError, "list documents", err)
	}

	if formatter.Format == "json" {
		out := make([]map[string]any, 0, len(docs))
		for _, d := range docs {
			out = append(out, map[string]any{
				"id":     string(d.ID),
				"fields": map[string]any(d.Fields),
			})
		}
		return formatter.Success(out)
	}

	for _, d := range docs {
		canonical, err := doc.MarshalCanonical(d.Fields)
		if err != nil {
			return WrapExitError(ExitCommandError, "marshal document", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", d.ID, canonical)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d document(s)\n", len(docs))
	return nil
}
