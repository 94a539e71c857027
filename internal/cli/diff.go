package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wI2L/jsondiff"

	"github.com/roach88/mirror/internal/doc"
	"github.com/roach88/mirror/internal/store"
)

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <id> <fields-file>",
		Short: "Diff a stored document against proposed fields",
		Long: `Compute an RFC 6902 JSON Patch from the stored document's fields to the
proposed fields in the given JSON file.

Useful for inspecting what an optimistic local write changed relative to a
saved original, or what a pending replace message would do.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runDiff(opts *RootOptions, rawID, fieldsPath string, cmd *cobra.Command) error {
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

	data, err := os.ReadFile(fieldsPath)
	if err != nil {
		formatter.Error("E_FIELDS", err.Error(), nil)
		return WrapExitError(ExitCommandError, "read fields file", err)
	}
	var proposed map[string]any
	if err := json.Unmarshal(data, &proposed); err != nil {
		formatter.Error("E_FIELDS", fmt.Sprintf("invalid fields JSON: %v", err), nil)
		return WrapExitError(ExitCommandError, "parse fields file", err)
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

	patch, err := jsondiff.Compare(map[string]any(d.Fields), proposed)
	if err != nil {
		formatter.Error("E_DIFF", err.Error(), nil)
		return WrapExitError(ExitCommandError, "compute diff", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(patch)
	}
	if len(patch) == 0 {
		return formatter.Success("documents are identical")
	}
	for _, op := range patch {
		fmt.Fprintln(cmd.OutOrStdout(), op.String())
	}
	return nil
}
