package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mirror/internal/doc"
	"github.com/roach88/mirror/internal/reconcile"
	"github.com/roach88/mirror/internal/store"
)

// PutOptions holds flags for the put command.
type PutOptions struct {
	ID string // optional; a UUID is minted when empty
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PutOptions{}

	cmd := &cobra.Command{
		Use:   "put <fields-json>",
		Short: "Insert a document with local fields",
		Long: `Insert a document into the replica with the given JSON fields.

This is a local speculative write: it does not come from the authoritative
source, and a later replace message for the same identifier overrides it.
Without --id a fresh UUID is minted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "document identifier (default: minted UUID)")

	return cmd
}

func runPut(rootOpts *RootOptions, opts *PutOptions, fieldsJSON string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  rootOpts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: rootOpts.Verbose,
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		formatter.Error("E_FIELDS", fmt.Sprintf("invalid fields JSON: %v", err), nil)
		return WrapExitError(ExitCommandError, "parse fields", err)
	}

	s, err := store.OpenSQLite(rootOpts.DBPath)
	if err != nil {
		formatter.Error("E_DB", err.Error(), nil)
		return WrapExitError(ExitCommandError, "open replica", err)
	}
	defer s.Close()

	replica := reconcile.New(s)
	id, err := replica.Insert(cmd.Context(), &doc.Document{
		ID:     doc.ID(opts.ID),
		Fields: doc.Fields(fields),
	})
	if err != nil {
		formatter.Error("E_INSERT", err.Error(), nil)
		return WrapExitError(ExitFailure, "insert", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"id": string(id)})
	}
	return formatter.Success(string(id))
}
