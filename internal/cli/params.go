package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/embody/internal/store"
	"github.com/roach88/embody/internal/value"
)

// ParamsResult is the JSON payload of params subcommands.
type ParamsResult struct {
	Params map[string]json.RawMessage `json:"params,omitempty"`
	Names  []string                   `json:"names,omitempty"`
}

// NewParamsCommand creates the params command and its subcommands, which
// manage a SQLite parameter store.
func NewParamsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Manage a SQLite parameter store",
		Long: `Manage a SQLite parameter store. A store can be passed to
"embody render --params" like any parameter file.`,
	}

	cmd.AddCommand(newParamsSetCommand(rootOpts))
	cmd.AddCommand(newParamsListCommand(rootOpts))
	cmd.AddCommand(newParamsUnsetCommand(rootOpts))

	return cmd
}

func newParamsSetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <db> <name=value>...",
		Short: "Store parameters, creating the database if needed",
		Long: `Store parameters in a SQLite parameter store. Values are parsed as
JSON when valid and stored as strings otherwise. All parameters are
written in one transaction.

Example:
  embody params set params.db host=db.internal port=5432 'tags=["a","b"]'`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd)

			set := newParamFlag()
			for _, arg := range args[1:] {
				if err := set.Set(arg); err != nil {
					return formatter.FailCode(ExitCommandError, ErrCodeUsage, err)
				}
			}

			s, err := store.Open(args[0])
			if err != nil {
				return formatter.Fail(err)
			}
			defer s.Close()

			if err := s.PutAll(cmd.Context(), set.values); err != nil {
				return formatter.FailCode(ExitFailure, ErrCodeWriteFailed, err)
			}
			formatter.VerboseLog("Stored %d parameters in %s", len(set.values), args[0])

			names := set.values.Names()
			if formatter.Format == "json" {
				return formatter.Success(ParamsResult{Names: names})
			}
			fmt.Fprintf(formatter.Writer, "✓ Stored %d parameters\n", len(names))
			return nil
		},
	}
}

func newParamsListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <db>",
		Short:         "List stored parameters",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd)

			s, err := store.OpenReadOnly(args[0])
			if err != nil {
				return formatter.Fail(err)
			}
			defer s.Close()

			snap, err := s.Snapshot(cmd.Context())
			if err != nil {
				return formatter.Fail(err)
			}

			names := snap.Names()
			encoded := make(map[string]json.RawMessage, len(names))
			for _, name := range names {
				raw, err := value.MarshalJSON(snap[name])
				if err != nil {
					return formatter.Fail(fmt.Errorf("parameter %q: %w", name, err))
				}
				encoded[name] = raw
			}

			if formatter.Format == "json" {
				return formatter.Success(ParamsResult{Params: encoded, Names: names})
			}
			for _, name := range names {
				fmt.Fprintf(formatter.Writer, "%s = %s\n", name, encoded[name])
			}
			return nil
		},
	}
}

func newParamsUnsetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "unset <db> <name>...",
		Short:         "Remove parameters from a store",
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd)

			s, err := store.Open(args[0])
			if err != nil {
				return formatter.Fail(err)
			}
			defer s.Close()

			removed := []string{}
			for _, name := range args[1:] {
				ok, err := s.Delete(cmd.Context(), name)
				if err != nil {
					return formatter.FailCode(ExitFailure, ErrCodeWriteFailed, err)
				}
				if ok {
					removed = append(removed, name)
				} else {
					formatter.VerboseLog("Parameter %s not found", name)
				}
			}

			if formatter.Format == "json" {
				return formatter.Success(ParamsResult{Names: removed})
			}
			fmt.Fprintf(formatter.Writer, "✓ Removed %d parameters\n", len(removed))
			return nil
		},
	}
}
