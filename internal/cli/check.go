package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/embody/internal/embody"
	"github.com/roach88/embody/internal/loader"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Embody EmbodyFlags
}

// CheckResult reports the shape of a template and the engine that would
// embody it.
type CheckResult struct {
	Acyclic  bool         `json:"acyclic"`
	Stats    embody.Stats `json:"stats"`
	Strategy string       `json:"strategy"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <template>",
		Short: "Check a template for cycles and report its shape",
		Long: `Run the cycle guard over a template and report its maximum depth,
marker count, dynamic key count, leaf count, and the engine the current
settings select for it.

Exits with status 1 when the template contains a circular reference.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	opts.Embody.bind(cmd.Flags())

	return cmd
}

func runCheck(opts *CheckOptions, templatePath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := opts.Embody.Config(cmd.Flags())
	if err != nil {
		return formatter.Fail(err)
	}
	cfg.Logger = newLogger(opts.RootOptions, cmd.ErrOrStderr())

	e, err := embody.New(cfg)
	if err != nil {
		return formatter.Fail(err)
	}
	template, err := loader.LoadTemplate(templatePath)
	if err != nil {
		return formatter.Fail(err)
	}
	tpl, err := e.Prepare(template)
	if err != nil {
		return formatter.Fail(err)
	}
	// Stats always runs the guarded scan, even with --check-cycles=false.
	stats, err := tpl.Stats()
	if err != nil {
		return formatter.Fail(err)
	}

	result := CheckResult{Acyclic: true, Stats: stats, Strategy: string(tpl.Strategy())}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "cycles: none")
	fmt.Fprintf(w, "max depth: %d\n", stats.MaxDepth)
	fmt.Fprintf(w, "markers: %d\n", stats.Markers)
	fmt.Fprintf(w, "dynamic keys: %d\n", stats.DynamicKeys)
	fmt.Fprintf(w, "leaves: %d\n", stats.Leaves)
	fmt.Fprintf(w, "strategy: %s\n", result.Strategy)
	return nil
}
