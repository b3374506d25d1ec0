package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/embody/internal/embody"
	"github.com/roach88/embody/internal/engine"
	"github.com/roach88/embody/internal/loader"
)

// DepsOptions holds flags for the deps command.
type DepsOptions struct {
	*RootOptions
	Embody EmbodyFlags
}

// DepsResult lists the parameters a template refers to.
type DepsResult struct {
	Dependencies []string `json:"dependencies"`
}

// NewDepsCommand creates the deps command.
func NewDepsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DepsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "deps <template>",
		Short: "List the parameters a template needs",
		Long: `List every marker name found in the template's keys and string
leaves, sorted and deduplicated, one per line.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(opts, args[0], cmd)
		},
	}

	opts.Embody.bindSyntax(cmd.Flags())

	return cmd
}

func runDeps(opts *DepsOptions, templatePath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := opts.Embody.Config(cmd.Flags())
	if err != nil {
		return formatter.Fail(err)
	}
	// Listing dependencies never embodies, so no strategy work is needed.
	cfg.Strategy = engine.StrategyRecursive
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
	deps, err := tpl.Dependencies()
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Format == "json" {
		if deps == nil {
			deps = []string{}
		}
		return formatter.Success(DepsResult{Dependencies: deps})
	}
	for _, name := range deps {
		fmt.Fprintln(formatter.Writer, name)
	}
	return nil
}
