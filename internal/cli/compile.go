package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/embody/internal/embody"
	"github.com/roach88/embody/internal/loader"
	"github.com/roach88/embody/internal/paths"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Embody EmbodyFlags
}

// CompileResult summarizes a compiled form. DynamicKeys lists the leaves
// reached through at least one marker-bearing key.
type CompileResult struct {
	Fingerprint string   `json:"fingerprint"`
	Leaves      int      `json:"leaves"`
	Templated   []string `json:"templated"`
	DynamicKeys []string `json:"dynamic_keys"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <template>",
		Short: "Show the compiled form of a template",
		Long: `Flatten a template into its compiled form and report the content
fingerprint, the number of leaves, and the JSON Pointers of the leaves
that are substituted on every render.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	opts.Embody.bindSyntax(cmd.Flags())

	return cmd
}

func runCompile(opts *CompileOptions, templatePath string, cmd *cobra.Command) error {
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
	form, err := e.Compile(template)
	if err != nil {
		return formatter.Fail(err)
	}

	result := CompileResult{
		Fingerprint: form.Fingerprint().String(),
		Leaves:      form.Len(),
		Templated:   pointers(form.Templated()),
		DynamicKeys: pointers(form.DynamicKeys()),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "fingerprint: %s\n", result.Fingerprint)
	fmt.Fprintf(w, "leaves: %d\n", result.Leaves)
	fmt.Fprintf(w, "templated: %d\n", len(result.Templated))
	for _, p := range result.Templated {
		fmt.Fprintf(w, "  %s\n", p)
	}
	fmt.Fprintf(w, "dynamic keys: %d\n", len(result.DynamicKeys))
	for _, p := range result.DynamicKeys {
		fmt.Fprintf(w, "  %s\n", p)
	}
	return nil
}

// pointers renders paths as JSON Pointers, never returning nil.
func pointers(ps []paths.Path) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Pointer()
	}
	return out
}
