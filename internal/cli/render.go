package cli

import (
	"fmt"
	"maps"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/embody/internal/embody"
	"github.com/roach88/embody/internal/loader"
	"github.com/roach88/embody/internal/params"
	"github.com/roach88/embody/internal/paths"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Embody EmbodyFlags

	Params   []string
	Set      *paramFlag
	Builtins bool
	Select   string
	Output   string
	Encoding string
}

// RenderResult is the JSON payload reported when the result is written
// to a file.
type RenderResult struct {
	Output   string `json:"output"`
	Bytes    int    `json:"bytes"`
	Strategy string `json:"strategy"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts, Set: newParamFlag()}

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Embody a template with parameters",
		Long: `Embody a template file with parameters and write the result.

Parameters come from --params files (JSON, JSONC, YAML, CUE, CBOR or a
SQLite parameter store; later files override earlier ones) and from
--set flags, which override every file. The result is written to stdout
unless --output is given.

Example:
  embody render service.yaml -p prod.yaml --set replicas=3
  embody render service.json -p params.db --strict --encoding yaml -o out.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	opts.Embody.bind(cmd.Flags())
	cmd.Flags().StringArrayVarP(&opts.Params, "params", "p", nil, "parameter file (repeatable)")
	cmd.Flags().Var(opts.Set, "set", "parameter override, value parsed as JSON or taken as a string (repeatable)")
	cmd.Flags().BoolVar(&opts.Builtins, "builtins", false, "provide built-in parameters (uuid)")
	cmd.Flags().StringVar(&opts.Select, "select", "", "JSON Pointer of the part of the result to output")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Encoding, "encoding", string(loader.EncodingJSON), "result encoding (json|yaml|cbor)")

	return cmd
}

func runRender(opts *RenderOptions, templatePath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	enc, err := loader.ParseEncoding(opts.Encoding)
	if err != nil {
		return formatter.Fail(err)
	}
	cfg, err := opts.Embody.Config(cmd.Flags())
	if err != nil {
		return formatter.Fail(err)
	}
	cfg.Logger = logger

	e, err := embody.New(cfg)
	if err != nil {
		return formatter.Fail(err)
	}

	template, err := loader.LoadTemplate(templatePath)
	if err != nil {
		return formatter.Fail(err)
	}

	values, err := loader.LoadParamFiles(cmd.Context(), opts.Params...)
	if err != nil {
		return formatter.Fail(err)
	}
	maps.Copy(values, opts.Set.values)

	var store params.Store = values
	if opts.Builtins {
		store = params.Builtins().With(values)
	}
	logger.Debug("inputs loaded", "template", templatePath, "param_files", len(opts.Params), "params", len(values))

	tpl, err := e.Prepare(template)
	if err != nil {
		return formatter.Fail(err)
	}
	result, err := tpl.Embody(store)
	if err != nil {
		return formatter.Fail(err)
	}

	if opts.Select != "" {
		result, err = paths.ResolvePointer(result, opts.Select)
		if err != nil {
			return formatter.Fail(err)
		}
	}

	data, err := loader.Encode(result, enc)
	if err != nil {
		return formatter.Fail(err)
	}

	if opts.Output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
		return formatter.FailCode(ExitCommandError, ErrCodeWriteFailed, fmt.Errorf("failed to write output: %w", err))
	}
	formatter.VerboseLog("Wrote %d bytes to %s", len(data), opts.Output)

	if formatter.Format == "json" {
		return formatter.Success(RenderResult{
			Output:   opts.Output,
			Bytes:    len(data),
			Strategy: string(tpl.Strategy()),
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ Rendered %s to %s\n", templatePath, opts.Output)
	return nil
}
