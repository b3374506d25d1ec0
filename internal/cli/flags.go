package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/roach88/embody/internal/embody"
	"github.com/roach88/embody/internal/engine"
	"github.com/roach88/embody/internal/params"
	"github.com/roach88/embody/internal/value"
)

// EmbodyFlags mirrors embody.Config on the command line.
type EmbodyFlags struct {
	ConfigFile   string
	Syntax       string
	Strategy     string
	Strict       bool
	CheckCycles  bool
	KeyCollision string
	CacheSize    int
}

// bindSyntax registers the flags every template command takes.
func (f *EmbodyFlags) bindSyntax(fs *pflag.FlagSet) {
	def := embody.DefaultConfig()
	fs.StringVar(&f.ConfigFile, "config", "", "YAML file with embodiment settings")
	fs.StringVar(&f.Syntax, "syntax", def.Syntax, "marker syntax (dollar_brace|brace|double_bracket)")
}

// bind registers every embodiment flag.
func (f *EmbodyFlags) bind(fs *pflag.FlagSet) {
	def := embody.DefaultConfig()
	f.bindSyntax(fs)
	fs.StringVar(&f.Strategy, "strategy", string(def.Strategy), "engine (recursive|iterative|compiled|auto)")
	fs.BoolVar(&f.Strict, "strict", def.Strict, "fail on markers without a parameter")
	fs.BoolVar(&f.CheckCycles, "check-cycles", def.CheckCycles, "scan the template for cycles before embodying")
	fs.StringVar(&f.KeyCollision, "key-collision", string(def.KeyCollision), "policy for dynamic keys that collide (error|last_wins|namespace)")
	fs.IntVar(&f.CacheSize, "cache-size", def.CacheSize, "compiled form cache size (0 disables)")
}

// Config resolves the effective configuration: defaults, then the
// --config file, then flags set explicitly on the command line.
func (f *EmbodyFlags) Config(fs *pflag.FlagSet) (embody.Config, error) {
	cfg := embody.DefaultConfig()
	if f.ConfigFile != "" {
		if err := loadConfigFile(f.ConfigFile, &cfg); err != nil {
			return cfg, err
		}
	}

	if fs.Changed("syntax") {
		cfg.Syntax = f.Syntax
	}
	if fs.Changed("strategy") {
		cfg.Strategy = engine.Strategy(f.Strategy)
	}
	if fs.Changed("strict") {
		cfg.Strict = f.Strict
	}
	if fs.Changed("check-cycles") {
		cfg.CheckCycles = f.CheckCycles
	}
	if fs.Changed("key-collision") {
		cfg.KeyCollision = engine.CollisionPolicy(f.KeyCollision)
	}
	if fs.Changed("cache-size") {
		cfg.CacheSize = f.CacheSize
	}
	return cfg, nil
}

// ErrConfigFile wraps every failure to parse a --config file.
var ErrConfigFile = errors.New("invalid config file")

// loadConfigFile decodes a YAML settings file over cfg. Unknown fields are
// rejected so typos fail loudly.
func loadConfigFile(path string, cfg *embody.Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w: %w", path, ErrConfigFile, err)
	}
	return nil
}

// paramFlag collects repeated --set name=value flags. The value is parsed
// as JSON when it is valid JSON and taken as a plain string otherwise.
type paramFlag struct {
	values params.Map
}

func newParamFlag() *paramFlag {
	return &paramFlag{values: params.Map{}}
}

// String implements pflag.Value.
func (p *paramFlag) String() string {
	parts := make([]string, 0, len(p.values))
	for _, name := range p.values.Names() {
		parts = append(parts, name+"="+value.Stringify(p.values[name]))
	}
	return strings.Join(parts, ",")
}

// Set implements pflag.Value.
func (p *paramFlag) Set(s string) error {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("want name=value, got %q", s)
	}
	v, err := value.ParseJSON([]byte(raw))
	if err != nil {
		v = value.String(raw)
	}
	p.values[name] = v
	return nil
}

// Type implements pflag.Value.
func (p *paramFlag) Type() string {
	return "name=value"
}

var _ pflag.Value = (*paramFlag)(nil)
