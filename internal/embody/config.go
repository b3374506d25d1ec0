package embody

import (
	"errors"
	"log/slog"

	"github.com/roach88/embody/internal/engine"
	"github.com/roach88/embody/internal/errdefs"
	"github.com/roach88/embody/internal/syntax"
)

// Config is the single configuration record of an Embodier.
type Config struct {
	// Syntax names the marker notation: dollar_brace, brace or
	// double_bracket.
	Syntax string `yaml:"syntax"`

	// Strict makes absent parameters fail with MISSING_PARAMETER.
	Strict bool `yaml:"strict"`

	// Strategy is recursive, iterative, compiled, or auto.
	Strategy engine.Strategy `yaml:"strategy"`

	// CheckCycles runs the cycle guard over the template before any
	// engine sees it. Engines always check inline as well.
	CheckCycles bool `yaml:"check_cycles"`

	// KeyCollision is error, last_wins, or namespace.
	KeyCollision engine.CollisionPolicy `yaml:"key_collision"`

	// CacheSize bounds the compiled-form cache. Zero disables it.
	CacheSize int `yaml:"cache_size"`

	// Logger receives Debug events. Nil means slog.Default().
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Syntax:       syntax.NameDollarBrace,
		Strict:       false,
		Strategy:     engine.StrategyAuto,
		CheckCycles:  true,
		KeyCollision: engine.CollisionError,
		CacheSize:    engine.DefaultCacheSize,
	}
}

// Validate reports every invalid field at once. Each problem is an
// INVALID_CONFIG error; they are joined with errors.Join.
func (c Config) Validate() error {
	var errs []error
	if _, err := syntax.Lookup(c.Syntax); err != nil {
		errs = append(errs, errdefs.NewInvalidConfig("syntax: %v", err))
	}
	if _, err := engine.ParseStrategy(string(c.Strategy)); err != nil {
		errs = append(errs, err)
	}
	if _, err := engine.ParseCollisionPolicy(string(c.KeyCollision)); err != nil {
		errs = append(errs, err)
	}
	if c.CacheSize < 0 {
		errs = append(errs, errdefs.NewInvalidConfig("cache_size must not be negative, got %d", c.CacheSize))
	}
	return errors.Join(errs...)
}
