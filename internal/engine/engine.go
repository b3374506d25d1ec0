package engine

import (
	"fmt"
	"strings"

	"github.com/roach88/embody/internal/errdefs"
	"github.com/roach88/embody/internal/params"
	"github.com/roach88/embody/internal/syntax"
	"github.com/roach88/embody/internal/value"
)

// Strategy names an embodiment strategy.
type Strategy string

const (
	StrategyRecursive Strategy = "recursive"
	StrategyIterative Strategy = "iterative"
	StrategyCompiled  Strategy = "compiled"

	// StrategyAuto lets the caller pick a concrete strategy per template.
	// New does not accept it.
	StrategyAuto Strategy = "auto"
)

// Strategies lists every strategy name accepted in configuration.
var Strategies = []Strategy{StrategyRecursive, StrategyIterative, StrategyCompiled, StrategyAuto}

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	for _, st := range Strategies {
		if string(st) == s {
			return st, nil
		}
	}
	return "", errdefs.NewInvalidConfig("unknown strategy %q (want one of %s)", s, joinNames(Strategies))
}

// Options configures substitution for every strategy.
type Options struct {
	// Syntax is the marker notation. Nil means syntax.DollarBrace.
	Syntax *syntax.Syntax

	// Strict makes absent parameters fail with MISSING_PARAMETER.
	Strict bool

	// KeyCollision is the policy for resolved keys that repeat within one
	// map. Empty means CollisionError. The compiled strategy ignores it.
	KeyCollision CollisionPolicy
}

func (o Options) withDefaults() Options {
	if o.Syntax == nil {
		o.Syntax = syntax.DollarBrace
	}
	if o.KeyCollision == "" {
		o.KeyCollision = CollisionError
	}
	return o
}

// Engine embodies templates.
type Engine interface {
	// Embody returns a freshly built value with every marker of template
	// resolved against store. The template is never modified. A nil store
	// behaves as an empty one.
	Embody(template value.Value, store params.Store) (value.Value, error)

	// Strategy returns the strategy the engine implements.
	Strategy() Strategy
}

// New returns the engine registered for strategy. Options for the
// compiled engine (cache size, logger) are passed as opts.
func New(strategy Strategy, o Options, opts ...CompiledOption) (Engine, error) {
	switch strategy {
	case StrategyRecursive:
		return NewRecursive(o), nil
	case StrategyIterative:
		return NewIterative(o), nil
	case StrategyCompiled:
		return NewCompiled(o, opts...), nil
	case StrategyAuto:
		return nil, fmt.Errorf("strategy %q must be resolved to a concrete strategy before creating an engine", strategy)
	default:
		return nil, errdefs.NewInvalidConfig("unknown strategy %q", strategy)
	}
}

func storeOrEmpty(store params.Store) params.Store {
	if store == nil {
		return params.Map{}
	}
	return store
}

func joinNames[T ~string](names []T) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
