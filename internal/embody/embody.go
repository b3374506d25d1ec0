// Package embody is the entry point for template embodiment.
//
// An Embodier validates its Config once, owns one long-lived engine per
// strategy (the compiled engine keeps its cache across calls), and turns
// templates into prepared Templates. Preparing a template runs the
// up-front scan once: cycle guard, marker dependencies, statistics, and
// strategy selection. A prepared Template can then be embodied against
// many parameter stores.
//
// Every call embodies against a snapshot of the store, so resolvers are
// evaluated at most once per name per call.
//
// Embodiers and Templates are safe for concurrent use.
package embody

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/embody/internal/engine"
	"github.com/roach88/embody/internal/errdefs"
	"github.com/roach88/embody/internal/params"
	"github.com/roach88/embody/internal/syntax"
	"github.com/roach88/embody/internal/value"
)

// Embodier embodies templates under one configuration.
type Embodier struct {
	cfg      Config
	syn      *syntax.Syntax
	logger   *slog.Logger
	engines  map[engine.Strategy]engine.Engine
	compiled *engine.Compiled
}

// New validates cfg and creates an Embodier.
func New(cfg Config) (*Embodier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	syn, err := syntax.Lookup(cfg.Syntax)
	if err != nil {
		return nil, errdefs.NewInvalidConfig("syntax: %v", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := engine.Options{
		Syntax:       syn,
		Strict:       cfg.Strict,
		KeyCollision: cfg.KeyCollision,
	}
	compiled := engine.NewCompiled(opts,
		engine.WithCacheSize(cfg.CacheSize),
		engine.WithLogger(logger))

	return &Embodier{
		cfg:    cfg,
		syn:    syn,
		logger: logger,
		engines: map[engine.Strategy]engine.Engine{
			engine.StrategyRecursive: engine.NewRecursive(opts),
			engine.StrategyIterative: engine.NewIterative(opts),
			engine.StrategyCompiled:  compiled,
		},
		compiled: compiled,
	}, nil
}

// Config returns the configuration the Embodier was built with.
func (e *Embodier) Config() Config { return e.cfg }

// Syntax returns the marker notation in use.
func (e *Embodier) Syntax() *syntax.Syntax { return e.syn }

// Embody prepares template and embodies it against store in one step.
func (e *Embodier) Embody(template value.Value, store params.Store) (value.Value, error) {
	t, err := e.Prepare(template)
	if err != nil {
		return nil, err
	}
	return t.Embody(store)
}

// Compile returns the compiled form of template through the shared
// cache.
func (e *Embodier) Compile(template value.Value) (*engine.CompiledForm, error) {
	return e.compiled.Compile(template)
}

// Prepare runs the up-front work for template.
//
// The scan runs when CheckCycles is set, when the strategy is auto, or
// when strict mode needs the dependency list. The scan is cycle-guarded,
// so in those cases a cyclic template fails here. Otherwise cycles are
// caught by the engine during Embody.
func (e *Embodier) Prepare(template value.Value) (*Template, error) {
	t := &Template{owner: e, root: template, strategy: e.cfg.Strategy}

	if e.cfg.CheckCycles || e.cfg.Strict || e.cfg.Strategy == engine.StrategyAuto {
		a, err := t.analyze()
		if err != nil {
			return nil, err
		}
		if t.strategy == engine.StrategyAuto {
			t.strategy = SelectStrategy(a.stats, e.cfg.KeyCollision)
			e.logger.Debug("selected strategy",
				"strategy", string(t.strategy),
				"max_depth", a.stats.MaxDepth,
				"markers", a.stats.Markers,
				"dynamic_keys", a.stats.DynamicKeys)
		}
	}

	if t.strategy == engine.StrategyCompiled {
		form, err := e.compiled.Compile(template)
		if err != nil {
			return nil, err
		}
		t.form = form
	}
	return t, nil
}

// Template is a template prepared for repeated embodiment. The caller
// must not mutate the underlying value while the Template is in use.
type Template struct {
	owner    *Embodier
	root     value.Value
	strategy engine.Strategy
	form     *engine.CompiledForm

	once   sync.Once
	result analysis
	err    error
}

func (t *Template) analyze() (analysis, error) {
	t.once.Do(func() {
		t.result, t.err = analyze(t.root, t.owner.syn)
	})
	return t.result, t.err
}

// Strategy returns the concrete strategy used by Embody.
func (t *Template) Strategy() engine.Strategy { return t.strategy }

// Value returns the template value.
func (t *Template) Value() value.Value { return t.root }

// Dependencies returns every marker name in the template's keys and
// string leaves, sorted and deduplicated.
func (t *Template) Dependencies() ([]string, error) {
	a, err := t.analyze()
	if err != nil {
		return nil, err
	}
	return slices.Clone(a.deps), nil
}

// Stats returns the template's shape statistics.
func (t *Template) Stats() (Stats, error) {
	a, err := t.analyze()
	return a.stats, err
}

// Embody embodies the template against a snapshot of store. A nil store
// behaves as an empty one.
//
// In strict mode every dependency is checked first and all absent names
// are reported together in one MISSING_PARAMETER error.
func (t *Template) Embody(store params.Store) (value.Value, error) {
	snap := params.Snapshot(store)

	if t.owner.cfg.Strict {
		deps, err := t.Dependencies()
		if err != nil {
			return nil, err
		}
		var missing []string
		for _, name := range deps {
			if _, ok := snap.Lookup(name); !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return nil, errdefs.NewMissingParameter(missing...)
		}
	}

	if t.form != nil {
		return t.form.Embody(snap, t.owner.cfg.Strict)
	}
	return t.owner.engines[t.strategy].Embody(t.root, snap)
}

// Embody is a convenience that builds an Embodier from cfg and embodies
// template once.
func Embody(template value.Value, store params.Store, cfg Config) (value.Value, error) {
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return e.Embody(template, store)
}
