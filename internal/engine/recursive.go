package engine

import (
	"github.com/roach88/embody/internal/cycle"
	"github.com/roach88/embody/internal/params"
	"github.com/roach88/embody/internal/paths"
	"github.com/roach88/embody/internal/subst"
	"github.com/roach88/embody/internal/value"
)

// Recursive embodies templates by tree recursion.
type Recursive struct {
	opts Options
}

// NewRecursive creates a recursive engine.
func NewRecursive(o Options) *Recursive {
	return &Recursive{opts: o.withDefaults()}
}

// Strategy implements Engine.
func (e *Recursive) Strategy() Strategy { return StrategyRecursive }

// Embody implements Engine.
func (e *Recursive) Embody(template value.Value, store params.Store) (value.Value, error) {
	return e.embody(template, storeOrEmpty(store), nil, cycle.NewGuard())
}

func (e *Recursive) embody(v value.Value, store params.Store, at *cycle.Trail, guard *cycle.Guard) (value.Value, error) {
	switch n := v.(type) {
	case value.String:
		return subst.Substitute(string(n), store, e.opts.Syntax, e.opts.Strict)

	case *value.Seq:
		if err := guard.Enter(n, at); err != nil {
			return nil, err
		}
		defer guard.Exit(n)

		items := make([]value.Value, 0, n.Len())
		for i, item := range n.All() {
			r, err := e.embody(item, store, at.Extend(paths.Index(i)), guard)
			if err != nil {
				return nil, err
			}
			items = append(items, r)
		}
		return value.NewSeq(items...), nil

	case *value.Map:
		if err := guard.Enter(n, at); err != nil {
			return nil, err
		}
		defer guard.Exit(n)

		pairs := make([]value.Entry, 0, n.Len())
		for k, item := range n.All() {
			key, err := subst.Key(k, store, e.opts.Syntax, e.opts.Strict)
			if err != nil {
				return nil, err
			}
			r, err := e.embody(item, store, at.Extend(paths.Key(k)), guard)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, value.E(key, r))
		}
		return ResolveKeys(pairs, e.opts.KeyCollision)

	default:
		return v, nil
	}
}
