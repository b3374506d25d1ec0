package engine

import (
	"github.com/roach88/embody/internal/cycle"
	"github.com/roach88/embody/internal/errdefs"
	"github.com/roach88/embody/internal/params"
	"github.com/roach88/embody/internal/paths"
	"github.com/roach88/embody/internal/subst"
	"github.com/roach88/embody/internal/value"
)

// Iterative embodies templates with an explicit work stack.
type Iterative struct {
	opts Options
}

// NewIterative creates an iterative engine.
func NewIterative(o Options) *Iterative {
	return &Iterative{opts: o.withDefaults()}
}

// Strategy implements Engine.
func (e *Iterative) Strategy() Strategy { return StrategyIterative }

// work is one stack item: a container to expand, or to collect once
// all of its children are collected.
type work struct {
	node    value.Value
	at      *cycle.Trail
	collect bool
}

// iterativeRun holds the state of one Embody call.
type iterativeRun struct {
	opts      Options
	store     params.Store
	expanding *cycle.Guard
	collected map[value.Value]value.Value
	stack     []work
}

// Embody implements Engine.
func (e *Iterative) Embody(template value.Value, store params.Store) (value.Value, error) {
	store = storeOrEmpty(store)
	if !value.IsContainer(template) {
		return subst.Leaf(template, store, e.opts.Syntax, e.opts.Strict)
	}

	run := &iterativeRun{
		opts:      e.opts,
		store:     store,
		expanding: cycle.NewGuard(),
		collected: make(map[value.Value]value.Value),
		stack:     []work{{node: template}},
	}
	if err := run.loop(); err != nil {
		return nil, err
	}
	return run.collected[template], nil
}

func (r *iterativeRun) loop() error {
	for len(r.stack) > 0 {
		top := r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]

		if top.collect {
			if err := r.collectNode(top.node); err != nil {
				return err
			}
			continue
		}

		// A diamond reaches the same container twice; reuse its result.
		if _, done := r.collected[top.node]; done {
			continue
		}
		if err := r.expanding.Enter(top.node, top.at); err != nil {
			return err
		}
		r.stack = append(r.stack, work{node: top.node, at: top.at, collect: true})
		if err := r.pushChildren(top.node, top.at); err != nil {
			return err
		}
	}
	return nil
}

// pushChildren schedules the uncollected container children of node,
// first child on top. A child still being expanded is an ancestor of
// node, so reaching it again is a cycle.
func (r *iterativeRun) pushChildren(node value.Value, at *cycle.Trail) error {
	push := func(child value.Value, seg paths.Segment) error {
		if !value.IsContainer(child) {
			return nil
		}
		if _, done := r.collected[child]; done {
			return nil
		}
		childAt := at.Extend(seg)
		if r.expanding.OnPath(child) {
			return errdefs.NewCycle(childAt.Path().Pointer())
		}
		r.stack = append(r.stack, work{node: child, at: childAt})
		return nil
	}

	switch c := node.(type) {
	case *value.Seq:
		for i := c.Len() - 1; i >= 0; i-- {
			if err := push(c.At(i), paths.Index(i)); err != nil {
				return err
			}
		}
	case *value.Map:
		for i := c.Len() - 1; i >= 0; i-- {
			e := c.At(i)
			if err := push(e.Value, paths.Key(e.Key)); err != nil {
				return err
			}
		}
	}
	return nil
}

// collectNode builds the embodied container from its children's results.
func (r *iterativeRun) collectNode(node value.Value) error {
	var result value.Value
	switch c := node.(type) {
	case *value.Seq:
		items := make([]value.Value, 0, c.Len())
		for _, item := range c.All() {
			v, err := r.childResult(item)
			if err != nil {
				return err
			}
			items = append(items, v)
		}
		result = value.NewSeq(items...)

	case *value.Map:
		pairs := make([]value.Entry, 0, c.Len())
		for k, item := range c.All() {
			key, err := subst.Key(k, r.store, r.opts.Syntax, r.opts.Strict)
			if err != nil {
				return err
			}
			v, err := r.childResult(item)
			if err != nil {
				return err
			}
			pairs = append(pairs, value.E(key, v))
		}
		m, err := ResolveKeys(pairs, r.opts.KeyCollision)
		if err != nil {
			return err
		}
		result = m
	}

	r.expanding.Exit(node)
	r.collected[node] = result
	return nil
}

func (r *iterativeRun) childResult(item value.Value) (value.Value, error) {
	if value.IsContainer(item) {
		return r.collected[item], nil
	}
	return subst.Leaf(item, r.store, r.opts.Syntax, r.opts.Strict)
}
