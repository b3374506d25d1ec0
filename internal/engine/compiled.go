package engine

import (
	"log/slog"
	"sync"

	"github.com/roach88/embody/internal/flatten"
	"github.com/roach88/embody/internal/params"
	"github.com/roach88/embody/internal/paths"
	"github.com/roach88/embody/internal/subst"
	"github.com/roach88/embody/internal/syntax"
	"github.com/roach88/embody/internal/value"
)

// DefaultCacheSize is the default number of compiled forms kept by a
// Compiled engine.
const DefaultCacheSize = 256

// CompiledForm is a template flattened for repeated embodiment. It is
// read-only once built and safe to share between goroutines.
type CompiledForm struct {
	fingerprint Fingerprint
	syntax      *syntax.Syntax
	leaves      []compiledLeaf
	templated   int
	dynamic     int
}

type compiledLeaf struct {
	path  paths.Path
	value value.Value

	// templated marks a String leaf holding at least one marker,
	// exact matches included.
	templated bool

	// dynamicKeys lists the indexes of path segments whose key holds a
	// marker.
	dynamicKeys []int
}

// Compile flattens template and flags the leaves and key segments that
// hold markers of syn. It fails with CYCLE_DETECTED for cyclic templates.
func Compile(template value.Value, syn *syntax.Syntax) (*CompiledForm, error) {
	if syn == nil {
		syn = syntax.DollarBrace
	}
	fp, err := FingerprintOf(template)
	if err != nil {
		return nil, err
	}
	return compile(template, fp, syn)
}

func compile(template value.Value, fp Fingerprint, syn *syntax.Syntax) (*CompiledForm, error) {
	flat, err := flatten.Flatten(template)
	if err != nil {
		return nil, err
	}

	form := &CompiledForm{
		fingerprint: fp,
		syntax:      syn,
		leaves:      make([]compiledLeaf, len(flat)),
	}
	for i, leaf := range flat {
		cl := compiledLeaf{path: leaf.Path, value: leaf.Value}
		if s, ok := leaf.Value.(value.String); ok && syn.HasMarkers(string(s)) {
			cl.templated = true
			form.templated++
		}
		for j, seg := range leaf.Path {
			if !seg.IsIndex() && syn.HasMarkers(seg.Key()) {
				cl.dynamicKeys = append(cl.dynamicKeys, j)
			}
		}
		if len(cl.dynamicKeys) > 0 {
			form.dynamic++
		}
		form.leaves[i] = cl
	}
	return form, nil
}

// Fingerprint returns the content fingerprint of the compiled template.
func (f *CompiledForm) Fingerprint() Fingerprint { return f.fingerprint }

// Len returns the number of leaves.
func (f *CompiledForm) Len() int { return len(f.leaves) }

// Templated returns the paths of leaves that are substituted per call.
func (f *CompiledForm) Templated() []paths.Path {
	out := make([]paths.Path, 0, f.templated)
	for _, l := range f.leaves {
		if l.templated {
			out = append(out, l.path.Clone())
		}
	}
	return out
}

// DynamicKeys returns the paths of leaves reached through at least one
// marker-bearing key.
func (f *CompiledForm) DynamicKeys() []paths.Path {
	out := make([]paths.Path, 0, f.dynamic)
	for _, l := range f.leaves {
		if len(l.dynamicKeys) > 0 {
			out = append(out, l.path.Clone())
		}
	}
	return out
}

// Embody substitutes the flagged leaves and key segments against store
// and rebuilds the nested value. Leaves without markers are reused as is.
func (f *CompiledForm) Embody(store params.Store, strict bool) (value.Value, error) {
	store = storeOrEmpty(store)
	b := flatten.NewBuilder()
	keys := make(map[string]string)

	for _, l := range f.leaves {
		v := l.value
		if l.templated {
			r, err := subst.Substitute(string(v.(value.String)), store, f.syntax, strict)
			if err != nil {
				return nil, err
			}
			v = r
		}

		resolved := l.path
		if len(l.dynamicKeys) > 0 {
			resolved = l.path.Clone()
			for _, j := range l.dynamicKeys {
				k := l.path[j].Key()
				r, ok := keys[k]
				if !ok {
					var err error
					r, err = subst.Key(k, store, f.syntax, strict)
					if err != nil {
						return nil, err
					}
					keys[k] = r
				}
				resolved[j] = paths.Key(r)
			}
		}

		if err := b.Put(l.path, resolved, v); err != nil {
			return nil, err
		}
	}
	return b.Result(), nil
}

// CompiledOption configures a Compiled engine.
type CompiledOption func(*Compiled)

// WithCacheSize bounds the number of cached compiled forms. Values below
// one disable caching.
func WithCacheSize(n int) CompiledOption {
	return func(e *Compiled) {
		e.limit = n
	}
}

// WithLogger sets the logger for compile and cache events.
func WithLogger(l *slog.Logger) CompiledOption {
	return func(e *Compiled) {
		if l != nil {
			e.logger = l
		}
	}
}

// Compiled embodies templates through cached compiled forms.
//
// The cache is keyed by content fingerprint, so a template that is
// mutated by its caller between calls simply compiles to a new entry.
// Eviction is first in, first out.
type Compiled struct {
	opts   Options
	logger *slog.Logger
	limit  int

	mu    sync.Mutex
	cache map[Fingerprint]*CompiledForm
	order []Fingerprint
}

// NewCompiled creates a compiled engine.
func NewCompiled(o Options, opts ...CompiledOption) *Compiled {
	e := &Compiled{
		opts:   o.withDefaults(),
		logger: slog.Default(),
		limit:  DefaultCacheSize,
		cache:  make(map[Fingerprint]*CompiledForm),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Strategy implements Engine.
func (e *Compiled) Strategy() Strategy { return StrategyCompiled }

// Embody implements Engine.
func (e *Compiled) Embody(template value.Value, store params.Store) (value.Value, error) {
	form, err := e.Compile(template)
	if err != nil {
		return nil, err
	}
	return form.Embody(store, e.opts.Strict)
}

// Compile returns the compiled form of template, from the cache when an
// equal template was compiled before.
func (e *Compiled) Compile(template value.Value) (*CompiledForm, error) {
	fp, err := FingerprintOf(template)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	form, ok := e.cache[fp]
	e.mu.Unlock()
	if ok {
		e.logger.Debug("compiled form cache hit", "fingerprint", fp.String())
		return form, nil
	}

	form, err = compile(template, fp, e.opts.Syntax)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("compiled template",
		"fingerprint", fp.String(),
		"leaves", form.Len(),
		"templated", form.templated,
		"dynamic_keys", form.dynamic)

	e.remember(fp, form)
	return form, nil
}

func (e *Compiled) remember(fp Fingerprint, form *CompiledForm) {
	if e.limit < 1 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.cache[fp]; ok {
		return
	}
	for len(e.order) >= e.limit {
		oldest := e.order[0]
		e.order = e.order[1:]
		delete(e.cache, oldest)
		e.logger.Debug("compiled form evicted", "fingerprint", oldest.String())
	}
	e.cache[fp] = form
	e.order = append(e.order, fp)
}

// CacheLen returns the number of cached compiled forms.
func (e *Compiled) CacheLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}
