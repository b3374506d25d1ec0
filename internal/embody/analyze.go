package embody

import (
	"maps"
	"slices"

	"github.com/roach88/embody/internal/cycle"
	"github.com/roach88/embody/internal/engine"
	"github.com/roach88/embody/internal/syntax"
	"github.com/roach88/embody/internal/value"
)

// Thresholds of the auto strategy heuristic.
const (
	DepthThreshold  = 5
	MarkerThreshold = 10
)

// Stats describes the shape of a template.
type Stats struct {
	// MaxDepth is the longest path to a leaf. {"a": 1} has depth 1; a
	// scalar or empty root has depth 0.
	MaxDepth int `json:"max_depth"`

	// Markers counts marker occurrences in keys and string leaves.
	Markers int `json:"markers"`

	// DynamicKeys counts map keys holding at least one marker.
	DynamicKeys int `json:"dynamic_keys"`

	// Leaves counts scalars and empty containers.
	Leaves int `json:"leaves"`
}

// analysis is the result of one guarded scan of a template.
type analysis struct {
	deps  []string
	stats Stats
}

// analyze scans template once under the cycle guard. Shared subtrees are
// counted once per path that reaches them.
func analyze(template value.Value, syn *syntax.Syntax) (analysis, error) {
	names := make(map[string]struct{})
	var stats Stats

	count := func(s string) int {
		found := syn.FindAll(s)
		for _, n := range found {
			names[n] = struct{}{}
		}
		return len(found)
	}

	err := cycle.Walk(template, func(at *cycle.Trail, v value.Value) error {
		stats.MaxDepth = max(stats.MaxDepth, at.Depth())
		if seg, ok := at.Last(); ok && !seg.IsIndex() {
			if n := count(seg.Key()); n > 0 {
				stats.Markers += n
				stats.DynamicKeys++
			}
		}
		if s, ok := v.(value.String); ok {
			stats.Markers += count(string(s))
		}
		if !value.IsContainer(v) || value.IsEmptyContainer(v) {
			stats.Leaves++
		}
		return nil
	})
	if err != nil {
		return analysis{}, err
	}

	return analysis{
		deps:  slices.Sorted(maps.Keys(names)),
		stats: stats,
	}, nil
}

// SelectStrategy is the auto heuristic. Templates with marker-bearing
// keys go to the recursive engine whenever the collision policy is not
// error, since the compiled engine cannot apply the policy. Otherwise
// deep or marker-heavy templates go to the compiled engine and the rest to
// the recursive one.
func SelectStrategy(stats Stats, policy engine.CollisionPolicy) engine.Strategy {
	if stats.DynamicKeys > 0 && policy != engine.CollisionError && policy != "" {
		return engine.StrategyRecursive
	}
	if stats.MaxDepth > DepthThreshold || stats.Markers > MarkerThreshold {
		return engine.StrategyCompiled
	}
	return engine.StrategyRecursive
}
