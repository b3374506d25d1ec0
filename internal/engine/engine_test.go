package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/embody/internal/errdefs"
	"github.com/roach88/embody/internal/params"
	"github.com/roach88/embody/internal/syntax"
	"github.com/roach88/embody/internal/testutil"
	"github.com/roach88/embody/internal/value"
)

func allEngines(o Options) []Engine {
	return []Engine{NewRecursive(o), NewIterative(o), NewCompiled(o)}
}

// =============================================================================
// Registry
// =============================================================================

func TestNew_Registry(t *testing.T) {
	for _, st := range []Strategy{StrategyRecursive, StrategyIterative, StrategyCompiled} {
		e, err := New(st, Options{})
		require.NoError(t, err)
		assert.Equal(t, st, e.Strategy())
	}

	_, err := New(StrategyAuto, Options{})
	assert.Error(t, err)

	_, err = New("quantum", Options{})
	assert.True(t, errdefs.IsInvalidConfig(err))
}

func TestParseStrategy(t *testing.T) {
	st, err := ParseStrategy("iterative")
	require.NoError(t, err)
	assert.Equal(t, StrategyIterative, st)

	_, err = ParseStrategy("fast")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recursive, iterative, compiled, auto")
}

// =============================================================================
// Equivalence
// =============================================================================

func TestEngines_Corpus(t *testing.T) {
	store := testutil.Params()
	for _, tc := range testutil.Corpus() {
		for _, e := range allEngines(Options{}) {
			t.Run(tc.Name+"/"+string(e.Strategy()), func(t *testing.T) {
				got, err := e.Embody(tc.Template, store)
				require.NoError(t, err)
				assert.True(t, value.Equal(tc.Want, got),
					"want %s\ngot  %s", value.Stringify(tc.Want), value.Stringify(got))
			})
		}
	}
}

func TestEngines_Deterministic(t *testing.T) {
	store := testutil.Params()
	for _, tc := range testutil.Corpus() {
		for _, e := range allEngines(Options{}) {
			first, err := e.Embody(tc.Template, store)
			require.NoError(t, err)
			second, err := e.Embody(tc.Template, store)
			require.NoError(t, err)
			assert.True(t, value.Equal(first, second), "%s/%s", tc.Name, e.Strategy())
		}
	}
}

func TestEngines_TemplateNotMutated(t *testing.T) {
	store := testutil.Params()
	pristine := testutil.Corpus()
	for i, tc := range testutil.Corpus() {
		for _, e := range allEngines(Options{}) {
			_, err := e.Embody(tc.Template, store)
			require.NoError(t, err)
		}
		assert.True(t, value.Equal(pristine[i].Template, tc.Template), tc.Name)
	}
}

func TestEngines_ResultIndependentOfTemplate(t *testing.T) {
	inner := value.NewSeq(value.Int(1))
	template := value.NewMap(value.E("inner", inner), value.E("empty", value.NewMap()))

	for _, e := range allEngines(Options{}) {
		got, err := e.Embody(template, nil)
		require.NoError(t, err)

		m := got.(*value.Map)
		assert.NotSame(t, template, m, e.Strategy())
		gotInner, _ := m.Get("inner")
		assert.NotSame(t, inner, gotInner, e.Strategy())

		// Mutating the result leaves the template alone
		gotInner.(*value.Seq).Append(value.Int(2))
		assert.Equal(t, 1, inner.Len(), e.Strategy())
	}
}

// =============================================================================
// Lenient / strict
// =============================================================================

func TestEngines_LenientNoOp(t *testing.T) {
	template := value.NewMap(value.E("a", value.String("${x}")), value.E("b", value.String("${y}")))
	store := params.Map{"x": value.Int(1)}
	want := value.NewMap(value.E("a", value.Int(1)), value.E("b", value.String("${y}")))

	for _, e := range allEngines(Options{}) {
		got, err := e.Embody(template, store)
		require.NoError(t, err)
		assert.True(t, value.Equal(want, got), "%s: %s", e.Strategy(), value.Stringify(got))
	}
}

func TestEngines_StrictFailure(t *testing.T) {
	template := value.NewMap(value.E("a", value.String("${x}")), value.E("b", value.String("${y}")))
	store := params.Map{"x": value.Int(1)}

	for _, e := range allEngines(Options{Strict: true}) {
		_, err := e.Embody(template, store)
		require.Error(t, err, e.Strategy())

		var ee *errdefs.Error
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, errdefs.ErrCodeMissingParameter, ee.Code)
		assert.Equal(t, []string{"y"}, ee.Names)
	}
}

func TestEngines_StrictMissingKey(t *testing.T) {
	template := value.NewMap(value.E("${k}", value.Int(1)))
	for _, e := range allEngines(Options{Strict: true}) {
		_, err := e.Embody(template, nil)
		assert.True(t, errdefs.IsMissingParameter(err), e.Strategy())
	}
}

func TestEngines_OtherSyntax(t *testing.T) {
	template := value.NewMap(value.E("[[k]]", value.String("[[v]]")), value.E("lit", value.String("${v}")))
	store := params.Map{"k": value.String("key"), "v": value.Int(7)}
	want := value.NewMap(value.E("key", value.Int(7)), value.E("lit", value.String("${v}")))

	for _, e := range allEngines(Options{Syntax: syntax.DoubleBracket}) {
		got, err := e.Embody(template, store)
		require.NoError(t, err)
		assert.True(t, value.Equal(want, got), "%s: %s", e.Strategy(), value.Stringify(got))
	}
}

func TestEngines_ExactMatchTypePreserved(t *testing.T) {
	bound := []value.Value{
		value.Int(5), value.Float(2.5), value.Bool(false), value.Null{}, value.String("s"),
		value.NewSeq(value.Int(1)), value.NewMap(value.E("n", value.NewMap(value.E("d", value.Int(1))))),
	}
	for _, v := range bound {
		store := params.Map{"v": v}
		for _, e := range allEngines(Options{}) {
			got, err := e.Embody(value.NewSeq(value.String("${v}")), store)
			require.NoError(t, err)
			item := got.(*value.Seq).At(0)
			assert.Equal(t, v.Kind(), item.Kind(), e.Strategy())
			assert.True(t, value.Equal(v, item), e.Strategy())
		}
	}
}

// =============================================================================
// Cycles and diamonds
// =============================================================================

func TestEngines_RejectTrueCycle(t *testing.T) {
	root := value.NewMap(value.E("name", value.String("${x}")))
	child := value.NewMap()
	root.Set("child", child)
	child.Set("back", root)

	for _, e := range allEngines(Options{}) {
		_, err := e.Embody(root, nil)
		require.Error(t, err, e.Strategy())

		var ee *errdefs.Error
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, errdefs.ErrCodeCycleDetected, ee.Code, e.Strategy())
		assert.Equal(t, "/child/back", ee.Path, e.Strategy())
	}
}

func TestEngines_RejectSelfSeq(t *testing.T) {
	s := value.NewSeq(value.Int(1))
	s.Append(s)
	for _, e := range allEngines(Options{}) {
		_, err := e.Embody(s, nil)
		assert.True(t, errdefs.IsCycle(err), e.Strategy())
	}
}

func TestEngines_DiamondIsNotACycle(t *testing.T) {
	shared := value.NewMap(value.E("v", value.String("${x}")))
	template := value.NewMap(
		value.E("left", shared),
		value.E("right", shared),
		value.E("nested", value.NewSeq(shared, value.NewMap(value.E("again", shared)))),
	)
	store := params.Map{"x": value.Int(1)}

	for _, e := range allEngines(Options{}) {
		got, err := e.Embody(template, store)
		require.NoError(t, err, e.Strategy())

		left, _ := got.(*value.Map).Get("left")
		right, _ := got.(*value.Map).Get("right")
		assert.True(t, value.Equal(left, right), e.Strategy())
		assert.True(t, value.Equal(value.NewMap(value.E("v", value.Int(1))), left), e.Strategy())
	}
}

func TestIterative_ReusesCollectedDiamond(t *testing.T) {
	shared := value.NewSeq(value.String("${x}"))
	template := value.NewMap(value.E("a", shared), value.E("b", shared))

	got, err := NewIterative(Options{}).Embody(template, params.Map{"x": value.Int(1)})
	require.NoError(t, err)

	a, _ := got.(*value.Map).Get("a")
	b, _ := got.(*value.Map).Get("b")
	assert.Same(t, a, b)
}

func TestIterative_DistinctEqualContainersEmbodiedIndependently(t *testing.T) {
	template := value.NewMap(
		value.E("a", value.NewSeq(value.String("${x}"))),
		value.E("b", value.NewSeq(value.String("${x}"))),
	)

	got, err := NewIterative(Options{}).Embody(template, params.Map{"x": value.Int(1)})
	require.NoError(t, err)

	a, _ := got.(*value.Map).Get("a")
	b, _ := got.(*value.Map).Get("b")
	assert.NotSame(t, a, b)
	assert.True(t, value.Equal(a, b))
}

func TestIterative_DeepTemplate(t *testing.T) {
	const depth = 50_000
	root := value.NewSeq()
	cur := root
	for range depth {
		next := value.NewSeq()
		cur.Append(next)
		cur = next
	}
	cur.Append(value.String("${x}"))

	got, err := NewIterative(Options{}).Embody(root, params.Map{"x": value.Int(9)})
	require.NoError(t, err)

	v := got
	for range depth {
		v = v.(*value.Seq).At(0)
	}
	assert.Equal(t, value.Int(9), v.(*value.Seq).At(0))
}

// =============================================================================
// Key collisions through engines
// =============================================================================

func collidingTemplate() value.Value {
	return value.NewMap(
		value.E("${first}", value.String("one")),
		value.E("${second}", value.String("two")),
	)
}

var collidingParams = params.Map{"first": value.String("key"), "second": value.String("key")}

func TestEngines_CollisionError(t *testing.T) {
	for _, e := range allEngines(Options{}) {
		_, err := e.Embody(collidingTemplate(), collidingParams)
		require.Error(t, err, e.Strategy())

		var ee *errdefs.Error
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, errdefs.ErrCodeKeyCollision, ee.Code)
		assert.Equal(t, []string{"key"}, ee.Names)
	}
}

func TestEngines_CollisionLastWins(t *testing.T) {
	o := Options{KeyCollision: CollisionLastWins}
	for _, e := range []Engine{NewRecursive(o), NewIterative(o)} {
		got, err := e.Embody(collidingTemplate(), collidingParams)
		require.NoError(t, err)
		assert.True(t, value.Equal(value.NewMap(value.E("key", value.String("two"))), got), e.Strategy())
	}
}

func TestEngines_CollisionNamespace(t *testing.T) {
	o := Options{KeyCollision: CollisionNamespace}
	want := value.NewMap(value.E("key", value.String("one")), value.E("key_1", value.String("two")))
	for _, e := range []Engine{NewRecursive(o), NewIterative(o)} {
		got, err := e.Embody(collidingTemplate(), collidingParams)
		require.NoError(t, err)
		assert.True(t, value.Equal(want, got), e.Strategy())
	}
}

func TestCompiled_CollisionAlwaysErrors(t *testing.T) {
	for _, policy := range CollisionPolicies {
		e := NewCompiled(Options{KeyCollision: policy})
		_, err := e.Embody(collidingTemplate(), collidingParams)
		assert.True(t, errdefs.IsKeyCollision(err), policy)
	}
}
