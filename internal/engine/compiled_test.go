package engine

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/embody/internal/errdefs"
	"github.com/roach88/embody/internal/params"
	"github.com/roach88/embody/internal/paths"
	"github.com/roach88/embody/internal/syntax"
	"github.com/roach88/embody/internal/value"
)

func TestCompile_FlagsTemplatedLeaves(t *testing.T) {
	template := value.NewMap(
		value.E("exact", value.String("${a}")),
		value.E("partial", value.String("x-${b}")),
		value.E("plain", value.String("no markers")),
		value.E("num", value.Int(1)),
		value.E("list", value.NewSeq(value.String("${c}"), value.Bool(true))),
	)

	form, err := Compile(template, nil)
	require.NoError(t, err)

	assert.Equal(t, 6, form.Len())

	var got []string
	for _, p := range form.Templated() {
		got = append(got, p.Pointer())
	}
	assert.Equal(t, []string{"/exact", "/partial", "/list/0"}, got)
	assert.Empty(t, form.DynamicKeys())
}

func TestCompile_FlagsDynamicKeys(t *testing.T) {
	template := value.NewMap(
		value.E("${env}", value.NewMap(value.E("host", value.String("h")), value.E("${k}", value.Int(1)))),
		value.E("static", value.Int(2)),
	)

	form, err := Compile(template, syntax.DollarBrace)
	require.NoError(t, err)

	assert.Equal(t, []paths.Path{
		{paths.Key("${env}"), paths.Key("host")},
		{paths.Key("${env}"), paths.Key("${k}")},
	}, form.DynamicKeys())
	assert.Empty(t, form.Templated())
}

func TestCompile_RespectsSyntax(t *testing.T) {
	template := value.NewSeq(value.String("${a}"), value.String("{a}"))

	form, err := Compile(template, syntax.Brace)
	require.NoError(t, err)

	// "${a}" contains "{a}", so both leaves hold a brace marker
	assert.Len(t, form.Templated(), 2)

	form, err = Compile(template, syntax.DoubleBracket)
	require.NoError(t, err)
	assert.Empty(t, form.Templated())
}

func TestCompile_Cycle(t *testing.T) {
	m := value.NewMap()
	m.Set("self", m)

	_, err := Compile(m, nil)
	assert.True(t, errdefs.IsCycle(err))
}

func TestCompiledForm_ReusableAcrossStores(t *testing.T) {
	template := value.NewMap(
		value.E("${side}", value.String("${n}")),
		value.E("label", value.String("n=${n}")),
	)
	form, err := Compile(template, nil)
	require.NoError(t, err)

	first, err := form.Embody(params.Map{"side": value.String("left"), "n": value.Int(1)}, false)
	require.NoError(t, err)
	second, err := form.Embody(params.Map{"side": value.String("right"), "n": value.Int(2)}, false)
	require.NoError(t, err)

	assert.True(t, value.Equal(value.NewMap(
		value.E("left", value.Int(1)),
		value.E("label", value.String("n=1")),
	), first), value.Stringify(first))
	assert.True(t, value.Equal(value.NewMap(
		value.E("right", value.Int(2)),
		value.E("label", value.String("n=2")),
	), second), value.Stringify(second))
}

func TestCompiledForm_StrictMissing(t *testing.T) {
	form, err := Compile(value.NewSeq(value.String("${a}"), value.String("${b}-${c}")), nil)
	require.NoError(t, err)

	_, err = form.Embody(params.Map{"b": value.Int(1)}, true)
	require.Error(t, err)
	assert.True(t, errdefs.IsMissingParameter(err))
}

func TestCompiledForm_DynamicKeyCollidesWithLiteral(t *testing.T) {
	template := value.NewMap(
		value.E("name", value.Int(1)),
		value.E("${k}", value.Int(2)),
	)
	form, err := Compile(template, nil)
	require.NoError(t, err)

	_, err = form.Embody(params.Map{"k": value.String("name")}, false)
	assert.True(t, errdefs.IsKeyCollision(err))
}

// =============================================================================
// Cache
// =============================================================================

func TestCompiled_CacheKeyedByContent(t *testing.T) {
	e := NewCompiled(Options{})

	a := value.NewMap(value.E("v", value.String("${x}")))
	b := value.NewMap(value.E("v", value.String("${x}")))

	formA, err := e.Compile(a)
	require.NoError(t, err)
	formB, err := e.Compile(b)
	require.NoError(t, err)

	assert.Same(t, formA, formB)
	assert.Equal(t, 1, e.CacheLen())
}

func TestCompiled_MutatedTemplateGetsNewEntry(t *testing.T) {
	e := NewCompiled(Options{})
	template := value.NewMap(value.E("v", value.String("${x}")))
	store := params.Map{"x": value.Int(1), "y": value.Int(2)}

	got, err := e.Embody(template, store)
	require.NoError(t, err)
	assert.True(t, value.Equal(value.NewMap(value.E("v", value.Int(1))), got))

	template.Set("v", value.String("${y}"))
	got, err = e.Embody(template, store)
	require.NoError(t, err)
	assert.True(t, value.Equal(value.NewMap(value.E("v", value.Int(2))), got))
	assert.Equal(t, 2, e.CacheLen())
}

func TestCompiled_CacheEvictsOldest(t *testing.T) {
	e := NewCompiled(Options{}, WithCacheSize(2))

	t1 := value.String("${a}")
	t2 := value.String("${b}")
	t3 := value.String("${c}")

	f1, err := e.Compile(t1)
	require.NoError(t, err)
	_, err = e.Compile(t2)
	require.NoError(t, err)
	_, err = e.Compile(t3)
	require.NoError(t, err)
	assert.Equal(t, 2, e.CacheLen())

	// t1 was evicted and compiles to a new form
	again, err := e.Compile(t1)
	require.NoError(t, err)
	assert.NotSame(t, f1, again)
}

func TestCompiled_CacheDisabled(t *testing.T) {
	e := NewCompiled(Options{}, WithCacheSize(0))
	_, err := e.Compile(value.String("${a}"))
	require.NoError(t, err)
	assert.Equal(t, 0, e.CacheLen())
}

func TestCompiled_LogsCompileAndHit(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := NewCompiled(Options{}, WithLogger(logger))

	template := value.NewSeq(value.String("${a}"))
	_, err := e.Compile(template)
	require.NoError(t, err)
	_, err = e.Compile(template)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "compiled template")
	assert.Contains(t, out, "templated=1")
	assert.Contains(t, out, "compiled form cache hit")
}

func TestCompiled_ConcurrentUse(t *testing.T) {
	e := NewCompiled(Options{}, WithCacheSize(4))
	store := params.Map{"x": value.Int(1)}

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			template := value.NewMap(value.E("v", value.String("${x}")), value.E("i", value.Int(int64(i%8))))
			got, err := e.Embody(template, store)
			if err != nil {
				errs <- err
				return
			}
			if v, _ := got.(*value.Map).Get("v"); !value.Equal(value.Int(1), v) {
				errs <- assert.AnError
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.LessOrEqual(t, e.CacheLen(), 4)
}
