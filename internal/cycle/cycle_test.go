package cycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/embody/internal/errdefs"
	"github.com/roach88/embody/internal/paths"
	"github.com/roach88/embody/internal/value"
)

func TestCheck_AcyclicTree(t *testing.T) {
	root := value.NewMap(
		value.E("a", value.NewSeq(value.Int(1), value.NewMap())),
		value.E("b", value.String("x")),
	)
	assert.NoError(t, Check(root))
}

func TestCheck_Scalars(t *testing.T) {
	assert.NoError(t, Check(value.Int(1)))
	assert.NoError(t, Check(value.Null{}))
}

func TestCheck_DiamondTolerated(t *testing.T) {
	shared := value.NewMap(value.E("leaf", value.Int(1)))
	root := value.NewMap(
		value.E("left", shared),
		value.E("right", shared),
		value.E("list", value.NewSeq(shared, shared)),
	)
	assert.NoError(t, Check(root))
}

func TestCheck_NestedDiamond(t *testing.T) {
	bottom := value.NewSeq(value.String("b"))
	mid := value.NewMap(value.E("x", bottom), value.E("y", bottom))
	root := value.NewSeq(mid, value.NewMap(value.E("m", mid)))
	assert.NoError(t, Check(root))
}

func TestCheck_SelfReference(t *testing.T) {
	root := value.NewMap(value.E("name", value.String("loop")))
	child := value.NewSeq()
	root.Set("child", child)
	child.Append(root)

	err := Check(root)
	require.Error(t, err)

	var e *errdefs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errdefs.ErrCodeCycleDetected, e.Code)
	assert.Equal(t, "/child/0", e.Path)
}

func TestCheck_DirectSelfReference(t *testing.T) {
	s := value.NewSeq()
	s.Append(s)

	err := Check(s)
	require.Error(t, err)
	assert.True(t, errdefs.IsCycle(err))
	assert.Contains(t, err.Error(), "path=/0")
}

func TestCheck_CycleBelowDiamond(t *testing.T) {
	shared := value.NewMap()
	shared.Set("self", shared)
	root := value.NewMap(value.E("a", shared), value.E("b", shared))

	err := Check(root)
	require.Error(t, err)
	assert.True(t, errdefs.IsCycle(err))
}

func TestWalk_PreOrderWithPaths(t *testing.T) {
	root := value.NewMap(
		value.E("a", value.NewSeq(value.Int(1), value.Int(2))),
		value.E("b", value.String("x")),
	)

	var visited []string
	err := Walk(root, func(at *Trail, v value.Value) error {
		visited = append(visited, at.Path().String()+"="+v.Kind().String())
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/=map",
		"/a=seq",
		"/a/0=int",
		"/a/1=int",
		"/b=string",
	}, visited)
}

func TestWalk_TrailsCanBeRetained(t *testing.T) {
	root := value.NewSeq(value.NewSeq(value.Int(1)), value.NewSeq(value.Int(2)))

	var kept []*Trail
	err := Walk(root, func(at *Trail, v value.Value) error {
		kept = append(kept, at)
		return nil
	})
	require.NoError(t, err)

	var rendered []string
	var depths []int
	for _, at := range kept {
		rendered = append(rendered, at.Path().Pointer())
		depths = append(depths, at.Depth())
	}
	assert.Equal(t, []string{"", "/0", "/0/0", "/1", "/1/0"}, rendered)
	assert.Equal(t, []int{0, 1, 2, 1, 2}, depths)
}

func TestTrail(t *testing.T) {
	var root *Trail
	assert.Equal(t, 0, root.Depth())
	_, ok := root.Last()
	assert.False(t, ok)
	assert.Empty(t, root.Path())

	at := root.Extend(paths.Key("a")).Extend(paths.Index(2))
	seg, ok := at.Last()
	require.True(t, ok)
	assert.Equal(t, paths.Index(2), seg)
	assert.Equal(t, paths.Path{paths.Key("a"), paths.Index(2)}, at.Path())
}

func TestWalk_VisitorErrorStops(t *testing.T) {
	stop := errors.New("stop")
	count := 0
	err := Walk(value.NewSeq(value.Int(1), value.Int(2), value.Int(3)), func(at *Trail, v value.Value) error {
		count++
		if count == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, count)
}

func TestWalk_DeepNesting(t *testing.T) {
	root := value.NewSeq()
	cur := root
	for range 100_000 {
		next := value.NewSeq()
		cur.Append(next)
		cur = next
	}
	assert.NoError(t, Check(root))
}

func TestGuard_EnterExit(t *testing.T) {
	g := NewGuard()
	m := value.NewMap()
	at := (*Trail)(nil).Extend(paths.Key("x"))

	require.NoError(t, g.Enter(m, nil))
	assert.True(t, g.OnPath(m))

	err := g.Enter(m, at)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path=/x")

	g.Exit(m)
	assert.False(t, g.OnPath(m))
	assert.NoError(t, g.Enter(m, at))

	// Scalars are never tracked
	require.NoError(t, g.Enter(value.Int(1), nil))
	assert.NoError(t, g.Enter(value.Int(1), nil))
}
